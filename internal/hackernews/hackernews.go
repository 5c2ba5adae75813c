package hackernews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	apiURL    = "https://hacker-news.firebaseio.com/v0"
	userAgent = "spigell/hn-matcher (spigelly@gmail.com)"
	// Kids fetched at once while walking a thread.
	defaultWorkers = 8
)

// ErrNotFound is returned for ids the API answers with null.
var ErrNotFound = errors.New("item not found")

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Workers    int
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		Workers:   defaultWorkers,
	}
}

func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	return c.getItem(ctx, id)
}

// GetThreadPosts returns the top-level comments of a thread in thread order.
// Deleted, dead and text-less comments are skipped. A positive limit caps the
// number of returned items.
func (c *Client) GetThreadPosts(ctx context.Context, threadID, limit int) (Items, error) {
	thread, err := c.getItem(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("getting thread %d: %w", threadID, err)
	}

	c.logger.Debug("got thread from HN",
		zap.Int("thread_id", threadID),
		zap.String("title", thread.Title),
		zap.Int("comments", len(thread.Kids)),
	)

	workers := c.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var posts Items
	kids := thread.Kids
	for len(kids) > 0 {
		if limit > 0 && len(posts) >= limit {
			break
		}

		window := kids[:min(workers, len(kids))]
		kids = kids[len(window):]

		fetched, err := c.fetchWindow(ctx, window)
		if err != nil {
			return nil, err
		}

		for _, item := range fetched {
			if !item.Usable() {
				continue
			}
			posts = append(posts, item)
			if limit > 0 && len(posts) >= limit {
				break
			}
		}
	}

	c.logger.Info("fetched thread posts",
		zap.Int("thread_id", threadID),
		zap.Int("posts", len(posts)),
	)

	return posts, nil
}

// fetchWindow gets the items concurrently and returns them in input order.
// Items that disappeared in the meantime come back nil.
func (c *Client) fetchWindow(ctx context.Context, ids []int) ([]*Item, error) {
	items := make([]*Item, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			item, err := c.getItem(ctx, id)
			if errors.Is(err, ErrNotFound) {
				c.logger.Debug("skipping missing item", zap.Int("id", id))
				return nil
			}
			if err != nil {
				return fmt.Errorf("getting item %d: %w", id, err)
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
