package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hn-matcher/internal/extract"
	"github.com/spigell/hn-matcher/internal/filtering"
	"github.com/spigell/hn-matcher/internal/logger"
	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/summary"
	"github.com/spigell/hn-matcher/internal/utils"
)

const (
	defaultWorkers = 4
	previewLength  = 80
)

// Pipeline turns raw posts into filtered, summarized records.
type Pipeline struct {
	extractor *extract.Extractor
	filters   *filtering.Filtering
	workers   int
	logger    *zap.Logger
}

func New(extractor *extract.Extractor, filters *filtering.Filtering, workers int, log *zap.Logger) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	// Without configured filters the validity rule still applies.
	if filters == nil {
		filters = filtering.New(nil, []filtering.Filter{filtering.NewValidity()}, log)
	}
	return &Pipeline{
		extractor: extractor,
		filters:   filters,
		workers:   workers,
		logger:    log,
	}
}

// Run extracts every post as kind, runs the filters and fills summaries of
// the surviving records. Records keep the order of posts.
func (p *Pipeline) Run(ctx context.Context, kind record.Kind, posts []*record.Post) (*record.Batch, error) {
	if kind != record.KindJob && kind != record.KindCandidate {
		return nil, fmt.Errorf("unsupported record kind %q", kind)
	}

	records := make([]record.Record, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, post := range posts {
		if post == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = p.extractor.Record(post, kind)
			p.logger.Debug("extracted post",
				append(logger.PostFields(post.ID, string(kind)),
					zap.String("text_preview", utils.Preview(post.Text, previewLength)),
				)...,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &record.Batch{}
	for _, r := range records {
		batch.Add(r)
	}

	p.logger.Info("extracted posts", zap.String("kind", string(kind)), zap.Int("records", batch.Len()))

	batch, err := p.filters.RunFilters(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("filtering records: %w", err)
	}

	for _, c := range batch.Candidates {
		c.Summary = summary.Candidate(c)
	}
	for _, j := range batch.Jobs {
		j.Summary = summary.Job(j)
	}

	return batch, nil
}
