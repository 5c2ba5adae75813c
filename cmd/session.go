package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/extract"
	"github.com/spigell/hn-matcher/internal/filtering"
	"github.com/spigell/hn-matcher/internal/hackernews"
	"github.com/spigell/hn-matcher/internal/ingest"
	"github.com/spigell/hn-matcher/internal/logger"
	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/techvocab"
)

// session carries what every command needs after startup.
type session struct {
	ctx      context.Context
	logger   *zap.Logger
	config   *Config
	hn       *hackernews.Client
	vocab    *techvocab.Matcher
	pipeline *ingest.Pipeline
}

func newSession(ctx context.Context) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hn-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	hn := hackernews.New(logger)
	if config.UserAgent != "" {
		hn.UserAgent = config.UserAgent
	}

	vocab := techvocab.New(techvocab.Default().With(config.Vocabulary.Extra, config.Vocabulary.Aliases))

	filters := filtering.New(&filtering.Config{
		ExcludeFile: config.ExcludeFile,
		Companies:   config.Exclude.Companies,
	}, filtering.Default(), logger)

	for _, status := range filters.Describe() {
		logger.Debug("filter configured", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled))
	}

	return &session{
		ctx:      ctx,
		logger:   logger,
		config:   config,
		hn:       hn,
		vocab:    vocab,
		pipeline: ingest.New(extract.New(vocab), filters, config.Workers, logger),
	}
}

// load reads posts from an items file or a live thread and runs them through the pipeline.
func (s *session) load(kind record.Kind, threadID int, input string) (*record.Batch, error) {
	posts, err := s.posts(threadID, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("getting posts", zap.String("kind", string(kind)), zap.Int("count", len(posts)))

	return s.pipeline.Run(s.ctx, kind, posts)
}

func (s *session) posts(threadID int, input string) ([]*record.Post, error) {
	maxPosts := s.config.MaxPosts

	var items hackernews.Items
	var err error
	switch {
	case strings.TrimSpace(input) != "":
		items, err = hackernews.ReadItemsFromFile(input)
	case threadID != 0:
		items, err = s.hn.GetThreadPosts(s.ctx, threadID, maxPosts)
	default:
		return nil, errors.New("either a thread id or an input file is required")
	}
	if err != nil {
		return nil, err
	}

	posts := items.ToPosts(threadID)
	if maxPosts > 0 && len(posts) > maxPosts {
		posts = posts[:maxPosts]
	}
	return posts, nil
}
