package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/record"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes posts listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, b *record.Batch) (*record.Batch, Step, error) {
	initial := b.Len()
	if f.path == "" {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	excluded, err := record.GetExcludedPostsFromFile(f.path)
	if err != nil {
		return b, Step{}, fmt.Errorf("getting excluded posts from file: %w", err)
	}

	removed := b.Exclude(excluded.PostIDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding posts based on exclude file",
			zap.String("path", f.path),
			zap.Ints("excluded_posts", removed),
			zap.Int("records_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
