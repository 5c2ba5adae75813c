package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/record"
)

type validityFilter struct{}

// NewValidity creates a filter that drops jobs without company and position,
// and candidates without email, resume and location.
func NewValidity() Filter {
	return &validityFilter{}
}

func (f *validityFilter) Name() string { return "validity" }

// Disable is a no-op, invalid records never reach scoring.
func (f *validityFilter) Disable(string) {}

func (f *validityFilter) IsEnabled() bool { return true }

func (f *validityFilter) Validate(*Config) error { return nil }

func (f *validityFilter) Apply(_ context.Context, deps Deps, b *record.Batch) (*record.Batch, Step, error) {
	initial := b.Len()
	dropped := b.RemoveInvalid()
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("dropping posts without usable fields",
			zap.Ints("dropped_posts", dropped),
			zap.Int("records_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(dropped), Left: b.Len()}, nil
}

func (f *validityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
