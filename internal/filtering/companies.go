package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/record"
)

type companiesFilter struct {
	companies []string
}

// NewCompanies creates a filter that removes jobs posted by companies configured in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.Companies {
		if c = strings.TrimSpace(c); c != "" {
			f.companies = append(f.companies, c)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, b *record.Batch) (*record.Batch, Step, error) {
	initial := b.Len()
	if len(f.companies) == 0 {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	var ids []int
	for _, job := range b.Jobs {
		company, ok := job.Company.Get()
		if !ok {
			continue
		}
		for _, excluded := range f.companies {
			if strings.EqualFold(company, excluded) {
				ids = append(ids, job.PostID)
				break
			}
		}
	}

	removed := b.Exclude(ids)
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Ints("excluded_posts", removed),
			zap.Int("records_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
