package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/matching"
	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/secrets"
	"github.com/spigell/hn-matcher/internal/semantic"
	"github.com/spigell/hn-matcher/internal/semantic/gemini"
)

const (
	PromptShowMatches         = "Show matches"
	PromptReportByCompany     = "Report by company"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append matched jobs to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Procced?",
	Items: []string{PromptShowMatches, PromptReportByCompany, PromptMatchesToFile, PromptAppendToExcludeFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match candidates against job offers and rank the results",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Int("hiring-thread", 0, "\"Who is hiring\" thread item id")
	matchCmd.Flags().Int("seeking-thread", 0, "\"Who wants to be hired\" thread item id")
	matchCmd.Flags().String("jobs-file", "", "JSON file with job items to read instead of the live API")
	matchCmd.Flags().String("candidates-file", "", "JSON file with candidate items to read instead of the live API")
	matchCmd.Flags().IntP("min-score", "m", 0, "minimum score a match needs to be reported")
	matchCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation, print matches and exit")

	viper.BindPFlag("threads.hiring", matchCmd.Flags().Lookup("hiring-thread"))
	viper.BindPFlag("threads.seeking", matchCmd.Flags().Lookup("seeking-thread"))
	viper.BindPFlag("inputs.jobs", matchCmd.Flags().Lookup("jobs-file"))
	viper.BindPFlag("inputs.candidates", matchCmd.Flags().Lookup("candidates-file"))
	viper.BindPFlag("min-score", matchCmd.Flags().Lookup("min-score"))
}

func runMatch(cmd *cobra.Command) {
	s := newSession(cmd.Context())
	config := s.config

	jobs, err := s.load(record.KindJob, config.Threads.Hiring, config.Inputs.Jobs)
	if err != nil {
		s.logger.Fatal("getting jobs", zap.Error(err))
	}
	candidates, err := s.load(record.KindCandidate, config.Threads.Seeking, config.Inputs.Candidates)
	if err != nil {
		s.logger.Fatal("getting candidates", zap.Error(err))
	}

	if jobs.Len() == 0 || candidates.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no jobs or candidates left after filters"),
			zap.Int("jobs", jobs.Len()),
			zap.Int("candidates", candidates.Len()),
		)
		return
	}

	var opts []matching.FindOption
	if similarity := s.similarity(&record.Batch{Candidates: candidates.Candidates, Jobs: jobs.Jobs}); similarity != nil {
		opts = append(opts, matching.WithSimilarity(similarity))
	}

	scorer := matching.NewScorer(s.vocab)
	ranked := scorer.FindMatches(candidates.Candidates, jobs.Jobs, config.MinScore, opts...)

	if len(ranked) == 0 {
		s.logger.Info("exiting", zap.String("reason", "no matches above minimum score"), zap.Int("min_score", config.MinScore))
		return
	}

	out := cmd.OutOrStdout()
	if autoApprove, _ := cmd.Flags().GetBool("auto-aprove"); autoApprove {
		if err := handleAction(PromptShowMatches, s, out, &ranked); err != nil {
			s.logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			s.logger.Fatal("exiting", zap.Error(err))
		}

		s.logger.Info("current list of matches", zap.Int("candidates", len(ranked)))

		if err := handleAction(action, s, out, &ranked); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			s.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, s *session, out io.Writer, ranked *[]matching.CandidateMatches) error {
	switch action {
	case PromptShowMatches:
		printMatches(out, *ranked)
		return nil
	case PromptReportByCompany:
		matched := matchedJobs(*ranked)
		pretty, _ := json.MarshalIndent(matched.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("jobs count", matched.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := record.DumpToTmpFile("matches_*.json", *ranked)
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		s.logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(s, ranked)
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(s *session, ranked *[]matching.CandidateMatches) error {
	excludeFile := strings.TrimSpace(s.config.ExcludeFile)
	if excludeFile == "" {
		s.logger.Warn("exclude file is not configured", zap.String("hint", "set exclude-file or HN_MATCHER_EXCLUDE_FILE"))
		return nil
	}

	excluded, err := record.GetExcludedPostsFromFile(excludeFile)
	if err != nil {
		return err
	}

	matched := matchedJobs(*ranked)
	excluded.Append(matched.ToExcluded())

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("jobs", matched.Len()))

	*ranked = withoutJobs(*ranked, excluded.PostIDs())
	if len(*ranked) == 0 {
		s.logger.Info("exiting", zap.String("reason", "no matches left"))
		return errExit
	}
	return nil
}

// similarity builds the semantic index when ai is enabled. It returns nil
// when semantic scoring is off or cannot be set up.
func (s *session) similarity(b *record.Batch) matching.SimilarityFunc {
	cfg := s.config.AI
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	embedder, err := newEmbedder(s, cfg)
	if err != nil {
		s.logger.Warn("skipping semantic similarity", zap.Error(err))
		return nil
	}

	idx := semantic.NewIndex(embedder, s.config.Workers, s.logger)
	if err := idx.Build(s.ctx, b); err != nil {
		s.logger.Fatal("building semantic index", zap.Error(err))
	}

	return idx.Similarity
}

func newEmbedder(s *session, cfg *AIConfig) (*gemini.Embedder, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gc := cfg.Gemini
	if gc == nil {
		gc = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gc.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewEmbedder(s.ctx, apiKey, gemini.Options{
		Model:         gc.Model,
		TaskType:      gc.TaskType,
		MaxRetries:    gc.MaxRetries,
		MaxRetryDelay: gc.MaxRetryDelay,
		MaxLogLength:  gc.MaxLogLength,
	}, s.logger)
}

func printMatches(out io.Writer, ranked []matching.CandidateMatches) {
	for _, cm := range ranked {
		c := cm.Candidate
		fmt.Fprintf(out, "%s\n  %s\n", c.Link, c.Summary)
		for _, m := range cm.Matches {
			fmt.Fprintf(out, "  %3d  %s  %s\n", m.Score, m.Job.Title(), m.Job.Link)
			if techs := m.MatchingTechnologies(); len(techs) > 0 {
				fmt.Fprintf(out, "       matching: %s\n", strings.Join(techs, ", "))
			}
		}
		fmt.Fprintln(out)
	}
}

// matchedJobs collects every job that appears in the matches, once.
func matchedJobs(ranked []matching.CandidateMatches) *record.Batch {
	seen := make(map[*record.Job]struct{})
	b := &record.Batch{}
	for _, cm := range ranked {
		for _, m := range cm.Matches {
			if _, ok := seen[m.Job]; ok {
				continue
			}
			seen[m.Job] = struct{}{}
			b.Add(m.Job)
		}
	}
	return b
}

// withoutJobs drops matches of the given job posts and candidates left without matches.
// Candidates are re-ranked by their best remaining score.
func withoutJobs(ranked []matching.CandidateMatches, postIDs []int) []matching.CandidateMatches {
	drop := make(map[int]struct{}, len(postIDs))
	for _, id := range postIDs {
		drop[id] = struct{}{}
	}

	var kept []matching.CandidateMatches
	for _, cm := range ranked {
		var matches []matching.Match
		for _, m := range cm.Matches {
			if _, ok := drop[m.Job.PostID]; !ok {
				matches = append(matches, m)
			}
		}
		if len(matches) > 0 {
			kept = append(kept, matching.CandidateMatches{Candidate: cm.Candidate, Matches: matches})
		}
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Best() > kept[b].Best()
	})
	return kept
}
