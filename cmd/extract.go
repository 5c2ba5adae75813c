package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hn-matcher/internal/record"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract job offers or candidates from a thread and print them as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		runExtract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("kind", "k", string(record.KindJob), "record kind to extract: job or candidate")
	extractCmd.Flags().IntP("thread", "t", 0, "thread item id. Defaults to threads.hiring or threads.seeking from the config")
	extractCmd.Flags().StringP("input", "i", "", "JSON file with items to read instead of the live API")
}

func runExtract(cmd *cobra.Command) {
	s := newSession(cmd.Context())

	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := record.ParseKind(kindFlag)
	if err != nil {
		s.logger.Fatal("parsing kind", zap.Error(err))
	}

	threadID, _ := cmd.Flags().GetInt("thread")
	input, _ := cmd.Flags().GetString("input")
	if threadID == 0 {
		threadID = s.config.threadFor(kind)
	}
	if input == "" {
		input = s.config.inputFor(kind)
	}

	batch, err := s.load(kind, threadID, input)
	if err != nil {
		s.logger.Fatal("extracting records", zap.Error(err))
	}

	s.logger.Info("records extracted", zap.String("kind", string(kind)), zap.Int("count", batch.Len()))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		s.logger.Fatal("writing records", zap.Error(err))
	}
}

func (c *Config) threadFor(kind record.Kind) int {
	if kind == record.KindCandidate {
		return c.Threads.Seeking
	}
	return c.Threads.Hiring
}

func (c *Config) inputFor(kind record.Kind) string {
	if kind == record.KindCandidate {
		return c.Inputs.Candidates
	}
	return c.Inputs.Jobs
}
