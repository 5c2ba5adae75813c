package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hn-matcher"
)

type Config struct {
	Threads     *ThreadsConfig    `mapstructure:"threads"`
	Inputs      *InputsConfig     `mapstructure:"inputs"`
	MaxPosts    int               `mapstructure:"max-posts"`
	MinScore    int               `mapstructure:"min-score"`
	Workers     int               `mapstructure:"workers"`
	ExcludeFile string            `mapstructure:"exclude-file"`
	UserAgent   string            `mapstructure:"user-agent"`
	Exclude     *ExcludeConfig    `mapstructure:"exclude"`
	Vocabulary  *VocabularyConfig `mapstructure:"vocabulary"`
	AI          *AIConfig         `mapstructure:"ai"`
}

// ThreadsConfig holds Hacker News item ids of the monthly threads.
type ThreadsConfig struct {
	Hiring  int `mapstructure:"hiring"`
	Seeking int `mapstructure:"seeking"`
}

// InputsConfig points to JSON item files used instead of the live API.
type InputsConfig struct {
	Jobs       string `mapstructure:"jobs"`
	Candidates string `mapstructure:"candidates"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

type VocabularyConfig struct {
	Extra   []string          `mapstructure:"extra"`
	Aliases map[string]string `mapstructure:"aliases"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile    string        `mapstructure:"api-key-file"`
	Model         string        `mapstructure:"model"`
	TaskType      string        `mapstructure:"task-type"`
	MaxRetries    int           `mapstructure:"max-retries"`
	MaxRetryDelay time.Duration `mapstructure:"max-retry-delay"`
	MaxLogLength  int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hn-matcher extracts job offers and candidates from Hacker News hiring threads and matches them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("exclude-file", "HN_MATCHER_EXCLUDE_FILE"); err != nil {
		log.Fatalf("binding HN_MATCHER_EXCLUDE_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hn-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().IntP("max-posts", "n", 0, "maximum number of posts to read per thread or file. 0 means all")
	rootCmd.PersistentFlags().Int("workers", 4, "number of posts processed concurrently")
	rootCmd.PersistentFlags().StringP("exclude-file", "e", "", "special file with posts to exclude. Default is unset.")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("max-posts", rootCmd.PersistentFlags().Lookup("max-posts"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("exclude-file", rootCmd.PersistentFlags().Lookup("exclude-file"))
}

func initConfig() {
	// The version command works without any config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Flags alone are enough when the default config file is absent.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Threads == nil {
		config.Threads = &ThreadsConfig{}
	}
	if config.Inputs == nil {
		config.Inputs = &InputsConfig{}
	}
	if config.Exclude == nil {
		config.Exclude = &ExcludeConfig{}
	}
	if config.Vocabulary == nil {
		config.Vocabulary = &VocabularyConfig{}
	}

	return config, nil
}
