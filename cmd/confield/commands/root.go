// Package commands implements the CLI commands for confield.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/confield/confield/internal/llm"
)

var rootCmd = &cobra.Command{
	Use:   "confield",
	Short: "LLM-backed field enrichment for trade confirmations",
	Long: `Confield enriches trade confirmation records by extracting typed
fields (currency, settlement amount, direction, ISIN, settlement date,
settlement instructions) from unstructured confirmation text, using
schema-constrained extraction calls.

Examples:
  # Run one incremental enrichment pass over the store
  confield sync --db DB/confirmation.db --text-dir External_Data

  # Extract all fields from one document in a single call
  confield parse confirmation.txt

  # Bulk-load a back-office CSV export into the store
  confield load WSS_Data.csv --db DB/confirmation.db

  # Use local Ollama
  confield sync -p ollama -m llama3.2`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.confield.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().String("db", "DB/confirmation.db", "path to the SQLite row store")

	// LLM settings
	rootCmd.PersistentFlags().StringP("provider", "p", "", "LLM provider: anthropic, openai, ollama (auto-detects from env vars)")
	rootCmd.PersistentFlags().StringP("model", "m", "", "model name (provider-specific)")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "API key (or use env var)")
	rootCmd.PersistentFlags().String("base-url", "", "custom API base URL")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "inference request timeout")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".confield")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("CONFIELD")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newProvider builds the inference provider from flags, config file and
// environment, auto-detecting when no provider is named.
func newProvider() (llm.Provider, error) {
	name := viper.GetString("provider")
	apiKey := viper.GetString("api_key")

	if name == "" {
		detected, detectedKey := llm.DetectProvider()
		name = detected
		if apiKey == "" {
			apiKey = detectedKey
		}
	}

	model := viper.GetString("model")
	if model == "" {
		model = llm.GetDefaultModel(name)
	}

	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = apiKey
	cfg.BaseURL = viper.GetString("base_url")
	cfg.Model = model
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}

	return llm.NewProvider(name, cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
