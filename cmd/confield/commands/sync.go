package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/confield/confield/internal/contract"
	"github.com/confield/confield/internal/document"
	"github.com/confield/confield/internal/extract"
	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/store"
	rowsync "github.com/confield/confield/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one incremental enrichment pass over the row store",
	Long: `Sync iterates over all rows of the store, extracts every field whose
result column is still empty, and commits the whole pass as a single
transaction. Re-running over the same data is a no-op for already-resolved
fields, so the command is safe to schedule repeatedly.

Rows without a usable source text file are skipped and reported; a failed
extraction leaves the field unresolved for the next pass.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	flags := syncCmd.Flags()
	flags.String("text-dir", "External_Data", "directory of <row-id>.txt source text files")
	flags.Int("max-tokens", 1024, "max response tokens per extraction call")

	_ = viper.BindPFlag("text_dir", flags.Lookup("text-dir"))
	_ = viper.BindPFlag("max_tokens", flags.Lookup("max-tokens"))
}

func runSync(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Contract misconfiguration must surface before any row processing.
	registry, err := contract.DefaultRegistry()
	if err != nil {
		logError("invalid field contracts: %v", err)
		return err
	}

	st, err := store.Open(viper.GetString("db"))
	if err != nil {
		logError("cannot open store: %v", err)
		return err
	}
	defer st.Close()

	provider, err := newProvider()
	if err != nil {
		logError("cannot create provider: %v", err)
		return err
	}
	logInfo("Using provider %s", provider.Name())

	client := extract.NewClient(provider,
		extract.WithMaxTokens(viper.GetInt("max_tokens")))
	texts := document.NewDirProvider(viper.GetString("text_dir"))

	syncer := rowsync.New(registry, texts, client, st)
	result, err := syncer.Run(ctx)
	if err != nil {
		logError("pass failed: %v", err)
		return err
	}

	for _, skipped := range result.Skipped {
		logInfo("Row %d skipped: %s", skipped.ID, skipped.Reason)
	}

	if result.Updated == 0 {
		logInfo("Completed. No fields needed updating.")
	} else {
		logInfo("Completed. Updated %d field value(s).", result.Updated)
	}
	return nil
}
