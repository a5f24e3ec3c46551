package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/confield/confield/internal/loader"
	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load <file.csv>",
	Short: "Bulk-load a back-office CSV export into the row store",
	Long: `Load imports a CSV export into the confirmation table's source columns.
Recognized columns are matched by header name (with known aliases such as
create_date -> creation_date); unrecognized columns are ignored. Date
columns are normalized to YYYY-MM-DD.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(viper.GetString("db"))
	if err != nil {
		logError("cannot open store: %v", err)
		return err
	}
	defer st.Close()

	if err := st.InitSchema(ctx); err != nil {
		logError("cannot prepare store: %v", err)
		return err
	}

	result, err := loader.LoadCSV(ctx, st, args[0])
	if err != nil {
		logError("import failed: %v", err)
		return err
	}

	logInfo("Inserted %d row(s) into %s.", result.Inserted, store.Table)
	return nil
}
