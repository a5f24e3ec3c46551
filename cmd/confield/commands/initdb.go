package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the row store schema",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := viper.GetString("db")
	st, err := store.Open(path)
	if err != nil {
		logError("cannot open store: %v", err)
		return err
	}
	defer st.Close()

	if err := st.InitSchema(ctx); err != nil {
		logError("cannot create schema: %v", err)
		return err
	}

	logInfo("Store ready: %s", path)
	return nil
}
