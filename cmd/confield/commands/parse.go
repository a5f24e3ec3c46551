package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/confield/confield/internal/contract"
	"github.com/confield/confield/internal/extract"
	"github.com/confield/confield/internal/logger"
	"github.com/confield/confield/internal/output"
	"github.com/confield/confield/internal/store"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Extract all canonical fields from confirmation documents",
	Long: `Parse runs one whole-record extraction call per document, covering all
seven canonical fields at once. Used for first-pass bulk ingestion of
freshly converted documents rather than incremental backfill.

Examples:
  # Print the extracted record as JSON
  confield parse External_Data/dummy_1.txt

  # Write one result JSON per input file
  confield parse External_Data/dummy_*.txt --out-dir result

  # Insert each record as a new counterparty row
  confield parse External_Data/dummy_*.txt --ingest --db DB/confirmation.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	flags := parseCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.String("out-dir", "", "write one <name>.json result per input file to this directory")
	flags.Bool("ingest", false, "insert each record as a new row of the counterparty table")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out-dir")
	ingest, _ := cmd.Flags().GetBool("ingest")

	provider, err := newProvider()
	if err != nil {
		logError("cannot create provider: %v", err)
		return err
	}
	logInfo("Using provider %s", provider.Name())

	client := extract.NewClient(provider)

	var st *store.Store
	if ingest {
		st, err = store.Open(viper.GetString("db"))
		if err != nil {
			logError("cannot open store: %v", err)
			return err
		}
		defer st.Close()
		if err := st.InitSchema(ctx); err != nil {
			logError("cannot prepare store: %v", err)
			return err
		}
	}

	dest := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	writer, err := output.NewWriter(dest, output.Format(format))
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	var failed int
	for _, path := range args {
		record, err := parseOne(ctx, client, path)
		if err != nil {
			logger.Error("document parse failed", "file", path, "error", err)
			failed++
			continue
		}
		if record == nil {
			logInfo("Skipped %s: empty document", path)
			continue
		}

		if err := writer.Write(record); err != nil {
			return err
		}
		if outDir != "" {
			if err := writeResultFile(outDir, path, record); err != nil {
				return err
			}
		}
		if ingest {
			id, err := st.InsertRecord(ctx, filepath.Base(path), record)
			if err != nil {
				logError("cannot ingest %s: %v", path, err)
				return err
			}
			logInfo("Ingested %s as row %d", filepath.Base(path), id)
		}
	}

	if err := writer.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(args))
	}
	return nil
}

// parseOne extracts a whole record from one text file. An empty or
// blank-only document yields nil without a model call.
func parseOne(ctx context.Context, client *extract.Client, path string) (*extract.TradeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read document: %w", err)
	}
	text := string(data)
	if !contract.HasValue(text) {
		return nil, nil
	}
	return client.ExtractRecord(ctx, text)
}

// writeResultFile writes <out-dir>/<input-stem>.json for one record.
func writeResultFile(dir, inputPath string, record *extract.TradeRecord) error {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	path := filepath.Join(dir, stem+".json")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create result file: %w", err)
	}
	defer f.Close()

	w := output.NewJSONWriter(f, true)
	if err := w.Write(record); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logInfo("Processed: %s -> %s", filepath.Base(inputPath), path)
	return nil
}
