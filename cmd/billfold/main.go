package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/billfold/billfold/pkg/aggregate"
	"github.com/billfold/billfold/pkg/categorize"
	"github.com/billfold/billfold/pkg/config"
	"github.com/billfold/billfold/pkg/db"
	"github.com/billfold/billfold/pkg/dispatch"
	"github.com/billfold/billfold/pkg/parser"
	"github.com/billfold/billfold/pkg/quarantine"
	"github.com/billfold/billfold/pkg/storage"
	"github.com/billfold/billfold/pkg/storage/memory"
	"github.com/billfold/billfold/pkg/storage/postgres"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billfold",
	Short: "Extract, categorize and report on bank and card statements",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "billfold",
		})
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logger.SetLevel(log.DebugLevel)
		}

		var err error
		cfg, err = config.Build(cfgFile, cmd.Flags())
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [flags] <file-or-dir>...",
	Short: "Parse statement documents and store normalized transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		d, err := buildDispatcher(store)
		if err != nil {
			return err
		}

		hint, _ := cmd.Flags().GetString("hint")
		if subject, _ := cmd.Flags().GetString("subject"); subject != "" && hint == "" {
			hints, err := dispatch.LoadSubjectHints(cfg.HintsPath)
			if err != nil {
				return err
			}
			hint = hints.Match(subject)
			logger.Debug("resolved hint from subject", "subject", subject, "hint", hint)
		}
		bank, _ := cmd.Flags().GetString("bank")
		emailID, _ := cmd.Flags().GetString("email-id")
		if bank == "" {
			bank = hint
		}

		docs, err := collectDocuments(args, hint, bank, emailID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no statement files found under %s", strings.Join(args, ", "))
		}

		outcomes := d.DispatchBatch(ctx, docs, cfg.Workers)

		var failures int
		for _, out := range outcomes {
			if out.Err != nil {
				failures++
				logger.Error("dispatch aborted", "file", out.Doc.Path, "error", out.Err)
				continue
			}
			res := out.Result
			if res.Duplicate {
				fmt.Printf("%s: already imported (%s)\n", filepath.Base(out.Doc.Path), res.Import.ID)
				continue
			}
			fmt.Printf("%s: %s, %d transactions, %d quarantined",
				filepath.Base(out.Doc.Path), res.Import.Status, len(res.Transactions), len(res.Quarantined))
			if res.Import.Notes != "" {
				fmt.Printf(" (%s)", res.Import.Notes)
			}
			fmt.Println()
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d documents could not be stored", failures, len(docs))
		}
		return nil
	},
}

var correctCmd = &cobra.Command{
	Use:   "correct <merchant> <category> [subcategory]",
	Short: "Pin a merchant to a category, overriding the rule engine",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(_ *cobra.Command, args []string) error {
		engine, err := buildEngine(nil)
		if err != nil {
			return err
		}
		sub := ""
		if len(args) == 3 {
			sub = args[2]
		}
		if err := engine.Correct(args[0], args[1], sub); err != nil {
			return err
		}
		logger.Info("merchant pinned", "merchant", args[0], "category", args[1], "subCategory", sub)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [flags]",
	Short: "Summarize stored transactions by month, quarter, card or category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		group, _ := cmd.Flags().GetString("group")
		groupBy, err := aggregate.ParseDimensions(group)
		if err != nil {
			return err
		}
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		txs, err := store.ListTransactions(ctx, from, to)
		if err != nil {
			return err
		}
		table, err := aggregate.Aggregate(txs, groupBy, from, to)
		if err != nil {
			return err
		}

		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			pp.Println(table)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return table.WriteCSV(os.Stdout)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := table.WriteCSV(f); err != nil {
			return err
		}
		logger.Info("report written", "path", out, "rows", len(table.Rows))
		return nil
	},
}

// openStore picks postgres when a DSN is configured, otherwise an
// in-process store that forgets everything on exit.
func openStore(ctx context.Context) (storage.Store, func(), error) {
	if cfg.DatabaseDSN == "" {
		logger.Warn("no database_dsn configured, using the in-memory store")
		return memory.New(), func() {}, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(database)
	if err := store.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, database.Close, nil
}

func buildEngine(review categorize.ReviewSink) (*categorize.Engine, error) {
	merchants, err := categorize.LoadMerchantMap(cfg.MerchantsPath)
	if err != nil {
		return nil, err
	}
	return categorize.New(merchants, cfg.RulesPath, review, logger)
}

func buildDispatcher(store storage.Store) (*dispatch.Dispatcher, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, err
	}

	engine, err := buildEngine(quarantine.NewReviewLog(filepath.Join(cfg.LogDir, "category_review.csv")))
	if err != nil {
		return nil, err
	}

	passwords, err := parser.LoadPasswords(cfg.PasswordsPath)
	if err != nil {
		return nil, err
	}
	registry := parser.NewRegistry(logger, passwords)

	return dispatch.New(
		store,
		registry,
		engine,
		quarantine.NewRowLog(filepath.Join(cfg.LogDir, "quarantine.csv")),
		quarantine.NewRewardWarnLog(filepath.Join(cfg.LogDir, "reward_warnings.csv")),
		cfg.ToleranceDecimal(),
		logger,
	), nil
}

// collectDocuments expands the positional arguments into one Document per
// statement file. Directories are walked recursively.
func collectDocuments(args []string, hint, bank, emailID string) ([]dispatch.Document, error) {
	var docs []dispatch.Document
	add := func(path string) {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".xls", ".txt":
			docs = append(docs, dispatch.Document{Path: path, Hint: hint, Bank: bank, EmailID: emailID})
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", name, value)
	}
	return &t, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")

	ingestCmd.Flags().String("hint", "", "Format hint (hdfc, icici, au, sbi, axis_xls)")
	ingestCmd.Flags().String("subject", "", "Source email subject, used to derive the hint")
	ingestCmd.Flags().String("bank", "", "Source bank label (defaults to the hint)")
	ingestCmd.Flags().String("email-id", "", "Identifier of the email the documents came from")

	reportCmd.Flags().String("group", string(aggregate.ByMonth), "Comma-separated group dimensions: month, quarter, card, category")
	reportCmd.Flags().String("from", "", "Start date, inclusive (YYYY-MM-DD)")
	reportCmd.Flags().String("to", "", "End date, exclusive (YYYY-MM-DD)")
	reportCmd.Flags().String("out", "", "Write CSV to this path instead of stdout")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
