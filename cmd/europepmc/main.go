package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tmc/europepmc"
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "europepmc",
		Short:        "Incremental Europe PMC full-text harvester",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("EUROPEPMC_CONFIG"), "config file (YAML)")
	root.PersistentFlags().StringVar(&g.dbPath, "db", os.Getenv("EUROPEPMC_DB"), "ledger database (overrides sql.db_file)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newHarvestCmd(g),
		newIDsCmd(g),
		newMethodsCmd(g),
		newGetCmd(g),
		newStatsCmd(g),
		newServeCmd(g),
	)
	return root
}

func (g *globalFlags) config() (*europepmc.Config, error) {
	var cfg *europepmc.Config
	if g.configPath == "" {
		cfg = europepmc.DefaultConfig()
	} else {
		var err error
		if cfg, err = europepmc.LoadConfig(g.configPath); err != nil {
			return nil, err
		}
	}
	if g.dbPath != "" {
		cfg.SQL.DBFile = g.dbPath
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, cfg.Validate()
}

func (g *globalFlags) open(ctx context.Context) (*europepmc.Config, *europepmc.Ledger, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := europepmc.OpenLedger(cfg.SQL.DBFile, cfg.SQL.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := ledger.Initialize(ctx, false); err != nil {
		ledger.Close()
		return nil, nil, err
	}
	return cfg, ledger, nil
}

func newHarvestCmd(g *globalFlags) *cobra.Command {
	var (
		rerun    bool
		refresh  bool
		workers  int
		limit    int
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Capture every new full-text article from the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := g.config()
			if err != nil {
				return err
			}
			ledger, err := europepmc.OpenLedger(cfg.SQL.DBFile, cfg.SQL.Driver)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer ledger.Close()

			opts := &europepmc.HarvestOptions{
				Reset:          rerun,
				RefreshArchive: refresh || rerun,
				Workers:        workers,
				Limit:          limit,
			}
			if progress {
				opts.Progress = func(processed int, id string) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%d %s", processed, id)
				}
			}

			logger := europepmc.NewLogger(cfg.Logging.Level)
			h := europepmc.NewHarvester(cfg, europepmc.NewClient(cfg), ledger, logger)
			stats, err := h.Run(ctx, opts)
			if progress {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return fmt.Errorf("harvest: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:          %s\n", stats.RunID)
			fmt.Fprintf(out, "Candidates:   %d\n", stats.Candidates)
			fmt.Fprintf(out, "Skipped:      %d\n", stats.Skipped)
			fmt.Fprintf(out, "Captured:     %d\n", stats.Inserted)
			fmt.Fprintf(out, "Unavailable:  %d\n", stats.Unavailable)
			fmt.Fprintf(out, "Malformed:    %d\n", stats.Malformed)
			fmt.Fprintf(out, "Failed:       %d\n", stats.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rerun, "rerun", false, "drop the ledger and refetch the archive")
	cmd.Flags().BoolVar(&refresh, "refresh-archive", false, "refetch the candidate list instead of using the cached file")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent article fetches (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after fetching this many new articles")
	cmd.Flags().BoolVar(&progress, "progress", false, "print a running candidate counter")
	return cmd
}

func newIDsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "List captured PMC identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ledger, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ledger.Close()

			ids, err := ledger.KnownIDs(cmd.Context())
			if err != nil {
				return err
			}
			return europepmc.WriteIDs(cmd.OutOrStdout(), ids)
		},
	}
}

func newMethodsCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "Export the Methods section of every captured article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ledger, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ledger.Close()

			sections, err := ledger.MethodSections(cmd.Context())
			if err != nil {
				return err
			}
			return europepmc.WriteMethods(cmd.OutOrStdout(), format, sections)
		},
	}
	cmd.Flags().StringVar(&format, "format", europepmc.FormatJSONL, "output format: jsonl or tsv")
	return cmd
}

func newGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <pmcid>",
		Short: "Show a captured article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ledger, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ledger.Close()

			rec, err := ledger.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PMCID:      %s\n", rec.ID)
			fmt.Fprintf(out, "URL:        %s\n", europepmc.ArticleURL(rec.ID))
			fmt.Fprintf(out, "Journal:    %s\n", rec.Metadata.JournalTitle)
			fmt.Fprintf(out, "Publisher:  %s\n", rec.Metadata.PublisherName)
			fmt.Fprintf(out, "ISSN ppub:  %s\n", rec.Metadata.ISSNPrint)
			fmt.Fprintf(out, "ISSN epub:  %s\n", rec.Metadata.ISSNElectronic)
			fmt.Fprintf(out, "Supplement: %v\n", rec.HasSupplementary())
			for _, s := range europepmc.AllSections {
				fmt.Fprintf(out, "\n%s:\n%s\n", s, rec.Section(s))
			}
			return nil
		},
	}
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ledger, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ledger.Close()

			stats, err := ledger.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ledger:        %s\n", ledger.Path())
			fmt.Fprintf(out, "Articles:      %d\n", stats.Articles)
			for _, s := range europepmc.AllSections {
				fmt.Fprintf(out, "%-14s %d\n", string(s)+":", stats.Sections[s])
			}
			fmt.Fprintf(out, "Supplementary: %d\n", stats.WithSupplementary)
			return nil
		},
	}
}
