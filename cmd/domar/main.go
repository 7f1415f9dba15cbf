package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/domar/internal/config"
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/ingest"
	"github.com/TobiSchelling/domar/internal/lawyers"
	"github.com/TobiSchelling/domar/internal/pipeline"
	"github.com/TobiSchelling/domar/internal/report"
	"github.com/TobiSchelling/domar/internal/scrape"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	envFile    string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "domar",
	Short:   "Icelandic court verdict appeal chains",
	Long:    "domar indexes Icelandic court verdicts, links lower court verdicts to the verdicts superseding them on appeal, and tallies lawyer outcomes over final verdicts.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			setLogFlags(verbose)
			return nil
		}

		if err := config.LoadEnv(envFile); err != nil {
			return err
		}

		path, err := config.ResolveConfigPath(configPath)
		switch {
		case err == nil:
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		case configPath == "":
			cfg = config.Default()
		default:
			return err
		}
		cfg.ApplyEnv()

		setLogFlags(verbose || strings.EqualFold(cfg.Logging.Level, "debug"))
		return nil
	},
}

func setLogFlags(detailed bool) {
	if detailed {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file with DOMAR_* overrides")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(setURLCmd)
	rootCmd.AddCommand(lawyersCmd)
	rootCmd.AddCommand(lawyerCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(chainCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("domar", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/domar/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the data directory and scraper settings.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show verdict, lawyer and chain counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := report.Build(db, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Print(r.Text())
		return nil
	},
}

// --- index command ---

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Import verdict text and HTML files from <dir>/<court>/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := ingest.NewImporter(db).Import(args[0])
		if err != nil {
			return err
		}

		fmt.Println("\nImport complete:")
		fmt.Printf("  Files found: %s\n", humanize.Comma(int64(result.Found)))
		fmt.Printf("  Imported: %s\n", humanize.Comma(int64(result.Imported)))
		fmt.Printf("  Duplicates skipped: %s\n", humanize.Comma(int64(result.Duplicates)))
		fmt.Printf("  Too short: %d\n", result.TooShort)
		fmt.Printf("  Failed: %d\n", result.Failed)

		if len(result.Courts) > 0 {
			fmt.Println("\nImported by court:")
			for _, c := range court.All {
				if n := result.Courts[c]; n > 0 {
					fmt.Printf("  %s: %s\n", c.DisplayName(), humanize.Comma(int64(n)))
				}
			}
		}
		return nil
	},
}

// --- verdict commands ---

var listCmd = &cobra.Command{
	Use:   "list <court>",
	Short: "List the verdicts of one court (heradsdomstolar, landsrettur, haestirettur)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := court.Parse(args[0])
		if err != nil {
			return err
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		verdicts, err := db.ListVerdicts(c)
		if err != nil {
			return err
		}
		for _, v := range verdicts {
			fmt.Printf("  [%d] %s%s\n", v.ID, v.CaseNumber, supersededMark(v))
		}
		fmt.Printf("\n%s: %s verdicts\n", c.DisplayName(), humanize.Comma(int64(len(verdicts))))
		return nil
	},
}

func supersededMark(v database.Verdict) string {
	if v.SupersededBy == nil {
		return ""
	}
	return fmt.Sprintf(" -> [%d]", *v.SupersededBy)
}

var (
	searchCourts []string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search over verdicts (quote the query for a phrase)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var courts []court.Court
		for _, name := range searchCourts {
			c, err := court.Parse(name)
			if err != nil {
				return err
			}
			courts = append(courts, c)
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := db.Search(ctx, strings.Join(args, " "), searchLimit, courts...)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching verdicts.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("  [%d] %s %s%s\n", r.ID, r.Court.DisplayName(), r.CaseNumber, supersededMark(r.Verdict))
			fmt.Printf("      %s\n", strings.Join(strings.Fields(r.Snippet), " "))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchCourts, "court", nil, "Limit to these courts (heradsdomstolar, landsrettur, haestirettur)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", database.DefaultSearchLimit, "Maximum number of results")
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a verdict's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		v, err := db.GetVerdict(id)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("verdict %d not found", id)
		}
		content, err := db.GetContent(id)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s (%s)\n", v.Court.DisplayName(), v.CaseNumber, v.Filename)
		if v.VerdictURL != nil {
			fmt.Println(*v.VerdictURL)
		}
		fmt.Printf("\n%s\n", content)
		return nil
	},
}

var setURLCmd = &cobra.Command{
	Use:   "set-url <id> <url>",
	Short: "Record the court website URL of a verdict",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		v, err := db.GetVerdict(id)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("verdict %d not found", id)
		}
		if err := db.SetVerdictURL(id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Set URL of [%d] %s\n", id, v.CaseNumber)
		return nil
	},
}

// --- lawyers commands ---

var lawyersTop int

var lawyersCmd = &cobra.Command{
	Use:   "lawyers",
	Short: "Extract lawyers and outcomes from every verdict and rebuild lawyer statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		aliases, err := lawyers.LoadAliases(cfg.AliasesPath())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner := lawyers.NewRunner(db, lawyers.NewExtractor(aliases))
		runner.Verbose = verbose
		result, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Println("\nLawyer extraction complete:")
		fmt.Printf("  Verdicts processed: %s\n", humanize.Comma(int64(result.Processed)))
		fmt.Printf("  With lawyers: %s\n", humanize.Comma(int64(result.WithLawyers)))
		fmt.Printf("  Appearances: %s\n", humanize.Comma(int64(result.Appearances)))
		fmt.Printf("  Errors: %d\n", result.Errors)

		top, err := db.GetTopLawyers(lawyersTop)
		if err != nil {
			return err
		}
		if len(top) > 0 {
			fmt.Println("\nMost cases (final verdicts only):")
			for _, l := range top {
				printLawyer(l)
			}
		}
		return nil
	},
}

func init() {
	lawyersCmd.Flags().IntVar(&lawyersTop, "top", 20, "Number of lawyers to list")
}

var lawyerCmd = &cobra.Command{
	Use:   "lawyer <name>",
	Short: "Show one lawyer's record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		name, err := lawyers.CanonicalName(cfg.AliasesPath(), args[0])
		if err != nil {
			return err
		}

		l, err := db.GetLawyer(name)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("lawyer %q not found", name)
		}
		printLawyer(*l)
		return nil
	},
}

func printLawyer(l database.Lawyer) {
	fmt.Printf("  %-36s %5d cases  %5d won  %5d lost\n", l.Name, l.CaseCount, l.Wins, l.Losses)
}

// --- chains commands ---

var (
	skipScrape bool
	dryRun     bool
	reportPath string
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "Link lower court verdicts to the verdicts superseding them",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sc := cfg.Scrape
		pipe := pipeline.New(db, pipeline.Options{
			SkipScrape:    skipScrape || !sc.Enabled,
			DryRun:        dryRun,
			LinkCachePath: cfg.LinkCachePath(),
			MinYear:       sc.MinYear,
			Scrape: scrape.Options{
				BatchSize:          sc.BatchSize,
				BatchDelay:         sc.BatchDelay,
				Timeout:            sc.Timeout,
				UserAgent:          sc.UserAgent,
				InsecureSkipVerify: sc.InsecureSkipVerify,
			},
		})
		result := pipe.Run(ctx)

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if err := result.Failed(); err != nil {
			return err
		}

		r, err := report.Build(db, result)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", r.Text())

		if reportPath != "" {
			if err := r.Write(reportPath); err != nil {
				return err
			}
			fmt.Printf("\nReport written to %s\n", reportPath)
		}
		return nil
	},
}

func init() {
	chainsCmd.Flags().BoolVar(&skipScrape, "skip-scrape", false, "Do not fetch appeal links from the supreme court website")
	chainsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute links without writing them")
	chainsCmd.Flags().StringVar(&reportPath, "report", "", "Write a markdown (.md) or HTML (.html) report")
}

var chainCmd = &cobra.Command{
	Use:   "chain <id>",
	Short: "Show the verdicts superseding a verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		db, err := openExistingDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path, err := db.GetChainPath(id)
		if err != nil {
			return err
		}
		if len(path) == 0 {
			return fmt.Errorf("verdict %d not found", id)
		}

		for i, v := range path {
			fmt.Printf("%s[%d] %s %s\n", strings.Repeat("  ", i), v.ID, v.Court.DisplayName(), v.CaseNumber)
		}
		if len(path) == 1 {
			fmt.Println("Final verdict: not appealed to a higher court in this collection.")
		}
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid verdict ID: %s", s)
	}
	return id, nil
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DatabasePath())
}

func openExistingDB() (*database.DB, error) {
	db, err := database.OpenExisting(cfg.DatabasePath())
	if errors.Is(err, database.ErrNoStore) {
		return nil, fmt.Errorf("%w\nRun 'domar index <dir>' to import verdicts first", err)
	}
	return db, err
}
