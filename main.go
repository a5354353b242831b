package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/config"
	"github.com/turkosaurus/cion/internal/types"
	"github.com/turkosaurus/cion/internal/ui"
	"github.com/turkosaurus/cion/internal/watch"
)

// flags override every other configuration source when set.
type flags struct {
	config         string
	apiURL         string
	owner          string
	repo           string
	pollInterval   string
	detailInterval string
	logFile        string
	logLevel       string
}

func main() {
	var f flags
	rootCmd := &cobra.Command{
		Use:          "cion [owner[/repo]]",
		Short:        "Terminal dashboard for Cion build jobs",
		Version:      ui.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, args, f)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default ~/.config/cion/config.yml)")
	pf.StringVar(&f.apiURL, "api-url", "", "Cion API base URL")
	pf.StringVar(&f.detailInterval, "detail-poll-interval", "", "job detail refresh interval, e.g. 5s")
	pf.StringVar(&f.logFile, "log-file", "", "log file path")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.Flags().StringVar(&f.owner, "owner", "", "owner whose repositories are shown")
	rootCmd.Flags().StringVar(&f.repo, "repo", "", "repository selected at startup")
	rootCmd.Flags().StringVar(&f.pollInterval, "poll-interval", "", "repository and job list refresh interval, e.g. 5s")

	rootCmd.AddCommand(&cobra.Command{
		Use:          "watch owner/repo/number",
		Short:        "Follow one job until it ends and print its log",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], f)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers flags over file and environment, then finalizes.
// setTarget runs before validation so callers can fill in the owner.
func loadConfig(cmd *cobra.Command, f flags, setTarget func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, name, value string) {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			*dst = value
		}
	}
	set(&cfg.APIURL, "api-url", f.apiURL)
	set(&cfg.Owner, "owner", f.owner)
	set(&cfg.Repo, "repo", f.repo)
	set(&cfg.RawPollInterval, "poll-interval", f.pollInterval)
	set(&cfg.RawDetailInterval, "detail-poll-interval", f.detailInterval)
	set(&cfg.LogFile, "log-file", f.logFile)
	set(&cfg.LogLevel, "log-level", f.logLevel)

	if setTarget != nil {
		setTarget(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.HTTPClient {
	return api.NewClient(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout))
}

func runDashboard(cmd *cobra.Command, args []string, f flags) error {
	cfg, err := loadConfig(cmd, f, func(cfg *config.Config) {
		switch {
		case len(args) == 1:
			cfg.SetTarget(args[0])
		case cfg.Owner == "":
			// fall back to the checkout we are standing in
			if target := config.DetectTarget(); target != "" {
				cfg.SetTarget(target)
			}
		}
	})
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogFile, cfg.LogLevel, false)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)
	slog.Info("starting dashboard",
		"version", ui.Version,
		"api_url", cfg.APIURL,
		"owner", cfg.Owner,
		"repo", cfg.Repo,
	)

	p := tea.NewProgram(ui.NewApp(cmd.Context(), cfg, newClient(cfg)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func runWatch(cmd *cobra.Command, ref string, f flags) error {
	key, err := api.ParseJobRef(ref)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, f, func(cfg *config.Config) {
		cfg.Owner, cfg.Repo = key.Owner, key.Repo
	})
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogFile, cfg.LogLevel, true)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := newClient(cfg)
	w := watch.New(client, key, cfg.DetailInterval)
	job, err := w.Run(ctx)
	if err != nil {
		return err
	}

	log, err := client.GetJobLog(ctx, key.Owner, key.Repo, key.Number)
	if err != nil {
		return fmt.Errorf("fetch log: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), log)

	if job.Status() != types.JobStatusSuccess {
		return fmt.Errorf("job %s failed", key)
	}
	return nil
}
