package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Afrawles/clickup-alerts/internal/alerts"
	"github.com/Afrawles/clickup-alerts/internal/clickup"
	"github.com/Afrawles/clickup-alerts/internal/config"
	"github.com/Afrawles/clickup-alerts/internal/report"
	"github.com/Afrawles/clickup-alerts/internal/slackbot"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	dryRun        bool
	showProgress  bool
	listsFlag     string
	secretsSource string
	logLevel      string
	xlsxOutput    string
	csvOutput     string
	jsonOutput    string
)

var rootCmd = &cobra.Command{
	Use:          "clickup-alerts",
	Short:        "Post stale ClickUp tasks to Slack",
	Long:         `clickup-alerts finds ClickUp tasks that have been open longer than an age threshold and posts them to a Slack channel.`,
	RunE:         runAlerts,
	SilenceUsage: true,
}

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Verify the ClickUp and Slack credentials",
	RunE:         runCheck,
	SilenceUsage: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml, ./config/config.yaml, /etc/clickup-alerts/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&secretsSource, "secrets-source", "", "Where to read tokens from: aws or env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print messages to stdout instead of posting them")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a spinner while lists are checked")
	rootCmd.Flags().StringVar(&listsFlag, "lists", "", "Comma-separated id=name pairs overriding the configured lists")
	rootCmd.Flags().StringVar(&xlsxOutput, "xlsx", "", "Also export stale tasks as an Excel workbook into this directory")
	rootCmd.Flags().StringVar(&csvOutput, "csv", "", "Also export stale tasks as CSV into this directory")
	rootCmd.Flags().StringVar(&jsonOutput, "json", "", "Also export stale tasks as JSON into this directory")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if secretsSource != "" {
		cfg.Secrets.Source = secretsSource
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if listsFlag != "" {
		lists, err := parseLists(listsFlag)
		if err != nil {
			return nil, err
		}
		cfg.ClickUp.Lists = lists
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runAlerts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = os.Stdout
	if dryRun {
		logOut = os.Stderr
	}
	logger := alerts.NewLogger(cfg.Log, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		logger.Error("failed to load credentials", "source", cfg.Secrets.Source, "error", err)
		return err
	}

	clickupClient := clickup.NewClient(creds.ClickUpToken, cfg.ClickUp.BaseURL)
	slackClient := slackbot.New(creds.SlackToken, cfg.Slack.Channel, cfg.Slack.APIURL, logger)

	var notifier alerts.Notifier = slackClient
	if dryRun {
		notifier = alerts.NewWriterNotifier(os.Stdout)
	}

	app := alerts.New(cfg, logger, clickup.NewClickUpSource(clickupClient, cfg.ClickUp.Statuses), slackClient, notifier)
	app.Folders = clickupClient

	if xlsxOutput != "" {
		app.Exporters = append(app.Exporters, report.NewExcelExporter(xlsxOutput))
	}
	if csvOutput != "" {
		app.Exporters = append(app.Exporters, report.NewCSVExporter(csvOutput))
	}
	if jsonOutput != "" {
		app.Exporters = append(app.Exporters, report.NewJSONExporter(jsonOutput))
	}

	if showProgress {
		bar := newSpinner("Checking lists")
		defer finishBar(bar)
		app.Progress = func(list string) {
			bar.Describe("Checking " + list)
			_ = bar.Add(1)
		}
	}

	if _, err := app.Run(ctx); err != nil {
		logger.Error("stale task check aborted", "error", err)
		return err
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := alerts.NewLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		return err
	}

	source := clickup.NewClickUpSource(clickup.NewClient(creds.ClickUpToken, cfg.ClickUp.BaseURL), cfg.ClickUp.Statuses)
	slackClient := slackbot.New(creds.SlackToken, cfg.Slack.Channel, cfg.Slack.APIURL, logger)

	checks := []struct {
		name string
		run  func(context.Context) error
	}{
		{source.Name(), source.HealthCheck},
		{"Slack", slackClient.HealthCheck},
	}

	failed := 0
	for _, c := range checks {
		if err := c.run(ctx); err != nil {
			failed++
			fmt.Printf("%-8s FAIL  %v\n", c.name, err)
			continue
		}
		fmt.Printf("%-8s OK\n", c.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}
