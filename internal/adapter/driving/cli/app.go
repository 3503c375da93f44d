package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
	"github.com/diillson/led-sales-tracker-go/pkg/version"
)

// Dependencies são os adaptadores que não dependem da configuração carregada.
type Dependencies struct {
	ConfigRepo repository.ConfigRepository
	ExportRepo repository.ExportRepository
	Console    types.ConsoleInterface
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	deps    Dependencies
	version string
	// newRuntime é trocado nos testes.
	newRuntime func(ctx context.Context, args *types.CLIArgs) (*wiring, error)
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, deps Dependencies) *CLIApp {
	app := &CLIApp{
		version: versionStr,
		deps:    deps,
	}
	app.newRuntime = app.buildRuntime

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "led-sales",
		Short:         "Amazon sales on a 64x32 LED panel",
		Long:          "Fetches daily order metrics from the Amazon Selling Partner API and draws them on an LED matrix, a terminal emulator or a PNG snapshot.",
		Version:       formattedVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runTracker,
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "LED Sales Tracker version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("env-file", "e", ".env", "Path to the .env file holding credentials")
	rootCmd.PersistentFlags().StringP("marketplace", "m", "", "Marketplace code (US, UK, DE, ...) or marketplace ID")
	rootCmd.PersistentFlags().StringP("timezone", "z", "", "IANA timezone used for the daily buckets")

	rootCmd.Flags().StringP("backend", "b", "", "Display backend: auto, real, emu, png")
	rootCmd.Flags().IntP("refresh", "r", 0, "Refresh interval in seconds")
	rootCmd.Flags().IntP("lookback", "l", 0, "Days shown on the panel")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch once and print (or export) daily sales or units",
		RunE:  app.runReport,
	}
	reportCmd.Flags().String("metric", "sales", "Metric to fetch: sales or units")
	reportCmd.Flags().IntP("time-range", "t", 7, "Number of days to fetch")
	reportCmd.Flags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	reportCmd.Flags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	reportCmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")

	portalCmd := &cobra.Command{
		Use:   "portal",
		Short: "Serve the first-boot setup page for Wi-Fi and Amazon credentials",
		RunE:  app.runPortal,
	}
	portalCmd.Flags().String("addr", "", "Address the portal listens on (default :80)")

	rootCmd.AddCommand(reportCmd, portalCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI with ctx as the parent of every command context.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()

	configFile, _ := flags.GetString("config-file")
	envFile, _ := flags.GetString("env-file")
	marketplace, _ := flags.GetString("marketplace")
	timezone, _ := flags.GetString("timezone")

	args := &types.CLIArgs{
		ConfigFile:  configFile,
		EnvFile:     envFile,
		Marketplace: marketplace,
		Timezone:    timezone,
	}

	if flags.Lookup("backend") != nil {
		args.Backend, _ = flags.GetString("backend")
		if flags.Changed("refresh") {
			refresh, _ := flags.GetInt("refresh")
			args.RefreshSeconds = &refresh
		}
		if flags.Changed("lookback") {
			lookback, _ := flags.GetInt("lookback")
			args.LookbackDays = &lookback
		}
	}

	if flags.Lookup("metric") != nil {
		args.Metric, _ = flags.GetString("metric")
		args.Days, _ = flags.GetInt("time-range")
		args.ReportName, _ = flags.GetString("report-name")
		args.ReportType, _ = flags.GetStringSlice("report-type")
		dir, _ := flags.GetString("dir")
		if dir != "" {
			// Convert to absolute path
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			dir = absDir
		}
		args.Dir = dir
	}

	if flags.Lookup("addr") != nil {
		args.PortalAddr, _ = flags.GetString("addr")
	}

	return args, nil
}

// signalContext é cancelado em SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runTracker é o ponto de entrada principal: o loop do painel.
func (app *CLIApp) runTracker(cmd *cobra.Command, _ []string) error {
	displayWelcomeBanner()
	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := app.newRuntime(ctx, cliArgs)
	if err != nil {
		return err
	}
	tracker, err := rt.tracker()
	if err != nil {
		return err
	}
	return tracker.Run(ctx)
}

func (app *CLIApp) runReport(cmd *cobra.Command, _ []string) error {
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := app.newRuntime(ctx, cliArgs)
	if err != nil {
		return err
	}
	rt.applyReportDefaults(cliArgs)

	report, err := rt.report()
	if err != nil {
		return err
	}
	_, err = report.RunReport(ctx, cliArgs)
	return err
}

func (app *CLIApp) runPortal(cmd *cobra.Command, _ []string) error {
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := app.newRuntime(ctx, cliArgs)
	if err != nil {
		return err
	}

	// O processo sai depois de salvar; o supervisor reinicia o dispositivo.
	portalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	server, err := rt.portal(cancel)
	if err != nil {
		return err
	}
	if err := server.ListenAndServe(portalCtx, rt.settings.Portal.Addr); err != nil {
		return fmt.Errorf("captive portal: %w", err)
	}
	return nil
}
