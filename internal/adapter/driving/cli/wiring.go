package cli

import (
	"context"
	"runtime"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/adapter/driven/config"
	"github.com/diillson/led-sales-tracker-go/internal/adapter/driven/display"
	"github.com/diillson/led-sales-tracker-go/internal/adapter/driven/spapi"
	"github.com/diillson/led-sales-tracker-go/internal/adapter/driving/portal"
	"github.com/diillson/led-sales-tracker-go/internal/application/usecase"
	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
	"github.com/diillson/led-sales-tracker-go/pkg/logger"
)

const serviceName = "led-sales"

// wiring monta os casos de uso a partir da configuração já resolvida.
type wiring struct {
	ctx      context.Context
	deps     Dependencies
	settings *config.Settings
	fileCfg  *types.Config
	logg     *logger.Logger
	location *time.Location
}

// buildRuntime resolves configuration in order: env file over environment,
// then the config file, then flags.
func (app *CLIApp) buildRuntime(ctx context.Context, args *types.CLIArgs) (*wiring, error) {
	settings, err := config.LoadSettings(args.EnvFile)
	if err != nil {
		return nil, err
	}

	var fileCfg *types.Config
	if args.ConfigFile != "" {
		fileCfg, err = app.deps.ConfigRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		settings.ApplyFile(fileCfg)
	}
	settings.ApplyArgs(args)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	location, err := settings.Location()
	if err != nil {
		return nil, err
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(settings.Log.Level),
		Format:      settings.Log.Format,
	})

	return &wiring{
		ctx:      ctx,
		deps:     app.deps,
		settings: settings,
		fileCfg:  fileCfg,
		logg:     logg,
		location: location,
	}, nil
}

func (w *wiring) sales() (*usecase.SalesUseCase, error) {
	creds := w.settings.Credentials()
	if !creds.Complete() {
		return nil, types.ErrMissingCredentials
	}

	opts := spapi.Options{Credentials: creds}
	if creds.RoleARN != "" || creds.AWSProfile != "" {
		signer, err := spapi.NewSigV4Signer(w.ctx, creds.AWSProfile, creds.RoleARN)
		if err != nil {
			return nil, err
		}
		opts.Signer = signer
	}

	api, err := spapi.NewSPAPIRepository(opts)
	if err != nil {
		return nil, err
	}

	return usecase.NewSalesUseCase(usecase.SalesParams{
		API:      api,
		Logger:   w.logg,
		Location: w.location,
	})
}

func (w *wiring) tracker() (*usecase.TrackerUseCase, error) {
	sales, err := w.sales()
	if err != nil {
		return nil, err
	}

	panel, err := display.New(display.Options{
		Backend:      w.settings.Display.Backend,
		PanelAddr:    w.settings.Display.PanelAddr,
		SnapshotPath: w.settings.Display.SnapshotPath,
	})
	if err != nil {
		return nil, err
	}

	ctx := w.logg.WithFields(w.ctx, map[string]any{
		"backend":     display.ResolveBackend(w.settings.Display.Backend, runtime.GOOS, runtime.GOARCH),
		"marketplace": w.settings.Tracker.Marketplace,
		"refresh_s":   w.settings.Tracker.RefreshSeconds,
	})
	w.logg.Info(ctx, "starting tracker")

	return usecase.NewTrackerUseCase(usecase.TrackerParams{
		Sales:           sales,
		Display:         panel,
		Logger:          w.logg,
		Location:        w.location,
		Marketplace:     w.settings.Tracker.Marketplace,
		Metric:          entity.MetricUnits,
		LookbackDays:    w.settings.Tracker.LookbackDays,
		RefreshInterval: w.settings.RefreshInterval(),
		ErrorCooldown:   w.settings.Tracker.ErrorCooldown,
	})
}

func (w *wiring) report() (*usecase.ReportUseCase, error) {
	sales, err := w.sales()
	if err != nil {
		return nil, err
	}
	return usecase.NewReportUseCase(sales, w.deps.ExportRepo, w.deps.Console), nil
}

// applyReportDefaults fills report arguments left empty on the command line
// from the resolved settings and the config file.
func (w *wiring) applyReportDefaults(args *types.CLIArgs) {
	args.Marketplace = w.settings.Tracker.Marketplace
	if w.fileCfg == nil {
		return
	}
	if args.ReportName == "" && w.fileCfg.ReportName != "" {
		args.ReportName = w.fileCfg.ReportName
		if len(w.fileCfg.ReportType) > 0 {
			args.ReportType = w.fileCfg.ReportType
		}
	}
	if args.Dir == "" && w.fileCfg.Dir != "" {
		args.Dir = w.fileCfg.Dir
	}
}

func (w *wiring) portal(onSaved func()) (*portal.Server, error) {
	return portal.NewServer(portal.Params{
		Store:   config.NewEnvCredentialStore(w.settings.Portal.EnvPath),
		Logger:  w.logg,
		OnSaved: onSaved,
	})
}
