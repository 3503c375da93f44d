package main

import (
	"fmt"
	"os"

	"github.com/diillson/led-sales-tracker-go/internal/adapter/driven/config"
	"github.com/diillson/led-sales-tracker-go/internal/adapter/driven/export"
	"github.com/diillson/led-sales-tracker-go/internal/adapter/driving/cli"
	"github.com/diillson/led-sales-tracker-go/pkg/console"
	"github.com/diillson/led-sales-tracker-go/pkg/version"
)

func main() {
	// Inicializa os repositórios
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, cli.Dependencies{
		ConfigRepo: configRepo,
		ExportRepo: exportRepo,
		Console:    consoleImpl,
	})

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
