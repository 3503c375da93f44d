package cli

import (
	"fmt"

	"github.com/diillson/led-sales-tracker-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner() {
	banner := `
         /$$       /$$$$$$$$ /$$$$$$$         /$$$$$$   /$$$$$$  /$$       /$$$$$$$$  /$$$$$$
        | $$      | $$_____/| $$__  $$       /$$__  $$ /$$__  $$| $$      | $$_____/ /$$__  $$
        | $$      | $$      | $$  \ $$      | $$  \__/| $$  \ $$| $$      | $$      | $$  \__/
        | $$      | $$$$$   | $$  | $$      |  $$$$$$ | $$$$$$$$| $$      | $$$$$   |  $$$$$$
        | $$      | $$__/   | $$  | $$       \____  $$| $$__  $$| $$      | $$__/    \____  $$
        | $$      | $$      | $$  | $$       /$$  \ $$| $$  | $$| $$      | $$       /$$  \ $$
        | $$$$$$$$| $$$$$$$$| $$$$$$$/      |  $$$$$$/| $$  | $$| $$$$$$$$| $$$$$$$$|  $$$$$$/
        |________/|________/|_______/        \______/ |__/  |__/|________/|________/ \______/
        `
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(green(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("LED Sales Tracker (v%s)", formattedVersion)))
}
