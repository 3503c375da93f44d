package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
	"github.com/pterm/pterm"
)

// Console é uma implementação do ConsoleInterface que escreve em out.
type Console struct {
	out io.Writer
}

// NewConsole cria um Console ligado ao stdout.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stdout)
}

// NewConsoleWithWriter direciona toda a saída para w.
func NewConsoleWithWriter(w io.Writer) *Console {
	if w == nil {
		w = io.Discard
	}
	return &Console{out: w}
}

func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	c.prefixed(pterm.Info, format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	c.prefixed(pterm.Warning, format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	c.prefixed(pterm.Error, format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	c.prefixed(pterm.Success, format, a...)
}

func (c *Console) prefixed(p pterm.PrefixPrinter, format string, a ...interface{}) {
	p.WithWriter(c.out).Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).Start(message)
	return &statusHandle{spinner: spinner}
}

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	// Convertemos cada célula para string
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	// Use o pterm para criar uma tabela visualmente agradável
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayDailyBars exibe um gráfico de barras com a variação dia a dia.
func (c *Console) DisplayDailyBars(days []types.DailyBar, title string) {
	if len(days) == 0 {
		c.LogWarning("No daily data for this period")
		return
	}

	fmt.Fprintln(c.out, "\n"+RenderDailyBars(days, title))
}

// RenderDailyBars monta o painel sem imprimir; separado para testes.
func RenderDailyBars(days []types.DailyBar, title string) string {
	// Encontra o valor máximo para escala
	maxValue := 0.0
	for _, d := range days {
		if d.Value > maxValue {
			maxValue = d.Value
		}
	}

	tableData := pterm.TableData{
		{"Date", "Value", "", "DoD Change"},
	}

	var prev *float64

	for _, d := range days {
		barLength := 0
		if maxValue > 0 {
			barLength = int((d.Value / maxValue) * 40)
		}
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		change := ""

		if prev != nil {
			// Aqui subir é bom: verde para alta, vermelho para queda.
			if *prev < 0.01 {
				if d.Value < 0.01 {
					change = pterm.FgYellow.Sprint("0%")
				} else {
					change = pterm.FgGreen.Sprint("N/A")
					barColor = pterm.FgGreen.Sprint(bar)
				}
			} else {
				changePercent := ((d.Value - *prev) / *prev) * 100.0

				switch {
				case math.Abs(changePercent) < 0.01:
					change = pterm.FgYellow.Sprintf("0%%")
				case changePercent > 999:
					change = pterm.FgGreen.Sprint(">+999%")
					barColor = pterm.FgGreen.Sprint(bar)
				case changePercent > 0:
					change = pterm.FgGreen.Sprintf("+%.2f%%", changePercent)
					barColor = pterm.FgGreen.Sprint(bar)
				default:
					change = pterm.FgRed.Sprintf("%.2f%%", changePercent)
					barColor = pterm.FgRed.Sprint(bar)
				}
			}
		}

		tableData = append(tableData, []string{
			d.Date,
			d.Label,
			barColor,
			change,
		})

		current := d.Value
		prev = &current
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	return pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)
}
