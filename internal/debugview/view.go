// Package debugview implements the --debug status view: a single-screen,
// read-only table of PC, the register file, and the run's final counters.
// It never drives the machine — cmd/rvsim lets Run finish first and then
// opens the view on the settled state, the same arm's-length relationship
// the teacher's Debugger has to its Interpreter (attach, observe, never
// own the loop), without racing a live Step against the terminal redraw.
package debugview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dark-riscv/rvsim/internal/isa"
	"github.com/dark-riscv/rvsim/internal/vm"
)

// View owns the tview application and the one table it draws.
type View struct {
	app   *tview.Application
	table *tview.Table
}

// New builds an empty view; call Refresh once before Run.
func New() *View {
	table := tview.NewTable().SetBorders(false)
	app := tview.NewApplication().SetRoot(table, true)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyCtrlC {
			app.Stop()
			return nil
		}
		return event
	})
	return &View{app: app, table: table}
}

// Refresh draws the table from the machine's settled state. m.Registers
// and m.Device are read, never written.
func (v *View) Refresh(m *vm.Machine) {
	v.table.Clear()
	row := 0
	set := func(col int, text string, color tcell.Color) {
		v.table.SetCell(row, col, tview.NewTableCell(text).SetTextColor(color))
	}

	set(0, "pc", tcell.ColorYellow)
	set(1, fmt.Sprintf("0x%08x", m.Registers.PC), tcell.ColorWhite)
	row++

	for i := 0; i < isa.NumRegisters; i++ {
		set(0, isa.Reg(i).String(), tcell.ColorGreen)
		set(1, fmt.Sprintf("0x%08x", m.Registers.Get(isa.Reg(i))), tcell.ColorWhite)
		row++
	}

	set(0, "iparse", tcell.ColorYellow)
	set(1, fmt.Sprintf("%d", m.Device.IParse), tcell.ColorWhite)
	row++

	set(0, "branches", tcell.ColorYellow)
	set(1, fmt.Sprintf("%d/%d", m.Device.BPFailed, m.Device.Branches), tcell.ColorWhite)
	row++

	for op, count := range m.Device.Counters {
		set(0, op.String(), tcell.ColorBlue)
		set(1, fmt.Sprintf("%d", count), tcell.ColorWhite)
		row++
	}
}

// Run blocks until the user quits the view (q or Ctrl-C).
func (v *View) Run() error {
	return v.app.Run()
}
