// Package main prints the board palette and the ANSI 256 reference grid.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/taskboard/internal/theme"
)

func main() {
	grid := flag.Bool("grid", false, "also print the full ANSI 256 grid")
	flag.Parse()

	out := os.Stdout
	fmt.Fprintln(out, "=== STATUS ===")
	fmt.Fprintln(out, swatchTable(theme.StatusSwatches()))
	fmt.Fprintln(out, "\n=== PRIORITY ===")
	fmt.Fprintln(out, swatchTable(theme.PrioritySwatches()))
	fmt.Fprintln(out, "\n=== CHROME ===")
	fmt.Fprintln(out, swatchTable(theme.ChromeSwatches()))

	if *grid {
		fmt.Fprintln(out, "\n=== ANSI 256 COLORS ===")
		display256Colors(out)
	}
}

func swatchTable(swatches []theme.Swatch) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))).
		Headers("Name", "ANSI", "Sample").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Header))
			}
			return lipgloss.NewStyle()
		})

	for _, swatch := range swatches {
		sample := lipgloss.NewStyle().
			Background(lipgloss.Color(swatch.ANSI)).
			Foreground(lipgloss.Color(theme.ContrastText(swatch.ANSI))).
			Width(14).
			Align(lipgloss.Center).
			Render(swatch.Name)
		t.Row(swatch.Name, swatch.ANSI, sample)
	}
	return t.Render()
}

func display256Colors(out io.Writer) {
	fmt.Fprintln(out, "Standard 16 Colors:")
	displayColorBlock(out, 0, 15, 8)

	fmt.Fprintln(out, "\n216 Color Cube (16-231):")
	for i := range 6 {
		displayColorBlock(out, 16+i*36, 16+(i+1)*36-1, 6)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Grayscale (232-255):")
	displayColorBlock(out, 232, 255, 12)
}

func displayColorBlock(out io.Writer, start, end, perRow int) {
	count := 0
	for i := start; i <= end; i++ {
		code := strconv.Itoa(i)
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(code)).
			Foreground(lipgloss.Color(theme.ContrastText(code))).
			Width(6).
			Align(lipgloss.Center)
		fmt.Fprint(out, style.Render(fmt.Sprintf("%3d", i)))

		count++
		if count%perRow == 0 {
			fmt.Fprintln(out)
		} else {
			fmt.Fprint(out, " ")
		}
	}
	if count%perRow != 0 {
		fmt.Fprintln(out)
	}
}
