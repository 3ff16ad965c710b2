package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// PrintJobHeader prints a formatted job header with sorted key/value details
func PrintJobHeader(title string, details map[string]string) {
	fmt.Println()
	fmt.Println(doubleRule)
	fmt.Printf("  %s\n", title)
	fmt.Println(singleRule)

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-10s: %s\n", k, details[k])
	}

	fmt.Println(singleRule)
	fmt.Printf("Started at %s\n", time.Now().Format(time.RFC3339))
}

// PrintJobCompletion prints job completion message
func PrintJobCompletion(title string, d time.Duration) {
	fmt.Println()
	fmt.Printf("✅ %s completed in %.2fs\n", title, d.Seconds())
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// newProgressBar renders to stderr so stdout stays clean for piped output
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

// printTable writes rows under a header, padding each column to its widest cell
func printTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(values []string) {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = fmt.Sprintf("%-*s", widths[i], v)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	writeRow(columns)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for _, row := range rows {
		writeRow(row)
	}
}
