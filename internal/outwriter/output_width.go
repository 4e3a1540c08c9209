package outwriter

import (
	"os"

	"github.com/huangsam/leadtime/internal/contract"
	"golang.org/x/term"
)

const (
	gridCycleWidth = 14 // Cycle column with borders/padding
	gridCellWidth  = 11 // HH:MM:SS cell with borders/padding
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getMaxGridColumns calculates how many forecast hour columns fit in a grid table
// based on terminal width.
func getMaxGridColumns(cfg *contract.Config) int {
	available := getTerminalWidth(cfg) - gridCycleWidth
	return max(available/gridCellWidth, 1)
}
