package outwriter

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/leadtime/internal/contract"
)

// formatClock renders a duration as [-]HH:MM:SS. Hours can exceed 23.
func formatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, s/3600, s/60%60, s%60)
}

// formatStep renders a forecast hour the way NWP products label it.
func formatStep(fh int) string {
	return fmt.Sprintf("+%03d", fh)
}

// paint returns a color function, or plain formatting when colors are disabled.
func paint(cfg *contract.Config, attrs ...color.Attribute) func(...any) string {
	if !cfg.UseColors {
		return fmt.Sprint
	}
	return color.New(attrs...).SprintFunc()
}
