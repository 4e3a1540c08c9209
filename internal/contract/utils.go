package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/leadtime/schema"
)

// Color variables for console output.
var (
	MissingColor = color.New(color.FgRed, color.Bold)     // MissingColor represents standard danger.
	LateColor    = color.New(color.FgMagenta, color.Bold) // LateColor represents strong, distinct warning.
	EarlyColor   = color.New(color.FgYellow)              // EarlyColor represents standard caution, not bold.
	OnTimeColor  = color.New(color.FgGreen)               // OnTimeColor represents a healthy product.
	PendingColor = color.New(color.FgCyan)                // PendingColor represents informational signal.
)

// statusLabels maps a delay status to its display label.
var statusLabels = map[schema.DelayStatus]string{
	schema.OnTimeStatus:  "On time",
	schema.EarlyStatus:   "Early",
	schema.LateStatus:    "Late",
	schema.MissingStatus: "Missing",
	schema.PendingStatus: "Pending",
}

// GetPlainLabel returns a plain text label for a delay status.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(status schema.DelayStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status schema.DelayStatus) string {
	text := GetPlainLabel(status)

	switch status {
	case schema.MissingStatus:
		return MissingColor.Sprint(text)
	case schema.LateStatus:
		return LateColor.Sprint(text)
	case schema.EarlyStatus:
		return EarlyColor.Sprint(text)
	case schema.OnTimeStatus:
		return OnTimeColor.Sprint(text)
	default:
		return PendingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetMessageDBFilePath returns the path to the SQLite DB file for message storage.
func GetMessageDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".leadtime_messages.db"
	}
	return filepath.Join(homeDir, ".leadtime_messages.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".leadtime_runs.db"
	}
	return filepath.Join(homeDir, ".leadtime_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
