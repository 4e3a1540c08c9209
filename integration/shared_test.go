//go:build basic || database || integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// sharedLeadtimePath holds the path to a shared leadtime binary built once for all tests.
	sharedLeadtimePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getLeadtimeBinary returns the path to the leadtime binary, building it once if needed.
func getLeadtimeBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "leadtime-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		leadtimePath := filepath.Join(tempDir, "leadtime")
		buildCmd := exec.Command("go", "build", "-o", leadtimePath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build leadtime: %v\n%s", err, out))
		}

		sharedLeadtimePath = leadtimePath
	})

	return sharedLeadtimePath
}

// runLeadtime runs the binary with the given environment and returns stdout and the exit code.
func runLeadtime(t *testing.T, env []string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getLeadtimeBinary(), args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("failed to run %s: %v", cmd.String(), err)
		}
		t.Logf("Command exited with %d: %s\nStderr: %s", exitErr.ExitCode(), cmd.String(), stderr.String())
		return stdout.String(), exitErr.ExitCode()
	}
	return stdout.String(), 0
}

// mustRunLeadtime runs the binary and fails the test unless it exits with 0.
func mustRunLeadtime(t *testing.T, env []string, args ...string) string {
	t.Helper()
	out, code := runLeadtime(t, env, args...)
	require.Equal(t, 0, code, "leadtime %s", strings.Join(args, " "))
	return out
}

// writeMessages writes a message table of days 00 UTC cycles where forecast hour 0
// arrives between 03:35 and 03:45 and forecast hour 6 between 04:05 and 04:15.
func writeMessages(t *testing.T, dir string, days int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("start_time,forecast_hour,time\n")
	for d := range days {
		cycle := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		jitter := time.Duration(d%11-5) * time.Minute
		for _, row := range []struct {
			fh    int
			clock time.Duration
		}{
			{0, 3*time.Hour + 40*time.Minute + jitter},
			{6, 4*time.Hour + 10*time.Minute + jitter},
		} {
			fmt.Fprintf(&b, "%s,%d,%s\n", cycle.Format(time.RFC3339), row.fh, cycle.Add(row.clock).Format(time.RFC3339))
		}
	}
	path := filepath.Join(dir, "messages.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}
