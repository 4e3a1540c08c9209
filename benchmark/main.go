// Package main provides a performance benchmarking tool for the leadtime CLI.
// It generates synthetic message tables of increasing size, then measures estimate and check
// execution times reading straight from the file and from an SQLite message store,
// running each test multiple times, treating the first store run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - leadtime binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated tables and the benchmark SQLite store
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (file average, cold store run and average of warm store runs).
type BenchmarkResult struct {
	Dataset   string
	Command   string
	FileTime  string
	ColdTime  string
	WarmTime  string
	TotalRows int
}

// Dataset describes one synthetic message table.
type Dataset struct {
	Name       string
	Days       int
	StartHours []int
	MaxStep    int
	StepFreq   int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Workers   int
	FileRuns  int
	StoreRuns int
	Bootstrap int
	Datasets  []Dataset
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:   workDir,
		Timeout:   5 * time.Minute,
		Workers:   14,
		FileRuns:  3,
		StoreRuns: 4,
		Bootstrap: 1000,
		Datasets:  []Dataset{
			{Name: "quarter", Days: 90, StartHours: []int{0, 12}, MaxStep: 72, StepFreq: 3},
			{Name: "year", Days: 365, StartHours: []int{0, 6, 12, 18}, MaxStep: 120, StepFreq: 3},
			{Name: "five-years", Days: 1825, StartHours: []int{0, 6, 12, 18}, MaxStep: 240, StepFreq: 3},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the leadtime binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if leadtime is available
	if _, err := exec.LookPath("leadtime"); err != nil {
		return fmt.Errorf("leadtime binary not found in PATH")
	}

	// Check if the work directory can be used
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("work directory %s is not usable: %w", config.WorkDir, err)
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, file: %d runs, store: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.FileRuns, config.StoreRuns)

	for _, ds := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", ds.Name)

		tablePath := filepath.Join(config.WorkDir, ds.Name+".csv")
		rows, lastCycle, err := generateTable(ds, tablePath)
		if err != nil {
			fmt.Printf("  Skipping %s: %v\n", ds.Name, err)
			continue
		}
		storePath := filepath.Join(config.WorkDir, ds.Name+".db")
		_ = os.Remove(storePath)
		if output, err := runLeadtime(config, "store", "import", tablePath, "--system", "bench",
			"--message-db-connect", storePath); err != nil {
			fmt.Printf("  Skipping %s: import failed: %v\n%s\n", ds.Name, err, output)
			continue
		}

		buckets := bucketsFlag(ds)
		estimateArgs := []string{"estimate", "--buckets", buckets, "--seed", "1",
			"--bootstrap-count", strconv.Itoa(config.Bootstrap), "--output", "json"}
		result := runBenchmarkSuite(config, ds, tablePath, storePath, "estimate", estimateArgs)
		result.TotalRows = rows
		results = append(results, result)

		checkArgs := []string{"check", "--buckets", buckets, "--seed", "1",
			"--bootstrap-count", strconv.Itoa(config.Bootstrap), "--cycle", lastCycle, "--output", "json"}
		result = runBenchmarkSuite(config, ds, tablePath, storePath, "check", checkArgs)
		result.TotalRows = rows
		results = append(results, result)
	}

	return results
}

// generateTable writes a synthetic message table and returns its row count and last cycle.
func generateTable(ds Dataset, path string) (int, string, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(ds.Days), 7))
	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"start_time", "forecast_hour", "time"}); err != nil {
		return 0, "", err
	}

	first := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	var last time.Time
	rows := 0
	for d := range ds.Days {
		for _, hour := range ds.StartHours {
			cycle := first.AddDate(0, 0, d).Add(time.Duration(hour) * time.Hour)
			last = cycle
			base := 3*time.Hour + 30*time.Minute + time.Duration(rng.IntN(600))*time.Second
			for step := 0; step <= ds.MaxStep; step += ds.StepFreq {
				arrival := cycle.Add(base + time.Duration(step)*20*time.Second + time.Duration(rng.IntN(60))*time.Second)
				record := []string{cycle.Format(time.RFC3339), strconv.Itoa(step), arrival.Format(time.RFC3339)}
				if err := writer.Write(record); err != nil {
					return 0, "", err
				}
				rows++
			}
		}
	}
	writer.Flush()
	return rows, last.Format("2006010215"), writer.Error()
}

// bucketsFlag renders every start hour and step of a dataset as a --buckets value.
func bucketsFlag(ds Dataset) string {
	var steps []string
	for step := 0; step <= ds.MaxStep; step += ds.StepFreq {
		steps = append(steps, strconv.Itoa(step))
	}
	specs := make([]string, 0, len(ds.StartHours))
	for _, hour := range ds.StartHours {
		specs = append(specs, fmt.Sprintf("%02d=%s", hour, strings.Join(steps, ",")))
	}
	return strings.Join(specs, ";")
}

// runBenchmarkSuite runs both file and store benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, ds Dataset, tablePath, storePath, command string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, ds.Name)

	// Helper to run a benchmark phase
	runPhase := func(extra []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, append(append([]string{}, args...), extra...), numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: File runs, every run parses the table
	_, fileAvg := runPhase([]string{"--input", tablePath, "--message-backend", "none"}, config.FileRuns+1, "File")

	// Phase 2: Store runs
	coldTime, warmAvg := runPhase([]string{"--input", "store", "--system", "bench", "--message-db-connect", storePath}, config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  File average: %s, Cold store time: %s, Warm store average: %s\n", fileAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:  ds.Name,
		Command:  command,
		FileTime: fileAvg,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a leadtime command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args = append(args, "--workers", strconv.Itoa(config.Workers))

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = exec.Command("leadtime", args...).CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if isSuccess(output, cmdErr) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// runLeadtime runs one setup command and returns its combined output.
func runLeadtime(config BenchmarkConfig, args ...string) ([]byte, error) {
	cmd := exec.Command("leadtime", args...)
	cmd.Dir = config.WorkDir
	return cmd.CombinedOutput()
}

// isSuccess checks if a command completed. A failed delay check still counts as a completed run.
func isSuccess(output []byte, err error) bool {
	if err == nil {
		return true
	}
	exitErr, ok := err.(*exec.ExitError)
	return ok && exitErr.ExitCode() == 1 && strings.Contains(string(output), `"passed": false`)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/leadtime_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "rows", "cmd", "file_avg", "store_cold", "store_warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{result.Dataset, strconv.Itoa(result.TotalRows), result.Command, result.FileTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "estimate", "Estimate:")
	printCommandSummary(results, "check", "Check:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s (%d rows): File: %s, Cold: %s, Warm: %s\n",
				result.Dataset, result.TotalRows, result.FileTime, result.ColdTime, result.WarmTime)
		}
	}
}
