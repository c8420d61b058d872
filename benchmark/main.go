// Package main provides a performance benchmarking tool for the aieval CLI.
// It scans each target folder at several concurrency levels, first without the
// score cache and then with it, treating the first cached run as cold and
// averaging the rest as warm. Results are written to a CSV file.
//
// Prerequisites:
// - aieval binary installed and available in PATH
// - Model settings exported (AIEVAL_MODEL, AZURE_OPENAI_ENDPOINT, ...)
//
// Usage: go run benchmark/main.go <folder> [folder...]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Folder      string
	Concurrency int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Folders           []string
	Timeout           time.Duration
	ConcurrencyLevels []int
	NoCacheRuns       int
	CacheRuns         int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s <folder> [folder...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Folders:           os.Args[1:],
		Timeout:           10 * time.Minute,
		ConcurrencyLevels: []int{1, 5, 10},
		NoCacheRuns:       2,
		CacheRuns:         3,
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

// checkPrerequisites verifies that the aieval binary and the folders exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("aieval"); err != nil {
		return fmt.Errorf("aieval binary not found in PATH")
	}
	for _, folder := range config.Folders {
		info, err := os.Stat(folder)
		if err != nil {
			return fmt.Errorf("folder %s not accessible: %w", folder, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a folder", folder)
		}
	}
	return nil
}

// runBenchmarks executes the suite for every folder and concurrency level
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d folders, %v timeout, concurrency %v, no-cache: %d runs, cache: %d runs\n",
		len(config.Folders), config.Timeout, config.ConcurrencyLevels, config.NoCacheRuns, config.CacheRuns)

	for _, folder := range config.Folders {
		for _, concurrency := range config.ConcurrencyLevels {
			results = append(results, runBenchmarkSuite(config, folder, concurrency))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one folder
func runBenchmarkSuite(config BenchmarkConfig, folder string, concurrency int) BenchmarkResult {
	fmt.Printf("Scanning %s with concurrency %d\n", folder, concurrency)

	// Each suite gets its own cache so cold really means cold
	cacheDB := filepath.Join(os.TempDir(), fmt.Sprintf("aieval_bench_%d_%d.db", time.Now().UnixNano(), concurrency))
	defer func() { _ = os.Remove(cacheDB) }()

	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, folder, concurrency, cacheArgs, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs. Every run counts, so fold the first one back in.
	noCacheCold, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")
	if noCacheAvg == "TIMEOUT" && noCacheCold > 0 {
		noCacheAvg = fmt.Sprintf("%.3fs", noCacheCold)
	}

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", cacheDB}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Folder:      folder,
		Concurrency: concurrency,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes aieval scan numRuns times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, folder string, concurrency int, cacheArgs []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{"scan", folder, "--concurrency", strconv.Itoa(concurrency)}, cacheArgs...)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "aieval", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Evaluated") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("aieval_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"folder", "concurrency", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{result.Folder, strconv.Itoa(result.Concurrency), result.NoCacheTime, result.ColdTime, result.WarmTime}
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
	for _, result := range results {
		fmt.Printf("  %-30s c=%-3d No-cache: %s, Cold: %s, Warm: %s\n",
			result.Folder, result.Concurrency, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
