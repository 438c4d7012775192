// Command warmup derives warmup payloads from benchmark payloads by
// truncating them to a bounded number of blocks. It operates on a single
// payload file, a single scenario directory, or every scenario under a
// root directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/config"
	"github.com/gateway-fm/payloadgen/internal/scenario"
	"github.com/gateway-fm/payloadgen/internal/warmup"
)

func main() {
	cfg, err := config.ParseWarmupFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if !cfg.HasMode() {
		flag.Usage()
		os.Exit(1)
	}

	gen := warmup.NewGenerator(log)
	var results []*warmup.Result

	switch {
	case cfg.ScenariosRoot != "":
		results = generateBatch(log, gen, cfg)
	case cfg.ScenarioDir != "":
		result, err := gen.GenerateForScenario(cfg.ScenarioDir, cfg.Blocks)
		if err != nil {
			log.WithError(err).Fatal("Failed to generate warmup payload")
		}
		results = append(results, result)
		fmt.Printf("Generated warmup: %d calls, %d blocks, %d gas\n", result.Calls, result.Blocks, result.TotalGas)
	default:
		result, err := gen.Generate(cfg.BenchmarkPath, cfg.OutputPath, cfg.Blocks)
		if err != nil {
			log.WithError(err).Fatal("Failed to generate warmup payload")
		}
		results = append(results, result)
		fmt.Printf("Generated warmup: %d calls, %d blocks, %d gas\n", result.Calls, result.Blocks, result.TotalGas)
	}

	if len(results) > 1 {
		var totalCalls, totalBlocks int
		for _, r := range results {
			totalCalls += r.Calls
			totalBlocks += r.Blocks
		}
		fmt.Printf("\nGenerated %d warmup payloads\n", len(results))
		fmt.Printf("Total: %d calls, %d blocks\n", totalCalls, totalBlocks)
	}
}

// generateBatch processes every subdirectory of the scenarios root that
// contains a benchmark payload. Per-scenario failures are logged and do
// not abort the batch.
func generateBatch(log *logrus.Logger, gen *warmup.Generator, cfg *config.WarmupConfig) []*warmup.Result {
	entries, err := os.ReadDir(cfg.ScenariosRoot)
	if err != nil {
		log.WithError(err).Fatal("Failed to read scenarios root")
	}

	var results []*warmup.Result
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(cfg.ScenariosRoot, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, scenario.BenchmarkFile)); err != nil {
			continue
		}

		result, err := gen.GenerateForScenario(dir, cfg.Blocks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", entry.Name(), err)
			continue
		}
		results = append(results, result)
		fmt.Printf("Generated warmup for %s: %d calls, %d blocks\n", entry.Name(), result.Calls, result.Blocks)
	}
	return results
}
