// Command capture prepares benchmark scenarios for the gas-benchmark
// simulator. It downloads execution-spec-tests fixture releases and
// converts them into Engine API call payloads, or synthesizes sample
// chains with -sample when no real fixtures are available.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/config"
	"github.com/gateway-fm/payloadgen/internal/fixtures"
	"github.com/gateway-fm/payloadgen/internal/scenario"
)

// Default sample scenarios created with -sample, and the fallback sample
// used when no fixtures can be downloaded or discovered.
var sampleScenarios = []struct {
	name        string
	blocks      int
	gasPerBlock uint64
}{
	{"sample_10blocks", 10, 1_000_000},
	{"sample_100blocks", 100, 2_000_000},
}

const (
	fallbackSampleName   = "sample_default"
	fallbackSampleBlocks = 50
	fallbackSampleGas    = 1_500_000
)

func main() {
	cfg, err := config.ParseCaptureFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.WithError(err).Fatal("Failed to create output directory")
	}

	builder := scenario.NewBuilder(log)
	var results []*scenario.Summary

	if cfg.Sample {
		log.Info("Creating sample benchmark payloads")
		for _, s := range sampleScenarios {
			result, err := builder.GenerateSample(cfg.OutputDir, s.name, s.blocks, s.gasPerBlock)
			if err != nil {
				log.WithError(err).WithField("scenario", s.name).Fatal("Failed to create sample payload")
			}
			results = append(results, result)
			fmt.Printf("  Created %s: %d calls, %d gas\n", result.Scenario, result.Calls, result.TotalGas)
		}
	} else {
		results = captureFixtures(log, cfg, builder)
	}

	fmt.Printf("\nCreated %d scenarios in %s\n", len(results), cfg.OutputDir)

	var totalCalls int
	var totalGas uint64
	for _, r := range results {
		totalCalls += r.Calls
		totalGas += r.TotalGas
	}
	fmt.Printf("Total: %d calls, %d gas\n", totalCalls, totalGas)
}

// captureFixtures downloads and converts real fixtures, falling back to a
// single sample scenario when none are available.
func captureFixtures(log *logrus.Logger, cfg *config.CaptureConfig, builder *scenario.Builder) []*scenario.Summary {
	log.WithField("version", cfg.Version).Info("Downloading EELS fixtures")

	source := fixtures.NewSource(log, fixtures.SourceConfig{
		ReleasesAPI:     cfg.ReleasesAPI,
		ReleaseURL:      cfg.ReleaseURL,
		FallbackVersion: cfg.FallbackVersion,
	})

	fixturesDir, err := source.Download(cfg.Version, cfg.OutputDir)
	if err != nil {
		log.WithError(err).Warn("Could not download EELS fixtures, creating sample payloads instead")
		return []*scenario.Summary{fallbackSample(log, cfg, builder)}
	}

	log.Info("Finding benchmark fixtures")
	paths, err := fixtures.Discover(fixturesDir)
	if err != nil {
		log.WithError(err).Warn("Fixture discovery failed, creating sample payloads instead")
		return []*scenario.Summary{fallbackSample(log, cfg, builder)}
	}
	if len(paths) == 0 {
		log.Warn("No suitable fixtures found, creating sample payloads")
		return []*scenario.Summary{fallbackSample(log, cfg, builder)}
	}

	found := len(paths)
	if len(paths) > cfg.MaxFixtures {
		paths = paths[:cfg.MaxFixtures]
	}
	log.WithFields(logrus.Fields{
		"found":      found,
		"converting": len(paths),
	}).Info("Converting fixtures")

	var results []*scenario.Summary
	for i, fixturePath := range paths {
		name := fmt.Sprintf("scenario_%d_%s", i+1, shortStem(fixturePath))
		result, err := builder.Build(fixturePath, cfg.OutputDir, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Skipped %s: %v\n", filepath.Base(fixturePath), err)
			continue
		}
		results = append(results, result)
		fmt.Printf("  Created %s: %d calls, %d gas\n", result.Scenario, result.Calls, result.TotalGas)
	}
	return results
}

func fallbackSample(log *logrus.Logger, cfg *config.CaptureConfig, builder *scenario.Builder) *scenario.Summary {
	result, err := builder.GenerateSample(cfg.OutputDir, fallbackSampleName, fallbackSampleBlocks, fallbackSampleGas)
	if err != nil {
		log.WithError(err).Fatal("Failed to create fallback sample payload")
	}
	return result
}

// shortStem returns the fixture filename stem truncated to 20 characters
// for use in scenario names.
func shortStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len(stem) > 20 {
		stem = stem[:20]
	}
	return stem
}
