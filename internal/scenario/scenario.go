// Package scenario assembles benchmark scenario directories: a
// benchmark.json payload plus a config.json consumed by the gas-benchmark
// simulator.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/payload"
)

// Standard filenames inside a scenario directory.
const (
	BenchmarkFile = "benchmark.json"
	WarmupFile    = "warmup.json"
	ConfigFile    = "config.json"
)

// Scenario is the config.json schema of a benchmark scenario. Paths are
// relative to the scenario directory.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	GenesisPath   string `json:"genesis_path"`
	ChainRLPPath  string `json:"chain_rlp_path"`
	BenchmarkPath string `json:"benchmark_path"`
	WarmupPath    string `json:"warmup_path"`

	Config Config `json:"config"`

	TotalGas uint64 `json:"total_gas"`
}

// Config contains the run configuration of a scenario.
type Config struct {
	WarmupEnabled    bool              `json:"warmup_enabled"`
	WarmupIterations int               `json:"warmup_iterations"`
	TimeoutSeconds   int               `json:"timeout_seconds"`
	ClientParams     map[string]string `json:"client_params"`
}

// DefaultConfig returns the run configuration written for every generated
// scenario.
func DefaultConfig() Config {
	return Config{
		WarmupEnabled:    true,
		WarmupIterations: 3,
		TimeoutSeconds:   600,
		ClientParams:     map[string]string{},
	}
}

// Summary reports what a scenario build produced.
type Summary struct {
	Scenario string
	Fixture  string
	Calls    int
	TotalGas uint64
}

// Builder creates scenario directories from fixtures or from synthetic
// sample chains.
type Builder struct {
	log       logrus.FieldLogger
	converter *payload.Converter
}

// NewBuilder creates a scenario builder.
func NewBuilder(log logrus.FieldLogger) *Builder {
	return &Builder{
		log:       log.WithField("component", "scenario-builder"),
		converter: payload.NewConverter(log),
	}
}

// Build converts the fixture into <outputRoot>/<name>/benchmark.json and
// writes the matching config.json. A fixture that yields zero calls still
// produces a valid, empty scenario.
func (b *Builder) Build(fixturePath, outputRoot, name string) (*Summary, error) {
	dir := filepath.Join(outputRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}

	result, err := b.converter.ConvertFile(fixturePath, filepath.Join(dir, BenchmarkFile))
	if err != nil {
		return nil, err
	}

	s := &Scenario{
		Name:          name,
		Description:   fmt.Sprintf("Benchmark scenario from %s", filepath.Base(fixturePath)),
		GenesisPath:   "",
		ChainRLPPath:  "chain.rlp",
		BenchmarkPath: BenchmarkFile,
		WarmupPath:    WarmupFile,
		Config:        DefaultConfig(),
		TotalGas:      result.TotalGas,
	}
	if err := writeConfig(dir, s); err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"scenario": name,
		"fixture":  filepath.Base(fixturePath),
		"calls":    result.Calls,
		"totalGas": result.TotalGas,
	}).Debug("Built scenario")

	return &Summary{
		Scenario: name,
		Fixture:  fixturePath,
		Calls:    result.Calls,
		TotalGas: result.TotalGas,
	}, nil
}

func writeConfig(dir string, s *Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario config: %w", err)
	}
	return nil
}
