// Package config handles configuration defaults, environment overrides
// and flag parsing for the capture and warmup tools.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Defaults
const (
	DefaultVersion         = "latest"
	DefaultOutputDir       = "scenarios"
	DefaultMaxFixtures     = 5
	DefaultWarmupBlocks    = 10
	DefaultReleasesAPI     = "https://api.github.com/repos/ethereum/execution-spec-tests/releases"
	DefaultReleaseURL      = "https://github.com/ethereum/execution-spec-tests/releases/download"
	DefaultFallbackVersion = "v3.0.0"
)

// CaptureConfig holds capture tool configuration.
type CaptureConfig struct {
	Version     string   // Release version, "latest" resolves via the releases API
	OutputDir   string   // Root directory scenarios are written to
	Scenarios   []string // Specific scenario names (accepted, currently unused for filtering)
	Sample      bool     // Generate synthetic sample payloads instead of downloading
	MaxFixtures int      // Cap on how many discovered fixtures are converted

	// Release endpoints. The fallback version is used when the latest
	// release cannot be resolved.
	ReleasesAPI     string
	ReleaseURL      string
	FallbackVersion string

	Verbose bool
}

// DefaultCaptureConfig returns capture defaults with release endpoint
// overrides applied from the environment.
func DefaultCaptureConfig() *CaptureConfig {
	cfg := &CaptureConfig{
		Version:         DefaultVersion,
		OutputDir:       DefaultOutputDir,
		MaxFixtures:     DefaultMaxFixtures,
		ReleasesAPI:     DefaultReleasesAPI,
		ReleaseURL:      DefaultReleaseURL,
		FallbackVersion: DefaultFallbackVersion,
	}

	if v := os.Getenv("EELS_RELEASES_API"); v != "" {
		cfg.ReleasesAPI = v
	}
	if v := os.Getenv("EELS_RELEASE_URL"); v != "" {
		cfg.ReleaseURL = v
	}
	if v := os.Getenv("EELS_FALLBACK_VERSION"); v != "" {
		cfg.FallbackVersion = v
	}

	return cfg
}

// ParseCaptureFlags parses command-line flags for the capture tool.
func ParseCaptureFlags() (*CaptureConfig, error) {
	cfg := DefaultCaptureConfig()

	var scenarios stringList
	var (
		version     = flag.String("version", cfg.Version, "EELS release version")
		output      = flag.String("output", cfg.OutputDir, "Output directory for scenarios")
		sample      = flag.Bool("sample", false, "Create sample payloads instead of downloading EELS fixtures")
		maxFixtures = flag.Int("max-fixtures", cfg.MaxFixtures, "Maximum number of fixtures to convert")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Var(&scenarios, "scenarios", "Specific scenario names to create (repeatable or comma-separated)")

	flag.Parse()

	cfg.Version = *version
	cfg.OutputDir = *output
	cfg.Scenarios = scenarios
	cfg.Sample = *sample
	cfg.MaxFixtures = *maxFixtures
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the capture configuration.
func (c *CaptureConfig) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.MaxFixtures <= 0 {
		return fmt.Errorf("max-fixtures must be positive, got %d", c.MaxFixtures)
	}
	if c.Version == "" {
		return fmt.Errorf("version must not be empty")
	}
	if c.FallbackVersion == "" {
		return fmt.Errorf("fallback version must not be empty")
	}
	return nil
}

// WarmupConfig holds warmup tool configuration. Exactly one of the three
// modes is used: benchmark+output, scenario-dir, or scenarios-root.
type WarmupConfig struct {
	BenchmarkPath string // Single-file mode: benchmark payload to truncate
	OutputPath    string // Single-file mode: warmup payload destination
	ScenarioDir   string // Single-scenario mode
	ScenariosRoot string // Batch mode over all scenario subdirectories
	Blocks        int    // Number of blocks to keep

	Verbose bool
}

// ParseWarmupFlags parses command-line flags for the warmup tool.
func ParseWarmupFlags() (*WarmupConfig, error) {
	cfg := &WarmupConfig{Blocks: DefaultWarmupBlocks}

	var (
		benchmark     = flag.String("benchmark", "", "Path to benchmark payload file")
		output        = flag.String("output", "", "Output path for warmup payload")
		scenarioDir   = flag.String("scenario-dir", "", "Scenario directory (alternative to -benchmark/-output)")
		scenariosRoot = flag.String("scenarios-root", "", "Root directory containing multiple scenarios")
		blocks        = flag.Int("blocks", cfg.Blocks, "Number of blocks for warmup")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	)

	flag.Parse()

	cfg.BenchmarkPath = *benchmark
	cfg.OutputPath = *output
	cfg.ScenarioDir = *scenarioDir
	cfg.ScenariosRoot = *scenariosRoot
	cfg.Blocks = *blocks
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the warmup configuration.
func (c *WarmupConfig) Validate() error {
	if c.Blocks <= 0 {
		return fmt.Errorf("blocks must be positive, got %d", c.Blocks)
	}
	return nil
}

// HasMode reports whether any mode-selecting flag combination was given.
func (c *WarmupConfig) HasMode() bool {
	return (c.BenchmarkPath != "" && c.OutputPath != "") || c.ScenarioDir != "" || c.ScenariosRoot != ""
}

// stringList is a repeatable, comma-splitting string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}
