package config

import (
	"testing"
)

func TestDefaultCaptureConfig(t *testing.T) {
	cfg := DefaultCaptureConfig()

	if cfg.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", cfg.Version, DefaultVersion)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.MaxFixtures != DefaultMaxFixtures {
		t.Errorf("MaxFixtures = %d, want %d", cfg.MaxFixtures, DefaultMaxFixtures)
	}
	if cfg.FallbackVersion != DefaultFallbackVersion {
		t.Errorf("FallbackVersion = %q, want %q", cfg.FallbackVersion, DefaultFallbackVersion)
	}
}

func TestDefaultCaptureConfigEnvOverrides(t *testing.T) {
	t.Setenv("EELS_RELEASES_API", "http://localhost:9999/releases")
	t.Setenv("EELS_RELEASE_URL", "http://localhost:9999/download")
	t.Setenv("EELS_FALLBACK_VERSION", "v9.9.9")

	cfg := DefaultCaptureConfig()

	if cfg.ReleasesAPI != "http://localhost:9999/releases" {
		t.Errorf("ReleasesAPI = %q", cfg.ReleasesAPI)
	}
	if cfg.ReleaseURL != "http://localhost:9999/download" {
		t.Errorf("ReleaseURL = %q", cfg.ReleaseURL)
	}
	if cfg.FallbackVersion != "v9.9.9" {
		t.Errorf("FallbackVersion = %q", cfg.FallbackVersion)
	}
}

func TestCaptureConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CaptureConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *CaptureConfig) {}},
		{name: "empty output", mutate: func(c *CaptureConfig) { c.OutputDir = "" }, wantErr: true},
		{name: "zero max fixtures", mutate: func(c *CaptureConfig) { c.MaxFixtures = 0 }, wantErr: true},
		{name: "negative max fixtures", mutate: func(c *CaptureConfig) { c.MaxFixtures = -1 }, wantErr: true},
		{name: "empty version", mutate: func(c *CaptureConfig) { c.Version = "" }, wantErr: true},
		{name: "empty fallback", mutate: func(c *CaptureConfig) { c.FallbackVersion = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCaptureConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWarmupConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		blocks  int
		wantErr bool
	}{
		{name: "default blocks", blocks: DefaultWarmupBlocks},
		{name: "one block", blocks: 1},
		{name: "zero blocks", blocks: 0, wantErr: true},
		{name: "negative blocks", blocks: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &WarmupConfig{Blocks: tt.blocks}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWarmupConfigHasMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  WarmupConfig
		want bool
	}{
		{name: "no flags", cfg: WarmupConfig{}, want: false},
		{name: "benchmark without output", cfg: WarmupConfig{BenchmarkPath: "b.json"}, want: false},
		{name: "benchmark with output", cfg: WarmupConfig{BenchmarkPath: "b.json", OutputPath: "w.json"}, want: true},
		{name: "scenario dir", cfg: WarmupConfig{ScenarioDir: "scenarios/s1"}, want: true},
		{name: "scenarios root", cfg: WarmupConfig{ScenariosRoot: "scenarios"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasMode(); got != tt.want {
				t.Errorf("HasMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringList(t *testing.T) {
	var s stringList

	if err := s.Set("alpha,beta"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("gamma"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(" , "); err != nil {
		t.Fatal(err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if len(s) != len(want) {
		t.Fatalf("list = %v, want %v", s, want)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, s[i], want[i])
		}
	}
	if s.String() != "alpha,beta,gamma" {
		t.Errorf("String() = %q", s.String())
	}
}
