package warmup

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/payload"
	"github.com/gateway-fm/payloadgen/internal/scenario"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// sampleBenchmark generates a scenario with numBlocks blocks of
// gasPerBlock each and returns its directory.
func sampleBenchmark(t *testing.T, numBlocks int, gasPerBlock uint64) string {
	t.Helper()
	root := t.TempDir()
	if _, err := scenario.NewBuilder(testLogger()).GenerateSample(root, "bench", numBlocks, gasPerBlock); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(root, "bench")
}

func readCalls(t *testing.T, path string) []payload.RPCCall {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var calls []payload.RPCCall
	if err := json.Unmarshal(data, &calls); err != nil {
		t.Fatal(err)
	}
	return calls
}

func TestGenerateTruncates(t *testing.T) {
	dir := sampleBenchmark(t, 15, 1_000_000)
	out := filepath.Join(t.TempDir(), "warmup.json")

	result, err := NewGenerator(testLogger()).Generate(filepath.Join(dir, scenario.BenchmarkFile), out, 10)
	if err != nil {
		t.Fatal(err)
	}

	if result.Blocks != 10 {
		t.Errorf("Blocks = %d, want 10", result.Blocks)
	}
	if result.Calls != 20 {
		t.Errorf("Calls = %d, want 20", result.Calls)
	}
	if result.TotalGas != 10_000_000 {
		t.Errorf("TotalGas = %d, want 10000000", result.TotalGas)
	}

	calls := readCalls(t, out)
	if len(calls) != 20 {
		t.Fatalf("written calls = %d, want 20", len(calls))
	}
	for i, call := range calls {
		if call.ID != i+1 {
			t.Errorf("call %d: ID = %d, want %d", i, call.ID, i+1)
		}
	}
}

func TestGenerateShorterThanLimit(t *testing.T) {
	dir := sampleBenchmark(t, 4, 1000)
	out := filepath.Join(t.TempDir(), "warmup.json")

	result, err := NewGenerator(testLogger()).Generate(filepath.Join(dir, scenario.BenchmarkFile), out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Blocks != 4 || result.Calls != 8 || result.TotalGas != 4000 {
		t.Errorf("result = %+v, want all 4 blocks kept", result)
	}
}

func TestGenerateEmptyBenchmark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "warmup.json")

	result, err := NewGenerator(testLogger()).Generate(path, out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Blocks != 0 || result.Calls != 0 {
		t.Errorf("result = %+v, want empty", result)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("warmup content = %s, want []", data)
	}
}

func TestGenerateFallbackCopiesLeadingCalls(t *testing.T) {
	// No recognizable block payloads: the first 20 calls are copied
	// verbatim and renumbered.
	var calls []payload.RPCCall
	for i := 0; i < 25; i++ {
		calls = append(calls, payload.RPCCall{
			JSONRPC: "2.0",
			Method:  "eth_call",
			Params:  json.RawMessage("[]"),
			ID:      i + 1,
		})
	}
	data, err := json.Marshal(calls)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "benchmark.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "warmup.json")

	result, err := NewGenerator(testLogger()).Generate(path, out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Blocks != 0 {
		t.Errorf("Blocks = %d, want 0", result.Blocks)
	}
	if result.Calls != 20 {
		t.Errorf("Calls = %d, want 20", result.Calls)
	}

	got := readCalls(t, out)
	for i, call := range got {
		if call.ID != i+1 {
			t.Errorf("call %d: ID = %d, want %d", i, call.ID, i+1)
		}
	}
}

func TestGenerateUnpairedForkchoiceDropped(t *testing.T) {
	// A forkchoiceUpdated pointing at a block that was never accepted
	// must not survive truncation.
	fc1, err := payload.ForkchoiceCall("0x01", payload.ZeroHash)
	if err != nil {
		t.Fatal(err)
	}
	np, err := payload.NewPayloadCall(map[string]any{"gasUsed": "0x64", "blockHash": "0x02"}, []string{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	fc2, err := payload.ForkchoiceCall("0x02", payload.ZeroHash)
	if err != nil {
		t.Fatal(err)
	}

	calls := payload.Renumber([]payload.RPCCall{fc1, np, fc2})
	data, err := json.Marshal(calls)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "benchmark.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "warmup.json")

	result, err := NewGenerator(testLogger()).Generate(path, out, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Blocks != 1 {
		t.Errorf("Blocks = %d, want 1", result.Blocks)
	}
	if result.Calls != 2 {
		t.Errorf("Calls = %d, want 2 (leading forkchoice for unknown head dropped)", result.Calls)
	}

	got := readCalls(t, out)
	if !got[0].IsNewPayload() || !got[1].IsForkchoiceUpdated() {
		t.Errorf("unexpected call order: %s, %s", got[0].Method, got[1].Method)
	}
}

func TestGenerateForScenario(t *testing.T) {
	dir := sampleBenchmark(t, 6, 1000)

	result, err := NewGenerator(testLogger()).GenerateForScenario(dir, 3)
	if err != nil {
		t.Fatal(err)
	}
	if result.Blocks != 3 {
		t.Errorf("Blocks = %d, want 3", result.Blocks)
	}
	if _, err := os.Stat(filepath.Join(dir, scenario.WarmupFile)); err != nil {
		t.Errorf("warmup.json missing: %v", err)
	}
}

func TestGenerateForScenarioMissingBenchmark(t *testing.T) {
	if _, err := NewGenerator(testLogger()).GenerateForScenario(t.TempDir(), 3); err == nil {
		t.Fatal("expected error for missing benchmark.json")
	}
}

func TestSampleThenTruncateEndToEnd(t *testing.T) {
	root := t.TempDir()
	b := scenario.NewBuilder(testLogger())

	if _, err := b.GenerateSample(root, "sample_10blocks", 10, 1_000_000); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(root, "sample_10blocks")
	result, err := NewGenerator(testLogger()).GenerateForScenario(dir, 5)
	if err != nil {
		t.Fatal(err)
	}

	if result.Blocks != 5 {
		t.Errorf("Blocks = %d, want 5", result.Blocks)
	}
	if result.TotalGas != 5_000_000 {
		t.Errorf("TotalGas = %d, want 5000000", result.TotalGas)
	}

	calls := readCalls(t, filepath.Join(dir, scenario.WarmupFile))
	if len(calls) != 10 {
		t.Fatalf("warmup calls = %d, want 10", len(calls))
	}
	for i, call := range calls {
		if call.ID != i+1 {
			t.Errorf("call %d: ID = %d, want %d", i, call.ID, i+1)
		}
	}
}
