// Package warmup derives reduced warmup payloads from benchmark payloads
// by truncating them to a bounded number of blocks.
package warmup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/payload"
	"github.com/gateway-fm/payloadgen/internal/scenario"
)

// fallbackCalls is how many leading calls are copied verbatim when the
// benchmark contains no recognizable block payloads.
const fallbackCalls = 20

// Generator truncates benchmark payloads into warmup payloads.
type Generator struct {
	log logrus.FieldLogger
}

// NewGenerator creates a warmup generator.
func NewGenerator(log logrus.FieldLogger) *Generator {
	return &Generator{log: log.WithField("component", "warmup")}
}

// Result reports what a warmup generation produced.
type Result struct {
	Name     string
	Calls    int
	Blocks   int
	TotalGas uint64
	Source   string
	Output   string
}

// Generate reads the benchmark payload, keeps the first maxBlocks
// newPayload calls and the forkchoiceUpdated calls paired with them, and
// writes the result to outputPath with IDs renumbered from 1.
//
// A forkchoiceUpdated call is kept only when its headBlockHash belongs to
// a newPayload call that was accepted, so the two call kinds can never be
// mispaired regardless of source ordering. If no blocks are recognized at
// all, the first 20 calls are copied verbatim instead.
func (g *Generator) Generate(benchmarkPath, outputPath string, maxBlocks int) (*Result, error) {
	data, err := os.ReadFile(benchmarkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark payload: %w", err)
	}

	var calls []payload.RPCCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark payload: %w", err)
	}

	var warmupCalls []payload.RPCCall
	accepted := make(map[string]bool)
	blocks := 0
	var totalGas uint64

	for i := range calls {
		call := &calls[i]
		switch {
		case call.IsNewPayload():
			if blocks >= maxBlocks {
				continue
			}
			gas, blockHash, err := newPayloadInfo(call)
			if err != nil {
				return nil, fmt.Errorf("call %d: %w", i, err)
			}
			totalGas += gas
			if blockHash != "" {
				accepted[blockHash] = true
			}
			warmupCalls = append(warmupCalls, *call)
			blocks++
		case call.IsForkchoiceUpdated():
			if accepted[headBlockHash(call)] {
				warmupCalls = append(warmupCalls, *call)
			}
		}
	}

	if blocks == 0 {
		g.log.WithField("benchmark", benchmarkPath).Warn("No blocks found in benchmark payload")
		n := len(calls)
		if n > fallbackCalls {
			n = fallbackCalls
		}
		warmupCalls = calls[:n]
	}

	warmupCalls = payload.Renumber(warmupCalls)

	if err := payload.WriteFile(outputPath, warmupCalls); err != nil {
		return nil, err
	}

	return &Result{
		Name:     stem(outputPath),
		Calls:    len(warmupCalls),
		Blocks:   blocks,
		TotalGas: totalGas,
		Source:   benchmarkPath,
		Output:   outputPath,
	}, nil
}

// GenerateForScenario generates <dir>/warmup.json from <dir>/benchmark.json.
// A missing benchmark payload is an error; batch callers decide whether to
// tolerate it.
func (g *Generator) GenerateForScenario(dir string, maxBlocks int) (*Result, error) {
	benchmarkPath := filepath.Join(dir, scenario.BenchmarkFile)
	if _, err := os.Stat(benchmarkPath); err != nil {
		return nil, fmt.Errorf("benchmark payload not found: %w", err)
	}
	return g.Generate(benchmarkPath, filepath.Join(dir, scenario.WarmupFile), maxBlocks)
}

// newPayloadInfo extracts gasUsed and blockHash from a newPayload call's
// execution payload parameter.
func newPayloadInfo(call *payload.RPCCall) (uint64, string, error) {
	exec := firstParamObject(call)
	if exec == nil {
		return 0, "", nil
	}
	gas, err := payload.ParseGas(exec["gasUsed"])
	if err != nil {
		return 0, "", err
	}
	blockHash, _ := exec["blockHash"].(string)
	return gas, blockHash, nil
}

// headBlockHash extracts the head hash from a forkchoiceUpdated call's
// forkchoice state parameter.
func headBlockHash(call *payload.RPCCall) string {
	state := firstParamObject(call)
	if state == nil {
		return ""
	}
	head, _ := state["headBlockHash"].(string)
	return head
}

// firstParamObject returns the call's first parameter when it is a JSON
// object, nil otherwise.
func firstParamObject(call *payload.RPCCall) map[string]any {
	var params []json.RawMessage
	if err := json.Unmarshal(call.Params, &params); err != nil || len(params) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(params[0], &obj); err != nil {
		return nil
	}
	return obj
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
