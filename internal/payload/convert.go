package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FixtureFormat identifies the shape of a fixture document.
type FixtureFormat int

const (
	// FormatUnrecognized means neither known fixture key is present.
	// Conversion yields an empty call list, not an error.
	FormatUnrecognized FixtureFormat = iota
	// FormatBlockList is the standard fixture shape with a "blocks" list.
	FormatBlockList
	// FormatEnginePayloads is the alternative shape with an explicit
	// "engineNewPayloads" list.
	FormatEnginePayloads
)

// fixtureDoc is the permissive view of a fixture file. Only the fields
// needed for conversion are declared; execution payloads pass through as
// raw maps.
type fixtureDoc struct {
	Blocks            []fixtureBlock `json:"blocks"`
	EngineNewPayloads []fixtureBlock `json:"engineNewPayloads"`
}

// fixtureBlock is the normalized per-block record shared by both fixture
// shapes.
type fixtureBlock struct {
	ExecutionPayload            map[string]any `json:"executionPayload"`
	RLP                         string         `json:"rlp"`
	ExpectedBlobVersionedHashes []any          `json:"expectedBlobVersionedHashes"`
	ParentBeaconBlockRoot       any            `json:"parentBeaconBlockRoot"`
}

// classify picks the fixture shape. A non-empty blocks list takes
// precedence over engineNewPayloads.
func classify(doc *fixtureDoc) FixtureFormat {
	if len(doc.Blocks) > 0 {
		return FormatBlockList
	}
	if doc.EngineNewPayloads != nil {
		return FormatEnginePayloads
	}
	return FormatUnrecognized
}

// Converter translates execution-spec-tests fixtures into benchmark
// payloads.
type Converter struct {
	log logrus.FieldLogger
}

// NewConverter creates a fixture converter.
func NewConverter(log logrus.FieldLogger) *Converter {
	return &Converter{log: log.WithField("component", "converter")}
}

// Result summarizes a completed conversion.
type Result struct {
	Name     string
	Calls    int
	TotalGas uint64
	Path     string
}

// ConvertFile reads the fixture at fixturePath and writes the converted
// call list to outputPath. Each convertible block yields one newPayload
// call followed by one forkchoiceUpdated call; rlp-only blocks are
// skipped. IDs are assigned 1..n over the emitted list.
func (c *Converter) ConvertFile(fixturePath, outputPath string) (*Result, error) {
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var doc fixtureDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture JSON: %w", err)
	}

	var entries []fixtureBlock
	switch format := classify(&doc); format {
	case FormatBlockList:
		entries = doc.Blocks
	case FormatEnginePayloads:
		entries = doc.EngineNewPayloads
	case FormatUnrecognized:
		c.log.WithField("fixture", fixturePath).Debug("No convertible blocks in fixture")
	}

	var calls []RPCCall
	var totalGas uint64
	skipped := 0

	for i := range entries {
		block := &entries[i]
		if block.ExecutionPayload == nil {
			// rlp-only encodings carry no payload to replay.
			skipped++
			continue
		}

		gas, err := ParseGas(block.ExecutionPayload["gasUsed"])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		totalGas += gas

		calls, err = appendBlockCalls(calls, block)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}

	calls = Renumber(calls)

	if err := WriteFile(outputPath, calls); err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"fixture":  filepath.Base(fixturePath),
		"calls":    len(calls),
		"skipped":  skipped,
		"totalGas": totalGas,
	}).Debug("Converted fixture")

	return &Result{
		Name:     stem(outputPath),
		Calls:    len(calls),
		TotalGas: totalGas,
		Path:     outputPath,
	}, nil
}

// appendBlockCalls emits the newPayload/forkchoiceUpdated pair for one
// normalized block record.
func appendBlockCalls(calls []RPCCall, block *fixtureBlock) ([]RPCCall, error) {
	hashes := block.ExpectedBlobVersionedHashes
	if hashes == nil {
		hashes = []any{}
	}

	np, err := NewPayloadCall(block.ExecutionPayload, hashes, block.ParentBeaconBlockRoot)
	if err != nil {
		return nil, err
	}
	calls = append(calls, np)

	blockHash := stringField(block.ExecutionPayload, "blockHash", ZeroHash)
	parentHash := stringField(block.ExecutionPayload, "parentHash", ZeroHash)

	fc, err := ForkchoiceCall(blockHash, parentHash)
	if err != nil {
		return nil, err
	}
	return append(calls, fc), nil
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
