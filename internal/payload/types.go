// Package payload builds and manipulates Engine API benchmark payloads:
// ordered lists of engine_newPayloadV3/engine_forkchoiceUpdatedV3 calls
// consumed by the gas-benchmark simulator.
package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Engine API methods emitted into benchmark payloads.
const (
	MethodNewPayloadV3        = "engine_newPayloadV3"
	MethodForkchoiceUpdatedV3 = "engine_forkchoiceUpdatedV3"
	methodNewPayloadPrefix    = "engine_newPayload"
	methodForkchoicePrefix    = "engine_forkchoiceUpdated"
)

// ZeroHash is the all-zero 32-byte hash used when a block hash is absent.
var ZeroHash = common.Hash{}.Hex()

// RPCCall represents a single JSON-RPC call in a payload file.
type RPCCall struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      int             `json:"id"`
}

// IsNewPayload reports whether this call delivers a block payload
// (any engine_newPayload version).
func (c *RPCCall) IsNewPayload() bool {
	return strings.HasPrefix(c.Method, methodNewPayloadPrefix)
}

// IsForkchoiceUpdated reports whether this call advances fork choice
// (any engine_forkchoiceUpdated version).
func (c *RPCCall) IsForkchoiceUpdated() bool {
	return strings.HasPrefix(c.Method, methodForkchoicePrefix)
}

// ForkchoiceState is the first parameter of engine_forkchoiceUpdated calls.
// Hashes are kept as strings so malformed fixture data passes through
// unchanged.
type ForkchoiceState struct {
	HeadBlockHash      string `json:"headBlockHash"`
	SafeBlockHash      string `json:"safeBlockHash"`
	FinalizedBlockHash string `json:"finalizedBlockHash"`
}

// ExecutionPayload is the Engine API execution payload emitted by the
// sample generator. Field order matches the Engine API wire layout.
type ExecutionPayload struct {
	ParentHash    string                 `json:"parentHash"`
	FeeRecipient  string                 `json:"feeRecipient"`
	StateRoot     string                 `json:"stateRoot"`
	ReceiptsRoot  string                 `json:"receiptsRoot"`
	LogsBloom     string                 `json:"logsBloom"`
	PrevRandao    string                 `json:"prevRandao"`
	BlockNumber   string                 `json:"blockNumber"`
	GasLimit      string                 `json:"gasLimit"`
	GasUsed       string                 `json:"gasUsed"`
	Timestamp     string                 `json:"timestamp"`
	ExtraData     string                 `json:"extraData"`
	BaseFeePerGas string                 `json:"baseFeePerGas"`
	BlockHash     string                 `json:"blockHash"`
	Transactions  []string               `json:"transactions"`
	Withdrawals   []*ethtypes.Withdrawal `json:"withdrawals"`
	BlobGasUsed   string                 `json:"blobGasUsed"`
	ExcessBlobGas string                 `json:"excessBlobGas"`
}

// NewPayloadCall builds an engine_newPayloadV3 call. The ID is left unset;
// callers assign IDs with Renumber before writing.
func NewPayloadCall(execPayload any, versionedHashes any, parentBeaconRoot any) (RPCCall, error) {
	return newCall(MethodNewPayloadV3, []any{execPayload, versionedHashes, parentBeaconRoot})
}

// ForkchoiceCall builds an engine_forkchoiceUpdatedV3 call that makes
// blockHash the head and safe block and parentHash the finalized block.
func ForkchoiceCall(blockHash, parentHash string) (RPCCall, error) {
	state := ForkchoiceState{
		HeadBlockHash:      blockHash,
		SafeBlockHash:      blockHash,
		FinalizedBlockHash: parentHash,
	}
	return newCall(MethodForkchoiceUpdatedV3, []any{state, nil})
}

func newCall(method string, params []any) (RPCCall, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return RPCCall{}, fmt.Errorf("failed to marshal %s params: %w", method, err)
	}
	return RPCCall{JSONRPC: "2.0", Method: method, Params: raw}, nil
}

// Renumber returns a copy of calls with IDs reassigned sequentially from 1
// in list order.
func Renumber(calls []RPCCall) []RPCCall {
	out := make([]RPCCall, len(calls))
	for i, c := range calls {
		c.ID = i + 1
		out[i] = c
	}
	return out
}

// BlockCount returns the number of newPayload calls in the list.
func BlockCount(calls []RPCCall) int {
	count := 0
	for i := range calls {
		if calls[i].IsNewPayload() {
			count++
		}
	}
	return count
}

// ParseGas interprets a gasUsed value from fixture or payload JSON, which
// may be a 0x-prefixed hex string or a plain number. A missing value (nil)
// counts as zero.
func ParseGas(v any) (uint64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		gas, err := hexutil.DecodeUint64(g)
		if err != nil {
			return 0, fmt.Errorf("invalid gasUsed %q: %w", g, err)
		}
		return gas, nil
	case float64:
		return uint64(g), nil
	case json.Number:
		n, err := g.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid gasUsed %q: %w", g.String(), err)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("invalid gasUsed type %T", v)
	}
}

// WriteFile writes calls as pretty-printed JSON to path, creating parent
// directories as needed.
func WriteFile(path string, calls []RPCCall) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create payload directory: %w", err)
	}
	data, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write payload file: %w", err)
	}
	return nil
}
