package scenario

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/gateway-fm/payloadgen/internal/payload"
)

// Sample chain constants. Blocks are empty, so gasLimit/baseFee are fixed
// and receiptsRoot is the empty-trie root.
const (
	sampleGasLimit  = 30_000_000
	sampleBaseFee   = 7
	sampleGenesisTS = 1_700_000_000
	sampleBlockTime = 12
)

// GenerateSample synthesizes a deterministic chain of numBlocks empty
// blocks directly into <outputRoot>/<name>/benchmark.json, bypassing
// fixture acquisition. Block i (0-based) has blockNumber i+1 and a
// blockHash derived from it; each block's parentHash is the previous
// block's blockHash, with the genesis parent all zero.
func (b *Builder) GenerateSample(outputRoot, name string, numBlocks int, gasPerBlock uint64) (*Summary, error) {
	dir := filepath.Join(outputRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}

	var calls []payload.RPCCall
	var totalGas uint64

	parentHash := payload.ZeroHash
	for i := 0; i < numBlocks; i++ {
		blockNumber := uint64(i + 1)
		blockHash := indexHash(i + 1)
		timestamp := uint64(sampleGenesisTS + sampleBlockTime*i)

		exec := &payload.ExecutionPayload{
			ParentHash:    parentHash,
			FeeRecipient:  common.Address{}.Hex(),
			StateRoot:     indexHash(i + 100),
			ReceiptsRoot:  ethtypes.EmptyRootHash.Hex(),
			LogsBloom:     hexutil.Encode(ethtypes.Bloom{}.Bytes()),
			PrevRandao:    indexHash(i + 200),
			BlockNumber:   hexutil.EncodeUint64(blockNumber),
			GasLimit:      hexutil.EncodeUint64(sampleGasLimit),
			GasUsed:       hexutil.EncodeUint64(gasPerBlock),
			Timestamp:     hexutil.EncodeUint64(timestamp),
			ExtraData:     "0x",
			BaseFeePerGas: hexutil.EncodeUint64(sampleBaseFee),
			BlockHash:     blockHash,
			Transactions:  []string{},
			Withdrawals:   []*ethtypes.Withdrawal{},
			BlobGasUsed:   "0x0",
			ExcessBlobGas: "0x0",
		}

		np, err := payload.NewPayloadCall(exec, []string{}, indexHash(i+300))
		if err != nil {
			return nil, err
		}
		calls = append(calls, np)

		fc, err := payload.ForkchoiceCall(blockHash, parentHash)
		if err != nil {
			return nil, err
		}
		calls = append(calls, fc)

		totalGas += gasPerBlock
		parentHash = blockHash
	}

	calls = payload.Renumber(calls)

	if err := payload.WriteFile(filepath.Join(dir, BenchmarkFile), calls); err != nil {
		return nil, err
	}

	s := &Scenario{
		Name:          name,
		Description:   fmt.Sprintf("Sample benchmark with %d blocks, %d total gas", numBlocks, totalGas),
		GenesisPath:   "",
		ChainRLPPath:  "",
		BenchmarkPath: BenchmarkFile,
		WarmupPath:    WarmupFile,
		Config:        DefaultConfig(),
		TotalGas:      totalGas,
	}
	if err := writeConfig(dir, s); err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"scenario": name,
		"blocks":   numBlocks,
		"totalGas": totalGas,
	}).Debug("Generated sample scenario")

	return &Summary{
		Scenario: name,
		Calls:    len(calls),
		TotalGas: totalGas,
	}, nil
}

// indexHash returns n as a zero-padded 32-byte hex hash.
func indexHash(n int) string {
	return common.BigToHash(big.NewInt(int64(n))).Hex()
}
