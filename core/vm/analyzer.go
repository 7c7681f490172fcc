// analyzer.go turns raw bytecode into a Plan. Pass 1 classifies every
// byte (opcode start, push-data, jumpdest) with three bitsets in a
// single linear scan, grounded on the teacher's analyzeJumpdests/isCode
// walk in contract.go. Pass 2 walks the classified opcodes once more to
// compute per-block static gas and stack-height bounds (grounded on
// stack_validation.go's StackValidator.ValidateSequence, but sourced
// from OpInfo.Pops/Pushes instead of a separate requirements table) and,
// for the optimized variant, to fuse PUSH_N + {ADD,MUL,DIV,JUMP,JUMPI}
// pairs into synthetic opcodes.
package vm

import (
	"sort"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/eth2030/eth2030/log"
)

var analyzerLog = log.Default().Module("vm-analyzer")

// classify walks code once and marks, for every byte offset, whether it
// begins an opcode, is push-data belonging to a preceding PUSH, or is a
// valid JUMPDEST. PUSH immediate bytes are skipped over so a byte value
// equal to 0x5b inside push data is never mistaken for a jump target.
func classify(code []byte, table OpTable) (opStart, pushData, jumpdest *bitset.BitSet) {
	n := uint(len(code))
	opStart = bitset.New(n)
	pushData = bitset.New(n)
	jumpdest = bitset.New(n)

	for i := 0; i < len(code); {
		op := OpCode(code[i])
		opStart.Set(uint(i))
		if op == JUMPDEST && table[JUMPDEST] != nil {
			jumpdest.Set(uint(i))
		}
		if size := op.PushSize(); size > 0 {
			for j := 1; j <= size && i+j < len(code); j++ {
				pushData.Set(uint(i + j))
			}
			i += size + 1
			continue
		}
		i++
	}
	return opStart, pushData, jumpdest
}

// AnalyzeMinimal builds the reference MinimalPlan: raw bytecode walked
// directly through the classification bitmaps, with no fusion.
func AnalyzeMinimal(code []byte, table OpTable) *MinimalPlan {
	opStart, _, jumpdest := classify(code, table)

	blocks, blockIndex := computeBlocks(code, table, opStart)

	return &MinimalPlan{
		code:       code,
		jumpdest:   jumpdest,
		opTable:    table,
		blocks:     blocks,
		blockIndex: blockIndex,
	}
}

// blockInfo is one basic block discovered by computeBlocks.
type blockInfo struct {
	start int
	meta  BlockMetadata
}

// computeBlocks splits code into basic blocks, one starting at PC 0 and
// one at every JUMPDEST, then sums static gas and tracks the running
// stack-height bounds for each block. blockIndex maps every byte offset
// to the index of the block it belongs to.
func computeBlocks(code []byte, table OpTable, opStart *bitset.BitSet) ([]blockInfo, []int) {
	var blocks []blockInfo
	blockIndex := make([]int, len(code))

	cur := blockInfo{start: 0}
	height, minHeight, maxHeight := 0, 0, 0
	started := false

	flush := func(end int) {
		if !started {
			return
		}
		cur.meta.MinStack = -minHeight
		cur.meta.MaxStack = maxHeight
		blocks = append(blocks, cur)
		for i := cur.start; i < end; i++ {
			blockIndex[i] = len(blocks) - 1
		}
	}

	for i := 0; i < len(code); {
		if !opStart.Test(uint(i)) {
			i++
			continue
		}
		op := OpCode(code[i])
		if op == JUMPDEST && started {
			flush(i)
			cur = blockInfo{start: i}
			height, minHeight, maxHeight = 0, 0, 0
		}
		started = true

		info := table[op]
		if info != nil {
			cur.meta.StaticGas += info.ConstantGas
			height -= info.Pops
			if height < minHeight {
				minHeight = height
			}
			height += info.Pushes
			if height > maxHeight {
				maxHeight = height
			}
		}

		size := op.PushSize()
		next := i + 1 + size
		i = next
	}
	flush(len(code))

	return blocks, blockIndex
}

// fusableInline and fusablePtr map the opcode that follows a PUSH_N to
// the fused opcode Analyze emits for the pair.
var fusableInline = map[OpCode]OpCode{
	ADD: PushAddInline, MUL: PushMulInline, DIV: PushDivInline,
	JUMP: PushJumpInline, JUMPI: PushJumpiInline,
}
var fusablePtr = map[OpCode]OpCode{
	ADD: PushAddPtr, MUL: PushMulPtr, DIV: PushDivPtr,
	JUMP: PushJumpPtr, JUMPI: PushJumpiPtr,
}

// Analyze builds the OptimizedPlan: block metadata as in AnalyzeMinimal,
// plus a fused instruction stream and a constants table for fused push
// immediates wider than 64 bits (unfused PUSH immediates are read from
// the bytecode).
func Analyze(code []byte, table OpTable) *OptimizedPlan {
	opStart, _, jumpdest := classify(code, table)
	blocks, blockIndex := computeBlocks(code, table, opStart)

	var stream []Cell
	var constants []*Word
	var indexToPC []uint64
	var blockStartFlags []bool
	var blockMeta []BlockMetadata
	var jumps []jumpTarget

	blockOf := func(pc int) BlockMetadata {
		if pc < len(blockIndex) {
			return blocks[blockIndex[pc]].meta
		}
		return BlockMetadata{}
	}

	emit := func(pc int, op OpCode, isBlockStart bool) {
		idx := len(stream)
		stream = append(stream, Cell(op))
		indexToPC = append(indexToPC, uint64(pc))
		blockStartFlags = append(blockStartFlags, isBlockStart)
		if isBlockStart {
			blockMeta = append(blockMeta, blockOf(pc))
		} else {
			blockMeta = append(blockMeta, BlockMetadata{})
		}
		if op == JUMPDEST {
			jumps = append(jumps, jumpTarget{pc: uint64(pc), idx: idx})
		}
	}

	i := 0
	for i < len(code) {
		pc := i
		op := OpCode(code[i])
		isBlockStart := op == JUMPDEST || (i == 0)

		if op.IsPush() && i+1+op.PushSize() <= len(code) {
			size := op.PushSize()
			nextI := i + 1 + size
			if nextI < len(code) {
				nextOp := OpCode(code[nextI])
				if inlineOp, ok := fusableInline[nextOp]; ok {
					raw := readPush(code, i+1, size)
					if fitsUint64(raw) {
						emit(pc, inlineOp, isBlockStart)
						stream = append(stream, Cell(rawUint64(raw)))
						indexToPC = append(indexToPC, uint64(pc))
						blockStartFlags = append(blockStartFlags, false)
						blockMeta = append(blockMeta, BlockMetadata{})
						i = nextI + 1
						continue
					}
					ptrOp := fusablePtr[nextOp]
					idx := len(constants)
					constants = append(constants, WordFromBytes(DefaultWordWidth, raw))
					emit(pc, ptrOp, isBlockStart)
					stream = append(stream, Cell(idx))
					indexToPC = append(indexToPC, uint64(pc))
					blockStartFlags = append(blockStartFlags, false)
					blockMeta = append(blockMeta, BlockMetadata{})
					i = nextI + 1
					continue
				}
			}
			emit(pc, op, isBlockStart)
			i = nextI
			continue
		}

		emit(pc, op, isBlockStart)
		if size := op.PushSize(); size > 0 {
			i += size + 1
		} else {
			i++
		}
	}

	sort.Slice(jumps, func(a, b int) bool { return jumps[a].pc < jumps[b].pc })

	return &OptimizedPlan{
		code:       code,
		stream:     stream,
		constants:  constants,
		indexToPC:  indexToPC,
		blockStart: blockStartFlags,
		blockMeta:  blockMeta,
		jumpTable:  jumps,
		jumpdest:   jumpdest,
	}
}

func readPush(code []byte, from, size int) []byte {
	buf := make([]byte, size)
	n := copy(buf, code[from:])
	_ = n
	return buf
}

func fitsUint64(raw []byte) bool {
	for i := 0; i < len(raw)-8; i++ {
		if raw[i] != 0 {
			return false
		}
	}
	return true
}

func rawUint64(raw []byte) uint64 {
	var v uint64
	start := len(raw) - 8
	if start < 0 {
		start = 0
	}
	for _, b := range raw[start:] {
		v = v<<8 | uint64(b)
	}
	return v
}

// Cache memoizes OptimizedPlan by a non-cryptographic fingerprint of the
// bytecode, keyed with xxhash and evicted LRU. Collision on a 64-bit
// fingerprint is accepted as astronomically unlikely; this cache never
// backs a consensus-relevant decision, only dispatch speed.
type Cache struct {
	mu    sync.Mutex
	inner *lru.Cache[uint64, *OptimizedPlan]
	table OpTable
}

// NewCache returns an analysis cache holding up to size plans.
func NewCache(size int, table OpTable) (*Cache, error) {
	inner, err := lru.New[uint64, *OptimizedPlan](size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner, table: table}, nil
}

// Get returns the cached plan for code, analyzing and inserting it on a
// miss.
func (c *Cache) Get(code []byte) *OptimizedPlan {
	fp := xxhash.Sum64(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if plan, ok := c.inner.Get(fp); ok {
		return plan
	}
	plan := Analyze(code, c.table)
	evicted := c.inner.Add(fp, plan)
	analyzerLog.Debug("analyzed bytecode", "fingerprint", fp, "codeLen", len(code), "evicted", evicted)
	return plan
}
