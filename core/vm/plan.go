package vm

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Cell is one pointer-width element of a plan's instruction stream. Its
// meaning is positional, never tagged: the opcode read from the cell at
// stream position i determines whether the cell at i+1 holds a fused
// opcode's immediate (an inline value or a constants-table index) or the
// next opcode. Block metadata is not stored in the stream; a plan keeps it
// per stream position beside the stream. Unfused PUSH immediates are read
// from the bytecode.
// Storing a plain uint64 here, rather than a function pointer, is what
// lets the analyzer build a stream with no unsafe.Pointer anywhere.
type Cell uint64

// BlockMetadata is validated once per basic block entry instead of once
// per instruction: the static gas for every instruction in the block has
// already been summed, and the stack-height bounds the block can reach
// have already been computed, so the frame checks both with a single
// comparison at the block's first instruction.
type BlockMetadata struct {
	StaticGas uint64 // sum of ConstantGas over every instruction in the block
	MinStack  int    // minimum stack height required to enter the block
	MaxStack  int    // maximum stack height reachable during the block, relative to entry
}

// jumpTarget maps a bytecode PC to the stream position a dynamic JUMP/
// JUMPI resolves to. Plans keep this sorted by PC for binary search.
type jumpTarget struct {
	pc  uint64
	idx int
}

// Plan is the runtime container a Frame executes against. Two variants
// satisfy it: OptimizedPlan, built by Analyze, carries a fused
// instruction stream and a constants table; MinimalPlan walks raw
// bytecode directly with no fusion, keeping only the jumpdest
// classification bitmap (the op-start and push-data bitmaps are not
// retained), trading dispatch speed for a trivially-correct reference
// implementation used to cross-check the optimized path (spec.md §4.7).
type Plan interface {
	// Len returns the number of addressable stream positions.
	Len() int
	// OpAt returns the opcode at stream position i.
	OpAt(i int) OpCode
	// PushBytes returns the n immediate bytes following position i for a
	// PUSH-family opcode, zero-padded if they run past the end of code.
	PushBytes(i int, n int) []byte
	// ConstantAt returns the constants-table entry referenced by a
	// pointer-variant fused opcode's index cell.
	ConstantAt(idx int) *Word
	// BlockMetadataAt returns the metadata for the block that starts at
	// stream position i. Only meaningful when i is a block boundary.
	BlockMetadataAt(i int) BlockMetadata
	// IsBlockStart reports whether position i begins a new basic block.
	IsBlockStart(i int) bool
	// PCForIndex returns the original bytecode PC stream position i was
	// derived from (used by the PC opcode and by tracers).
	PCForIndex(i int) uint64
	// IndexForPC resolves a JUMP/JUMPI target PC to a stream position
	// (OptimizedPlan binary-searches its sorted jumpdest table;
	// MinimalPlan tests its jumpdest bitmap).
	IndexForPC(pc uint64) (idx int, ok bool)
	// Advance returns the next stream position after executing the
	// instruction at i, given whether it carried an inline immediate.
	Advance(i int) int
}

// findJumpTarget binary-searches a sorted jump table for pc.
func findJumpTarget(table []jumpTarget, pc uint64) (int, bool) {
	n := len(table)
	j := sort.Search(n, func(k int) bool { return table[k].pc >= pc })
	if j < n && table[j].pc == pc {
		return table[j].idx, true
	}
	return 0, false
}

// MinimalPlan is the unoptimized reference plan: stream position and
// bytecode PC always coincide, and no fusion ever happens. It exists to
// be cross-checked against an OptimizedPlan in shadow-execution mode
// (spec.md §4.7), not for production dispatch speed.
type MinimalPlan struct {
	code       []byte
	jumpdest   *bitset.BitSet
	opTable    OpTable
	blocks     []blockInfo
	blockIndex []int
}

func (p *MinimalPlan) Len() int { return len(p.code) }

func (p *MinimalPlan) OpAt(i int) OpCode {
	if i < 0 || i >= len(p.code) {
		return STOP
	}
	return OpCode(p.code[i])
}

func (p *MinimalPlan) PushBytes(i, n int) []byte {
	buf := make([]byte, n)
	if i+1 >= len(p.code) {
		return buf
	}
	copy(buf, p.code[i+1:])
	return buf
}

func (p *MinimalPlan) ConstantAt(idx int) *Word { return nil }

func (p *MinimalPlan) BlockMetadataAt(i int) BlockMetadata {
	if i < 0 || i >= len(p.blockIndex) {
		return BlockMetadata{}
	}
	return p.blocks[p.blockIndex[i]].meta
}

func (p *MinimalPlan) IsBlockStart(i int) bool {
	if i < 0 || i >= len(p.blockIndex) {
		return false
	}
	return p.blocks[p.blockIndex[i]].start == i
}

func (p *MinimalPlan) PCForIndex(i int) uint64 { return uint64(i) }

func (p *MinimalPlan) IndexForPC(pc uint64) (int, bool) {
	if pc >= uint64(len(p.code)) {
		return 0, false
	}
	if !p.jumpdest.Test(uint(pc)) {
		return 0, false
	}
	return int(pc), true
}

func (p *MinimalPlan) Advance(i int) int {
	op := p.OpAt(i)
	if size := op.PushSize(); size > 0 {
		return i + 1 + size
	}
	return i + 1
}

// OptimizedPlan is the analyzer's fused, cached plan: a Cell stream
// where PUSH_N+{ADD,MUL,DIV,JUMP,JUMPI} pairs have been collapsed into
// synthetic opcodes (see opcodes.go), with a constants table backing
// immediates too wide for an inline Cell.
type OptimizedPlan struct {
	code       []byte
	stream     []Cell
	constants  []*Word
	indexToPC  []uint64
	blockStart []bool
	blockMeta  []BlockMetadata
	jumpTable  []jumpTarget
	jumpdest   *bitset.BitSet
}

func (p *OptimizedPlan) Len() int { return len(p.stream) }

func (p *OptimizedPlan) OpAt(i int) OpCode {
	if i < 0 || i >= len(p.stream) {
		return STOP
	}
	return OpCode(p.stream[i])
}

func (p *OptimizedPlan) PushBytes(i, n int) []byte {
	buf := make([]byte, n)
	if i < 0 || i >= len(p.indexToPC) {
		return buf
	}
	pc := int(p.indexToPC[i])
	if pc+1 >= len(p.code) {
		return buf
	}
	copy(buf, p.code[pc+1:])
	return buf
}

func (p *OptimizedPlan) ConstantAt(idx int) *Word {
	if idx < 0 || idx >= len(p.constants) {
		return nil
	}
	return p.constants[idx]
}

func (p *OptimizedPlan) BlockMetadataAt(i int) BlockMetadata {
	if i < 0 || i >= len(p.blockMeta) {
		return BlockMetadata{}
	}
	return p.blockMeta[i]
}

func (p *OptimizedPlan) IsBlockStart(i int) bool {
	if i < 0 || i >= len(p.blockStart) {
		return false
	}
	return p.blockStart[i]
}

func (p *OptimizedPlan) PCForIndex(i int) uint64 {
	if i < 0 || i >= len(p.indexToPC) {
		return 0
	}
	return p.indexToPC[i]
}

func (p *OptimizedPlan) IndexForPC(pc uint64) (int, bool) {
	return findJumpTarget(p.jumpTable, pc)
}

func (p *OptimizedPlan) Advance(i int) int {
	op := p.OpAt(i)
	if op.IsFused() {
		return i + 2
	}
	return i + 1
}
