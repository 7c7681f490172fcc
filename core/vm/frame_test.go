package vm

import (
	"testing"

	"github.com/eth2030/eth2030/core/types"
)

func newRunFrame(code []byte, gas uint64) *Frame {
	table := OpSetFor(ForkRules{Fork: Glamsterdan})
	plan := Analyze(code, table)
	f, err := NewFrame(DefaultConfig(), plan, table, code, newMockDB(), newMockHost(),
		types.BytesToAddress([]byte{0xaa}), types.BytesToAddress([]byte{0xbb}),
		WordFromUint64(256, 0), nil, gas, false, 0)
	if err != nil {
		panic(err)
	}
	return f
}

func TestNewFrameRejectsOversizeBytecode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBytecodeSize = 4
	code := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	table := OpSetFor(ForkRules{Fork: Glamsterdan})
	plan := Analyze(code, table)
	_, err := NewFrame(cfg, plan, table, code, newMockDB(), newMockHost(),
		types.BytesToAddress([]byte{0xaa}), types.BytesToAddress([]byte{0xbb}),
		WordFromUint64(256, 0), nil, 1_000_000, false, 0)
	if err != ErrBytecodeTooLarge {
		t.Fatalf("expected ErrBytecodeTooLarge, got %v", err)
	}
}

func TestFrameRunAddsAndReturns(t *testing.T) {
	// PUSH1 5, PUSH1 7, ADD, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{
		0x60, 0x05,
		0x60, 0x07,
		0x01,
		0x60, 0x00,
		0x52,
		0x60, 0x20,
		0x60, 0x00,
		0xf3,
	}
	f := newRunFrame(code, 1_000_000)
	out, err := f.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("return data length = %d, want 32", len(out))
	}
	got := WordFromBytes(256, out)
	if got.Uint64() != 12 {
		t.Fatalf("returned word = %d, want 12", got.Uint64())
	}
}

func TestFrameRunOutOfGasFaults(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00} // PUSH1 1 PUSH1 2 ADD STOP
	f := newRunFrame(code, 1)
	if _, err := f.Run(); err != ErrOutOfGas {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
}

func TestFrameRunStackUnderflowAtBlockEntry(t *testing.T) {
	// ADD with nothing on the stack: the block's MinStack check must fault
	// before the handler ever runs.
	code := []byte{0x01}
	f := newRunFrame(code, 1_000_000)
	if _, err := f.Run(); err != ErrStackUnderflow {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}

func TestFrameRunInvalidOpcodeFaults(t *testing.T) {
	code := []byte{0x0c} // unassigned opcode
	f := newRunFrame(code, 1_000_000)
	if _, err := f.Run(); err != ErrInvalidOpcode {
		t.Fatalf("expected ErrInvalidOpcode, got %v", err)
	}
}

func TestFrameRunStaticContextRejectsWrites(t *testing.T) {
	// PUSH1 1, PUSH1 0, SSTORE: a state-modifying op under a static frame.
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	table := OpSetFor(ForkRules{Fork: Glamsterdan})
	plan := Analyze(code, table)
	f, err := NewFrame(DefaultConfig(), plan, table, code, newMockDB(), newMockHost(),
		types.BytesToAddress([]byte{0xaa}), types.BytesToAddress([]byte{0xbb}),
		WordFromUint64(256, 0), nil, 1_000_000, true, 0)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if _, err := f.Run(); err != ErrWriteProtection {
		t.Fatalf("expected ErrWriteProtection, got %v", err)
	}
}

func TestFrameRunPausesForCallOrchestration(t *testing.T) {
	// PUSH the seven CALL args (retLen, retOff, argsLen, argsOff, value,
	// addr, gas pushed last) then CALL.
	code := []byte{
		0x60, 0x00, // retLength
		0x60, 0x00, // retOffset
		0x60, 0x00, // argsLength
		0x60, 0x00, // argsOffset
		0x60, 0x00, // value
		0x73, // PUSH20
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0x61, 0x08, 0xfc, // PUSH2 0x08fc (gas)
		0xf1, // CALL
	}
	f := newRunFrame(code, 1_000_000)
	_, err := f.Run()
	if err != ErrCallOrchestrationRequired {
		t.Fatalf("expected ErrCallOrchestrationRequired, got %v", err)
	}
	pc := f.PendingCall()
	if pc == nil || pc.Kind != CALL {
		t.Fatalf("expected a pending CALL, got %+v", pc)
	}

	f.ResumeCall(true, []byte{0x2a}, pc.Gas)
	if f.PendingCall() != nil {
		t.Fatal("ResumeCall must clear the pending call")
	}
	if f.stack.Len() != 1 || f.stack.Peek().Uint64() != 1 {
		t.Fatalf("ResumeCall on success should push 1, stack = %v", f.stack.Data())
	}

	if _, err := f.Run(); err != nil {
		t.Fatalf("run after resume failed: %v", err)
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f, _, _ := newTestFrame(nil)
	push(f, 1)
	push(f, 2)
	if err := f.memory.Resize(32); err != nil {
		t.Fatal(err)
	}
	f.memory.Store(0, []byte{0xaa})

	clone := f.Clone()
	clone.stack.Peek().Add(clone.stack.Peek(), WordFromUint64(f.wordWidth, 100))
	clone.memory.Store8(0, 0xbb)

	if f.stack.Peek().Uint64() != 2 {
		t.Fatalf("mutating the clone's stack affected the original: %d", f.stack.Peek().Uint64())
	}
	if f.memory.Data()[0] != 0xaa {
		t.Fatalf("mutating the clone's memory affected the original: %#x", f.memory.Data()[0])
	}
}

func TestFrameEqualComparesMinimalAndOptimizedExecution(t *testing.T) {
	code := []byte{0x60, 0x05, 0x60, 0x07, 0x01, 0x00} // PUSH1 5 PUSH1 7 ADD STOP
	table := OpSetFor(ForkRules{Fork: Glamsterdan})

	minimalPlan := AnalyzeMinimal(code, table)
	optimizedPlan := Analyze(code, table)

	addr := types.BytesToAddress([]byte{0xaa})
	caller := types.BytesToAddress([]byte{0xbb})

	fm, err := NewFrame(DefaultConfig(), minimalPlan, table, code, newMockDB(), newMockHost(), addr, caller, WordFromUint64(256, 0), nil, 1_000_000, false, 0)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	fo, err := NewFrame(DefaultConfig(), optimizedPlan, table, code, newMockDB(), newMockHost(), addr, caller, WordFromUint64(256, 0), nil, 1_000_000, false, 0)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	if _, err := fm.Run(); err != nil {
		t.Fatalf("minimal run failed: %v", err)
	}
	if _, err := fo.Run(); err != nil {
		t.Fatalf("optimized run failed: %v", err)
	}
	if !fm.Equal(fo) {
		t.Fatal("minimal and optimized execution of the same bytecode should converge to equal frame state")
	}
}
