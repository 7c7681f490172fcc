package vm

import (
	"testing"

	"github.com/eth2030/eth2030/core/types"
)

func TestStructLogTracerRecordsStep(t *testing.T) {
	tracer := NewStructLogTracer()
	f, _, _ := newTestFrame(nil)
	f.tracer = tracer
	push(f, 3)
	push(f, 4)

	tracer.OnStep(f)

	if len(tracer.Logs) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(tracer.Logs))
	}
	entry := tracer.Logs[0]
	if entry.Gas != f.Gas() {
		t.Fatalf("logged gas = %d, want %d", entry.Gas, f.Gas())
	}
	if len(entry.Stack) != 2 {
		t.Fatalf("logged stack depth = %d, want 2", len(entry.Stack))
	}
	if entry.Stack[0].Uint64() != 3 || entry.Stack[1].Uint64() != 4 {
		t.Fatalf("logged stack = %v, want [3 4]", entry.Stack)
	}
}

func TestStructLogTracerStackSnapshotIsIndependent(t *testing.T) {
	tracer := NewStructLogTracer()
	f, _, _ := newTestFrame(nil)
	f.tracer = tracer
	push(f, 10)

	tracer.OnStep(f)
	f.stack.Peek().Add(f.stack.Peek(), WordFromUint64(f.wordWidth, 1))

	if got := tracer.Logs[0].Stack[0].Uint64(); got != 10 {
		t.Fatalf("snapshot mutated by later stack change: got %d, want 10", got)
	}
}

func TestStructLogTracerOnFaultAnnotatesLastStep(t *testing.T) {
	tracer := NewStructLogTracer()
	f, _, _ := newTestFrame(nil)
	f.tracer = tracer
	push(f, 1)

	tracer.OnStep(f)
	tracer.OnFault(f, ErrOutOfGas)

	if got := tracer.Logs[len(tracer.Logs)-1].Err; got != ErrOutOfGas {
		t.Fatalf("last step err = %v, want %v", got, ErrOutOfGas)
	}
}

func TestStructLogTracerOnFaultNoopOnEmptyLog(t *testing.T) {
	tracer := NewStructLogTracer()
	f, _, _ := newTestFrame(nil)
	// No OnStep has run yet; OnFault must not panic on an empty log.
	tracer.OnFault(f, ErrOutOfGas)
	if len(tracer.Logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(tracer.Logs))
	}
}

func TestNoopTracerDoesNothing(t *testing.T) {
	var tr NoopTracer
	f, _, _ := newTestFrame(nil)
	// These must be safe to call and have no observable effect.
	tr.OnStep(f)
	tr.OnEnd(f)
	tr.OnFault(f, ErrOutOfGas)
}

func TestFrameRunDrivesTracerForEveryStep(t *testing.T) {
	tracer := NewStructLogTracer()
	cfg := DefaultConfig()
	cfg.Tracer = tracer
	table := OpSetFor(ForkRules{Fork: Glamsterdan})
	// PUSH1 0x05, PUSH1 0x07, ADD, STOP
	code := []byte{0x60, 0x05, 0x60, 0x07, 0x01, 0x00}
	plan := Analyze(code, table)
	f, err := NewFrame(cfg, plan, table, code, newMockDB(), newMockHost(), types.Address{}, types.Address{}, WordFromUint64(256, 0), nil, 1_000_000, false, 0)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if _, err := f.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(tracer.Logs) == 0 {
		t.Fatal("expected at least one traced step")
	}
	last := tracer.Logs[len(tracer.Logs)-1]
	if last.Err != nil {
		t.Fatalf("last traced step recorded an error: %v", last.Err)
	}
}
