package vm

import "testing"

func TestFindJumpTargetBinarySearch(t *testing.T) {
	table := []jumpTarget{{pc: 2, idx: 0}, {pc: 9, idx: 1}, {pc: 40, idx: 2}}
	if idx, ok := findJumpTarget(table, 9); !ok || idx != 1 {
		t.Fatalf("findJumpTarget(9) = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := findJumpTarget(table, 10); ok {
		t.Fatal("findJumpTarget(10) should miss, table has no such pc")
	}
	if _, ok := findJumpTarget(nil, 0); ok {
		t.Fatal("findJumpTarget over an empty table must always miss")
	}
}

func TestMinimalPlanPushBytesZeroPadsPastEnd(t *testing.T) {
	code := []byte{0x60, 0x01} // PUSH1 1, no byte following
	table := testOpTable()
	plan := AnalyzeMinimal(code, table)
	got := plan.PushBytes(0, 2)
	want := []byte{0x01, 0x00}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PushBytes = %x, want %x", got, want)
		}
	}
}

func TestMinimalPlanIsBlockStartAtBlockBoundaries(t *testing.T) {
	code := []byte{0x00, 0x5b, 0x00} // STOP, JUMPDEST, STOP
	table := testOpTable()
	plan := AnalyzeMinimal(code, table)

	if !plan.IsBlockStart(0) {
		t.Fatal("offset 0 begins the first block")
	}
	if !plan.IsBlockStart(1) {
		t.Fatal("offset 1 (JUMPDEST) begins the second block")
	}
	if plan.IsBlockStart(2) {
		t.Fatal("offset 2 is mid-block, not a block start")
	}
}

func TestOptimizedPlanPushBytesFollowsOriginalPC(t *testing.T) {
	code := []byte{0x00, 0x60, 0x2a} // STOP, PUSH1 0x2a
	table := testOpTable()
	plan := Analyze(code, table)

	// stream index 1 is the PUSH1 at bytecode PC 1.
	got := plan.PushBytes(1, 1)
	if got[0] != 0x2a {
		t.Fatalf("PushBytes at the PUSH1 = %x, want 2a", got)
	}
}

func TestOptimizedPlanAdvanceSkipsFusedImmediateCell(t *testing.T) {
	code := []byte{0x60, 0x05, 0x01, 0x00} // PUSH1 5, ADD, STOP
	table := testOpTable()
	plan := Analyze(code, table)

	if plan.OpAt(0) != PushAddInline {
		t.Fatalf("expected fusion, got %v", plan.OpAt(0))
	}
	next := plan.Advance(0)
	if plan.OpAt(next) != STOP {
		t.Fatalf("Advance past the fused op landed on %v, want STOP", plan.OpAt(next))
	}
}

func TestOptimizedPlanOutOfRangeAccessorsReturnZeroValues(t *testing.T) {
	code := []byte{0x00}
	table := testOpTable()
	plan := Analyze(code, table)

	if plan.OpAt(-1) != STOP || plan.OpAt(100) != STOP {
		t.Fatal("OpAt out of range should report STOP, not panic")
	}
	if plan.ConstantAt(-1) != nil || plan.ConstantAt(100) != nil {
		t.Fatal("ConstantAt out of range should report nil")
	}
	if plan.IsBlockStart(100) {
		t.Fatal("IsBlockStart out of range should report false")
	}
	if plan.PCForIndex(100) != 0 {
		t.Fatal("PCForIndex out of range should report 0")
	}
}
