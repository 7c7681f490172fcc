package vm

import "errors"

// Sentinel faults raised by Frame execution. Callers should use errors.Is.
var (
	ErrStackOverflow    = errors.New("vm: stack overflow")
	ErrStackUnderflow   = errors.New("vm: stack underflow")
	ErrOutOfGas         = errors.New("vm: out of gas")
	ErrOutOfBounds      = errors.New("vm: memory access out of bounds")
	ErrInvalidJump      = errors.New("vm: invalid jump destination")
	ErrInvalidOpcode    = errors.New("vm: invalid opcode")
	ErrWriteProtection  = errors.New("vm: state-modifying operation in a static context")
	ErrBytecodeTooLarge = errors.New("vm: bytecode exceeds maximum size")
	ErrAllocationError  = errors.New("vm: allocation exceeds configured limit")

	// ErrExecutionReverted is not a fault: it is the normal REVERT outcome,
	// carrying returned data back to the caller.
	ErrExecutionReverted = errors.New("vm: execution reverted")

	// ErrCallOrchestrationRequired is returned by CALL/CREATE-family and
	// SELFDESTRUCT handlers after they have validated their stack
	// arguments and charged static/access-list gas. Inter-contract call
	// dispatch, nested-frame construction, and account creation belong to
	// the enclosing EVM object (see spec's non-goals); the frame stops
	// short of performing them and surfaces this error so that caller can
	// resume the frame once it has completed the call.
	ErrCallOrchestrationRequired = errors.New("vm: call orchestration required")
)
