package vm

import (
	"bytes"
	"errors"

	"github.com/eth2030/eth2030/core/types"
)

// ErrMissingJumpDestMetadata signals disagreement between the analyzer's
// emission and its block-boundary bookkeeping. This is a programmer
// error: it must not occur for well-formed analyzer output.
var ErrMissingJumpDestMetadata = errors.New("vm: missing jumpdest metadata")

// Frame is one call's worth of execution state: stack, memory, the plan
// being walked, and the database/host collaborators opcode handlers
// consult. It does not perform inter-contract calls itself — see
// ErrCallOrchestrationRequired — and it does not manage recursion depth;
// both belong to the enclosing EVM, grounded on interpreter.go's Run
// loop minus its Call/Create orchestration.
type Frame struct {
	plan   Plan
	pc     int // stream index, not necessarily a bytecode PC
	opTable OpTable

	stack       *Stack
	memory      *Memory
	memExpander *MemoryExpander

	gas int64

	address types.Address
	caller  types.Address
	value   *Word
	input   []byte
	static  bool
	depth   int

	code []byte // this frame's own runtime bytecode (CODESIZE/CODECOPY)

	output     []byte
	returndata []byte // most recent child call's return data (RETURNDATA*)
	logs       []types.Log

	db     Database
	host   Host
	tracer Tracer

	wordWidth uint

	pendingCall *PendingCall
}

// PendingCall is the decoded, gas-charged set of arguments a CALL-family,
// CREATE-family, or SELFDESTRUCT handler hands off to the enclosing EVM
// instead of performing the call itself (see ErrCallOrchestrationRequired).
type PendingCall struct {
	Kind OpCode

	Gas     uint64 // gas forwarded to the child call (already debited)
	Address types.Address
	Value   *Word

	ArgsOffset, ArgsLength uint64
	RetOffset, RetLength   uint64

	Code []byte // init code, for CREATE/CREATE2
	Salt *Word  // CREATE2 only
}

// NewFrame constructs a Frame ready to Run. gas is the gas budget for
// this call; static marks a STATICCALL context where state-modifying
// opcodes fault with ErrWriteProtection. It returns ErrBytecodeTooLarge
// if code exceeds cfg.MaxBytecodeSize.
func NewFrame(cfg Config, plan Plan, opTable OpTable, code []byte, db Database, host Host, address, caller types.Address, value *Word, input []byte, gas uint64, static bool, depth int) (*Frame, error) {
	cfg = cfg.withDefaults()
	if len(code) > cfg.MaxBytecodeSize {
		return nil, ErrBytecodeTooLarge
	}
	return &Frame{
		plan:        plan,
		opTable:     opTable,
		code:        code,
		stack:       NewStack(cfg.WordWidth, cfg.StackCapacity),
		memory:      NewMemory(cfg.MemoryLimit),
		memExpander: NewMemoryExpander(),
		gas:         int64(gas),
		address:     address,
		caller:      caller,
		value:       value,
		input:       input,
		static:      static,
		depth:       depth,
		db:          db,
		host:        host,
		tracer:      cfg.Tracer,
		wordWidth:   cfg.WordWidth,
	}, nil
}

// PendingCall returns the call/create/selfdestruct request left by the
// handler that most recently faulted with ErrCallOrchestrationRequired,
// or nil if none is pending.
func (f *Frame) PendingCall() *PendingCall { return f.pendingCall }

// ResumeCall completes a pending call: it writes returnData into memory
// at the caller-specified return offset (truncated to RetLength), pushes
// the success flag, refunds unused gas, records returnData for
// RETURNDATA*, clears the pending call, and advances past the
// originating instruction so Run can continue.
func (f *Frame) ResumeCall(success bool, returnData []byte, gasLeft uint64) {
	pc := f.pendingCall
	if pc == nil {
		return
	}
	f.gas += int64(gasLeft)
	f.returndata = returnData

	switch pc.Kind {
	case CREATE, CREATE2:
		if success {
			f.stack.pushUnchecked(addressWord(f.wordWidth, addressFromReturn(returnData)))
		} else {
			f.stack.pushUnchecked(f.newWord())
		}
	case SELFDESTRUCT:
		// SELFDESTRUCT halts; nothing to push.
	default:
		n := pc.RetLength
		if n > uint64(len(returnData)) {
			n = uint64(len(returnData))
		}
		if n > 0 {
			f.memory.Store(pc.RetOffset, returnData[:n])
		}
		if success {
			f.stack.pushUnchecked(WordFromUint64(f.wordWidth, 1))
		} else {
			f.stack.pushUnchecked(f.newWord())
		}
	}

	f.pendingCall = nil
	if pc.Kind != SELFDESTRUCT {
		f.pc = f.plan.Advance(f.pc)
	}
}

// addressFromReturn extracts the 20-byte address a CREATE/CREATE2 result
// carries (the enclosing EVM's convention: the new account's address,
// zero on failure).
func addressFromReturn(data []byte) types.Address {
	var a types.Address
	if len(data) >= 20 {
		copy(a[:], data[len(data)-20:])
	}
	return a
}

func addressWord(width uint, addr types.Address) *Word {
	return WordFromBytes(width, addr[:])
}

// Gas returns the frame's remaining gas.
func (f *Frame) Gas() uint64 {
	if f.gas < 0 {
		return 0
	}
	return uint64(f.gas)
}

// Output returns the data returned or reverted by the frame, if it has
// finished.
func (f *Frame) Output() []byte { return f.output }

// Logs returns the logs emitted so far.
func (f *Frame) Logs() []types.Log { return f.logs }

func (f *Frame) newWord() *Word { return NewWord(f.wordWidth) }

// useGas debits n from the frame's gas counter. Gas is signed so that an
// over-debit is observable as negative rather than wrapping.
func (f *Frame) useGas(n uint64) error {
	f.gas -= int64(n)
	if f.gas < 0 {
		return ErrOutOfGas
	}
	return nil
}

// Run walks the plan from the current stream position until a halting
// opcode, a fault, or gas exhaustion. It is re-entrant: a caller that
// paused the frame at ErrCallOrchestrationRequired may call Run again
// after resuming state, continuing from the next instruction.
func (f *Frame) Run() ([]byte, error) {
	for {
		if f.pc >= f.plan.Len() {
			return nil, nil
		}

		op := f.plan.OpAt(f.pc)

		if f.plan.IsBlockStart(f.pc) {
			meta := f.plan.BlockMetadataAt(f.pc)
			if err := f.useGas(meta.StaticGas); err != nil {
				f.tracer.OnFault(f, err)
				return nil, err
			}
			height := f.stack.Len()
			overflow := height+meta.MaxStack > f.stack.Cap()
			if height < meta.MinStack || overflow {
				err := ErrStackUnderflow
				if overflow {
					err = ErrStackOverflow
				}
				f.tracer.OnFault(f, err)
				return nil, err
			}
		}

		if op.IsFused() {
			f.tracer.OnStep(f)
			out, err := f.runFused(op)
			if err != nil {
				f.tracer.OnFault(f, err)
				return f.haltOutput(err), err
			}
			f.tracer.OnEnd(f)
			if out != nil {
				return out, nil
			}
			continue
		}

		info := f.opTable[op]
		if info == nil || info.Execute == nil {
			err := ErrInvalidOpcode
			f.tracer.OnFault(f, err)
			return nil, err
		}

		if f.static && info.Writes {
			err := ErrWriteProtection
			f.tracer.OnFault(f, err)
			return nil, err
		}

		var memSize uint64
		if info.MemorySize != nil {
			memSize = info.MemorySize(f.stack)
			memSize = (memSize + 31) / 32 * 32
		}
		if info.DynamicGas != nil {
			cost, err := info.DynamicGas(f, memSize)
			if err != nil {
				f.tracer.OnFault(f, err)
				return nil, err
			}
			if err := f.useGas(cost); err != nil {
				f.tracer.OnFault(f, err)
				return nil, err
			}
			if memSize > 0 {
				if err := f.memExpander.Expand(memSize); err != nil {
					f.tracer.OnFault(f, err)
					return nil, err
				}
			}
		}
		if memSize > 0 && uint64(f.memory.Len()) < memSize {
			if err := f.memory.Resize(memSize); err != nil {
				f.tracer.OnFault(f, err)
				return nil, err
			}
		}

		f.tracer.OnStep(f)

		err := info.Execute(f)
		if err != nil {
			if errors.Is(err, ErrExecutionReverted) {
				return f.output, err
			}
			if errors.Is(err, ErrCallOrchestrationRequired) {
				return nil, err
			}
			f.tracer.OnFault(f, err)
			return nil, err
		}
		f.tracer.OnEnd(f)

		if info.Halts {
			return f.output, nil
		}
		if info.Jumps {
			continue
		}
		f.pc = f.plan.Advance(f.pc)
	}
}

func (f *Frame) haltOutput(err error) []byte {
	if errors.Is(err, ErrExecutionReverted) {
		return f.output
	}
	return nil
}

// runFused executes one of the ten synthetic PUSH+op opcodes the
// analyzer may emit in place of a PUSH_N followed by {ADD, MUL, DIV,
// JUMP, JUMPI}. The immediate (inline value or constants-table index)
// occupies the next stream cell; fused handlers are dispatched outside
// OpTable since they have no single-byte identity. Their constant gas is
// part of the enclosing block's static gas, so none is charged here.
func (f *Frame) runFused(op OpCode) ([]byte, error) {
	var raw uint64
	if p, ok := f.plan.(*OptimizedPlan); ok && f.pc+1 < len(p.stream) {
		raw = uint64(p.stream[f.pc+1])
	} else {
		raw = uint64(f.plan.OpAt(f.pc + 1))
	}

	var imm *Word
	switch op {
	case PushAddPtr, PushMulPtr, PushDivPtr, PushJumpPtr, PushJumpiPtr:
		imm = f.plan.ConstantAt(int(raw))
		if imm == nil {
			imm = f.newWord()
		}
	default:
		imm = WordFromUint64(f.wordWidth, raw)
	}

	switch op {
	case PushAddInline, PushAddPtr:
		x := f.stack.Pop()
		f.stack.pushUnchecked(f.newWord().Add(x, imm))
	case PushMulInline, PushMulPtr:
		x := f.stack.Pop()
		f.stack.pushUnchecked(f.newWord().Mul(x, imm))
	case PushDivInline, PushDivPtr:
		x := f.stack.Pop()
		f.stack.pushUnchecked(f.newWord().Div(imm, x))
	case PushJumpInline, PushJumpPtr:
		idx, ok := f.plan.IndexForPC(imm.Uint64())
		if !ok {
			return nil, ErrInvalidJump
		}
		f.pc = idx
		return nil, nil
	case PushJumpiInline, PushJumpiPtr:
		cond := f.stack.Pop()
		if cond.IsZero() {
			f.pc += 2
			return nil, nil
		}
		idx, ok := f.plan.IndexForPC(imm.Uint64())
		if !ok {
			return nil, ErrInvalidJump
		}
		f.pc = idx
		return nil, nil
	default:
		return nil, ErrInvalidOpcode
	}

	f.pc += 2
	return nil, nil
}

// Clone returns an independent copy of the frame: stack, memory, and
// logs are deep-copied; bytecode (via the shared Plan) and a stateless
// tracer are shared by reference. Used by shadow-execution mode to run
// the optimized and minimal plans step for step and compare results
// (spec.md §4.7).
func (f *Frame) Clone() *Frame {
	clone := *f
	clone.stack = f.stack.Clone()
	clone.memory = f.memory.Clone()
	clone.logs = append([]types.Log(nil), f.logs...)
	clone.output = append([]byte(nil), f.output...)
	if f.value != nil {
		clone.value = f.value.Clone()
	}
	expanderCopy := *f.memExpander
	clone.memExpander = &expanderCopy
	return &clone
}

// Equal reports whether two frames have reached structurally identical
// states: same stack contents, same memory contents, same remaining
// gas, and same program position. Used to cross-check an OptimizedPlan
// execution against a MinimalPlan execution of the same bytecode.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil {
		return false
	}
	if f.gas != other.gas {
		return false
	}
	if f.plan.PCForIndex(f.pc) != other.plan.PCForIndex(other.pc) {
		return false
	}
	if !f.stack.Equal(other.stack) {
		return false
	}
	if !bytes.Equal(f.memory.Data(), other.memory.Data()) {
		return false
	}
	if len(f.logs) != len(other.logs) {
		return false
	}
	return true
}
