// instructions.go implements every opcode handler optable.go wires into
// an OpInfo.Execute slot. Each handler receives the frame it must read
// stack/memory/context from and mutate in place; per-word dynamic costs
// not already folded into a block's static gas are charged here, just
// before the observable effect, per spec.md §4.6. Memory-expansion gas is
// charged by Frame.Run before the handler is called.
package vm

import (
	"github.com/eth2030/eth2030/core/types"
	"github.com/eth2030/eth2030/crypto"
)

func opStop(f *Frame) error { return nil }

func opAdd(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	x.Add(x, y)
	return nil
}

func opMul(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	x.Mul(x, y)
	return nil
}

func opSub(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Sub(a, b)
	return nil
}

func opDiv(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Div(a, b)
	return nil
}

func opSdiv(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.SDiv(a, b)
	return nil
}

func opMod(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.Mod(a, b)
	return nil
}

func opSmod(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	b.SMod(a, b)
	return nil
}

func opAddMod(f *Frame) error {
	x, y, m := f.stack.Pop(), f.stack.Pop(), f.stack.Peek()
	m.AddMod(x, y, m)
	return nil
}

func opMulMod(f *Frame) error {
	x, y, m := f.stack.Pop(), f.stack.Pop(), f.stack.Peek()
	m.MulMod(x, y, m)
	return nil
}

func opExp(f *Frame) error {
	base, exp := f.stack.Pop(), f.stack.Peek()
	exp.Exp(base, exp)
	return nil
}

func opSignExtend(f *Frame) error {
	byteIndex, val := f.stack.Pop(), f.stack.Peek()
	val.SignExtend(byteIndex, val)
	return nil
}

func opLt(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	f.replaceTop(a.Lt(b))
	return nil
}

func opGt(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	f.replaceTop(a.Gt(b))
	return nil
}

func opSlt(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	f.replaceTop(a.Slt(b))
	return nil
}

func opSgt(f *Frame) error {
	a, b := f.stack.Pop(), f.stack.Peek()
	f.replaceTop(a.Sgt(b))
	return nil
}

func opEq(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	f.replaceTop(x.Eq(y))
	return nil
}

func opIsZero(f *Frame) error {
	x := f.stack.Peek()
	f.replaceTop(boolWord(f.wordWidth, x.IsZero()))
	return nil
}

func opAnd(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	x.And(x, y)
	return nil
}

func opOr(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	x.Or(x, y)
	return nil
}

func opXor(f *Frame) error {
	y, x := f.stack.Pop(), f.stack.Peek()
	x.Xor(x, y)
	return nil
}

func opNot(f *Frame) error {
	x := f.stack.Peek()
	x.Not(x)
	return nil
}

func opByte(f *Frame) error {
	idx, val := f.stack.Pop(), f.stack.Peek()
	val.Byte(idx, val)
	return nil
}

func opSHL(f *Frame) error {
	shiftAmt, val := f.stack.Pop(), f.stack.Peek()
	val.Shl(shiftAmt, val)
	return nil
}

func opSHR(f *Frame) error {
	shiftAmt, val := f.stack.Pop(), f.stack.Peek()
	val.Shr(shiftAmt, val)
	return nil
}

func opSAR(f *Frame) error {
	shiftAmt, val := f.stack.Pop(), f.stack.Peek()
	val.Sar(shiftAmt, val)
	return nil
}

func opClz(f *Frame) error {
	x := f.stack.Peek()
	f.replaceTop(x.CLZ())
	return nil
}

func opKeccak256(f *Frame) error {
	offsetW, lengthW := f.stack.Pop(), f.stack.Pop()
	offset, err := offsetUint64(offsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if err := f.useGas(wordCount(n) * GasKeccak256Word); err != nil {
		return err
	}
	data := f.memory.Load(offset, n)
	hash := crypto.Keccak256(data)
	f.stack.pushUnchecked(WordFromBytes(f.wordWidth, hash))
	return nil
}

func opAddress(f *Frame) error {
	f.stack.pushUnchecked(addressWord(f.wordWidth, f.address))
	return nil
}

func opBalance(f *Frame) error {
	a := f.stack.Peek()
	addr := wordToAddress(a)
	f.chargeAccessDelta(GasBalanceCold, f.host.AccessAddress(addr))
	bal := f.db.GetBalance(addr)
	f.replaceTop(WordFromUint256(bal))
	return nil
}

func opOrigin(f *Frame) error {
	f.stack.pushUnchecked(addressWord(f.wordWidth, f.host.Origin()))
	return nil
}

func opCaller(f *Frame) error {
	f.stack.pushUnchecked(addressWord(f.wordWidth, f.caller))
	return nil
}

func opCallValue(f *Frame) error {
	v := f.newWord()
	if f.value != nil {
		v.Set(f.value)
	}
	f.stack.pushUnchecked(v)
	return nil
}

func opCalldataLoad(f *Frame) error {
	off, err := offsetUint64(f.stack.Peek())
	if err != nil {
		return err
	}
	f.replaceTop(WordFromBytes(f.wordWidth, paddedSlice(f.input, off, 32)))
	return nil
}

func opCalldataSize(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, uint64(len(f.input))))
	return nil
}

func opCalldataCopy(f *Frame) error {
	destOffsetW, offsetW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	destOffset, err := offsetUint64(destOffsetW)
	if err != nil {
		return err
	}
	offset, err := offsetUint64(offsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if err := f.useGas(CalcCopyGas(n)); err != nil {
		return err
	}
	f.memory.Store(destOffset, paddedSlice(f.input, offset, n))
	return nil
}

func opCodeSize(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, uint64(len(f.code))))
	return nil
}

func opCodeCopy(f *Frame) error {
	destOffsetW, offsetW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	destOffset, err := offsetUint64(destOffsetW)
	if err != nil {
		return err
	}
	offset, err := offsetUint64(offsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if err := f.useGas(CalcCopyGas(n)); err != nil {
		return err
	}
	f.memory.Store(destOffset, paddedSlice(f.code, offset, n))
	return nil
}

func opGasPrice(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint256(f.host.GasPrice()))
	return nil
}

func opExtcodesize(f *Frame) error {
	a := f.stack.Peek()
	addr := wordToAddress(a)
	f.chargeAccessDelta(GasBalanceCold, f.host.AccessAddress(addr))
	code := f.db.GetCodeByAddress(addr)
	f.replaceTop(WordFromUint64(f.wordWidth, uint64(len(code))))
	return nil
}

func opExtcodecopy(f *Frame) error {
	a, destOffsetW, offsetW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	addr := wordToAddress(a)
	f.chargeAccessDelta(GasBalanceCold, f.host.AccessAddress(addr))
	destOffset, err := offsetUint64(destOffsetW)
	if err != nil {
		return err
	}
	offset, err := offsetUint64(offsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if err := f.useGas(CalcCopyGas(n)); err != nil {
		return err
	}
	code := f.db.GetCodeByAddress(addr)
	f.memory.Store(destOffset, paddedSlice(code, offset, n))
	return nil
}

func opExtcodehash(f *Frame) error {
	a := f.stack.Peek()
	addr := wordToAddress(a)
	f.chargeAccessDelta(GasBalanceCold, f.host.AccessAddress(addr))
	if !f.db.AccountExists(addr) {
		f.replaceTop(f.newWord())
		return nil
	}
	code := f.db.GetCodeByAddress(addr)
	if len(code) == 0 {
		f.replaceTop(WordFromBytes(f.wordWidth, types.EmptyCodeHash[:]))
		return nil
	}
	f.replaceTop(WordFromBytes(f.wordWidth, crypto.Keccak256(code)))
	return nil
}

func opReturndataSize(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, uint64(len(f.returndata))))
	return nil
}

func opReturndataCopy(f *Frame) error {
	destOffsetW, offsetW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	destOffset, err := offsetUint64(destOffsetW)
	if err != nil {
		return err
	}
	offset, err := offsetUint64(offsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if offset+n > uint64(len(f.returndata)) {
		return ErrOutOfBounds
	}
	if err := f.useGas(CalcCopyGas(n)); err != nil {
		return err
	}
	f.memory.Store(destOffset, f.returndata[offset:offset+n])
	return nil
}

func opBlockhash(f *Frame) error {
	num := f.stack.Peek()
	h := f.host.BlockHash(num.Uint64())
	f.replaceTop(WordFromBytes(f.wordWidth, h[:]))
	return nil
}

func opCoinbase(f *Frame) error {
	f.stack.pushUnchecked(addressWord(f.wordWidth, f.host.Coinbase()))
	return nil
}

func opTimestamp(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.host.Timestamp()))
	return nil
}

func opNumber(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.host.BlockNumber()))
	return nil
}

func opPrevRandao(f *Frame) error {
	h := f.host.PrevRandao()
	f.stack.pushUnchecked(WordFromBytes(f.wordWidth, h[:]))
	return nil
}

func opGasLimit(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.host.BlockGasLimit()))
	return nil
}

func opChainID(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.host.ChainID()))
	return nil
}

func opSelfBalance(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint256(f.db.GetBalance(f.address)))
	return nil
}

func opBaseFee(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint256(f.host.BaseFee()))
	return nil
}

func opBlobHash(f *Frame) error {
	idx := f.stack.Peek()
	hashes := f.host.BlobHashes()
	i := idx.Uint64()
	if i >= uint64(len(hashes)) {
		f.replaceTop(f.newWord())
		return nil
	}
	h := hashes[i]
	f.replaceTop(WordFromBytes(f.wordWidth, h[:]))
	return nil
}

func opBlobBaseFee(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint256(f.host.BlobBaseFee()))
	return nil
}

func opPop(f *Frame) error {
	f.stack.Pop()
	return nil
}

func opMload(f *Frame) error {
	off, err := offsetUint64(f.stack.Peek())
	if err != nil {
		return err
	}
	f.replaceTop(f.memory.Load32(f.wordWidth, off))
	return nil
}

func opMstore(f *Frame) error {
	offW, val := f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	f.memory.Store32(off, val)
	return nil
}

func opMstore8(f *Frame) error {
	offW, val := f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	f.memory.Store8(off, val)
	return nil
}

func opSload(f *Frame) error {
	key := f.stack.Peek()
	keyHash := wordToHash(key)
	f.chargeAccessDelta(GasSloadCold, storageAccessCost(f.host, f.address, keyHash))
	val := f.db.GetStorage(f.address, keyHash)
	f.replaceTop(WordFromBytes(f.wordWidth, val[:]))
	return nil
}

func opSstore(f *Frame) error {
	key, newVal := f.stack.Pop(), f.stack.Pop()
	keyHash := wordToHash(key)

	if err := f.useGas(storageAccessCost(f.host, f.address, keyHash)); err != nil {
		return err
	}

	currentRaw := f.db.GetStorage(f.address, keyHash)
	current := WordFromBytes(f.wordWidth, currentRaw[:])
	f.host.RecordStorageChange(f.address, keyHash, currentRaw)
	// The host's journal is the source of truth for the slot's value at
	// the start of the enclosing transaction; absent a richer journal
	// query here, the pre-write value observed this call is used as the
	// best available approximation of "original" for net-gas metering.
	original := current

	gas, _ := SstoreGasAndRefund(original, current, newVal)
	if err := f.useGas(gas); err != nil {
		return err
	}

	f.db.SetStorage(f.address, keyHash, wordToHash(newVal))
	return nil
}

func opTload(f *Frame) error {
	key := f.stack.Peek()
	val := f.db.GetTransientStorage(f.address, wordToHash(key))
	f.replaceTop(WordFromBytes(f.wordWidth, val[:]))
	return nil
}

func opTstore(f *Frame) error {
	key, val := f.stack.Pop(), f.stack.Pop()
	f.db.SetTransientStorage(f.address, wordToHash(key), wordToHash(val))
	return nil
}

func opMcopy(f *Frame) error {
	destOffsetW, srcOffsetW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	destOffset, err := offsetUint64(destOffsetW)
	if err != nil {
		return err
	}
	srcOffset, err := offsetUint64(srcOffsetW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	if err := f.useGas(CalcCopyGas(n)); err != nil {
		return err
	}
	f.memory.Copy(destOffset, srcOffset, n)
	return nil
}

func opJump(f *Frame) error {
	dest := f.stack.Pop()
	idx, ok := f.plan.IndexForPC(dest.Uint64())
	if !ok {
		return ErrInvalidJump
	}
	f.pc = idx
	return nil
}

func opJumpi(f *Frame) error {
	dest, cond := f.stack.Pop(), f.stack.Pop()
	if cond.IsZero() {
		f.pc = f.plan.Advance(f.pc)
		return nil
	}
	idx, ok := f.plan.IndexForPC(dest.Uint64())
	if !ok {
		return ErrInvalidJump
	}
	f.pc = idx
	return nil
}

func opPc(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.plan.PCForIndex(f.pc)))
	return nil
}

func opMsize(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, uint64(f.memory.Len())))
	return nil
}

func opGas(f *Frame) error {
	f.stack.pushUnchecked(WordFromUint64(f.wordWidth, f.Gas()))
	return nil
}

func opJumpdest(f *Frame) error { return nil }

func opPush0(f *Frame) error {
	f.stack.pushUnchecked(f.newWord())
	return nil
}

func makePush(n int) execFunc {
	return func(f *Frame) error {
		b := f.plan.PushBytes(f.pc, n)
		f.stack.pushUnchecked(WordFromBytes(f.wordWidth, b))
		return nil
	}
}

func makeDup(n int) execFunc {
	return func(f *Frame) error { return f.stack.Dup(n) }
}

func makeSwap(n int) execFunc {
	return func(f *Frame) error {
		f.stack.Swap(n)
		return nil
	}
}

func makeLog(n int) execFunc {
	return func(f *Frame) error {
		offW, lengthW := f.stack.Pop(), f.stack.Pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = wordToHash(f.stack.Pop())
		}
		off, err := offsetUint64(offW)
		if err != nil {
			return err
		}
		dataLen, err := offsetUint64(lengthW)
		if err != nil {
			return err
		}
		if err := f.useGas(uint64(n)*GasLogTopic + dataLen*GasLogData); err != nil {
			return err
		}
		data := f.memory.Load(off, dataLen)
		f.logs = append(f.logs, types.Log{
			Address: f.address,
			Topics:  topics,
			Data:    append([]byte(nil), data...),
		})
		return nil
	}
}

func opReturn(f *Frame) error {
	offW, lengthW := f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	f.output = f.memory.Load(off, n)
	return nil
}

func opRevert(f *Frame) error {
	offW, lengthW := f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	f.output = f.memory.Load(off, n)
	return ErrExecutionReverted
}

func opInvalid(f *Frame) error { return ErrInvalidOpcode }

func opCreate(f *Frame) error {
	value, offW, lengthW := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	code := f.memory.Load(off, n)
	if err := f.useGas(CalcInitCodeGas(uint64(len(code)))); err != nil {
		return err
	}
	f.pendingCall = &PendingCall{Kind: CREATE, Value: value, Code: append([]byte(nil), code...)}
	return ErrCallOrchestrationRequired
}

func opCreate2(f *Frame) error {
	value, offW, lengthW, salt := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	off, err := offsetUint64(offW)
	if err != nil {
		return err
	}
	n, err := offsetUint64(lengthW)
	if err != nil {
		return err
	}
	code := f.memory.Load(off, n)
	if err := f.useGas(CalcInitCodeGas(uint64(len(code)))); err != nil {
		return err
	}
	if err := f.useGas(wordCount(uint64(len(code))) * GasKeccak256Word); err != nil {
		return err
	}
	f.pendingCall = &PendingCall{Kind: CREATE2, Value: value, Code: append([]byte(nil), code...), Salt: salt}
	return ErrCallOrchestrationRequired
}

func opCall(f *Frame) error {
	gasArg, addr, value, argsOff, argsLen, retOff, retLen := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	if f.static && !value.IsZero() {
		return ErrWriteProtection
	}
	return f.dispatchCall(CALL, gasArg, wordToAddress(addr), value, argsOff, argsLen, retOff, retLen)
}

func opCallCode(f *Frame) error {
	gasArg, addr, value, argsOff, argsLen, retOff, retLen := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	return f.dispatchCall(CALLCODE, gasArg, wordToAddress(addr), value, argsOff, argsLen, retOff, retLen)
}

func opDelegateCall(f *Frame) error {
	gasArg, addr, argsOff, argsLen, retOff, retLen := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	return f.dispatchCall(DELEGATECALL, gasArg, wordToAddress(addr), nil, argsOff, argsLen, retOff, retLen)
}

func opStaticCall(f *Frame) error {
	gasArg, addr, argsOff, argsLen, retOff, retLen := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	return f.dispatchCall(STATICCALL, gasArg, wordToAddress(addr), nil, argsOff, argsLen, retOff, retLen)
}

// dispatchCall validates and prices a CALL-family instruction, then
// hands it off to the enclosing EVM via ErrCallOrchestrationRequired.
// EIP-150's 63/64 forwarding rule is applied and the forwarded amount
// debited from this frame immediately, since the callee exclusively
// owns that gas while it executes; any unspent portion is credited back
// by ResumeCall.
func (f *Frame) dispatchCall(kind OpCode, gasArg *Word, addr types.Address, value *Word, argsOff, argsLen, retOff, retLen *Word) error {
	f.chargeAccessDelta(GasCallCold, f.host.AccessAddress(addr))
	forwarded := GasForwarded(f.Gas(), gasArg.Uint64())
	if err := f.useGas(forwarded); err != nil {
		return err
	}
	argsOffset, err := offsetUint64(argsOff)
	if err != nil {
		return err
	}
	argsLength, err := offsetUint64(argsLen)
	if err != nil {
		return err
	}
	retOffset, err := offsetUint64(retOff)
	if err != nil {
		return err
	}
	retLength, err := offsetUint64(retLen)
	if err != nil {
		return err
	}
	f.pendingCall = &PendingCall{
		Kind:       kind,
		Gas:        forwarded,
		Address:    addr,
		Value:      value,
		ArgsOffset: argsOffset,
		ArgsLength: argsLength,
		RetOffset:  retOffset,
		RetLength:  retLength,
	}
	return ErrCallOrchestrationRequired
}

func opSelfdestruct(f *Frame) error {
	beneficiary := f.stack.Pop()
	addr := wordToAddress(beneficiary)
	if err := f.useGas(f.host.AccessAddress(addr)); err != nil {
		return err
	}
	f.pendingCall = &PendingCall{Kind: SELFDESTRUCT, Address: addr}
	return ErrCallOrchestrationRequired
}

// --- small helpers shared by the handlers above ---

// chargeAccessDelta reconciles an access-list opcode's true cost
// (warm or cold, from Host.AccessAddress/AccessStorageSlot) against the
// cold-case cost already folded into this block's static gas: a warm
// access credits back the difference. Opcodes whose OpInfo.ConstantGas
// doesn't bake in the cold price (SSTORE, SELFDESTRUCT) charge the
// access cost directly instead of calling this.
func (f *Frame) chargeAccessDelta(coldConstant, actual uint64) {
	if actual < coldConstant {
		f.gas += int64(coldConstant - actual)
	}
}

func (f *Frame) replaceTop(w *Word) {
	data := f.stack.Data()
	data[len(data)-1] = w
}

func wordToAddress(w *Word) types.Address {
	var a types.Address
	b := w.PaddedBytes(20)
	copy(a[:], b[len(b)-20:])
	return a
}

func wordToHash(w *Word) types.Hash {
	return types.BytesToHash(w.PaddedBytes(32))
}

// paddedSlice returns data[offset:offset+n], zero-filling any portion
// that runs past the end of data (or starts beyond it entirely).
func paddedSlice(data []byte, offset, n uint64) []byte {
	out := make([]byte, n)
	if offset >= uint64(len(data)) {
		return out
	}
	end := offset + n
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}

// offsetUint64 extracts an offset or length operand as a uint64, faulting
// with ErrOutOfBounds instead of silently wrapping a word too large to
// represent in a machine word.
func offsetUint64(w *Word) (uint64, error) {
	if !w.IsUint64() {
		return 0, ErrOutOfBounds
	}
	return w.Uint64(), nil
}
