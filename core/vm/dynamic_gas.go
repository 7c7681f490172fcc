// dynamic_gas.go computes the dynamic (per-argument) gas component for
// opcodes whose constant gas alone doesn't capture their cost: storage
// writes, logging, hashing, copying, and the 63/64 CALL forwarding rule.
// Unlike the rest of the package these are pure functions of their
// arguments, not methods on Frame, so a plan's static-gas pass and an
// executing frame can both reach for them.
package vm

import "github.com/eth2030/eth2030/core/types"

// SstoreClearsRefund is the refund (EIP-3529) for clearing a storage slot
// back to zero.
const SstoreClearsRefund uint64 = 4800

// CallGasFraction is the denominator of the 63/64 gas-forwarding rule
// (EIP-150).
const CallGasFraction uint64 = 64

// InitCodeWordGas is the per-word surcharge on init code (EIP-3860).
const InitCodeWordGas uint64 = 2

// SstoreGasAndRefund computes the gas cost and refund for an SSTORE given
// the slot's original value (at the start of the transaction), its current
// value, and the value being written. Per EIP-2200's net-gas metering and
// EIP-3529's reduced clearing refund. The caller is responsible for having
// already warmed the slot (via Host.AccessStorageSlot) and folding that
// cold/warm surcharge in separately.
func SstoreGasAndRefund(original, current, newVal *Word) (gas uint64, refund int64) {
	if current.Cmp(newVal) == 0 {
		return GasSloadWarm, 0
	}

	if original.Cmp(current) == 0 {
		// Clean slot: this is the first write to it this transaction.
		if original.IsZero() {
			return GasSstoreSet, 0
		}
		if newVal.IsZero() {
			refund = int64(SstoreClearsRefund)
		}
		return GasSstoreReset, refund
	}

	// Dirty slot: a prior write in this transaction already changed it.
	gas = GasSloadWarm
	if !original.IsZero() {
		switch {
		case current.IsZero() && !newVal.IsZero():
			refund -= int64(SstoreClearsRefund)
		case !current.IsZero() && newVal.IsZero():
			refund += int64(SstoreClearsRefund)
		}
	}
	if original.Cmp(newVal) == 0 {
		if original.IsZero() {
			refund += int64(GasSstoreSet) - int64(GasSloadWarm)
		} else {
			refund += int64(GasSstoreReset) - int64(GasSloadWarm)
		}
	}
	return gas, refund
}

// GasForwarded applies the 63/64 rule: it reserves available/64 gas for the
// caller and forwards the rest, capped at requested.
func GasForwarded(available, requested uint64) uint64 {
	forwardable := available - available/CallGasFraction
	if requested < forwardable {
		return requested
	}
	return forwardable
}

func wordCount(size uint64) uint64 {
	return (size + 31) / 32
}

// CalcInitCodeGas returns the EIP-3860 surcharge for init code of the given
// length; the caller still owes the memory expansion cost separately.
func CalcInitCodeGas(initCodeLen uint64) uint64 {
	return wordCount(initCodeLen) * InitCodeWordGas
}

// CalcLogGas returns the gas for a LOGn with the given topic count and data
// size, per the Yellow Paper's Glog/Glogtopic/Glogdata formula.
func CalcLogGas(topicCount int, dataSize uint64) uint64 {
	return GasLog + uint64(topicCount)*GasLogTopic + dataSize*GasLogData
}

// CalcKeccakGas returns the gas for hashing dataSize bytes with KECCAK256.
// glamsterdan selects the EIP-7904 repriced base cost.
func CalcKeccakGas(dataSize uint64, glamsterdan bool) uint64 {
	base := GasKeccak256
	if glamsterdan {
		base = GasKeccak256Glamsterdan
	}
	return base + wordCount(dataSize)*GasKeccak256Word
}

// CalcCopyGas returns the per-word gas for a *COPY opcode moving dataSize
// bytes, not counting any memory expansion.
func CalcCopyGas(dataSize uint64) uint64 {
	return wordCount(dataSize) * GasCopy
}

// accessCost reports the EIP-2929 gas owed for touching addr; it warms the
// address as a side effect and returns the appropriate cold or warm cost.
func accessCost(host Host, addr types.Address) uint64 {
	return host.AccessAddress(addr)
}

// storageAccessCost reports the EIP-2929 gas owed for touching the (addr,
// key) storage slot, warming it as a side effect.
func storageAccessCost(host Host, addr types.Address, key types.Hash) uint64 {
	return host.AccessStorageSlot(addr, key)
}
