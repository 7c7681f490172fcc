package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/eth2030/core/types"
)

// Database is the account/storage collaborator a Frame reads and writes
// through. It owns persistence; the frame never touches a trie, cache, or
// disk directly (see DESIGN.md — persistent storage engines are an
// explicit non-goal of this module).
type Database interface {
	GetStorage(addr types.Address, key types.Hash) types.Hash
	SetStorage(addr types.Address, key, value types.Hash)
	GetTransientStorage(addr types.Address, key types.Hash) types.Hash
	SetTransientStorage(addr types.Address, key, value types.Hash)
	GetCodeByAddress(addr types.Address) []byte
	GetBalance(addr types.Address) *uint256.Int
	AccountExists(addr types.Address) bool
	SetCode(addr types.Address, code []byte)
}

// Host exposes block/transaction context and the access-list/snapshot
// bookkeeping that EIP-2929 warm/cold pricing and call orchestration
// depend on. The frame only queries Host; it never manages the call stack
// itself (non-goal — see spec.md §1).
type Host interface {
	BlockNumber() uint64
	Timestamp() uint64
	Coinbase() types.Address
	BaseFee() *uint256.Int
	PrevRandao() types.Hash
	BlockGasLimit() uint64
	ChainID() uint64
	Origin() types.Address
	GasPrice() *uint256.Int
	CallInput() []byte

	// BlockHash returns the hash of the block at num, or the zero hash if
	// num falls outside the 256-block window the chain retains (BLOCKHASH).
	BlockHash(num uint64) types.Hash

	// BlobBaseFee returns the blob gas base fee of the current block
	// (EIP-7516, BLOBBASEFEE). Distinct from BaseFee, which prices
	// ordinary execution gas.
	BlobBaseFee() *uint256.Int

	// BlobHashes returns the versioned hashes of the enclosing
	// transaction's blobs (EIP-4844). BLOBHASH indexes into this slice and
	// yields the zero hash for an out-of-range index.
	BlobHashes() []types.Hash

	// AccessAddress and AccessStorageSlot mark addr/(addr,key) as warm and
	// return the gas cost to charge for this access (cold vs warm, per
	// EIP-2929). Called once per access, before the dynamic gas for the
	// owning opcode is computed.
	AccessAddress(addr types.Address) uint64
	AccessStorageSlot(addr types.Address, key types.Hash) uint64

	// Snapshot/Revert expose the host's journal checkpoints. The frame
	// never calls them; state rollback on a REVERT belongs to the
	// enclosing EVM, not this frame.
	Snapshot() int
	Revert(id int)

	// RecordStorageChange lets the host track the original value of a slot
	// for SSTORE refund accounting (EIP-2200) across nested calls.
	RecordStorageChange(addr types.Address, key types.Hash, prev types.Hash)
}
