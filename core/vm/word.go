package vm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// DefaultWordWidth is the EVM's native word size in bits.
const DefaultWordWidth = 256

var bigOne = big.NewInt(1)

// modulus returns 2^width as a big.Int. width is always a handful of
// distinct values in practice (256, occasionally narrower or up to 512),
// so this is cheap enough to compute on demand rather than cache.
func modulus(width uint) *big.Int {
	m := new(big.Int).Lsh(bigOne, width)
	return m
}

// Word is an unsigned integer wrapped to a configurable bit width, the
// generalized form of the EVM's 256-bit modular arithmetic. All mutating
// operations normalize into [0, 2^width) the same way the teacher's
// toU256/toS256 pair normalized into [0, 2^256).
type Word struct {
	v     big.Int
	width uint
}

// NewWord returns a zero-valued Word of the given bit width.
func NewWord(width uint) *Word {
	if width == 0 {
		width = DefaultWordWidth
	}
	return &Word{width: width}
}

// WordFromUint64 returns a Word initialized from v.
func WordFromUint64(width uint, v uint64) *Word {
	w := NewWord(width)
	w.v.SetUint64(v)
	return w
}

// WordFromBig returns a Word initialized from v, reduced mod 2^width.
func WordFromBig(width uint, v *big.Int) *Word {
	w := NewWord(width)
	w.v.Set(v)
	w.normalize()
	return w
}

// WordFromBytes returns a Word from a big-endian byte slice, reduced mod
// 2^width (bytes longer than the width are simply not possible to produce
// here since SetBytes never yields a negative value, but normalize keeps
// the invariant explicit for widths narrower than len(b)*8).
func WordFromBytes(width uint, b []byte) *Word {
	w := NewWord(width)
	w.v.SetBytes(b)
	w.normalize()
	return w
}

func (w *Word) normalize() {
	if w.v.Sign() < 0 || w.v.BitLen() > int(w.width) {
		w.v.Mod(&w.v, modulus(w.width))
	}
}

// Width returns the bit width this Word is wrapped to.
func (w *Word) Width() uint { return w.width }

// Clone returns an independent copy.
func (w *Word) Clone() *Word {
	out := NewWord(w.width)
	out.v.Set(&w.v)
	return out
}

// Set copies x into z and returns z.
func (z *Word) Set(x *Word) *Word {
	z.width = x.width
	z.v.Set(&x.v)
	return z
}

// SetUint64 sets z to v and returns z.
func (z *Word) SetUint64(v uint64) *Word {
	z.v.SetUint64(v)
	z.normalize()
	return z
}

// SetBytes sets z from a big-endian byte slice and returns z.
func (z *Word) SetBytes(b []byte) *Word {
	z.v.SetBytes(b)
	z.normalize()
	return z
}

// Bytes returns the big-endian byte representation, minimally sized
// (no leading zero padding) — callers that need a fixed-width encoding
// should use PaddedBytes.
func (w *Word) Bytes() []byte { return w.v.Bytes() }

// PaddedBytes returns the big-endian, zero-padded n-byte representation.
func (w *Word) PaddedBytes(n int) []byte {
	out := make([]byte, n)
	b := w.v.Bytes()
	if len(b) > n {
		b = b[len(b)-n:]
	}
	copy(out[n-len(b):], b)
	return out
}

// Uint64 returns the low 64 bits of the word.
func (w *Word) Uint64() uint64 { return w.v.Uint64() }

// IsUint64 reports whether the word's value is representable in a uint64,
// i.e. whether Uint64 would return it without truncation.
func (w *Word) IsUint64() bool { return w.v.IsUint64() }

// Sign returns -1, 0, or 1 (unsigned words are never negative, so this is
// 0 or 1, kept for symmetry with big.Int).
func (w *Word) Sign() int { return w.v.Sign() }

// IsZero reports whether the word is zero.
func (w *Word) IsZero() bool { return w.v.Sign() == 0 }

// Cmp compares unsigned magnitude.
func (w *Word) Cmp(x *Word) int { return w.v.Cmp(&x.v) }

// signBit returns 2^(width-1), the two's-complement sign bit.
func (w *Word) signBit() *big.Int {
	return new(big.Int).Lsh(bigOne, w.width-1)
}

// Signed reinterprets the word as a two's-complement signed integer.
func (w *Word) Signed() *big.Int {
	s := new(big.Int).Set(&w.v)
	if s.Cmp(w.signBit()) >= 0 {
		s.Sub(s, modulus(w.width))
	}
	return s
}

// SetSigned sets z from a (possibly negative) signed value, wrapping into
// two's complement mod 2^width.
func (z *Word) SetSigned(s *big.Int) *Word {
	z.v.Set(s)
	z.normalize()
	return z
}

// Add sets z = x+y mod 2^width.
func (z *Word) Add(x, y *Word) *Word {
	z.width = x.width
	z.v.Add(&x.v, &y.v)
	z.normalize()
	return z
}

// Sub sets z = x-y mod 2^width.
func (z *Word) Sub(x, y *Word) *Word {
	z.width = x.width
	z.v.Sub(&x.v, &y.v)
	z.normalize()
	return z
}

// Mul sets z = x*y mod 2^width.
func (z *Word) Mul(x, y *Word) *Word {
	z.width = x.width
	z.v.Mul(&x.v, &y.v)
	z.normalize()
	return z
}

// Div sets z = x/y (unsigned, truncating). Division by zero yields 0 per
// EVM convention rather than an error.
func (z *Word) Div(x, y *Word) *Word {
	z.width = x.width
	if y.v.Sign() == 0 {
		z.v.SetUint64(0)
		return z
	}
	z.v.Div(&x.v, &y.v)
	return z
}

// SDiv sets z = x/y using two's-complement signed division, truncated
// toward zero. Division by zero yields 0.
func (z *Word) SDiv(x, y *Word) *Word {
	z.width = x.width
	if y.v.Sign() == 0 || y.IsZero() {
		z.v.SetUint64(0)
		return z
	}
	sx, sy := x.Signed(), y.Signed()
	if sy.Sign() == 0 {
		z.v.SetUint64(0)
		return z
	}
	q := new(big.Int).Quo(sx, sy)
	return z.SetSigned(q)
}

// Mod sets z = x%y (unsigned). Modulo zero yields 0.
func (z *Word) Mod(x, y *Word) *Word {
	z.width = x.width
	if y.v.Sign() == 0 {
		z.v.SetUint64(0)
		return z
	}
	z.v.Mod(&x.v, &y.v)
	return z
}

// SMod sets z = x%y using signed semantics (result takes the sign of x).
// Modulo zero yields 0.
func (z *Word) SMod(x, y *Word) *Word {
	z.width = x.width
	if y.IsZero() {
		z.v.SetUint64(0)
		return z
	}
	sx, sy := x.Signed(), y.Signed()
	r := new(big.Int).Rem(sx, sy)
	return z.SetSigned(r)
}

// AddMod sets z = (x+y)%m, computed without intermediate overflow.
func (z *Word) AddMod(x, y, m *Word) *Word {
	z.width = x.width
	if m.IsZero() {
		z.v.SetUint64(0)
		return z
	}
	sum := new(big.Int).Add(&x.v, &y.v)
	z.v.Mod(sum, &m.v)
	return z
}

// MulMod sets z = (x*y)%m, computed without intermediate overflow.
func (z *Word) MulMod(x, y, m *Word) *Word {
	z.width = x.width
	if m.IsZero() {
		z.v.SetUint64(0)
		return z
	}
	prod := new(big.Int).Mul(&x.v, &y.v)
	z.v.Mod(prod, &m.v)
	return z
}

// Exp sets z = base^exp mod 2^width.
func (z *Word) Exp(base, exp *Word) *Word {
	z.width = base.width
	z.v.Exp(&base.v, &exp.v, modulus(base.width))
	return z
}

// SignExtend sets z by sign-extending x from a (byteIndex+1)-byte value,
// per the SIGNEXTEND opcode: byteIndex counts bytes from the least
// significant end, 0-indexed. If byteIndex covers the full width already,
// x is returned unchanged.
func (z *Word) SignExtend(byteIndex, x *Word) *Word {
	z.width = x.width
	if byteIndex.v.Cmp(big.NewInt(int64(x.width/8-1))) >= 0 {
		z.v.Set(&x.v)
		return z
	}
	bit := uint(byteIndex.Uint64())*8 + 7
	mask := new(big.Int).Lsh(bigOne, bit)
	if new(big.Int).And(&x.v, mask).Sign() != 0 {
		// Negative: set all bits above `bit`.
		upper := new(big.Int).Lsh(bigOne, x.width)
		upper.Sub(upper, new(big.Int).Lsh(bigOne, bit+1))
		z.v.Or(&x.v, upper)
	} else {
		lowerMask := new(big.Int).Sub(new(big.Int).Lsh(bigOne, bit+1), bigOne)
		z.v.And(&x.v, lowerMask)
	}
	z.normalize()
	return z
}

// And/Or/Xor/Not implement bitwise operations.
func (z *Word) And(x, y *Word) *Word { z.width = x.width; z.v.And(&x.v, &y.v); return z }
func (z *Word) Or(x, y *Word) *Word  { z.width = x.width; z.v.Or(&x.v, &y.v); return z }
func (z *Word) Xor(x, y *Word) *Word { z.width = x.width; z.v.Xor(&x.v, &y.v); return z }

func (z *Word) Not(x *Word) *Word {
	z.width = x.width
	z.v.Not(&x.v)
	z.normalize()
	return z
}

// Byte sets z to the i-th byte of x counting from the most significant
// byte (0 = MSB), or 0 if i is out of range.
func (z *Word) Byte(i, x *Word) *Word {
	z.width = x.width
	nbytes := int(x.width / 8)
	idx := i.v
	if idx.Cmp(big.NewInt(int64(nbytes))) >= 0 || idx.Sign() < 0 {
		z.v.SetUint64(0)
		return z
	}
	padded := x.PaddedBytes(nbytes)
	z.v.SetUint64(uint64(padded[idx.Uint64()]))
	return z
}

// Shl sets z = x << shift, truncated to width.
func (z *Word) Shl(shift, x *Word) *Word {
	z.width = x.width
	if shift.v.Cmp(big.NewInt(int64(x.width))) >= 0 {
		z.v.SetUint64(0)
		return z
	}
	z.v.Lsh(&x.v, uint(shift.Uint64()))
	z.normalize()
	return z
}

// Shr sets z = x >> shift (logical).
func (z *Word) Shr(shift, x *Word) *Word {
	z.width = x.width
	if shift.v.Cmp(big.NewInt(int64(x.width))) >= 0 {
		z.v.SetUint64(0)
		return z
	}
	z.v.Rsh(&x.v, uint(shift.Uint64()))
	return z
}

// Sar sets z = x >> shift (arithmetic, sign-extending).
func (z *Word) Sar(shift, x *Word) *Word {
	z.width = x.width
	sx := x.Signed()
	if shift.v.Cmp(big.NewInt(int64(x.width))) >= 0 {
		if sx.Sign() >= 0 {
			z.v.SetUint64(0)
		} else {
			z.v.Sub(modulus(x.width), bigOne)
		}
		return z
	}
	sx.Rsh(sx, uint(shift.Uint64()))
	return z.SetSigned(sx)
}

// boolWord and the Lt/Gt/Eq/Slt/Sgt methods below express comparisons as
// 0/1 Words, matching how the
// teacher's handlers overwrite the peeked stack slot in place.
func boolWord(width uint, b bool) *Word {
	if b {
		return WordFromUint64(width, 1)
	}
	return WordFromUint64(width, 0)
}

func (w *Word) Lt(x *Word) *Word  { return boolWord(w.width, w.Cmp(x) < 0) }
func (w *Word) Gt(x *Word) *Word  { return boolWord(w.width, w.Cmp(x) > 0) }
func (w *Word) Eq(x *Word) *Word  { return boolWord(w.width, w.Cmp(x) == 0) }
func (w *Word) Slt(x *Word) *Word { return boolWord(w.width, w.Signed().Cmp(x.Signed()) < 0) }
func (w *Word) Sgt(x *Word) *Word { return boolWord(w.width, w.Signed().Cmp(x.Signed()) > 0) }

// CLZ returns the count of leading zero bits within width (EIP-7939).
func (w *Word) CLZ() *Word {
	bl := w.v.BitLen()
	return WordFromUint64(w.width, uint64(int(w.width)-bl))
}

// Uint256 converts a 256-bit Word to a uint256.Int for cheap interop with
// address/storage-key conversions. Panics if the Word is not 256-bit wide;
// callers must check Width() first.
func (w *Word) Uint256() *uint256.Int {
	if w.width != 256 {
		panic("vm: Uint256 called on a non-256-bit Word")
	}
	out := new(uint256.Int)
	out.SetFromBig(&w.v)
	return out
}

// WordFromUint256 builds a 256-bit Word from a uint256.Int.
func WordFromUint256(x *uint256.Int) *Word {
	w := NewWord(256)
	x.ToBig(&w.v)
	return w
}
