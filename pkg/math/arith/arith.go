// Package arith provides fixed width natural number arithmetic on top of
// saferith, together with a reusable modulus context for fast exponentiation.
//
// Operations never grow past a declared working width. Callers pick the
// width once, at key generation, and every result is checked against it.
package arith

import (
	"errors"

	"github.com/cronokirby/saferith"
)

var (
	// ErrOverflow is returned when a result does not fit the working width.
	ErrOverflow = errors.New("arith: result exceeds working width")
	// ErrEvenModulus is returned when a modulus context is built from an
	// even modulus. The fast internal form requires an odd one.
	ErrEvenModulus = errors.New("arith: modulus must be odd")
)

// CheckedAdd returns x + y, reduced to the working width.
func CheckedAdd(x, y *saferith.Nat, width int) (*saferith.Nat, error) {
	z := new(saferith.Nat).Add(x, y, -1)
	return checkWidth(z, width)
}

// CheckedMul returns x ⋅ y, reduced to the working width.
func CheckedMul(x, y *saferith.Nat, width int) (*saferith.Nat, error) {
	z := new(saferith.Nat).Mul(x, y, -1)
	return checkWidth(z, width)
}

// CheckedSquare returns x², reduced to the working width.
func CheckedSquare(x *saferith.Nat, width int) (*saferith.Nat, error) {
	return CheckedMul(x, x, width)
}

func checkWidth(z *saferith.Nat, width int) (*saferith.Nat, error) {
	if z.TrueLen() > width {
		return nil, ErrOverflow
	}
	return z.Resize(width), nil
}

// IsValidNatModN checks that ints are all in the range [1, n-1] and
// are coprime to n.
func IsValidNatModN(n *saferith.Modulus, ints ...*saferith.Nat) bool {
	for _, i := range ints {
		if i == nil {
			return false
		}
		if _, _, lt := i.CmpMod(n); lt != 1 {
			return false
		}
		if i.IsUnit(n) != 1 {
			return false
		}
	}
	return true
}
