package arith

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	x := new(saferith.Nat).SetUint64(1<<63 - 1)
	y := new(saferith.Nat).SetUint64(1)

	z, err := CheckedAdd(x, y, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, z.TrueLen())

	_, err = CheckedAdd(z, y, 64)
	require.NoError(t, err, "2⁶³+1 still fits 64 bits")

	_, err = CheckedAdd(z, z, 64)
	assert.ErrorIs(t, err, ErrOverflow, "2⁶⁴ should not fit 64 bits")
}

func TestCheckedMul(t *testing.T) {
	x := new(saferith.Nat).SetUint64(1 << 32)

	z, err := CheckedMul(x, x, 65)
	require.NoError(t, err)
	expected := new(saferith.Nat).SetUint64(1).Resize(65)
	expected.Mul(expected, x, -1)
	expected.Mul(expected, x, -1)
	assert.True(t, z.Eq(expected) == 1)

	_, err = CheckedMul(x, x, 64)
	assert.ErrorIs(t, err, ErrOverflow, "2⁶⁴ needs 65 bits")

	_, err = CheckedSquare(x, 64)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIsValidNatModN(t *testing.T) {
	n := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(35))

	valid := new(saferith.Nat).SetUint64(12)
	unit0 := new(saferith.Nat).SetUint64(0)
	tooBig := new(saferith.Nat).SetUint64(36)
	shared := new(saferith.Nat).SetUint64(25)

	assert.True(t, IsValidNatModN(n, valid))
	assert.False(t, IsValidNatModN(n, unit0), "0 is not a unit")
	assert.False(t, IsValidNatModN(n, tooBig), "36 is out of range")
	assert.False(t, IsValidNatModN(n, shared), "25 shares a factor with 35")
	assert.False(t, IsValidNatModN(n, valid, nil), "nil never validates")
}
