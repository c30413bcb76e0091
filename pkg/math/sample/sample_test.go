package sample

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/pool"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(12345))
	for i := 0; i < 64; i++ {
		x := ModN(rand.Reader, n)
		_, _, lt := x.CmpMod(n)
		require.True(t, lt == 1, "sample must be below the modulus")
	}
}

func TestUnitModN(t *testing.T) {
	// 35 = 5 ⋅ 7 has plenty of non units to reject.
	n := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(35))
	for i := 0; i < 64; i++ {
		u := UnitModN(rand.Reader, n)
		require.True(t, u.IsUnit(n) == 1)
	}
}

func TestSafePrime(t *testing.T) {
	p, err := SafePrime(rand.Reader, params.DefaultPrimeBits)
	require.NoError(t, err)

	pBig := p.Big()
	assert.Equal(t, params.DefaultPrimeBits, pBig.BitLen())
	assert.EqualValues(t, 3, pBig.Bit(0)+2*pBig.Bit(1), "safe primes are 3 mod 4")
	assert.True(t, pBig.ProbablyPrime(32))

	q := new(saferith.Nat).Rsh(p, 1, -1)
	assert.True(t, q.Big().ProbablyPrime(32), "(p-1)/2 must also be prime")
}

func TestSafePrimeTooSmall(t *testing.T) {
	_, err := SafePrime(rand.Reader, params.MinPrimeBits-1)
	assert.ErrorIs(t, err, ErrPrimeBits)
}

func TestPaillier(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	p, q, err := Paillier(rand.Reader, pl, params.DefaultPrimeBits)
	require.NoError(t, err)
	require.True(t, p.Eq(q) != 1, "factors must be distinct")

	n := new(saferith.Nat).Mul(p, q, -1)
	assert.Equal(t, 2*params.DefaultPrimeBits, n.Big().BitLen())
}

func TestPaillierNilPool(t *testing.T) {
	p, q, err := Paillier(rand.Reader, nil, params.MinPrimeBits)
	require.NoError(t, err)
	assert.True(t, p.Eq(q) != 1)
}
