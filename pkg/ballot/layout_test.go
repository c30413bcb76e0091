package ballot

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutBits(t *testing.T) {
	assert.EqualValues(t, 4, Layout{Voters: 16, Candidates: 3}.Bits())
	assert.EqualValues(t, 4, Layout{Voters: 17, Candidates: 3}.Bits(), "bits round down")
	assert.EqualValues(t, 1, Layout{Voters: 2, Candidates: 1}.Bits())
	assert.EqualValues(t, 15, Layout{Voters: 16, Candidates: 3}.Mask(), "mask is voters-1 for powers of two")
	assert.EqualValues(t, 12, Layout{Voters: 16, Candidates: 3}.Width())
}

func TestLayoutValidate(t *testing.T) {
	assert.NoError(t, Layout{Voters: 16, Candidates: 3}.Validate())
	assert.ErrorIs(t, Layout{Voters: 1, Candidates: 3}.Validate(), ErrVotersRange)
	assert.ErrorIs(t, Layout{Voters: 16, Candidates: 0}.Validate(), ErrCandidatesRange)
}

func TestLayoutEncode(t *testing.T) {
	l := Layout{Voters: 16, Candidates: 3}

	for candidate, expected := range map[int]uint64{
		0: 1,
		1: 1 << 4,
		2: 1 << 8,
	} {
		m, err := l.Encode(candidate)
		require.NoError(t, err)
		assert.True(t, m.Eq(new(saferith.Nat).SetUint64(expected)) == 1,
			"candidate %d must encode as %d", candidate, expected)
	}

	_, err := l.Encode(3)
	assert.ErrorIs(t, err, ErrCandidateRange, "the last counter ends at index 2")
	_, err = l.Encode(-1)
	assert.ErrorIs(t, err, ErrCandidateRange)
}

func TestLayoutDecode(t *testing.T) {
	l := Layout{Voters: 16, Candidates: 3}

	// Three votes for candidate 0 and two for candidate 1.
	packed := new(saferith.Nat).SetUint64(3 + 2<<4)
	counts, err := l.Decode(packed)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2, 0}, counts)

	zero, err := l.Decode(new(saferith.Nat).SetUint64(0))
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 0, 0}, zero)
}

func TestLayoutDecodeRoundTrip(t *testing.T) {
	l := Layout{Voters: 16, Candidates: 3}
	for candidate := 0; candidate < l.Candidates; candidate++ {
		m, err := l.Encode(candidate)
		require.NoError(t, err)
		counts, err := l.Decode(m)
		require.NoError(t, err)
		for i, c := range counts {
			if i == candidate {
				assert.EqualValues(t, 1, c)
			} else {
				assert.Zero(t, c)
			}
		}
	}
}

func TestLayoutDecodeOverflow(t *testing.T) {
	l := Layout{Voters: 16, Candidates: 3}
	wide := new(big.Int).Lsh(big.NewInt(1), 64)
	_, err := l.Decode(new(saferith.Nat).SetBig(wide, 65))
	assert.ErrorIs(t, err, ErrTallyOverflow)
}

func TestLayoutFitsModulus(t *testing.T) {
	l := Layout{Voters: 16, Candidates: 3} // 12 bits packed

	wide := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(1<<13 + 1))
	assert.True(t, l.FitsModulus(wide), "12 bits fit below a 14 bit modulus")

	narrow := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(1<<12 - 1))
	assert.False(t, l.FitsModulus(narrow), "a full tally could reach a 12 bit modulus")
}
