package hash

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotseal/paillier-tally/internal/params"
)

func TestHashDeterministic(t *testing.T) {
	h1, h2 := New(), New()
	n := new(saferith.Nat).SetUint64(42)
	require.NoError(t, h1.WriteAny(n, []byte("vote")))
	require.NoError(t, h2.WriteAny(n, []byte("vote")))
	assert.Equal(t, h1.Sum(), h2.Sum())
	assert.Len(t, h1.Sum(), params.DigestBytes)
}

func TestHashDomainSeparation(t *testing.T) {
	h1, h2 := New(), New()
	payload := []byte{1, 2, 3}
	require.NoError(t, h1.WriteAny(BytesWithDomain{"ballot", payload}))
	require.NoError(t, h2.WriteAny(BytesWithDomain{"receipt", payload}))
	assert.NotEqual(t, h1.Sum(), h2.Sum(), "same bytes under different domains must differ")
}

func TestHashClone(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteAny(uint64(1)))

	fork := h.Clone()
	require.NoError(t, fork.WriteAny(uint64(2)))
	require.NoError(t, h.WriteAny(uint64(3)))

	assert.NotEqual(t, fork.Sum(), h.Sum())

	replay := New()
	require.NoError(t, replay.WriteAny(uint64(1), uint64(2)))
	assert.Equal(t, replay.Sum(), fork.Sum())
}

func TestHashSumKeepsAbsorbing(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteAny(uint64(7)))
	first := h.Sum()
	require.NoError(t, h.WriteAny(uint64(8)))
	assert.NotEqual(t, first, h.Sum())
}

func TestHashRejectsUnknownType(t *testing.T) {
	assert.Error(t, New().WriteAny(3.14))
}
