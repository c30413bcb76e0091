package ballot

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

func testKey(t *testing.T) (*paillier.PublicKey, *paillier.SecretKey) {
	t.Helper()
	p := new(saferith.Nat).SetUint64(10007)
	q := new(saferith.Nat).SetUint64(11483)
	sk, err := paillier.NewSecretKeyFromPrimes(p, q, params.DefaultWidth)
	require.NoError(t, err)
	return sk.PublicKey, sk
}

func encodeAndEncrypt(t *testing.T, pk *paillier.PublicKey, l Layout, candidate int) *paillier.Ciphertext {
	t.Helper()
	m, err := l.Encode(candidate)
	require.NoError(t, err)
	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)
	return ct
}

func TestBoxStack(t *testing.T) {
	pk, _ := testKey(t)
	l := Layout{Voters: 16, Candidates: 3}
	box := NewBox(pk)

	first := encodeAndEncrypt(t, pk, l, 0)
	second := encodeAndEncrypt(t, pk, l, 1)
	box.Add(first)
	box.Add(second)
	require.Equal(t, 2, box.Len())

	assert.True(t, box.Pop().Equal(second), "pop must return the newest ballot")
	assert.True(t, box.Pop().Equal(first))
	assert.Nil(t, box.Pop(), "an empty box pops nil")
	assert.Equal(t, 0, box.Len())
}

func TestBoxAggregateEmpty(t *testing.T) {
	pk, sk := testKey(t)
	l := Layout{Voters: 16, Candidates: 3}
	box := NewBox(pk)

	agg := box.Aggregate()
	assert.True(t, agg.Equal(paillier.Identity()))

	m, err := sk.Dec(agg)
	require.NoError(t, err)
	counts, err := l.Decode(m)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 0, 0}, counts)
}

func TestBoxAggregateTally(t *testing.T) {
	pk, sk := testKey(t)
	l := Layout{Voters: 16, Candidates: 3}
	box := NewBox(pk)

	// Three ballots for candidate 0 and two for candidate 1.
	for _, candidate := range []int{0, 0, 1, 0, 1} {
		box.Add(encodeAndEncrypt(t, pk, l, candidate))
	}

	m, err := sk.Dec(box.Aggregate())
	require.NoError(t, err)
	counts, err := l.Decode(m)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 2, 0}, counts)

	tally := &Tally{Counts: counts, Ballots: box.Len()}
	rec, delta := tally.Reconcile()
	assert.Equal(t, Balanced, rec)
	assert.Zero(t, delta)
}

func TestBoxAggregateOrderIndependent(t *testing.T) {
	pk, sk := testKey(t)
	l := Layout{Voters: 16, Candidates: 3}

	cts := []*paillier.Ciphertext{
		encodeAndEncrypt(t, pk, l, 0),
		encodeAndEncrypt(t, pk, l, 1),
		encodeAndEncrypt(t, pk, l, 2),
	}

	forward, backward := NewBox(pk), NewBox(pk)
	for _, ct := range cts {
		forward.Add(ct)
	}
	for i := len(cts) - 1; i >= 0; i-- {
		backward.Add(cts[i])
	}

	aggF, err := sk.Dec(forward.Aggregate())
	require.NoError(t, err)
	aggB, err := sk.Dec(backward.Aggregate())
	require.NoError(t, err)
	assert.True(t, aggF.Eq(aggB) == 1, "aggregation must not depend on order")
}

func TestBoxPopExcludesBallot(t *testing.T) {
	pk, sk := testKey(t)
	l := Layout{Voters: 16, Candidates: 3}
	box := NewBox(pk)

	box.Add(encodeAndEncrypt(t, pk, l, 0))
	box.Add(encodeAndEncrypt(t, pk, l, 1))
	require.NotNil(t, box.Pop())

	m, err := sk.Dec(box.Aggregate())
	require.NoError(t, err)
	counts, err := l.Decode(m)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 0, 0}, counts, "a withdrawn ballot must not count")
}
