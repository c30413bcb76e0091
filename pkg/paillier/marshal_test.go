package paillier

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/math/sample"
)

func TestPublicKeyMarshalRoundTrip(t *testing.T) {
	data, err := testPublic.MarshalBinary()
	require.NoError(t, err)

	var pk PublicKey
	require.NoError(t, pk.UnmarshalBinary(data))
	assert.True(t, pk.Equal(testPublic))
	assert.Equal(t, testPublic.Width(), pk.Width())
}

func TestSecretKeyMarshalRoundTrip(t *testing.T) {
	m := sample.ModN(rand.Reader, testPublic.N())
	ct, _, err := testPublic.Enc(rand.Reader, m)
	require.NoError(t, err)

	data, err := testSecret.MarshalBinary()
	require.NoError(t, err)

	var sk SecretKey
	require.NoError(t, sk.UnmarshalBinary(data))
	require.True(t, sk.HasFactors())

	dec, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(dec) == 1, "a reloaded key must still decrypt")
}

func TestSecretKeyMarshalRoundTripPhi(t *testing.T) {
	n := new(saferith.Nat).SetUint64(testP * testQ)
	phi := new(saferith.Nat).SetUint64((testP - 1) * (testQ - 1))
	orig, err := NewSecretKeyFromPhi(n, phi, params.DefaultWidth)
	require.NoError(t, err)

	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	var sk SecretKey
	require.NoError(t, sk.UnmarshalBinary(data))
	require.False(t, sk.HasFactors(), "the totient form must not invent factors")

	m := new(saferith.Nat).SetUint64(42)
	ct, _, err := testPublic.Enc(rand.Reader, m)
	require.NoError(t, err)
	dec, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(dec) == 1)
}

func TestCiphertextMarshalRoundTrip(t *testing.T) {
	ct, _, err := testPublic.Enc(rand.Reader, new(saferith.Nat).SetUint64(7))
	require.NoError(t, err)

	data, err := ct.MarshalBinary()
	require.NoError(t, err)

	var got Ciphertext
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, ct.Equal(&got))
}

func TestSecretKeyUnmarshalRejectsGarbage(t *testing.T) {
	var sk SecretKey
	assert.Error(t, sk.UnmarshalBinary([]byte("not cbor at all")))

	// Valid CBOR, but no usable key material inside.
	empty, err := (&SecretKey{PublicKey: testPublic}).MarshalBinary()
	require.NoError(t, err)
	assert.ErrorIs(t, sk.UnmarshalBinary(empty), ErrNilFields)
}

func TestPublicKeyJSONRoundTrip(t *testing.T) {
	data, err := testPublic.MarshalJSON()
	require.NoError(t, err)

	var pk PublicKey
	require.NoError(t, pk.UnmarshalJSON(data))
	assert.True(t, pk.Equal(testPublic))

	assert.ErrorIs(t, pk.UnmarshalJSON([]byte(`{"width":128}`)), ErrNilFields)
}

func TestSecretKeyJSONRoundTrip(t *testing.T) {
	data, err := testSecret.MarshalJSON()
	require.NoError(t, err)

	var sk SecretKey
	require.NoError(t, sk.UnmarshalJSON(data))
	require.True(t, sk.HasFactors())

	m := new(saferith.Nat).SetUint64(99)
	ct, _, err := testPublic.Enc(rand.Reader, m)
	require.NoError(t, err)
	dec, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.True(t, m.Eq(dec) == 1)

	assert.ErrorIs(t, sk.UnmarshalJSON([]byte(`{"width":128}`)), ErrNilFields)
}

func TestCiphertextJSONRoundTrip(t *testing.T) {
	ct, _, err := testPublic.Enc(rand.Reader, new(saferith.Nat).SetUint64(13))
	require.NoError(t, err)

	data, err := ct.MarshalJSON()
	require.NoError(t, err)

	var got Ciphertext
	require.NoError(t, got.UnmarshalJSON(data))
	assert.True(t, ct.Equal(&got))
}
