package paillier

import (
	"encoding/json"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
)

// ErrNilFields is returned when reconstructing a key from serialized data
// that is missing required fields.
var ErrNilFields = errors.New("paillier: missing field")

var (
	_ json.Marshaler   = (*PublicKey)(nil)
	_ json.Unmarshaler = (*PublicKey)(nil)
	_ json.Marshaler   = (*SecretKey)(nil)
	_ json.Unmarshaler = (*SecretKey)(nil)
	_ json.Marshaler   = (*Ciphertext)(nil)
	_ json.Unmarshaler = (*Ciphertext)(nil)
)

type publicKeyMarshal struct {
	N     *saferith.Nat
	Width int
}

type secretKeyMarshal struct {
	// P and Q are set when the factorization is known.
	P *saferith.Nat
	Q *saferith.Nat
	// N and Phi are set otherwise.
	N   *saferith.Nat
	Phi *saferith.Nat

	Width int
}

// MarshalBinary implements encoding.BinaryMarshaler. Only the modulus and
// the width are written; the cached values are rebuilt on load.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&publicKeyMarshal{N: pk.nNat, Width: pk.width})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, revalidating the
// modulus as if the key were freshly constructed.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var pm publicKeyMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return err
	}
	if pm.N == nil {
		return ErrNilFields
	}
	rebuilt, err := NewPublicKey(pm.N, pm.Width)
	if err != nil {
		return err
	}
	*pk = *rebuilt
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler. A key built from
// primes keeps them; one built from the totient keeps the modulus and
// totient pair instead.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	sm := secretKeyMarshal{Width: sk.width}
	if sk.HasFactors() {
		sm.P, sm.Q = sk.p, sk.q
	} else {
		sm.N, sm.Phi = sk.nNat, sk.phi
	}
	return cbor.Marshal(&sm)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The key is rebuilt
// through the same constructors as a fresh one, so corrupted or
// inconsistent material is rejected rather than loaded.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var sm secretKeyMarshal
	if err := cbor.Unmarshal(data, &sm); err != nil {
		return err
	}
	var (
		rebuilt *SecretKey
		err     error
	)
	switch {
	case sm.P != nil && sm.Q != nil:
		rebuilt, err = NewSecretKeyFromPrimes(sm.P, sm.Q, sm.Width)
	case sm.N != nil && sm.Phi != nil:
		rebuilt, err = NewSecretKeyFromPhi(sm.N, sm.Phi, sm.Width)
	default:
		return ErrNilFields
	}
	if err != nil {
		return err
	}
	*sk = *rebuilt
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	return ct.c.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	c := new(saferith.Nat)
	if err := c.UnmarshalBinary(data); err != nil {
		return err
	}
	ct.c = c
	return nil
}

type jsonPublicKey struct {
	N     []byte `json:"n"`
	Width int    `json:"width"`
}

type jsonSecretKey struct {
	P     []byte `json:"p,omitempty"`
	Q     []byte `json:"q,omitempty"`
	N     []byte `json:"n,omitempty"`
	Phi   []byte `json:"phi,omitempty"`
	Width int    `json:"width"`
}

type jsonCiphertext struct {
	C []byte `json:"c"`
}

// MarshalJSON implements json.Marshaler.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPublicKey{N: pk.nNat.Bytes(), Width: pk.width})
}

// UnmarshalJSON implements json.Unmarshaler.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var jm jsonPublicKey
	if err := json.Unmarshal(data, &jm); err != nil {
		return err
	}
	if len(jm.N) == 0 {
		return ErrNilFields
	}
	rebuilt, err := NewPublicKey(new(saferith.Nat).SetBytes(jm.N), jm.Width)
	if err != nil {
		return err
	}
	*pk = *rebuilt
	return nil
}

// MarshalJSON implements json.Marshaler.
func (sk *SecretKey) MarshalJSON() ([]byte, error) {
	jm := jsonSecretKey{Width: sk.width}
	if sk.HasFactors() {
		jm.P, jm.Q = sk.p.Bytes(), sk.q.Bytes()
	} else {
		jm.N, jm.Phi = sk.nNat.Bytes(), sk.phi.Bytes()
	}
	return json.Marshal(jm)
}

// UnmarshalJSON implements json.Unmarshaler. Like UnmarshalBinary, the key
// is rebuilt through the constructors.
func (sk *SecretKey) UnmarshalJSON(data []byte) error {
	var jm jsonSecretKey
	if err := json.Unmarshal(data, &jm); err != nil {
		return err
	}
	var (
		rebuilt *SecretKey
		err     error
	)
	switch {
	case len(jm.P) > 0 && len(jm.Q) > 0:
		p := new(saferith.Nat).SetBytes(jm.P)
		q := new(saferith.Nat).SetBytes(jm.Q)
		rebuilt, err = NewSecretKeyFromPrimes(p, q, jm.Width)
	case len(jm.N) > 0 && len(jm.Phi) > 0:
		n := new(saferith.Nat).SetBytes(jm.N)
		phi := new(saferith.Nat).SetBytes(jm.Phi)
		rebuilt, err = NewSecretKeyFromPhi(n, phi, jm.Width)
	default:
		return ErrNilFields
	}
	if err != nil {
		return err
	}
	*sk = *rebuilt
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonCiphertext{C: ct.c.Bytes()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (ct *Ciphertext) UnmarshalJSON(data []byte) error {
	var jm jsonCiphertext
	if err := json.Unmarshal(data, &jm); err != nil {
		return err
	}
	ct.c = new(saferith.Nat).SetBytes(jm.C)
	return nil
}
