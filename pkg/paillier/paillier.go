// Package paillier implements the additively homomorphic Paillier
// cryptosystem over a fixed working width.
//
// Ciphertexts are units modulo N². Multiplying two of them yields an
// encryption of the sum of their plaintexts, which is what lets an
// untrusted party aggregate encrypted ballots without opening them.
package paillier

import (
	"io"

	"github.com/cronokirby/saferith"

	"github.com/ballotseal/paillier-tally/pkg/math/sample"
	"github.com/ballotseal/paillier-tally/pkg/pool"
)

var oneNat = new(saferith.Nat).SetUint64(1)

// KeyGen draws two distinct safe primes of bits bits each, searching in
// parallel on pl, and assembles the resulting key pair.
//
// Every derived value, N² included, has to fit in width bits.
func KeyGen(rand io.Reader, pl *pool.Pool, bits, width int) (*PublicKey, *SecretKey, error) {
	p, q, err := sample.Paillier(rand, pl, bits)
	if err != nil {
		return nil, nil, err
	}
	sk, err := NewSecretKeyFromPrimes(p, q, width)
	if err != nil {
		return nil, nil, err
	}
	return sk.PublicKey, sk, nil
}
