// Package hash provides a wrapper around the blake3 hash function, used for
// ballot receipts and session transcripts.
package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/zeebo/blake3"

	"github.com/ballotseal/paillier-tally/internal/params"
)

// Hash is an incremental hash whose inputs are domain separated, so that
// writing the same values in a different framing yields a different digest.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct where the internal state is initialized.
func New() *Hash {
	return &Hash{h: blake3.New()}
}

// Digest returns a reader for the current output of the function.
//
// This does not modify the internal state, so the hash can keep absorbing
// afterwards.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a digest of params.DigestBytes bytes.
func (hash *Hash) Sum() []byte {
	out := make([]byte, params.DigestBytes)
	_, _ = hash.Digest().Read(out)
	return out
}

// WriteAny takes many different data types and writes them to the hash.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, BytesWithDomain{"[]byte", t})
		case uint64:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], t)
			err = writeWithDomain(hash.h, BytesWithDomain{"uint64", buf[:]})
		case *saferith.Nat:
			err = writeWithDomain(hash.h, BytesWithDomain{"saferith.Nat", t.Bytes()})
		case *saferith.Modulus:
			err = writeWithDomain(hash.h, BytesWithDomain{"saferith.Modulus", t.Bytes()})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		default:
			return fmt.Errorf("hash.WriteAny: unsupported type %T", d)
		}
		if err != nil {
			return fmt.Errorf("hash.WriteAny: %w", err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
