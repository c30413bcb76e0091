package audit

import (
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"

	"github.com/ballotseal/paillier-tally/internal/hash"
	"github.com/ballotseal/paillier-tally/pkg/ballot"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

// ErrMissingFields is returned when reconstructing a report from
// serialized data that lacks required fields.
var ErrMissingFields = errors.New("audit: report is missing fields")

// Report is the outcome of one audit session.
type Report struct {
	// Aggregate is the homomorphic sum of every counted ballot.
	Aggregate *paillier.Ciphertext
	// Plaintext is the decrypted aggregate, the packed tally.
	Plaintext *saferith.Nat
	// Tally is the decoded result.
	Tally *ballot.Tally
	// Reconciliation classifies the result against the ballot count.
	Reconciliation ballot.Reconciliation
	// Delta is the size of the reconciliation mismatch, 0 when balanced.
	Delta uint64
	// Transcript is the digest of the full session transcript.
	Transcript []byte
}

// Digest returns the canonical digest of the report. This is the value a
// certification signs.
func (r *Report) Digest() ([]byte, error) {
	h := hash.New()
	err := h.WriteAny(
		hash.BytesWithDomain{TheDomain: "Tally Report", Bytes: r.Transcript},
		r.Aggregate,
		r.Plaintext,
		uint64(r.Tally.Ballots),
		uint64(r.Reconciliation),
		r.Delta,
	)
	if err != nil {
		return nil, err
	}
	for _, c := range r.Tally.Counts {
		if err := h.WriteAny(c); err != nil {
			return nil, err
		}
	}
	return h.Sum(), nil
}

// Sign certifies the report with the authority's signing key.
func (r *Report) Sign(priv *secp256k1.PrivateKey) (*ecdsa.Signature, error) {
	digest, err := r.Digest()
	if err != nil {
		return nil, err
	}
	return ecdsa.Sign(priv, digest), nil
}

// Verify checks a certification produced by Sign.
func (r *Report) Verify(pub *secp256k1.PublicKey, sig *ecdsa.Signature) bool {
	if sig == nil {
		return false
	}
	digest, err := r.Digest()
	if err != nil {
		return false
	}
	return sig.Verify(digest, pub)
}

type reportMarshal struct {
	Aggregate      *paillier.Ciphertext
	Plaintext      *saferith.Nat
	Counts         []uint64
	Ballots        int
	Reconciliation int
	Delta          uint64
	Transcript     []byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Report) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(&reportMarshal{
		Aggregate:      r.Aggregate,
		Plaintext:      r.Plaintext,
		Counts:         r.Tally.Counts,
		Ballots:        r.Tally.Ballots,
		Reconciliation: int(r.Reconciliation),
		Delta:          r.Delta,
		Transcript:     r.Transcript,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Report) UnmarshalBinary(data []byte) error {
	var rm reportMarshal
	if err := cbor.Unmarshal(data, &rm); err != nil {
		return err
	}
	if rm.Aggregate == nil || rm.Plaintext == nil {
		return ErrMissingFields
	}
	r.Aggregate = rm.Aggregate
	r.Plaintext = rm.Plaintext
	r.Tally = &ballot.Tally{Counts: rm.Counts, Ballots: rm.Ballots}
	r.Reconciliation = ballot.Reconciliation(rm.Reconciliation)
	r.Delta = rm.Delta
	r.Transcript = rm.Transcript
	return nil
}
