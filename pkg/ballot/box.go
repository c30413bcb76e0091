package ballot

import (
	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

// Box is the ordered ballot box of one tally: ciphertexts are pushed as
// they arrive, only the newest one may be withdrawn, and aggregation
// multiplies the survivors together.
type Box struct {
	pk  *paillier.PublicKey
	cts []*paillier.Ciphertext
}

// NewBox creates an empty box for ballots encrypted under pk.
func NewBox(pk *paillier.PublicKey) *Box {
	return &Box{pk: pk}
}

// Add pushes a ballot onto the box.
func (b *Box) Add(ct *paillier.Ciphertext) {
	b.cts = append(b.cts, ct)
}

// Pop withdraws the most recently added ballot, returning nil when the box
// is empty.
func (b *Box) Pop() *paillier.Ciphertext {
	if len(b.cts) == 0 {
		return nil
	}
	ct := b.cts[len(b.cts)-1]
	b.cts = b.cts[:len(b.cts)-1]
	return ct
}

// Len returns the number of ballots currently held.
func (b *Box) Len() int {
	return len(b.cts)
}

// Aggregate folds the whole box into a single ciphertext. An empty box
// yields the identity, which decrypts to an all zero tally.
func (b *Box) Aggregate() *paillier.Ciphertext {
	agg := paillier.Identity()
	for _, ct := range b.cts {
		agg.Add(b.pk, ct)
	}
	return agg
}
