// Package ballot implements the bit packed vote encoding and the ordered
// ballot box an audit session aggregates.
//
// A ballot dedicates a fixed number of bits to each candidate's counter. A
// single vote for candidate i is the plaintext 1 << (i⋅Bits()), so adding
// plaintexts adds the counters field by field, with no carries between
// fields as long as no counter exceeds its capacity.
package ballot

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/cronokirby/saferith"
)

var (
	// ErrVotersRange is returned for layouts with fewer than 2 voters;
	// a counter needs at least one bit.
	ErrVotersRange = errors.New("ballot: voter count must be at least 2")
	// ErrCandidatesRange is returned for layouts without candidates.
	ErrCandidatesRange = errors.New("ballot: candidate count must be at least 1")
	// ErrCandidateRange is returned when a vote names a candidate the
	// layout has no counter for.
	ErrCandidateRange = errors.New("ballot: candidate index out of range")
	// ErrTallyOverflow is returned when an aggregated plaintext no longer
	// fits the working accumulator.
	ErrTallyOverflow = errors.New("ballot: packed tally exceeds the working accumulator")
	// ErrLayoutTooWide is returned when the packed layout cannot stay
	// below the modulus, so aggregation could wrap.
	ErrLayoutTooWide = errors.New("ballot: packed layout does not fit below the modulus")
)

// Layout fixes the geometry of a packed tally.
type Layout struct {
	// Voters bounds how many ballots a single counter must hold.
	Voters int
	// Candidates is the number of counters packed side by side.
	Candidates int
}

// Validate checks that the layout is usable.
func (l Layout) Validate() error {
	if l.Voters < 2 {
		return ErrVotersRange
	}
	if l.Candidates < 1 {
		return ErrCandidatesRange
	}
	return nil
}

// Bits returns the width of one counter, ⌊log₂ Voters⌋.
func (l Layout) Bits() uint {
	return uint(bits.Len(uint(l.Voters)) - 1)
}

// Mask returns the bit mask of one counter, 2^Bits - 1.
//
// When Voters is a power of two this equals Voters - 1, so a counter can
// hold every voter minus one before wrapping into its neighbour.
func (l Layout) Mask() uint64 {
	return 1<<l.Bits() - 1
}

// Width returns the total number of bits a packed tally occupies.
func (l Layout) Width() uint {
	return l.Bits() * uint(l.Candidates)
}

// FitsModulus reports whether every value a packed tally can take stays
// below n, so that aggregating under n never wraps the plaintext space.
func (l Layout) FitsModulus(n *saferith.Modulus) bool {
	return l.Width() < uint(n.BitLen())
}

// Encode returns the plaintext of a single vote for candidate: a one in
// the candidate's counter and zeroes everywhere else.
func (l Layout) Encode(candidate int) (*saferith.Nat, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if candidate < 0 || candidate >= l.Candidates {
		return nil, ErrCandidateRange
	}
	shift := uint(candidate) * l.Bits()
	m := new(big.Int).Lsh(big.NewInt(1), shift)
	return new(saferith.Nat).SetBig(m, int(shift)+1), nil
}

// Decode splits an aggregated plaintext back into per candidate counts.
//
// The counters come back masked to Bits() wide. If a counter ever
// overflowed, the excess has already carried into the neighbouring field;
// reconciliation surfaces that as a count mismatch.
func (l Layout) Decode(m *saferith.Nat) ([]uint64, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	acc := m.Big()
	if !acc.IsUint64() {
		return nil, ErrTallyOverflow
	}
	packed := acc.Uint64()
	counts := make([]uint64, l.Candidates)
	for i := range counts {
		counts[i] = (packed >> (uint(i) * l.Bits())) & l.Mask()
	}
	return counts, nil
}
