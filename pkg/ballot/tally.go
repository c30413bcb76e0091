package ballot

// Reconciliation classifies a decoded tally against the number of ballots
// that produced it.
type Reconciliation int

const (
	// Balanced means the counters sum to exactly one vote per ballot.
	Balanced Reconciliation = iota
	// Surplus means more votes than ballots: some ballot packed more
	// than a single vote.
	Surplus
	// Deficit means fewer votes than ballots: ballots encoded nothing,
	// or a counter overflowed out of its field.
	Deficit
)

func (r Reconciliation) String() string {
	switch r {
	case Balanced:
		return "balanced"
	case Surplus:
		return "surplus"
	case Deficit:
		return "deficit"
	default:
		return "unknown"
	}
}

// Tally is a decoded result: the per candidate counts and the number of
// ballots that went into them.
type Tally struct {
	Counts  []uint64
	Ballots int
}

// Total sums the counters across candidates.
func (t *Tally) Total() uint64 {
	var total uint64
	for _, c := range t.Counts {
		total += c
	}
	return total
}

// Reconcile compares the decoded total against the ballot count, returning
// the classification and the absolute difference.
//
// A mismatch is informational rather than an error; the final report
// records it.
func (t *Tally) Reconcile() (Reconciliation, uint64) {
	total := t.Total()
	ballots := uint64(t.Ballots)
	switch {
	case total > ballots:
		return Surplus, total - ballots
	case total < ballots:
		return Deficit, ballots - total
	default:
		return Balanced, 0
	}
}
