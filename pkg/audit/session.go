// Package audit runs the authority side of a tally: it collects encrypted
// ballots, keeps a hash chained transcript of everything that happened,
// and produces a signed final report.
package audit

import (
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"

	"github.com/ballotseal/paillier-tally/internal/hash"
	"github.com/ballotseal/paillier-tally/pkg/ballot"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

// State tracks where a session is in its life cycle. Sessions move from
// Collecting through Finalizing to Reported and never back.
type State uint8

const (
	// Collecting accepts, decrypts and stacks incoming ballots.
	Collecting State = iota
	// Finalizing aggregates and decodes; no more ballots are accepted.
	Finalizing
	// Reported means the final report has been produced and sealed.
	Reported
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Finalizing:
		return "finalizing"
	case Reported:
		return "reported"
	default:
		return "invalid"
	}
}

var (
	// ErrSessionClosed is returned when a ballot operation arrives after
	// the session stopped collecting.
	ErrSessionClosed = errors.New("audit: session is no longer collecting")
	// ErrNotReported is returned when the report is requested before the
	// session has finalized.
	ErrNotReported = errors.New("audit: session has not produced a report yet")
)

// Receipt identifies one accepted ballot: its position in the session and
// the transcript digest at the moment it was recorded.
type Receipt struct {
	Seq    int
	Digest []byte
}

// Session drives one audit. A single goroutine is expected to feed it; a
// caller that shares one must serialize access itself.
type Session struct {
	sk     *paillier.SecretKey
	layout ballot.Layout
	box    *ballot.Box

	state      State
	seq        int
	transcript *hash.Hash
	report     *Report

	log zerolog.Logger
}

// NewSession opens a collecting session for ballots under sk, after
// checking that a full tally in this layout stays below the key's modulus.
func NewSession(sk *paillier.SecretKey, layout ballot.Layout, logger zerolog.Logger) (*Session, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if !layout.FitsModulus(sk.N()) {
		return nil, ballot.ErrLayoutTooWide
	}
	transcript := hash.New()
	err := transcript.WriteAny(
		hash.BytesWithDomain{TheDomain: "Tally Session"},
		sk.N().Nat(),
		uint64(layout.Voters),
		uint64(layout.Candidates),
	)
	if err != nil {
		return nil, err
	}
	return &Session{
		sk:         sk,
		layout:     layout,
		box:        ballot.NewBox(sk.PublicKey),
		transcript: transcript,
		log: logger.With().
			Int("voters", layout.Voters).
			Int("candidates", layout.Candidates).
			Logger(),
	}, nil
}

// Submit accepts one encrypted ballot. The ballot is decrypted on the spot
// so the audit shows what it claims to contain, chained into the
// transcript, and pushed onto the box. The receipt pins the ballot's place
// in the session.
func (s *Session) Submit(ct *paillier.Ciphertext) (*saferith.Nat, Receipt, error) {
	if s.state != Collecting {
		return nil, Receipt{}, ErrSessionClosed
	}
	m, err := s.sk.Dec(ct)
	if err != nil {
		return nil, Receipt{}, err
	}
	s.seq++
	if err := s.transcript.WriteAny(uint64(s.seq), ct); err != nil {
		return nil, Receipt{}, err
	}
	receipt := Receipt{Seq: s.seq, Digest: s.transcript.Sum()}
	s.box.Add(ct)
	s.log.Info().
		Int("ballot", s.seq).
		Str("plaintext", m.Big().String()).
		Hex("receipt", receipt.Digest).
		Msg("ballot accepted")
	return m, receipt, nil
}

// Undo withdraws the most recently accepted ballot, reporting whether one
// was there to withdraw.
func (s *Session) Undo() (bool, error) {
	if s.state != Collecting {
		return false, ErrSessionClosed
	}
	ct := s.box.Pop()
	if ct == nil {
		s.log.Warn().Msg("nothing to undo")
		return false, nil
	}
	err := s.transcript.WriteAny(hash.BytesWithDomain{TheDomain: "Ballot Undo"}, ct)
	if err != nil {
		return false, err
	}
	s.log.Info().Int("remaining", s.box.Len()).Msg("ballot withdrawn")
	return true, nil
}

// Finalize closes the box, aggregates it, decrypts and decodes the tally,
// reconciles it against the ballot count, and seals the session with a
// report.
func (s *Session) Finalize() (*Report, error) {
	if s.state != Collecting {
		return nil, ErrSessionClosed
	}
	s.state = Finalizing
	s.log.Info().Int("ballots", s.box.Len()).Msg("finalizing")

	agg := s.box.Aggregate()
	m, err := s.sk.Dec(agg)
	if err != nil {
		return nil, err
	}
	counts, err := s.layout.Decode(m)
	if err != nil {
		return nil, err
	}
	tally := &ballot.Tally{Counts: counts, Ballots: s.box.Len()}
	rec, delta := tally.Reconcile()

	err = s.transcript.WriteAny(hash.BytesWithDomain{TheDomain: "Tally Finalize"}, agg, m)
	if err != nil {
		return nil, err
	}
	s.report = &Report{
		Aggregate:      agg,
		Plaintext:      m,
		Tally:          tally,
		Reconciliation: rec,
		Delta:          delta,
		Transcript:     s.transcript.Sum(),
	}
	s.state = Reported
	s.log.Info().
		Str("reconciliation", rec.String()).
		Uint64("delta", delta).
		Msg("tally reported")
	return s.report, nil
}

// Report returns the sealed report once the session has finalized.
func (s *Session) Report() (*Report, error) {
	if s.state != Reported {
		return nil, ErrNotReported
	}
	return s.report, nil
}

// State returns where the session is in its life cycle.
func (s *Session) State() State {
	return s.state
}

// Ballots returns the number of ballots currently in the box.
func (s *Session) Ballots() int {
	return s.box.Len()
}
