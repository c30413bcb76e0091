package main

import (
	"crypto/rand"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/ballot"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
	"github.com/ballotseal/paillier-tally/pkg/pool"
)

// runVote produces encrypted ballots for one candidate. With -n it
// encrypts under an existing public modulus; without it a fresh key pair
// is drawn first and the factors printed for the authority.
//
// Each ballot is printed as three lines, nonce first:
//
//	ri = <nonce>
//	N = <modulus>
//	ci = <ciphertext>
func runVote(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	modulus := fs.String("n", "", "public modulus N (decimal), empty draws a fresh key pair")
	candidate := fs.Int("candidate", 0, "candidate index to vote for")
	voters := fs.Int("voters", params.DefaultVoters, "voter count")
	candidates := fs.Int("candidates", params.DefaultCandidates, "candidate count")
	width := fs.Int("width", params.DefaultWidth, "working width in bits")
	bits := fs.Int("prime-bits", params.DefaultPrimeBits, "bit length of each prime factor (fresh key only)")
	count := fs.Int("count", 1, "number of ballots to produce")
	workers := fs.Int("workers", 0, "prime search workers, 0 uses all CPUs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("vote: count must be at least 1, got %d", *count)
	}

	layout := ballot.Layout{Voters: *voters, Candidates: *candidates}
	if err := layout.Validate(); err != nil {
		return err
	}

	var pk *paillier.PublicKey
	if *modulus == "" {
		pl := pool.NewPool(*workers)
		defer pl.TearDown()
		logger.Info().Int("prime-bits", *bits).Msg("no modulus given, generating key pair")
		freshPk, sk, err := paillier.KeyGen(rand.Reader, pl, *bits, *width)
		if err != nil {
			return err
		}
		pk = freshPk
		fmt.Printf("p = %s\n", sk.P().Big().String())
		fmt.Printf("q = %s\n", sk.Q().Big().String())
	} else {
		n, err := parseNat(*modulus)
		if err != nil {
			return err
		}
		pk, err = paillier.NewPublicKey(n, *width)
		if err != nil {
			return err
		}
	}
	if !layout.FitsModulus(pk.N()) {
		return ballot.ErrLayoutTooWide
	}

	m, err := layout.Encode(*candidate)
	if err != nil {
		return err
	}

	type sealed struct {
		nonce *saferith.Nat
		ct    *paillier.Ciphertext
	}
	ballots := make([]sealed, *count)
	var group errgroup.Group
	for i := range ballots {
		i := i
		group.Go(func() error {
			ct, nonce, err := pk.Enc(rand.Reader, m)
			if err != nil {
				return err
			}
			ballots[i] = sealed{nonce: nonce, ct: ct}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	n := pk.N().Nat().Big().String()
	for _, b := range ballots {
		fmt.Printf("ri = %s\n", b.nonce.Big().String())
		fmt.Printf("N = %s\n", n)
		fmt.Printf("ci = %s\n", b.ct.Big().String())
	}
	logger.Info().Int("ballots", *count).Int("candidate", *candidate).Msg("ballots sealed")
	return nil
}
