package main

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/keyfile"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
	"github.com/ballotseal/paillier-tally/pkg/pool"
)

// runKeygen draws a fresh key pair and prints the authority's material:
// both prime factors, the public modulus, and the totient.
func runKeygen(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	bits := fs.Int("prime-bits", params.DefaultPrimeBits, "bit length of each prime factor")
	width := fs.Int("width", params.DefaultWidth, "working width in bits")
	out := fs.String("out", "", "seal the secret key to this file")
	passphrase := fs.String("passphrase", "", "passphrase for -out (prompted when empty)")
	workers := fs.Int("workers", 0, "prime search workers, 0 uses all CPUs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pl := pool.NewPool(*workers)
	defer pl.TearDown()

	logger.Info().Int("prime-bits", *bits).Int("width", *width).Msg("generating key pair")
	pk, sk, err := paillier.KeyGen(rand.Reader, pl, *bits, *width)
	if err != nil {
		return err
	}

	fmt.Printf("p = %s\n", sk.P().Big().String())
	fmt.Printf("q = %s\n", sk.Q().Big().String())
	fmt.Printf("N = %s\n", pk.N().Nat().Big().String())
	fmt.Printf("phi = %s\n", sk.Phi().Big().String())

	if *out == "" {
		return nil
	}
	secret := []byte(*passphrase)
	if len(secret) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		line, err := promptLine(scanner, "passphrase> ")
		if err != nil {
			return err
		}
		secret = []byte(line)
	}
	sealed, err := keyfile.Seal(rand.Reader, sk, secret)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, sealed, 0o600); err != nil {
		return err
	}
	logger.Info().Str("path", *out).Msg("secret key sealed")
	return nil
}
