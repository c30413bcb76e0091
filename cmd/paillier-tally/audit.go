package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/audit"
	"github.com/ballotseal/paillier-tally/pkg/ballot"
	"github.com/ballotseal/paillier-tally/pkg/keyfile"
	"github.com/ballotseal/paillier-tally/pkg/paillier"
)

// runAudit drives the authority side. It reads the decryption secret,
// collects ballots line by line, and prints the reconciled tally.
//
// During collection each line is either a decimal ciphertext, "pop" to
// withdraw the last ballot, or "x" to finalize. Lines that do not parse
// or do not decrypt are rejected and prompted again.
func runAudit(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	modulus := fs.String("n", "", "public modulus N (decimal), required for a totient secret")
	voters := fs.Int("voters", params.DefaultVoters, "voter count")
	candidates := fs.Int("candidates", params.DefaultCandidates, "candidate count")
	width := fs.Int("width", params.DefaultWidth, "working width in bits")
	keyPath := fs.String("keyfile", "", "load the secret key from a sealed key file")
	passphrase := fs.String("passphrase", "", "passphrase for -keyfile (prompted when empty)")
	reportPath := fs.String("report", "", "write the serialized report to this file")
	certify := fs.Bool("certify", false, "sign the report with a fresh secp256k1 key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layout := ballot.Layout{Voters: *voters, Candidates: *candidates}
	if err := layout.Validate(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)

	var sk *paillier.SecretKey
	var err error
	if *keyPath != "" {
		sk, err = openKeyFile(scanner, *keyPath, *passphrase)
		if err == nil {
			err = checkKeyfileFlags(sk, *modulus, fs.Changed("width"), *width, logger)
		}
	} else {
		sk, err = readSecret(scanner, *modulus, *width)
	}
	if err != nil {
		return err
	}

	session, err := audit.NewSession(sk, layout, logger)
	if err != nil {
		return err
	}

	if err := collect(session, scanner); err != nil {
		return err
	}
	report, err := session.Finalize()
	if err != nil {
		return err
	}
	printReport(report)

	if *certify {
		if err := certifyReport(report); err != nil {
			return err
		}
	}
	if *reportPath != "" {
		data, err := report.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*reportPath, data, 0o644); err != nil {
			return err
		}
		logger.Info().Str("path", *reportPath).Msg("report written")
	}
	return nil
}

// checkKeyfileFlags reconciles a sealed key with the flags that would
// otherwise describe the secret. An explicit -n must match the sealed
// modulus; a sealed key fixes its own width, so a disagreeing -width is
// reported and ignored.
func checkKeyfileFlags(sk *paillier.SecretKey, modulus string, widthSet bool, width int, logger zerolog.Logger) error {
	if modulus != "" {
		n, err := parseNat(modulus)
		if err != nil {
			return err
		}
		if sk.N().Nat().Eq(n) != 1 {
			return errors.New("key file does not match the public modulus")
		}
	}
	if widthSet && width != sk.Width() {
		logger.Warn().
			Int("flag", width).
			Int("sealed", sk.Width()).
			Msg("-width ignored, the sealed key carries its own width")
	}
	return nil
}

// openKeyFile unseals a key file written by keygen -out.
func openKeyFile(scanner *bufio.Scanner, path, passphrase string) (*paillier.SecretKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	secret := []byte(passphrase)
	if len(secret) == 0 {
		line, err := promptLine(scanner, "passphrase> ")
		if err != nil {
			return nil, err
		}
		secret = []byte(line)
	}
	return keyfile.Open(data, secret)
}

// readSecret prompts until it gets a usable decryption secret: either
// "p,q", the two prime factors, or a single decimal, the totient φ(N).
// Rejected lines are reported and prompted again.
func readSecret(scanner *bufio.Scanner, modulus string, width int) (*paillier.SecretKey, error) {
	for {
		line, err := promptLine(scanner, "secret (p,q or phi)> ")
		if err != nil {
			return nil, err
		}
		sk, err := parseSecret(line, modulus, width)
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			continue
		}
		return sk, nil
	}
}

// parseSecret builds a secret key from one input line. A comma splits the
// line into the two prime factors; otherwise the whole line is the
// totient, which additionally needs the public modulus.
func parseSecret(line, modulus string, width int) (*paillier.SecretKey, error) {
	if strings.Contains(line, ",") {
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: want exactly p,q", errMalformed)
		}
		p, err := parseNat(parts[0])
		if err != nil {
			return nil, err
		}
		q, err := parseNat(parts[1])
		if err != nil {
			return nil, err
		}
		sk, err := paillier.NewSecretKeyFromPrimes(p, q, width)
		if err != nil {
			return nil, err
		}
		if modulus != "" {
			n, err := parseNat(modulus)
			if err != nil {
				return nil, err
			}
			if sk.N().Nat().Eq(n) != 1 {
				return nil, errors.New("secret does not match the public modulus")
			}
		}
		return sk, nil
	}
	phi, err := parseNat(line)
	if err != nil {
		return nil, err
	}
	if modulus == "" {
		return nil, errors.New("a totient secret needs the public modulus, pass -n")
	}
	n, err := parseNat(modulus)
	if err != nil {
		return nil, err
	}
	return paillier.NewSecretKeyFromPhi(n, phi, width)
}

// collect runs the ballot prompt loop until the terminate token.
func collect(session *audit.Session, scanner *bufio.Scanner) error {
	for {
		line, err := promptLine(scanner, fmt.Sprintf("%d> ", session.Ballots()+1))
		if err != nil {
			return err
		}
		switch line {
		case "":
			continue
		case "x":
			return nil
		case "pop":
			undone, err := session.Undo()
			if err != nil {
				return err
			}
			if !undone {
				fmt.Println("nothing to undo")
			}
			continue
		}
		ct, err := parseNat(line)
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			continue
		}
		m, receipt, err := session.Submit(paillier.NewCiphertext(ct))
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			continue
		}
		fmt.Printf("vote %d = %s (receipt %x)\n", receipt.Seq, m.Big().String(), receipt.Digest[:8])
	}
}

// printReport prints the tally in the order an observer checks it:
// aggregate, its plaintext, the per candidate counts, then whether the
// counts and the ballot count agree.
func printReport(report *audit.Report) {
	fmt.Printf("aggregate = %s\n", report.Aggregate.Big().String())
	fmt.Printf("m = %s\n", report.Plaintext.Big().String())
	for i, count := range report.Tally.Counts {
		fmt.Printf("candidate %d: %d votes\n", i, count)
	}
	switch report.Reconciliation {
	case ballot.Surplus:
		fmt.Printf("Surplus of %d votes...\n", report.Delta)
	case ballot.Deficit:
		fmt.Printf("Deficit of %d votes.\n", report.Delta)
	default:
		fmt.Println("All voters and votes accounted for.")
	}
}

// certifyReport signs the report with a throwaway key and prints the
// material a verifier needs.
func certifyReport(report *audit.Report) error {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return err
	}
	sig, err := report.Sign(priv)
	if err != nil {
		return err
	}
	digest, err := report.Digest()
	if err != nil {
		return err
	}
	fmt.Printf("report digest = %x\n", digest)
	fmt.Printf("authority key = %x\n", priv.PubKey().SerializeCompressed())
	fmt.Printf("signature = %x\n", sig.Serialize())
	return nil
}
