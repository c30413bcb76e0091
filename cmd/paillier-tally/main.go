// Command paillier-tally is an interactive demo of an additively
// homomorphic vote tally: keygen prepares authority key material, vote
// produces encrypted ballots, and audit collects them and reports the
// reconciled result.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"
)

const usage = `Usage: paillier-tally <command> [flags]

Commands:
  keygen   generate a key pair and optionally seal it to a key file
  vote     encrypt one or more ballots
  audit    collect encrypted ballots and report the tally

Run 'paillier-tally <command> -h' for command flags.
`

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = runKeygen(os.Args[2:], logger)
	case "vote":
		err = runVote(os.Args[2:], logger)
	case "audit":
		err = runAudit(os.Args[2:], logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// errMalformed marks operator input that does not parse; during ballot
// collection it is rejected and re-prompted instead of ending the session.
var errMalformed = errors.New("malformed decimal input")

// parseNat parses a non negative decimal integer.
func parseNat(s string) (*saferith.Nat, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errMalformed, s)
	}
	size := v.BitLen()
	if size == 0 {
		size = 1
	}
	return new(saferith.Nat).SetBig(v, size), nil
}

// promptLine prints a prompt on stderr and reads one line.
func promptLine(scanner *bufio.Scanner, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
