package sample

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/ballotseal/paillier-tally/internal/params"
	"github.com/ballotseal/paillier-tally/pkg/pool"
)

// trialPrimes contains the odd prime numbers below 800.
var trialPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23,
	29, 31, 37, 41, 43, 47, 53, 59,
	61, 67, 71, 73, 79, 83, 89, 97,
	101, 103, 107, 109, 113, 127, 131, 137,
	139, 149, 151, 157, 163, 167, 173, 179,
	181, 191, 193, 197, 199, 211, 223, 227,
	229, 233, 239, 241, 251, 257, 263, 269,
	271, 277, 281, 283, 293, 307, 311, 313,
	317, 331, 337, 347, 349, 353, 359, 367,
	373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461,
	463, 467, 479, 487, 491, 499, 503, 509,
	521, 523, 541, 547, 557, 563, 569, 571,
	577, 587, 593, 599, 601, 607, 613, 617,
	619, 631, 641, 643, 647, 653, 659, 661,
	673, 677, 683, 691, 701, 709, 719, 727,
	733, 739, 743, 751, 757, 761, 769, 773,
}

// the number of iterations to use when checking primality
//
// 20 is the same number that Go uses internally.
const safePrimalityIterations = 20

// maxPrimeIterations is the number of times to try generating a new prime.
//
// This is substantially larger than the other max iterations we have for
// generation, because of the sparsity of safe primes.
const maxPrimeIterations = 100_000

var (
	// ErrMaxPrimeIterations is returned when we fail to generate a prime.
	ErrMaxPrimeIterations = fmt.Errorf("sample: failed to generate prime after %d iterations", maxPrimeIterations)
	// ErrPrimeBits is returned when the requested prime length is too
	// small for the sampler.
	ErrPrimeBits = fmt.Errorf("sample: prime bit length must be at least %d", params.MinPrimeBits)
)

// potentialSafePrime generates a candidate safe prime of a certain bit size.
//
// The candidate returned by this function will have undergone trial
// division, but not the heavier primality tests like Miller-Rabin.
func potentialSafePrime(rand io.Reader, bits int) (*big.Int, error) {
	// The general strategy is to generate random numbers without an
	// obviously deficient bit pattern, and then check that this number, or
	// one nearby, isn't divisible by any of our trial primes.

	// Trial primes at or above a quarter of the candidate range would
	// reject genuine small safe primes, either the candidate itself or its
	// half, so cap the trial set.
	usable := trialPrimes
	if bits < 12 {
		limit := uint64(1) << uint(bits-2)
		cut := 0
		for cut < len(usable) && usable[cut] < limit {
			cut++
		}
		usable = usable[:cut]
	}

	// The number of significant bits in the last byte of our number.
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}

	bytes := make([]byte, (bits+7)/8)
	p := new(big.Int)
	scratch := new(big.Int)
	// We store a different remainder for each prime, so that we can adjust
	// these values with deltas instead of adjusting our large candidate
	// and recalculating the remainder.
	mods := make([]uint64, len(usable))

	for {
		if _, err := io.ReadFull(rand, bytes); err != nil {
			return nil, err
		}

		// Clear bits in the first byte to make sure the candidate has a size <= bits.
		bytes[0] &= uint8(int(1<<lastBits) - 1)
		// Don't let the value be too small, i.e, set the most significant two bits.
		//
		// Setting the top two bits, rather than just the top bit,
		// means that when two of these values are multiplied together,
		// the result isn't ever one bit short.
		if lastBits >= 2 {
			bytes[0] |= 0b11 << (lastBits - 2)
		} else {
			// Here lastBits == 1, because lastBits cannot be zero.
			bytes[0] |= 1
			if len(bytes) > 1 {
				bytes[1] |= 0b1000_0000
			}
		}
		// Safe primes are always 3 mod 4, so we set the least significant
		// two bits, and make sure to keep them that way.
		bytes[len(bytes)-1] |= 3

		p.SetBytes(bytes)

		for i := 0; i < len(usable); i++ {
			scratch.SetUint64(usable[i])
			mods[i] = scratch.Mod(p, scratch).Uint64()
		}
		// This is a heuristic cap used by OpenSSL.
		maxDelta := (uint64(1) << 32) - trialPrimes[len(trialPrimes)-1]
	NextDelta:
		// We add 4 each iteration, to remain 3 mod 4.
		for delta := uint64(0); delta < maxDelta; delta += 4 {
			for i := 0; i < len(usable); i++ {
				remainder := (mods[i] + delta) % usable[i]
				// If x = 0 mod p, then x is certainly not prime.
				// If x = 1 mod p, then (x - 1) / 2 = 0 mod p, so x cannot
				// be a safe prime either.
				if remainder <= 1 {
					continue NextDelta
				}
			}
			scratch.SetUint64(delta)
			cand := new(big.Int).Add(p, scratch)
			// Adding delta may have pushed the candidate one bit past the
			// requested size; if so the rest of the scan overflows too,
			// and we start over with a fresh base.
			if cand.BitLen() == bits {
				return cand, nil
			}
			break
		}
	}
}

// trySafePrime draws one candidate of exactly bits bits and runs the full
// primality checks on it, returning nil when they fail.
func trySafePrime(rand io.Reader, bits int) *saferith.Nat {
	p, err := potentialSafePrime(rand, bits)
	if err != nil {
		return nil
	}
	// For p to be safe, we need q := (p - 1) / 2 to also be prime.
	q := new(big.Int).Sub(p, big.NewInt(1))
	q.Rsh(q, 1)
	// p is likely to be prime already, so first do the other check, which
	// is more likely to fail.
	if !q.ProbablyPrime(safePrimalityIterations) {
		return nil
	}
	if !p.ProbablyPrime(safePrimalityIterations) {
		return nil
	}
	return new(saferith.Nat).SetBig(p, bits)
}

// SafePrime returns a probable safe prime p with exactly bits bits.
//
// This means that q := (p - 1) / 2 is also a prime number, which implies
// p = 3 mod 4.
func SafePrime(rand io.Reader, bits int) (*saferith.Nat, error) {
	if bits < params.MinPrimeBits {
		return nil, ErrPrimeBits
	}
	for i := 0; i < maxPrimeIterations; i++ {
		if p := trySafePrime(rand, bits); p != nil {
			return p, nil
		}
	}
	return nil, ErrMaxPrimeIterations
}

// Paillier generates the prime factors of a Paillier modulus, searching in
// parallel on pl.
//
// p and q are distinct safe primes of exactly bits bits each, so that
// n = p⋅q has exactly 2⋅bits bits.
func Paillier(rand io.Reader, pl *pool.Pool, bits int) (p, q *saferith.Nat, err error) {
	if bits < params.MinPrimeBits {
		return nil, nil, ErrPrimeBits
	}
	reader := pool.NewLockedReader(rand)
	for {
		results := pl.Search(2, func() interface{} {
			cand := trySafePrime(reader, bits)
			if cand == nil {
				// A typed nil boxed in an interface would not
				// compare equal to nil inside Search.
				return nil
			}
			return cand
		})
		p, q = results[0].(*saferith.Nat), results[1].(*saferith.Nat)
		// At small sizes the same prime can be drawn twice.
		if p.Eq(q) != 1 {
			return p, q, nil
		}
	}
}
