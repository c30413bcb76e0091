package params

const (
	// DefaultPrimeBits is the bit length of each prime factor of N.
	// Two 14 bit primes give a 28 bit modulus, large enough to pack a
	// full demo tally and small enough to generate instantly.
	DefaultPrimeBits = 14

	// DefaultWidth is the working width in bits. Every intermediate
	// value, N² included, must fit inside it.
	DefaultWidth = 128

	// DefaultVoters bounds each per candidate counter.
	DefaultVoters = 16

	// DefaultCandidates is the number of counters packed in a ballot.
	DefaultCandidates = 3

	// MinPrimeBits is the smallest prime length the sampler accepts.
	// Below 9 bits there are not two distinct safe primes with their
	// top two bits set, so a key with distinct factors cannot exist.
	MinPrimeBits = 9

	// DigestBytes is the size of receipt and report digests.
	DigestBytes = 32
)
