package hash

import (
	"io"
)

// WriterToWithDomain represents a type writing itself, and knowing its domain.
//
// Providing a domain string lets us distinguish the output of different types
// implementing this same interface.
type WriterToWithDomain interface {
	io.WriterTo
	// Domain returns a string uniquely identifying the object.
	Domain() string
}

// BytesWithDomain is a useful wrapper to annotate some chunk of data with a
// domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}

// writeWithDomain writes (<domain><data>) to w, framing the value so that
// adjacent writes cannot be confused for one another.
func writeWithDomain(w io.Writer, v WriterToWithDomain) error {
	if _, err := w.Write([]byte("(")); err != nil {
		return err
	}
	if _, err := w.Write([]byte(v.Domain())); err != nil {
		return err
	}
	if _, err := v.WriteTo(w); err != nil {
		return err
	}
	_, err := w.Write([]byte(")"))
	return err
}
