// Package bundle implements the self-describing file bundle that wrapsh
// appends to the end of an install script.
//
// A bundle is a run of entries followed by a fixed-size footer:
//
//	Entry:  path_len:u32 | path[path_len] | data_len:u32 | data[data_len]
//	Footer: start_offset:u64 | entry_count:u32
//
// All integers are big-endian. The footer is always the last 12 bytes of
// the carrier stream, so a reader can find the entries without knowing how
// much unrelated content precedes them.
package bundle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// FooterSize is the encoded size of a Footer.
	FooterSize = 12

	lenSize = 4
)

var (
	// ErrMalformed is returned when a stream does not hold a valid bundle.
	ErrMalformed = errors.New("malformed bundle")

	// ErrUnsafePath is returned when an entry path would be restored
	// outside the destination directory. It matches ErrMalformed.
	ErrUnsafePath = fmt.Errorf("%w: unsafe entry path", ErrMalformed)

	// ErrTooLarge is returned when a path, a file, or the entry count does
	// not fit the 32-bit fields of the format.
	ErrTooLarge = errors.New("exceeds bundle field width")

	// ErrInvalidPath is returned when an entry path is not valid UTF-8.
	ErrInvalidPath = errors.New("entry path is not valid UTF-8")

	// ErrClosed is returned when writing to a finished bundle.
	ErrClosed = errors.New("bundle writer closed")
)

// Footer locates the entries of a bundle within its carrier stream.
type Footer struct {
	// StartOffset is the absolute offset of the first entry header.
	StartOffset uint64
	// Count is the number of entries.
	Count uint32
}

// MarshalBinary encodes the footer in its 12 byte wire form.
func (f Footer) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, FooterSize)
	buf = binary.BigEndian.AppendUint64(buf, f.StartOffset)
	buf = binary.BigEndian.AppendUint32(buf, f.Count)
	return buf, nil
}

// UnmarshalBinary decodes a footer from exactly FooterSize bytes.
func (f *Footer) UnmarshalBinary(b []byte) error {
	if len(b) != FooterSize {
		return fmt.Errorf(
			"%w: footer is %d bytes", ErrMalformed, len(b),
		)
	}
	f.StartOffset = binary.BigEndian.Uint64(b[:8])
	f.Count = binary.BigEndian.Uint32(b[8:])
	return nil
}

// Entry is one bundled file.
type Entry struct {
	Path string
	Data []byte
}

// Size is the number of bytes the entry occupies in a bundle.
func (e Entry) Size() int64 {
	return 2*lenSize + int64(len(e.Path)) + int64(len(e.Data))
}
