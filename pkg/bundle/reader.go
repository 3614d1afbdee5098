package bundle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/tqbf/wrapsh/pkg/paths"
)

// Reader walks the entries of a bundle in order.
type Reader struct {
	r      io.ReadSeeker
	footer Footer
	end    int64 // offset of the footer
	pos    int64
	read   uint32
	err    error
}

// NewReader locates the footer at the tail of rs and positions the reader
// on the first entry.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	end, err := rs.Seek(-FooterSize, io.SeekEnd)
	if err != nil {
		size, serr := rs.Seek(0, io.SeekEnd)
		if serr == nil && size < FooterSize {
			return nil, fmt.Errorf(
				"%w: stream is %d bytes", ErrMalformed, size,
			)
		}
		return nil, fmt.Errorf("seek footer: %w", err)
	}

	buf := make([]byte, FooterSize)
	if _, err := io.ReadFull(rs, buf); err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	var f Footer
	if err := f.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	if f.StartOffset > uint64(end) {
		return nil, fmt.Errorf(
			"%w: start offset %d past footer at %d",
			ErrMalformed, f.StartOffset, end,
		)
	}

	pos, err := rs.Seek(int64(f.StartOffset), io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}
	slog.Debug("bundle footer",
		"start", f.StartOffset,
		"count", f.Count,
		"footer", end,
	)
	return &Reader{r: rs, footer: f, end: end, pos: pos}, nil
}

// Footer returns the decoded footer.
func (br *Reader) Footer() Footer {
	return br.footer
}

// Next reads the next entry. It returns io.EOF once every entry has been
// read. Once Next fails it keeps returning the same error.
func (br *Reader) Next() (*Entry, error) {
	if br.err != nil {
		return nil, br.err
	}
	e, err := br.next()
	if err != nil {
		br.err = err
		return nil, err
	}
	return e, nil
}

func (br *Reader) next() (*Entry, error) {
	if br.read == br.footer.Count {
		if br.pos != br.end {
			return nil, fmt.Errorf(
				"%w: %d unread bytes before footer",
				ErrMalformed, br.end-br.pos,
			)
		}
		return nil, io.EOF
	}

	pathBuf, err := br.readField("path")
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(pathBuf) {
		return nil, fmt.Errorf(
			"%w: entry %d path is not valid UTF-8",
			ErrMalformed, br.read,
		)
	}
	path := string(pathBuf)

	data, err := br.readField(path)
	if err != nil {
		return nil, err
	}
	br.read++
	return &Entry{Path: path, Data: data}, nil
}

// readField reads a length-prefixed field. The length is checked against
// the bytes left before the footer so a corrupt length never allocates.
func (br *Reader) readField(what string) ([]byte, error) {
	var lenBuf [lenSize]byte
	if err := br.readFull(lenBuf[:], what); err != nil {
		return nil, err
	}
	n := int64(binary.BigEndian.Uint32(lenBuf[:]))
	if n > br.end-br.pos {
		return nil, fmt.Errorf(
			"%w: %s: length %d exceeds %d remaining bytes",
			ErrMalformed, what, n, br.end-br.pos,
		)
	}
	buf := make([]byte, n)
	if err := br.readFull(buf, what); err != nil {
		return nil, err
	}
	return buf, nil
}

func (br *Reader) readFull(buf []byte, what string) error {
	if int64(len(buf)) > br.end-br.pos {
		return fmt.Errorf(
			"%w: %s: truncated entry", ErrMalformed, what,
		)
	}
	n, err := io.ReadFull(br.r, buf)
	br.pos += int64(n)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, what, err)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}

// ExtractAll restores every remaining entry below dest and returns the
// number of files written. Files written before a failure are left in
// place.
func (br *Reader) ExtractAll(dest string) (int, error) {
	count := 0
	for {
		e, err := br.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if err := extractEntry(dest, e); err != nil {
			br.err = err
			return count, err
		}
		count++
	}
}

func extractEntry(dest string, e *Entry) error {
	if err := paths.ValidateRelPath(e.Path); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}
	target := filepath.Join(dest, filepath.FromSlash(e.Path))
	if !paths.IsWithinDir(dest, target) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, e.Path)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("mkdir parent %s: %w", e.Path, err)
	}
	if err := os.WriteFile(target, e.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", e.Path, err)
	}
	slog.Debug("extract file", "path", e.Path, "size", len(e.Data))
	return nil
}

// Extract opens the bundle at the tail of rs and restores it below dest.
func Extract(rs io.ReadSeeker, dest string) (int, error) {
	br, err := NewReader(rs)
	if err != nil {
		return 0, err
	}
	return br.ExtractAll(dest)
}
