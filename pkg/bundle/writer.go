package bundle

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Writer appends entries to a carrier stream and finishes the bundle with a
// footer. A Writer is not safe for concurrent use.
type Writer struct {
	w      io.Writer
	start  uint64
	count  uint32
	closed bool
}

// NewWriter starts a bundle at the current end of ws. Everything already in
// the stream becomes the opaque prefix.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	end, err := ws.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	return NewWriterAt(ws, uint64(end)), nil
}

// NewWriterAt starts a bundle on a writer that already holds offset bytes.
func NewWriterAt(w io.Writer, offset uint64) *Writer {
	slog.Debug("bundle start", "offset", offset)
	return &Writer{w: w, start: offset}
}

// WriteEntry appends one entry. Nothing is written when the entry cannot be
// encoded.
func (bw *Writer) WriteEntry(path string, data []byte) error {
	if bw.closed {
		return ErrClosed
	}
	if !utf8.ValidString(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if uint64(len(path)) > math.MaxUint32 {
		return fmt.Errorf(
			"path of %d bytes: %w", len(path), ErrTooLarge,
		)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf(
			"%s: %d bytes: %w", path, len(data), ErrTooLarge,
		)
	}
	if bw.count == math.MaxUint32 {
		return fmt.Errorf("entry count: %w", ErrTooLarge)
	}

	hdr := make([]byte, 0, lenSize+len(path)+lenSize)
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(path)))
	hdr = append(hdr, path...)
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(data)))

	if _, err := bw.w.Write(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if _, err := bw.w.Write(data); err != nil {
		return fmt.Errorf("write body %s: %w", path, err)
	}
	bw.count++
	return nil
}

// AddFile reads root/rel and appends it as entry rel.
func (bw *Writer) AddFile(root, rel string) error {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	slog.Debug("add file", "path", rel, "size", len(data))
	return bw.WriteEntry(rel, data)
}

// Count reports the number of entries written so far.
func (bw *Writer) Count() uint32 {
	return bw.count
}

// Close writes the footer. The underlying writer is not closed.
func (bw *Writer) Close() (Footer, error) {
	if bw.closed {
		return Footer{}, ErrClosed
	}
	bw.closed = true

	f := Footer{StartOffset: bw.start, Count: bw.count}
	buf, _ := f.MarshalBinary()
	if _, err := bw.w.Write(buf); err != nil {
		return Footer{}, fmt.Errorf("write footer: %w", err)
	}
	slog.Debug("bundle done",
		"start", f.StartOffset,
		"count", f.Count,
	)
	return f, nil
}
