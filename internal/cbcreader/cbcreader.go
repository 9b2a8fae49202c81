// Package cbcreader streams a CBC-encrypted span of a byte source as
// plaintext. The cipher chains across calls, so reads must stay sequential;
// there is deliberately no seeking.
package cbcreader

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/marcellodash/rom-properties/pkg/crypt"
	"github.com/marcellodash/rom-properties/pkg/source"
)

const blockSize = 16

var (
	ErrClosed = errors.New("cbcreader: closed")
)

// Reader decrypts src[offset, offset+length) block by block. A buffered
// current block lets callers read arbitrary byte counts. With a nil key the
// reader passes bytes through untouched, which is how unencrypted spans of
// the same container are served.
type Reader struct {
	src    source.Source
	offset int64
	length int64
	pos    int64
	mode   cipher.BlockMode

	buf    [blockSize]byte
	bufLen int
	bufOff int

	closed bool
}

// New creates a Reader over src[offset, offset+length). key selects the
// decrypting mode; nil means pass-through. When decrypting, a trailing
// partial block cannot exist in valid data and is cut off.
func New(src source.Source, offset, length int64, key, iv []byte, p crypt.Provider) (*Reader, error) {
	if src == nil {
		return nil, errors.New("cbcreader: nil source")
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("cbcreader: bad span offset=%d length=%d", offset, length)
	}

	r := &Reader{
		src:    src,
		offset: offset,
		length: length,
	}

	if key != nil {
		if p == nil {
			p = crypt.Default()
		}
		mode, err := p.NewCBCDecrypter(key, iv)
		if err != nil {
			return nil, err
		}
		r.mode = mode
		r.length -= r.length % blockSize
	}

	return r, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	total := 0
	for len(p) > 0 {
		if r.bufOff < r.bufLen {
			n := copy(p, r.buf[r.bufOff:r.bufLen])
			r.bufOff += n
			p = p[n:]
			total += n
			continue
		}

		if r.pos >= r.length {
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF
		}

		if err := r.fill(); err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
	}
	return total, nil
}

// fill loads and, if needed, decrypts the next block at r.pos.
func (r *Reader) fill() error {
	want := blockSize
	if remain := r.length - r.pos; remain < int64(want) {
		want = int(remain)
	}

	n, err := r.src.ReadAt(r.buf[:want], r.offset+r.pos)
	if err != nil {
		if err == io.EOF && n > 0 {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	if r.mode != nil {
		// want is always a full block here; New trimmed the span.
		r.mode.CryptBlocks(r.buf[:want], r.buf[:want])
	}

	r.pos += int64(want)
	r.bufLen = want
	r.bufOff = 0
	return nil
}

// Close marks the reader unusable. The underlying source stays open; the
// owner of the source closes it.
func (r *Reader) Close() error {
	r.closed = true
	return nil
}
