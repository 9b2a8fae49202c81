// Package source abstracts the byte streams format readers parse. A Source is
// random-access and keeps an independent sequential position, so a reader can
// mix positioned header reads with streaming section reads over the same file.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrClosed = errors.New("source: closed")
)

// Source is a sized, random-access byte stream. Read advances a sequential
// position; ReadAt never does. Both report short reads as errors instead of
// padding, so parsers can trust the byte counts they asked for.
type Source interface {
	Size() int64
	Read(p []byte) (int, error)
	ReadAt(p []byte, off int64) (int, error)
	Rewind() error
	Close() error
}

// ReadRange reads exactly n bytes starting at off into a fresh slice.
// A truncated source surfaces as io.EOF or io.ErrUnexpectedEOF.
func ReadRange(s Source, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.ReadAt(buf, off)
	if err != nil {
		if err == io.EOF && read > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// File is a Source backed by a file on disk. The size is captured at open
// time; files that grow underneath a reader are not supported.
type File struct {
	f      *os.File
	size   int64
	closed bool
}

func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &File{f: f, size: info.Size()}, nil
}

func (s *File) Size() int64 {
	return s.size
}

func (s *File) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.f.Read(p)
}

func (s *File) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.f.ReadAt(p, off)
}

func (s *File) Rewind() error {
	if s.closed {
		return ErrClosed
	}
	_, err := s.f.Seek(0, io.SeekStart)
	return err
}

func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

// Mem is a Source over an in-memory byte slice. It backs the tests and any
// caller that already holds the whole file.
type Mem struct {
	data   []byte
	pos    int64
	closed bool
}

func NewMem(data []byte) *Mem {
	return &Mem{data: data}
}

func (s *Mem) Size() int64 {
	return int64(len(s.data))
}

func (s *Mem) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *Mem) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("source: negative offset %d", off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Mem) Rewind() error {
	if s.closed {
		return ErrClosed
	}
	s.pos = 0
	return nil
}

func (s *Mem) Close() error {
	s.closed = true
	return nil
}
