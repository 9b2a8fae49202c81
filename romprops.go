// Package romprops identifies ROM and package files and extracts their
// properties: typed display fields, indexable metadata, and external
// artwork locations. Format handlers register here and are probed in
// priority order against the file header.
package romprops

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/marcellodash/rom-properties/internal/wad"
	"github.com/marcellodash/rom-properties/pkg/fields"
	"github.com/marcellodash/rom-properties/pkg/source"
)

var (
	ErrUnknownFormat = errors.New("romprops: file format not recognized")
)

// detectHeaderLen is how much of the file every probe may look at.
const detectHeaderLen = 64

// RomData is an opened file of a recognized format. Implementations stay
// readable after Close; only the backing source is released.
type RomData interface {
	// SystemName identifies the console or platform.
	SystemName() string
	// Valid reports whether parsing succeeded.
	Valid() bool
	// Fields lists the user-visible properties in display order.
	Fields() []fields.Field
	// Metadata returns the indexable properties, or fields.ErrNoMetadata.
	Metadata() (fields.Metadata, error)
	// ArtworkURLs derives external artwork locations for an image type,
	// or fields.ErrNoArtwork.
	ArtworkURLs(t fields.ArtworkType, size int) ([]fields.ArtworkURL, error)
	// Close releases the backing source.
	Close() error
}

// DetectInfo is what a format probe gets to look at: the leading bytes,
// the total size, and the lowercased file extension when known.
type DetectInfo struct {
	Header []byte
	Size   int64
	Ext    string
}

// Format describes one registered handler.
type Format struct {
	Name      string
	Exts      []string
	MimeTypes []string
	Probe     func(DetectInfo) bool
	Open      func(src source.Source, cfg *Config) (RomData, error)
}

// formats is the registry, in probe priority order.
var formats = []Format{
	{
		Name:      "Nintendo Wii WAD",
		Exts:      []string{".wad"},
		MimeTypes: []string{"application/x-wii-wad"},
		Probe: func(di DetectInfo) bool {
			return wad.Probe(di.Header, di.Size)
		},
		Open: func(src source.Source, cfg *Config) (RomData, error) {
			return wad.Open(src, cfg.wadOptions())
		},
	},
}

// Formats lists the registered handlers in probe order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// Open probes src against every registered format and opens the first
// match. On no match or on a handler error, src is closed.
func Open(src source.Source, cfg *Config) (RomData, error) {
	return open(src, "", cfg)
}

// OpenFile opens path and dispatches on its content. The extension only
// breaks ties; detection is content-based.
func OpenFile(path string, cfg *Config) (RomData, error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return open(src, strings.ToLower(filepath.Ext(path)), cfg)
}

func open(src source.Source, ext string, cfg *Config) (RomData, error) {
	if src == nil {
		return nil, errors.New("romprops: nil source")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	header := make([]byte, detectHeaderLen)
	n, err := src.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		src.Close()
		return nil, fmt.Errorf("romprops: read header: %w", err)
	}

	di := DetectInfo{
		Header: header[:n],
		Size:   src.Size(),
		Ext:    ext,
	}
	for _, f := range formats {
		if f.Probe(di) {
			return f.Open(src, cfg)
		}
	}

	src.Close()
	return nil, ErrUnknownFormat
}
