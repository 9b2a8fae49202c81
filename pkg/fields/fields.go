// Package fields holds the data a format reader produces: the ordered field
// list shown to the user, extracted metadata properties, and external artwork
// descriptors. Handlers build these; front-ends render them.
package fields

import "errors"

var (
	// ErrNoArtwork means the title has no artwork source, as opposed to a
	// lookup that merely failed.
	ErrNoArtwork = errors.New("fields: no artwork available for this title")
	// ErrNoMetadata means the package carries no usable metadata.
	ErrNoMetadata = errors.New("fields: no metadata available")
)

type Flags uint8

const (
	// Warning renders the field highlighted; used for degraded reads.
	Warning Flags = 1 << iota
	// Monospace hints fixed-width rendering for IDs and hex dumps.
	Monospace
)

// Field is one name/value row. Order of addition is display order.
type Field struct {
	Name  string
	Value string
	Flags Flags
}

// Set collects fields in display order.
type Set struct {
	fields []Field
}

func (s *Set) Add(name, value string) {
	s.fields = append(s.fields, Field{Name: name, Value: value})
}

func (s *Set) AddFlags(name, value string, flags Flags) {
	s.fields = append(s.fields, Field{Name: name, Value: value, Flags: flags})
}

// All returns the fields in the order they were added.
func (s *Set) All() []Field {
	return s.fields
}

// Lookup finds the first field with the given name.
func (s *Set) Lookup(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Set) Len() int {
	return len(s.fields)
}

// Metadata is the property set exported to file indexers.
type Metadata struct {
	Title string
}

// ArtworkType selects which external image to resolve.
type ArtworkType int

const (
	ArtworkCover ArtworkType = iota
	ArtworkCover3D
	ArtworkCoverFull
	ArtworkTitleScreen
)

func (t ArtworkType) String() string {
	switch t {
	case ArtworkCover:
		return "Cover"
	case ArtworkCover3D:
		return "Cover3D"
	case ArtworkCoverFull:
		return "CoverFull"
	case ArtworkTitleScreen:
		return "TitleScreen"
	default:
		return "Invalid"
	}
}

// ArtworkURL locates one downloadable image. CacheKey is the stable local
// cache path for the image, independent of the URL it came from.
type ArtworkURL struct {
	URL      string
	CacheKey string
	Width    int
	Height   int
}
