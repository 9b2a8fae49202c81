// Package gametdb builds download URLs and cache keys for GameTDB, the
// community artwork database. It only derives locations; nothing here
// performs network I/O.
package gametdb

import (
	"fmt"

	"github.com/marcellodash/rom-properties/pkg/fields"
)

// SizeDef is one published variant of an image type. Suffix distinguishes
// quality tiers in the URL path ("coverfull" vs "coverfullHQ").
type SizeDef struct {
	Suffix string
	Width  int
	Height int
	Index  int
}

// Sizes lists the published variants for an image type, default first.
func Sizes(t fields.ArtworkType) []SizeDef {
	switch t {
	case fields.ArtworkCover:
		return []SizeDef{{Width: 160, Height: 224}}
	case fields.ArtworkCover3D:
		return []SizeDef{{Width: 176, Height: 248}}
	case fields.ArtworkCoverFull:
		return []SizeDef{
			{Width: 512, Height: 340},
			{Suffix: "HQ", Width: 1024, Height: 680, Index: 1},
		}
	case fields.ArtworkTitleScreen:
		return []SizeDef{{Width: 192, Height: 112}}
	default:
		return nil
	}
}

// SelectBestSize picks the variant closest to the requested pixel size.
// size <= 0 requests the default variant.
func SelectBestSize(defs []SizeDef, size int) (SizeDef, bool) {
	if len(defs) == 0 {
		return SizeDef{}, false
	}
	if size <= 0 {
		return defs[0], true
	}

	best := defs[0]
	bestDist := dist(best, size)
	for _, d := range defs[1:] {
		if dd := dist(d, size); dd < bestDist {
			best = d
			bestDist = dd
		}
	}
	return best, true
}

func dist(d SizeDef, size int) int {
	dim := d.Width
	if d.Height > dim {
		dim = d.Height
	}
	if dim > size {
		return dim - size
	}
	return size - dim
}

// TypeName returns the GameTDB directory name for an image type.
func TypeName(t fields.ArtworkType) (string, bool) {
	switch t {
	case fields.ArtworkCover:
		return "cover", true
	case fields.ArtworkCover3D:
		return "cover3D", true
	case fields.ArtworkCoverFull:
		return "coverfull", true
	case fields.ArtworkTitleScreen:
		return "wwtitle", true
	default:
		return "", false
	}
}

// URL builds the download location for one image.
func URL(system, imageTypeName, region, gameID, ext string) string {
	return fmt.Sprintf("http://art.gametdb.com/%s/%s/%s/%s%s",
		system, imageTypeName, region, gameID, ext)
}

// CacheKey is the URL path without scheme and host, used as the local cache
// identity of the image.
func CacheKey(system, imageTypeName, region, gameID, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s%s",
		system, imageTypeName, region, gameID, ext)
}

// WiiRegionCodes expands a game ID region character into GameTDB region
// directories, most specific first. Multi-language and PAL releases fall
// back to the pan-European directory.
func WiiRegionCodes(idRegion byte) []string {
	switch idRegion {
	case 'E': // USA
		return []string{"US"}
	case 'J': // Japan
		return []string{"JA"}
	case 'O': // US/EU; host region unknown, assume US
		return []string{"US"}
	case 'D': // Germany
		return []string{"DE"}
	case 'F': // France
		return []string{"FR"}
	case 'H': // Netherlands
		return []string{"NL"}
	case 'I': // Italy
		return []string{"NL"}
	case 'R': // Russia
		return []string{"RU"}
	case 'S': // Spain
		return []string{"ES"}
	case 'U': // Australia, with the European fallback
		return []string{"AU", "EN"}
	default: // PAL and multi-language releases
		return []string{"EN"}
	}
}
