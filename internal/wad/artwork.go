package wad

import (
	"github.com/marcellodash/rom-properties/internal/gametdb"
	"github.com/marcellodash/rom-properties/pkg/fields"
)

// Title categories that have GameTDB artwork: system channels, installed
// channels and WiiWare, system channel variants, hidden channels.
var artworkTIDHi = map[uint32]bool{
	0x00010000: true,
	0x00010001: true,
	0x00010002: true,
	0x00010004: true,
	0x00010005: true,
	0x00010008: true,
}

// ArtworkURLs derives GameTDB download locations for an image type. size
// selects among published variants; <= 0 requests the default. Titles
// outside the channel categories have no artwork.
func (r *Reader) ArtworkURLs(t fields.ArtworkType, size int) ([]fields.ArtworkURL, error) {
	if !artworkTIDHi[r.tmd.TitleID.Hi] {
		return nil, fields.ErrNoArtwork
	}

	base, ok := gametdb.TypeName(t)
	if !ok {
		return nil, fields.ErrNoArtwork
	}
	def, ok := gametdb.SelectBestSize(gametdb.Sizes(t), size)
	if !ok {
		return nil, fields.ErrNoArtwork
	}

	// GameTDB indexes channels by ID4, which must be printable ASCII.
	id4 := r.tmd.TitleID.Raw[4:8]
	for _, b := range id4 {
		if b < 0x20 || b > 0x7E {
			return nil, fields.ErrNoArtwork
		}
	}

	typeName := base + def.Suffix
	regions := gametdb.WiiRegionCodes(id4[3])

	urls := make([]fields.ArtworkURL, 0, len(regions))
	for _, region := range regions {
		urls = append(urls, fields.ArtworkURL{
			URL:      gametdb.URL("wii", typeName, region, string(id4), ".png"),
			CacheKey: gametdb.CacheKey("wii", typeName, region, string(id4), ".png"),
			Width:    def.Width,
			Height:   def.Height,
		})
	}
	return urls, nil
}
