package gametdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcellodash/rom-properties/pkg/fields"
)

func TestWiiRegionCodes(t *testing.T) {
	tests := []struct {
		region byte
		want   []string
	}{
		{'E', []string{"US"}},
		{'J', []string{"JA"}},
		{'O', []string{"US"}},
		{'D', []string{"DE"}},
		{'F', []string{"FR"}},
		{'H', []string{"NL"}},
		{'I', []string{"NL"}},
		{'R', []string{"RU"}},
		{'S', []string{"ES"}},
		{'U', []string{"AU", "EN"}},
		{'P', []string{"EN"}},
		{'X', []string{"EN"}},
		{'Y', []string{"EN"}},
		{'L', []string{"EN"}},
		{'M', []string{"EN"}},
		{'Z', []string{"EN"}},
	}

	for _, tt := range tests {
		// Order matters: the first region is tried first by downloaders.
		assert.Equal(t, tt.want, WiiRegionCodes(tt.region), "region %c", tt.region)
	}
}

func TestURLAndCacheKey(t *testing.T) {
	url := URL("wii", "cover", "US", "RSPE", ".png")
	assert.Equal(t, "http://art.gametdb.com/wii/cover/US/RSPE.png", url)

	key := CacheKey("wii", "cover", "US", "RSPE", ".png")
	assert.Equal(t, "wii/cover/US/RSPE.png", key)
}

func TestSizes(t *testing.T) {
	assert.Len(t, Sizes(fields.ArtworkCover), 1)
	assert.Len(t, Sizes(fields.ArtworkCover3D), 1)
	assert.Len(t, Sizes(fields.ArtworkTitleScreen), 1)
	assert.Nil(t, Sizes(fields.ArtworkType(42)))

	full := Sizes(fields.ArtworkCoverFull)
	assert.Len(t, full, 2)
	assert.Equal(t, "", full[0].Suffix)
	assert.Equal(t, "HQ", full[1].Suffix)
	assert.Equal(t, 1024, full[1].Width)
}

func TestSelectBestSize(t *testing.T) {
	full := Sizes(fields.ArtworkCoverFull)

	def, ok := SelectBestSize(full, 0)
	assert.True(t, ok)
	assert.Equal(t, 512, def.Width)

	def, ok = SelectBestSize(full, 400)
	assert.True(t, ok)
	assert.Equal(t, 512, def.Width)

	def, ok = SelectBestSize(full, 1000)
	assert.True(t, ok)
	assert.Equal(t, "HQ", def.Suffix)

	_, ok = SelectBestSize(nil, 256)
	assert.False(t, ok)
}

func TestTypeName(t *testing.T) {
	name, ok := TypeName(fields.ArtworkCoverFull)
	assert.True(t, ok)
	assert.Equal(t, "coverfull", name)

	_, ok = TypeName(fields.ArtworkType(42))
	assert.False(t, ok)
}
