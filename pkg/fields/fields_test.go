package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_PreservesOrder(t *testing.T) {
	var s Set
	s.AddFlags("Warning", "key missing", Warning)
	s.Add("Title ID", "00010001-52535045")
	s.Add("Region", "USA")

	all := s.All()
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "Warning", all[0].Name)
	assert.Equal(t, "Title ID", all[1].Name)
	assert.Equal(t, "Region", all[2].Name)
	assert.Equal(t, Warning, all[0].Flags)
	assert.Equal(t, Flags(0), all[2].Flags)
}

func TestSet_Lookup(t *testing.T) {
	var s Set
	s.Add("Region", "Japan")

	f, ok := s.Lookup("Region")
	assert.True(t, ok)
	assert.Equal(t, "Japan", f.Value)

	_, ok = s.Lookup("Missing")
	assert.False(t, ok)
}

func TestArtworkType_String(t *testing.T) {
	assert.Equal(t, "Cover", ArtworkCover.String())
	assert.Equal(t, "TitleScreen", ArtworkTitleScreen.String())
	assert.Equal(t, "Invalid", ArtworkType(42).String())
}
