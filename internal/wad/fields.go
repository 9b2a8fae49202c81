package wad

import (
	"fmt"
	"strings"

	"github.com/marcellodash/rom-properties/internal/nintendo"
	"github.com/marcellodash/rom-properties/pkg/fields"
	"github.com/marcellodash/rom-properties/pkg/keystore"
)

// Fields builds the display field list. Order is fixed; conditional fields
// are skipped, never emitted empty.
func (r *Reader) Fields() []fields.Field {
	var fs fields.Set

	if r.keyStatus != keystore.VerifyOK {
		fs.AddFlags("Warning", r.keyStatus.Message(), fields.Warning)
	}

	fs.AddFlags("Title ID", r.tmd.TitleID.String(), fields.Monospace)

	// The low half of the title ID doubles as a game ID for channels.
	// Show it only when it is entirely alphanumeric.
	id4 := r.tmd.TitleID.Raw[4:8]
	if isAlnum(id4[0]) && isAlnum(id4[1]) && isAlnum(id4[2]) && isAlnum(id4[3]) {
		fs.AddFlags("Game ID", string(id4), fields.Monospace)
	}

	tv := r.tmd.TitleVersion
	fs.Add("Title Version", fmt.Sprintf("%d.%d (v%d)", tv>>8, tv&0xFF, tv))

	fs.Add("Region", r.regionString())

	if ios, ok := r.iosVersionString(); ok {
		fs.Add("IOS Version", ios)
	}

	fs.Add("Encryption Key", r.keyIdx.DisplayName())

	if info := r.GameInfo(); info != "" {
		fs.Add("Game Info", info)
	}

	return fs.All()
}

// Metadata exports the indexable properties: the banner title's first line.
// Packages without a readable banner have no metadata.
func (r *Reader) Metadata() (fields.Metadata, error) {
	info := r.GameInfo()
	if info == "" {
		return fields.Metadata{}, fields.ErrNoMetadata
	}
	title, _, _ := strings.Cut(info, "\n")
	if title == "" {
		return fields.Metadata{}, fields.ErrNoMetadata
	}
	return fields.Metadata{Title: title}, nil
}

// GameInfo returns the localized banner title, one or two lines. Empty when
// the banner is missing, not an IMET banner, or still encrypted.
func (r *Reader) GameInfo() string {
	if r.imet == nil || !r.imet.Valid() {
		return ""
	}

	lang := r.lang()
	if lang < 0 || lang >= nintendo.LangMax {
		lang = nintendo.LangEnglish
	}
	// Fall back to English when the locale's slot is empty.
	if r.imet.Names[lang][0][0] == 0 {
		lang = nintendo.LangEnglish
	}

	info := r.imet.NameLine(lang, 0)
	if r.imet.Names[lang][1][0] != 0 {
		info += "\n" + r.imet.NameLine(lang, 1)
	}
	return info
}

// regionChar picks the byte the region is derived from. System titles have
// no game ID; the System Menu encodes its region in the title version.
func (r *Reader) regionChar() byte {
	if r.tmd.TitleID.Hi == 0x00000001 {
		if r.tmd.TitleID.Lo == 0x00000002 {
			return nintendo.SystemMenuRegionChar(r.tmd.TitleVersion)
		}
		// IOS, BC, MIOS: region-free.
		return 0
	}
	return r.tmd.TitleID.Raw[7]
}

func (r *Reader) regionString() string {
	c := r.regionChar()
	switch c {
	case 0, 'A':
		return "Region-Free"
	case 'E':
		return "USA"
	case 'J':
		return "Japan"
	case 'W':
		return "Taiwan"
	case 'K', 'T', 'Q':
		return "South Korea"
	case 'C':
		return "China"
	default:
		if c >= 'A' && c <= 'Z' {
			return "Europe"
		}
		return fmt.Sprintf("Unknown (0x%02X)", c)
	}
}

// iosVersionString formats the required system title. Slots 3..0x2FF under
// the system TID high word are the standard IOS slots; other non-zero
// values print as a full title ID.
func (r *Reader) iosVersionString() (string, bool) {
	sys := r.tmd.SysVersion
	if sys.Hi == 0x00000001 && sys.Lo > 2 && sys.Lo < 0x300 {
		return fmt.Sprintf("IOS%d", sys.Lo), true
	}
	if sys.U64() != 0 {
		return sys.String(), true
	}
	return "", false
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
