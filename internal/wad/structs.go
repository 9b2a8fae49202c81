package wad

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"
)

// Section sizes, fixed by the container format. The ticket and TMD sizes
// are the minimum structure sizes; the header declares the on-disk sizes.
const (
	HeaderLen           = 0x20
	TicketLen           = 0x2A4
	TMDHeaderLen        = 0x1E4
	ContentBinHeaderLen = 0x40
	IMETLen             = 0x600
)

// Package type tags, the second word of the header.
const (
	TypeIs = 0x49730000 // 'Is': common installable package
	Typeib = 0x69620000 // 'ib': boot2
	TypeBk = 0x426B0000 // 'Bk': backup, data.bin style
)

const imetMagic = 0x494D4554 // 'IMET'

// toNext64 rounds up to the next multiple of 64. Sections inside the
// container are 64-byte aligned; offsets are sums of aligned sizes.
func toNext64(v uint32) int64 {
	return (int64(v) + 63) &^ 63
}

// ID64 is a 64-bit console identity split into its high and low words, kept
// alongside the raw bytes because the low word doubles as a character code.
type ID64 struct {
	Hi  uint32
	Lo  uint32
	Raw [8]byte
}

func (id ID64) U64() uint64 {
	return uint64(id.Hi)<<32 | uint64(id.Lo)
}

func (id ID64) String() string {
	return fmt.Sprintf("%08X-%08X", id.Hi, id.Lo)
}

func decodeID64(b []byte) ID64 {
	var id ID64
	id.Hi = binary.BigEndian.Uint32(b[0:])
	id.Lo = binary.BigEndian.Uint32(b[4:])
	copy(id.Raw[:], b[:8])
	return id
}

// Header is the 32-byte container header. All fields are big-endian sizes
// of the sections that follow, in file order.
type Header struct {
	HeaderSize    uint32
	Type          uint32
	CertChainSize uint32
	Reserved      uint32
	TicketSize    uint32
	TMDSize       uint32
	DataSize      uint32
	FooterSize    uint32
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("wad: header needs %d bytes, have %d", HeaderLen, len(b))
	}
	return Header{
		HeaderSize:    binary.BigEndian.Uint32(b[0x00:]),
		Type:          binary.BigEndian.Uint32(b[0x04:]),
		CertChainSize: binary.BigEndian.Uint32(b[0x08:]),
		Reserved:      binary.BigEndian.Uint32(b[0x0C:]),
		TicketSize:    binary.BigEndian.Uint32(b[0x10:]),
		TMDSize:       binary.BigEndian.Uint32(b[0x14:]),
		DataSize:      binary.BigEndian.Uint32(b[0x18:]),
		FooterSize:    binary.BigEndian.Uint32(b[0x1C:]),
	}, nil
}

// TicketOffset locates the ticket section behind the aligned header and
// certificate chain.
func (h Header) TicketOffset() int64 {
	return toNext64(h.HeaderSize) + toNext64(h.CertChainSize)
}

// TMDOffset locates the TMD section.
func (h Header) TMDOffset() int64 {
	return h.TicketOffset() + toNext64(h.TicketSize)
}

// DataOffset locates the encrypted data section.
func (h Header) DataOffset() int64 {
	return h.TMDOffset() + toNext64(h.TMDSize)
}

// Ticket is the signed license blob. Only the fields the reader consumes
// are decoded; signatures are carried as raw bytes and never checked here.
type Ticket struct {
	SignatureType  uint32
	Issuer         [0x40]byte
	EncTitleKey    [16]byte
	TicketID       [8]byte
	ConsoleID      uint32
	TitleID        ID64
	TicketVersion  uint16
	CommonKeyIndex uint8
}

func DecodeTicket(b []byte) (Ticket, error) {
	if len(b) < TicketLen {
		return Ticket{}, fmt.Errorf("wad: ticket needs %d bytes, have %d", TicketLen, len(b))
	}
	var t Ticket
	t.SignatureType = binary.BigEndian.Uint32(b[0x000:])
	copy(t.Issuer[:], b[0x140:0x180])
	copy(t.EncTitleKey[:], b[0x1BF:0x1CF])
	copy(t.TicketID[:], b[0x1D0:0x1D8])
	t.ConsoleID = binary.BigEndian.Uint32(b[0x1D8:])
	t.TitleID = decodeID64(b[0x1DC:])
	t.TicketVersion = binary.BigEndian.Uint16(b[0x1E6:])
	t.CommonKeyIndex = b[0x1F1]
	return t, nil
}

// TMDHeader is the title metadata header. The content table that follows
// it on disk is not read yet.
type TMDHeader struct {
	SignatureType uint32
	Issuer        [0x40]byte
	Version       uint8
	SysVersion    ID64
	TitleID       ID64
	TitleType     uint32
	GroupID       uint16
	AccessRights  uint32
	TitleVersion  uint16
	NumContents   uint16
	BootIndex     uint16
}

func DecodeTMDHeader(b []byte) (TMDHeader, error) {
	if len(b) < TMDHeaderLen {
		return TMDHeader{}, fmt.Errorf("wad: tmd header needs %d bytes, have %d", TMDHeaderLen, len(b))
	}
	var t TMDHeader
	t.SignatureType = binary.BigEndian.Uint32(b[0x000:])
	copy(t.Issuer[:], b[0x140:0x180])
	t.Version = b[0x180]
	t.SysVersion = decodeID64(b[0x184:])
	t.TitleID = decodeID64(b[0x18C:])
	t.TitleType = binary.BigEndian.Uint32(b[0x194:])
	t.GroupID = binary.BigEndian.Uint16(b[0x198:])
	t.AccessRights = binary.BigEndian.Uint32(b[0x1D8:])
	t.TitleVersion = binary.BigEndian.Uint16(b[0x1DC:])
	t.NumContents = binary.BigEndian.Uint16(b[0x1DE:])
	t.BootIndex = binary.BigEndian.Uint16(b[0x1E0:])
	return t, nil
}

// ContentBinHeader prefixes the decrypted data area.
type ContentBinHeader struct {
	TitleID     [8]byte
	IconSize    uint32
	HeaderMD5   [16]byte
	IconMD5     [16]byte
	PayloadSize uint32
}

func DecodeContentBinHeader(b []byte) (ContentBinHeader, error) {
	if len(b) < ContentBinHeaderLen {
		return ContentBinHeader{}, fmt.Errorf("wad: content header needs %d bytes, have %d", ContentBinHeaderLen, len(b))
	}
	var c ContentBinHeader
	copy(c.TitleID[:], b[0x00:0x08])
	c.IconSize = binary.BigEndian.Uint32(b[0x08:])
	copy(c.HeaderMD5[:], b[0x0C:0x1C])
	copy(c.IconMD5[:], b[0x1C:0x2C])
	c.PayloadSize = binary.BigEndian.Uint32(b[0x34:])
	return c, nil
}

// IMET is the channel banner header with the localized title names:
// ten languages, two lines each, 21 UTF-16BE units per line.
type IMET struct {
	Magic    uint32
	HashSize uint32
	Sizes    [3]uint32
	Flag1    uint32
	Names    [10][2][21]uint16
	MD5      [16]byte
}

func DecodeIMET(b []byte) (IMET, error) {
	if len(b) < IMETLen {
		return IMET{}, fmt.Errorf("wad: imet needs %d bytes, have %d", IMETLen, len(b))
	}
	var m IMET
	m.Magic = binary.BigEndian.Uint32(b[0x40:])
	m.HashSize = binary.BigEndian.Uint32(b[0x44:])
	for i := range m.Sizes {
		m.Sizes[i] = binary.BigEndian.Uint32(b[0x4C+4*i:])
	}
	m.Flag1 = binary.BigEndian.Uint32(b[0x58:])
	off := 0x5C
	for lang := 0; lang < 10; lang++ {
		for line := 0; line < 2; line++ {
			for ch := 0; ch < 21; ch++ {
				m.Names[lang][line][ch] = binary.BigEndian.Uint16(b[off:])
				off += 2
			}
		}
	}
	copy(m.MD5[:], b[0x5F0:0x600])
	return m, nil
}

// Valid reports whether the banner magic is present. The data area of DLC
// packages starts with a different banner format, which the reader treats
// as no banner at all.
func (m *IMET) Valid() bool {
	return m.Magic == imetMagic
}

// NameLine decodes one banner line, stopping at the first NUL.
func (m *IMET) NameLine(lang, line int) string {
	if lang < 0 || lang >= 10 || line < 0 || line >= 2 {
		return ""
	}
	units := m.Names[lang][line]
	end := len(units)
	for i, u := range units {
		if u == 0 {
			end = i
			break
		}
	}
	if end == 0 {
		return ""
	}
	return string(utf16.Decode(units[:end]))
}

// issuerString trims a NUL-padded issuer field for display.
func issuerString(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}
