package wad

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcellodash/rom-properties/internal/nintendo"
	"github.com/marcellodash/rom-properties/pkg/crypt"
	"github.com/marcellodash/rom-properties/pkg/fields"
	"github.com/marcellodash/rom-properties/pkg/keystore"
	"github.com/marcellodash/rom-properties/pkg/source"
)

// testPkg assembles a small but structurally complete package: header,
// certificate chain filler, ticket with a wrapped title key, TMD header,
// and a data area encrypted under the title key.
type testPkg struct {
	commonKey    [16]byte
	titleKey     [16]byte
	issuer       string
	keyIndex     byte
	titleID      [8]byte
	sysVersion   uint64
	titleVersion uint16
	names        map[int][2]string
	imet         bool
	dataSize     uint32
}

func newTestPkg() *testPkg {
	p := &testPkg{
		issuer:       "Root-CA00000001-XS00000003",
		sysVersion:   0x0000000100000035,
		titleVersion: 0x0205,
		imet:         true,
		dataSize:     ContentBinHeaderLen + IMETLen,
		names: map[int][2]string{
			nintendo.LangEnglish: {"Example Channel", "Second Line"},
		},
	}
	copy(p.titleID[:], []byte{0x00, 0x01, 0x00, 0x01, 'R', 'S', 'P', 'E'})
	copy(p.commonKey[:], "common key bytes")
	copy(p.titleKey[:], "title key  bytes")
	return p
}

func (p *testPkg) build(t *testing.T) []byte {
	t.Helper()

	const certSize = 0x29 // deliberately unaligned
	ticketOff := toNext64(HeaderLen) + toNext64(certSize)
	tmdOff := ticketOff + toNext64(TicketLen)
	dataOff := tmdOff + toNext64(TMDHeaderLen)

	buf := make([]byte, dataOff+int64(p.dataSize))
	binary.BigEndian.PutUint32(buf[0x00:], HeaderLen)
	binary.BigEndian.PutUint32(buf[0x04:], TypeIs)
	binary.BigEndian.PutUint32(buf[0x08:], certSize)
	binary.BigEndian.PutUint32(buf[0x10:], TicketLen)
	binary.BigEndian.PutUint32(buf[0x14:], TMDHeaderLen)
	binary.BigEndian.PutUint32(buf[0x18:], p.dataSize)

	tk := buf[ticketOff:]
	copy(tk[0x140:], p.issuer)
	copy(tk[0x1BF:], p.encTitleKey(t))
	copy(tk[0x1DC:], p.titleID[:])
	tk[0x1F1] = p.keyIndex

	tmd := buf[tmdOff:]
	copy(tmd[0x140:], "Root-CA00000001-CP00000004")
	binary.BigEndian.PutUint64(tmd[0x184:], p.sysVersion)
	copy(tmd[0x18C:], p.titleID[:])
	binary.BigEndian.PutUint16(tmd[0x1DC:], p.titleVersion)
	binary.BigEndian.PutUint16(tmd[0x1DE:], 1)

	copy(buf[dataOff:], p.encryptData(t))
	return buf
}

// encTitleKey wraps the title key the way a ticket stores it: CBC under the
// common key with the title ID as IV.
func (p *testPkg) encTitleKey(t *testing.T) []byte {
	t.Helper()
	var iv [16]byte
	copy(iv[:8], p.titleID[:])
	return cbcEncrypt(t, p.commonKey[:], iv[:], p.titleKey[:])
}

func (p *testPkg) encryptData(t *testing.T) []byte {
	t.Helper()
	plain := make([]byte, p.dataSize)
	copy(plain[0x00:], p.titleID[:])
	if len(plain) >= ContentBinHeaderLen {
		binary.BigEndian.PutUint32(plain[0x08:], 0x1200)
	}
	if p.imet && len(plain) >= ContentBinHeaderLen+IMETLen {
		im := plain[ContentBinHeaderLen:]
		binary.BigEndian.PutUint32(im[0x40:], imetMagic)
		binary.BigEndian.PutUint32(im[0x44:], IMETLen)
		for lang, lines := range p.names {
			putName(im, lang, 0, lines[0])
			if lines[1] != "" {
				putName(im, lang, 1, lines[1])
			}
		}
	}
	var iv [16]byte
	return cbcEncrypt(t, p.titleKey[:], iv[:], plain)
}

func cbcEncrypt(t *testing.T, key, iv, plain []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return out
}

// stubKeys serves keys from a map, or fails every lookup with res.
type stubKeys struct {
	keys map[string][]byte
	res  keystore.VerifyResult
}

func (s stubKeys) GetAndVerify(name string, verifyData []byte) ([]byte, keystore.VerifyResult) {
	if s.res != keystore.VerifyOK {
		return nil, s.res
	}
	key, ok := s.keys[name]
	if !ok {
		return nil, keystore.VerifyKeyNotFound
	}
	return key, keystore.VerifyOK
}

func (p *testPkg) options() Options {
	return Options{
		Keys:     stubKeys{keys: map[string][]byte{KeyIndex(0).Name(): p.commonKey[:]}},
		Language: func() int { return nintendo.LangEnglish },
	}
}

func fieldNames(fs []fields.Field) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

func lookupField(t *testing.T, fs []fields.Field, name string) fields.Field {
	t.Helper()
	for _, f := range fs {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not present in %v", name, fieldNames(fs))
	return fields.Field{}
}

func TestProbe(t *testing.T) {
	p := newTestPkg()
	data := p.build(t)

	assert.True(t, Probe(data[:HeaderLen], int64(len(data))))

	t.Run("short header", func(t *testing.T) {
		assert.False(t, Probe(data[:0x10], int64(len(data))))
	})
	t.Run("wrong header size", func(t *testing.T) {
		bad := append([]byte(nil), data[:HeaderLen]...)
		binary.BigEndian.PutUint32(bad[0x00:], 0x40)
		assert.False(t, Probe(bad, int64(len(data))))
	})
	t.Run("unknown type", func(t *testing.T) {
		bad := append([]byte(nil), data[:HeaderLen]...)
		binary.BigEndian.PutUint32(bad[0x04:], 0x12345678)
		assert.False(t, Probe(bad, int64(len(data))))
	})
	t.Run("ticket too small", func(t *testing.T) {
		bad := append([]byte(nil), data[:HeaderLen]...)
		binary.BigEndian.PutUint32(bad[0x10:], TicketLen-1)
		assert.False(t, Probe(bad, int64(len(data))))
	})
	t.Run("file shorter than data area", func(t *testing.T) {
		hdr, err := DecodeHeader(data)
		require.NoError(t, err)
		assert.False(t, Probe(data[:HeaderLen], hdr.DataOffset()+0x20))
		assert.True(t, Probe(data[:HeaderLen], hdr.DataOffset()+ContentBinHeaderLen))
	})
	t.Run("backup type accepted", func(t *testing.T) {
		bk := append([]byte(nil), data[:HeaderLen]...)
		binary.BigEndian.PutUint32(bk[0x04:], TypeBk)
		assert.True(t, Probe(bk, int64(len(data))))
	})
}

func TestOpenDecryptsBanner(t *testing.T) {
	p := newTestPkg()
	r, err := Open(source.NewMem(p.build(t)), p.options())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "Nintendo Wii", r.SystemName())
	assert.True(t, r.Valid())
	assert.Equal(t, KeyRvlCommon, r.KeyIndex())
	assert.Equal(t, keystore.VerifyOK, r.KeyStatus())

	assert.Equal(t, "Example Channel\nSecond Line", r.GameInfo())

	md, err := r.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Example Channel", md.Title)

	ch, ok := r.ContentHeader()
	require.True(t, ok)
	assert.Equal(t, uint32(0x1200), ch.IconSize)
	assert.Equal(t, p.titleID, ch.TitleID)

	fs := r.Fields()
	assert.Equal(t,
		[]string{"Title ID", "Game ID", "Title Version", "Region", "IOS Version", "Encryption Key", "Game Info"},
		fieldNames(fs))
	assert.Equal(t, "00010001-52535045", lookupField(t, fs, "Title ID").Value)
	assert.Equal(t, "RSPE", lookupField(t, fs, "Game ID").Value)
	assert.Equal(t, "2.5 (v517)", lookupField(t, fs, "Title Version").Value)
	assert.Equal(t, "USA", lookupField(t, fs, "Region").Value)
	assert.Equal(t, "IOS53", lookupField(t, fs, "IOS Version").Value)
	assert.Equal(t, "Retail", lookupField(t, fs, "Encryption Key").Value)
	assert.Equal(t, "Example Channel\nSecond Line", lookupField(t, fs, "Game Info").Value)
}

func TestOpenKoreanKey(t *testing.T) {
	p := newTestPkg()
	p.keyIndex = 1
	opts := Options{
		Keys:     stubKeys{keys: map[string][]byte{"rvl-korean": p.commonKey[:]}},
		Language: func() int { return nintendo.LangEnglish },
	}
	r, err := Open(source.NewMem(p.build(t)), opts)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, KeyRvlKorean, r.KeyIndex())
	assert.Equal(t, keystore.VerifyOK, r.KeyStatus())
	assert.Equal(t, "Korean", lookupField(t, r.Fields(), "Encryption Key").Value)
}

func TestOpenWithoutKeyStore(t *testing.T) {
	p := newTestPkg()
	r, err := Open(source.NewMem(p.build(t)), Options{
		Language: func() int { return nintendo.LangEnglish },
	})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, keystore.VerifyKeyDBNotLoaded, r.KeyStatus())
	assert.Equal(t, "", r.GameInfo())

	_, err = r.Metadata()
	assert.ErrorIs(t, err, fields.ErrNoMetadata)

	fs := r.Fields()
	require.NotEmpty(t, fs)
	assert.Equal(t, "Warning", fs[0].Name)
	assert.Equal(t, "The key database could not be loaded.", fs[0].Value)
	assert.NotZero(t, fs[0].Flags&fields.Warning)

	// Ticket and TMD data stay presentable without a key.
	assert.Equal(t, "00010001-52535045", lookupField(t, fs, "Title ID").Value)
	_, found := r.ContentHeader()
	assert.False(t, found)
}

func TestOpenKeyNotFound(t *testing.T) {
	p := newTestPkg()
	r, err := Open(source.NewMem(p.build(t)), Options{
		Keys:     stubKeys{keys: map[string][]byte{}},
		Language: func() int { return nintendo.LangEnglish },
	})
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Valid())
	assert.Equal(t, keystore.VerifyKeyNotFound, r.KeyStatus())
	fs := r.Fields()
	assert.Equal(t, "Warning", fs[0].Name)
	assert.Equal(t, "The required key was not found in the key database.", fs[0].Value)
	names := fieldNames(fs)
	assert.Contains(t, names, "Title ID")
	assert.Contains(t, names, "Title Version")
	assert.Contains(t, names, "Region")
	assert.NotContains(t, names, "Game Info")
}

func TestOpenDisabledCrypto(t *testing.T) {
	p := newTestPkg()

	// NoSupport wins even when a key store is wired up.
	r, err := Open(source.NewMem(p.build(t)), Options{
		Keys:     p.options().Keys,
		Crypto:   crypt.Disabled{},
		Language: func() int { return nintendo.LangEnglish },
	})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, keystore.VerifyNoSupport, r.KeyStatus())

	// And over the missing key store too.
	r2, err := Open(source.NewMem(p.build(t)), Options{
		Crypto:   crypt.Disabled{},
		Language: func() int { return nintendo.LangEnglish },
	})
	require.NoError(t, err)
	defer r2.Close()
	assert.Equal(t, keystore.VerifyNoSupport, r2.KeyStatus())
	assert.Equal(t, "Decryption is not supported in this build.", r2.Fields()[0].Value)
}

// A key store that verifies the wrong key as good produces garbage banner
// bytes. The reader keeps the package usable and simply has no game info.
func TestOpenMisverifiedKey(t *testing.T) {
	p := newTestPkg()
	wrong := make([]byte, 16)
	copy(wrong, "sixteen wrong Bs")
	r, err := Open(source.NewMem(p.build(t)), Options{
		Keys:     stubKeys{keys: map[string][]byte{"rvl-common": wrong}},
		Language: func() int { return nintendo.LangEnglish },
	})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, keystore.VerifyOK, r.KeyStatus())
	assert.Equal(t, "", r.GameInfo())
	_, err = r.Metadata()
	assert.ErrorIs(t, err, fields.ErrNoMetadata)
}

func TestOpenShortDataArea(t *testing.T) {
	p := newTestPkg()
	p.dataSize = 0x80 // room for the content header, not the banner
	r, err := Open(source.NewMem(p.build(t)), p.options())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, keystore.VerifyOK, r.KeyStatus())
	_, ok := r.ContentHeader()
	assert.True(t, ok)
	assert.Equal(t, "", r.GameInfo())
}

func TestOpenStructuralFailureClosesSource(t *testing.T) {
	t.Run("short file", func(t *testing.T) {
		src := source.NewMem(make([]byte, 0x10))
		_, err := Open(src, Options{})
		require.Error(t, err)
		var b [1]byte
		_, err = src.Read(b[:])
		assert.ErrorIs(t, err, source.ErrClosed)
	})
	t.Run("unsupported type", func(t *testing.T) {
		p := newTestPkg()
		data := p.build(t)
		binary.BigEndian.PutUint32(data[0x04:], 0x11111111)
		src := source.NewMem(data)
		_, err := Open(src, Options{})
		assert.ErrorIs(t, err, ErrUnsupported)
		var b [1]byte
		_, err = src.Read(b[:])
		assert.ErrorIs(t, err, source.ErrClosed)
	})
}

func TestOpenNilSource(t *testing.T) {
	_, err := Open(nil, Options{})
	assert.Error(t, err)
}

func TestReaderCloseIdempotent(t *testing.T) {
	p := newTestPkg()
	r, err := Open(source.NewMem(p.build(t)), p.options())
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	// Parsed data survives Close.
	assert.True(t, r.Valid())
	assert.Equal(t, "Example Channel\nSecond Line", r.GameInfo())
	assert.NotEmpty(t, r.Fields())
}
