// Package wad reads Wii application packages: an outer header, a signed
// ticket carrying the encrypted title key, a title metadata header, and a
// CBC-encrypted data area whose first blocks hold the channel banner.
package wad

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/marcellodash/rom-properties/internal/cbcreader"
	"github.com/marcellodash/rom-properties/internal/nintendo"
	"github.com/marcellodash/rom-properties/pkg/crypt"
	"github.com/marcellodash/rom-properties/pkg/keystore"
	"github.com/marcellodash/rom-properties/pkg/source"
)

var (
	ErrUnsupported = errors.New("wad: unsupported package")
)

// Options carries the collaborators a Reader needs. Zero values select
// working defaults except Keys: without a key store every package opens
// in the degraded no-key state.
type Options struct {
	Keys     keystore.Getter
	Crypto   crypt.Provider
	Language func() int // banner language slot; nil uses the process locale
	Logger   *logrus.Logger
}

// Reader is an opened package. Ticket and TMD fields are always available;
// banner-derived data exists only when the title key could be obtained and
// verified, which Warning()/KeyStatus() report.
type Reader struct {
	src  source.Source
	log  *logrus.Logger
	lang func() int

	hdr    Header
	ticket Ticket
	tmd    TMDHeader

	keyIdx    KeyIndex
	keyStatus keystore.VerifyResult

	content *ContentBinHeader
	imet    *IMET

	closed bool
}

// Probe reports whether the header bytes plus the file size look like a
// package this reader can open. header needs at least HeaderLen bytes.
func Probe(header []byte, fileSize int64) bool {
	hdr, err := DecodeHeader(header)
	if err != nil {
		return false
	}
	return probeHeader(hdr, fileSize)
}

func probeHeader(h Header, fileSize int64) bool {
	if h.HeaderSize != HeaderLen {
		return false
	}
	switch h.Type {
	case TypeIs, Typeib, TypeBk:
	default:
		return false
	}
	if h.TicketSize < TicketLen {
		return false
	}
	// The file must reach at least the content header of the data area.
	return h.DataOffset()+ContentBinHeaderLen <= fileSize
}

// Open parses the package structure from src. On structural errors src is
// closed and an error returned; key and cipher problems instead leave the
// Reader usable with a degraded KeyStatus. The Reader owns src afterwards.
func Open(src source.Source, opts Options) (*Reader, error) {
	if src == nil {
		return nil, errors.New("wad: nil source")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Crypto == nil {
		opts.Crypto = crypt.Default()
	}
	if opts.Language == nil {
		opts.Language = nintendo.WiiLanguage
	}

	hdrBytes, err := source.ReadRange(src, 0, HeaderLen)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("wad: read header: %w", err)
	}
	hdr, err := DecodeHeader(hdrBytes)
	if err != nil {
		src.Close()
		return nil, err
	}
	if !probeHeader(hdr, src.Size()) {
		src.Close()
		return nil, ErrUnsupported
	}

	ticketBytes, err := source.ReadRange(src, hdr.TicketOffset(), TicketLen)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("wad: read ticket: %w", err)
	}
	ticket, err := DecodeTicket(ticketBytes)
	if err != nil {
		src.Close()
		return nil, err
	}

	tmdBytes, err := source.ReadRange(src, hdr.TMDOffset(), TMDHeaderLen)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("wad: read tmd: %w", err)
	}
	tmd, err := DecodeTMDHeader(tmdBytes)
	if err != nil {
		src.Close()
		return nil, err
	}

	r := &Reader{
		src:       src,
		log:       opts.Logger,
		lang:      opts.Language,
		hdr:       hdr,
		ticket:    ticket,
		tmd:       tmd,
		keyIdx:    selectKeyIndex(&ticket),
		keyStatus: keystore.VerifyUnknown,
	}

	r.loadBanner(opts)

	r.log.WithFields(logrus.Fields{
		"titleID": r.tmd.TitleID.String(),
		"issuer":  issuerString(r.ticket.Issuer[:]),
		"key":     r.keyIdx.Name(),
		"status":  r.keyStatus.String(),
	}).Debug("Opened WAD package")

	return r, nil
}

// loadBanner obtains the title key and reads the content and banner headers
// from the start of the decrypted data area. Every failure here is recorded
// in keyStatus or tolerated; the ticket and TMD data stay presentable.
func (r *Reader) loadBanner(opts Options) {
	if _, disabled := opts.Crypto.(crypt.Disabled); disabled {
		r.keyStatus = keystore.VerifyNoSupport
		return
	}
	if opts.Keys == nil {
		r.keyStatus = keystore.VerifyKeyDBNotLoaded
		return
	}

	commonKey, res := opts.Keys.GetAndVerify(r.keyIdx.Name(), r.keyIdx.VerifyData())
	if res != keystore.VerifyOK {
		r.keyStatus = res
		return
	}

	titleKey, err := decryptTitleKey(opts.Crypto, commonKey, &r.ticket)
	if err != nil {
		r.keyStatus = cipherStatus(err)
		return
	}

	// Data area IV: big-endian content index in the first two bytes,
	// zeros elsewhere. The boot content is assumed to be index 0.
	// TODO: parse the TMD content table and take the real boot index.
	var iv [16]byte
	cr, err := cbcreader.New(r.src, r.hdr.DataOffset(), int64(r.hdr.DataSize), titleKey, iv[:], opts.Crypto)
	if err != nil {
		r.keyStatus = cipherStatus(err)
		return
	}
	defer cr.Close()

	r.keyStatus = keystore.VerifyOK

	// Short data areas are tolerated: both headers simply stay absent.
	cb := make([]byte, ContentBinHeaderLen)
	if _, err := io.ReadFull(cr, cb); err != nil {
		return
	}
	content, err := DecodeContentBinHeader(cb)
	if err != nil {
		return
	}
	r.content = &content

	ib := make([]byte, IMETLen)
	if _, err := io.ReadFull(cr, ib); err != nil {
		return
	}
	imet, err := DecodeIMET(ib)
	if err != nil {
		return
	}
	r.imet = &imet
}

// decryptTitleKey unwraps the ticket's title key. The IV is the title ID
// as stored, padded with zeros.
func decryptTitleKey(p crypt.Provider, commonKey []byte, t *Ticket) ([]byte, error) {
	var iv [16]byte
	copy(iv[:8], t.TitleID.Raw[:])

	mode, err := p.NewCBCDecrypter(commonKey, iv[:])
	if err != nil {
		return nil, err
	}

	titleKey := make([]byte, 16)
	mode.CryptBlocks(titleKey, t.EncTitleKey[:])
	return titleKey, nil
}

func cipherStatus(err error) keystore.VerifyResult {
	if errors.Is(err, crypt.ErrNoSupport) {
		return keystore.VerifyNoSupport
	}
	return keystore.VerifyCipherInitErr
}

// SystemName identifies the console this package targets.
func (r *Reader) SystemName() string {
	return "Nintendo Wii"
}

// Valid reports whether the package parsed successfully. It stays true
// after Close; parsed data remains readable.
func (r *Reader) Valid() bool {
	return true
}

// Header returns the decoded container header.
func (r *Reader) Header() Header {
	return r.hdr
}

// Ticket returns the decoded ticket.
func (r *Reader) Ticket() Ticket {
	return r.ticket
}

// TMD returns the decoded title metadata header.
func (r *Reader) TMD() TMDHeader {
	return r.tmd
}

// KeyIndex returns which common key the package selected.
func (r *Reader) KeyIndex() KeyIndex {
	return r.keyIdx
}

// KeyStatus reports how key acquisition went. Anything but VerifyOK means
// banner data is unavailable.
func (r *Reader) KeyStatus() keystore.VerifyResult {
	return r.keyStatus
}

// ContentHeader returns the decrypted content header when available.
func (r *Reader) ContentHeader() (ContentBinHeader, bool) {
	if r.content == nil {
		return ContentBinHeader{}, false
	}
	return *r.content, true
}

// Close releases the underlying source. Parsed fields stay available.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
