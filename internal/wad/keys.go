package wad

import "bytes"

// KeyIndex identifies which common key a package was encrypted with.
type KeyIndex int

const (
	KeyRvlCommon KeyIndex = iota
	KeyRvlKorean
	KeyWupVWiiCommon
	KeyRvlSDAES
	KeyRvlSDIV
	KeyRvlSDMD5
	KeyRvtDebug

	keyMax
)

// Name returns the key database name for the index.
func (k KeyIndex) Name() string {
	switch k {
	case KeyRvlCommon:
		return "rvl-common"
	case KeyRvlKorean:
		return "rvl-korean"
	case KeyWupVWiiCommon:
		return "wup-vwii-common"
	case KeyRvlSDAES:
		return "rvl-sd-aes"
	case KeyRvlSDIV:
		return "rvl-sd-iv"
	case KeyRvlSDMD5:
		return "rvl-sd-md5"
	case KeyRvtDebug:
		return "rvt-debug"
	default:
		return ""
	}
}

// DisplayName returns the short label shown in the Encryption Key field.
func (k KeyIndex) DisplayName() string {
	switch k {
	case KeyRvlCommon:
		return "Retail"
	case KeyRvlKorean:
		return "Korean"
	case KeyWupVWiiCommon:
		return "vWii"
	case KeyRvlSDAES:
		return "SD AES"
	case KeyRvlSDIV:
		return "SD IV"
	case KeyRvlSDMD5:
		return "SD MD5"
	case KeyRvtDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// keyVerifyData holds the per-key verification blobs: the keystore test
// vector encrypted under the real key. The blobs are safe to distribute;
// inverting one requires the key it verifies.
var keyVerifyData = [keyMax][16]byte{
	KeyRvlCommon:     {0x18, 0xA5, 0x3A, 0x7E, 0x4C, 0x45, 0xDF, 0xE2, 0x64, 0xD2, 0x44, 0x0A, 0x90, 0xD8, 0xD2, 0x65},
	KeyRvlKorean:     {0x2A, 0xD0, 0x96, 0x1E, 0xFD, 0xC4, 0xB3, 0xDD, 0x85, 0xE4, 0x2C, 0xDA, 0x03, 0xBD, 0x85, 0x45},
	KeyWupVWiiCommon: {0xAB, 0x44, 0x81, 0xEE, 0x24, 0xB5, 0x2F, 0x84, 0xAA, 0xE3, 0x45, 0x54, 0xF4, 0x43, 0xEE, 0x93},
	KeyRvlSDAES:      {0xAA, 0x4B, 0x13, 0x66, 0x4D, 0x1D, 0x92, 0xF5, 0x3B, 0x33, 0x04, 0x04, 0x48, 0x85, 0x82, 0xF2},
	KeyRvlSDIV:       {0xA3, 0x71, 0xE2, 0x49, 0x51, 0x6F, 0xAE, 0xF8, 0x5C, 0x25, 0x27, 0x35, 0x50, 0x9F, 0x3C, 0x2C},
	KeyRvlSDMD5:      {0x70, 0x3E, 0x5F, 0x7C, 0x15, 0xC7, 0x5E, 0x59, 0x0A, 0x39, 0x11, 0xC5, 0x1C, 0x66, 0x49, 0x08},
	KeyRvtDebug:      {0x31, 0x7C, 0x82, 0x91, 0xC6, 0xDF, 0x99, 0xD6, 0xCB, 0xA9, 0x69, 0xF5, 0x0F, 0xEE, 0xD4, 0xE5},
}

// VerifyData returns the verification blob for the index, nil when out of
// range.
func (k KeyIndex) VerifyData() []byte {
	if k < 0 || k >= keyMax {
		return nil
	}
	return keyVerifyData[k][:]
}

// debugIssuer is the certificate issuer of development-signed tickets. The
// trailing NUL takes part in the comparison: a ticket issued by a longer
// name sharing the prefix is not a debug ticket.
var debugIssuer = []byte("Root-CA00000002-XS00000006\x00")

// selectKeyIndex decides which common key decrypts the title key. Debug
// tickets always use the debug key regardless of the stored index; retail
// indexes beyond the known common keys fall back to the standard key.
func selectKeyIndex(t *Ticket) KeyIndex {
	if bytes.Equal(t.Issuer[:len(debugIssuer)], debugIssuer) {
		return KeyRvtDebug
	}
	idx := t.CommonKeyIndex
	if idx > 2 {
		idx = 0
	}
	return KeyIndex(idx)
}

// KeyNames lists every key the handler may request, for key file templates.
func KeyNames() []string {
	names := make([]string, 0, int(keyMax))
	for k := KeyIndex(0); k < keyMax; k++ {
		names = append(names, k.Name())
	}
	return names
}
