// Package keystore manages the named decryption keys a format reader may
// request. Keys live in a YAML file the user maintains; the store never
// ships key material, only the machinery to load and verify it.
package keystore

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/marcellodash/rom-properties/pkg/crypt"
)

// VerifyTest is the known plaintext behind every verification blob. A key is
// accepted when ECB-decrypting its blob yields exactly this string.
const VerifyTest = "AES-128-ECB-TEST"

// Getter is the lookup surface format readers depend on.
type Getter interface {
	// GetAndVerify returns the named key after checking it against
	// verifyData, a 16-byte ciphertext of VerifyTest under the real key.
	// A nil verifyData skips verification.
	GetAndVerify(name string, verifyData []byte) ([]byte, VerifyResult)
}

type StoreConfig struct {
	Path     string // key file location, YAML
	Provider crypt.Provider
	Logger   *logrus.Logger
}

// Store reads keys from a YAML file of hex strings:
//
//	keys:
//	  rvl-common: "00112233445566778899aabbccddeeff"
//
// The file is loaded once, on first lookup. Keys that fail hex decoding or
// have the wrong length stay listed but resolve to VerifyKeyInvalid.
type Store struct {
	config   StoreConfig
	loadOnce sync.Once
	loadErr  VerifyResult
	keys     map[string]keyEntry
}

type keyEntry struct {
	data    []byte
	invalid bool
}

type keyFile struct {
	Keys map[string]string `yaml:"keys"`
}

func NewStore(config StoreConfig) *Store {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Provider == nil {
		config.Provider = crypt.Default()
	}
	return &Store{config: config}
}

func (s *Store) load() {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.config.Path)
		if err != nil {
			s.loadErr = VerifyKeyDBNotLoaded
			s.config.Logger.WithFields(logrus.Fields{
				"path": s.config.Path,
			}).Warnf("Key file could not be read: %v", err)
			return
		}

		var kf keyFile
		if err := yaml.Unmarshal(data, &kf); err != nil {
			s.loadErr = VerifyKeyDBError
			s.config.Logger.WithFields(logrus.Fields{
				"path": s.config.Path,
			}).Warnf("Key file could not be parsed: %v", err)
			return
		}

		s.keys = make(map[string]keyEntry, len(kf.Keys))
		for name, hexKey := range kf.Keys {
			raw, err := hex.DecodeString(hexKey)
			if err != nil || len(raw) != 16 {
				s.keys[name] = keyEntry{invalid: true}
				continue
			}
			s.keys[name] = keyEntry{data: raw}
		}
		s.loadErr = VerifyOK
	})
}

func (s *Store) GetAndVerify(name string, verifyData []byte) ([]byte, VerifyResult) {
	if name == "" || (verifyData != nil && len(verifyData) != 16) {
		return nil, VerifyInvalidParams
	}

	s.load()
	if s.loadErr != VerifyOK {
		return nil, s.loadErr
	}

	entry, ok := s.keys[name]
	if !ok {
		return nil, VerifyKeyNotFound
	}
	if entry.invalid {
		return nil, VerifyKeyInvalid
	}
	if verifyData == nil {
		return entry.data, VerifyOK
	}

	res := VerifyKey(s.config.Provider, entry.data, verifyData)
	if res != VerifyOK {
		return nil, res
	}
	return entry.data, VerifyOK
}

// VerifyKey checks key against a verification blob without a store. It is
// the shared tail of GetAndVerify, split out so callers holding a key from
// elsewhere can reuse the exact acceptance rule.
func VerifyKey(p crypt.Provider, key, verifyData []byte) VerifyResult {
	if len(key) != 16 || len(verifyData) != 16 {
		return VerifyInvalidParams
	}
	if p == nil {
		return VerifyNoSupport
	}

	dec, err := p.NewECBDecrypter(key)
	if err != nil {
		if err == crypt.ErrNoSupport {
			return VerifyNoSupport
		}
		return VerifyCipherInitErr
	}

	plain := make([]byte, 16)
	dec.CryptBlocks(plain, verifyData)
	if !bytes.Equal(plain, []byte(VerifyTest)) {
		return VerifyWrongKey
	}
	return VerifyOK
}

// WriteTemplate writes a commented key file skeleton listing the given key
// names, for users setting up a key database from scratch. Existing files
// are left alone.
func WriteTemplate(path string, names []string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keystore: %s already exists", path)
	}

	var buf bytes.Buffer
	buf.WriteString("# Decryption keys, one 32-digit hex string per name.\n")
	buf.WriteString("# Keys are never distributed with this software.\n")
	buf.WriteString("keys:\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "  # %s: \"00000000000000000000000000000000\"\n", name)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("keystore: write template: %w", err)
	}
	return nil
}
