package romprops

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/marcellodash/rom-properties/internal/nintendo"
	"github.com/marcellodash/rom-properties/internal/syspaths"
	"github.com/marcellodash/rom-properties/internal/wad"
	"github.com/marcellodash/rom-properties/pkg/crypt"
	"github.com/marcellodash/rom-properties/pkg/keystore"
)

// Config carries the collaborators shared by every format handler. The zero
// value works: keys come from the per-user key file, decryption uses the
// built-in AES provider, and the banner language follows the process locale.
type Config struct {
	// KeyFile is the key database path. Empty selects the per-user default.
	KeyFile string
	// Crypto overrides the cipher provider. crypt.Disabled turns every
	// decryption attempt into a "not supported" status.
	Crypto crypt.Provider
	// Language picks the banner language slot.
	Language func() int
	// Logger is optional. If nil, a default logger is used.
	Logger *logrus.Logger

	keysOnce sync.Once
	keys     *keystore.Store

	logOnce sync.Once
	log     *logrus.Logger
}

func (c *Config) keyFile() string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	return syspaths.DefaultKeyFile()
}

// keyStore builds the shared key store on first use. The store itself loads
// the key file lazily, so constructing it here does no I/O.
func (c *Config) keyStore() keystore.Getter {
	c.keysOnce.Do(func() {
		c.keys = keystore.NewStore(keystore.StoreConfig{
			Path:     c.keyFile(),
			Provider: c.Crypto,
			Logger:   c.logger(),
		})
	})
	return c.keys
}

func (c *Config) logger() *logrus.Logger {
	c.logOnce.Do(func() {
		if c.Logger != nil {
			c.log = c.Logger
			return
		}
		c.log = logrus.New()
	})
	return c.log
}

func (c *Config) language() func() int {
	if c.Language != nil {
		return c.Language
	}
	return nintendo.WiiLanguage
}

func (c *Config) wadOptions() wad.Options {
	return wad.Options{
		Keys:     c.keyStore(),
		Crypto:   c.Crypto,
		Language: c.language(),
		Logger:   c.logger(),
	}
}
