// Package artcache is the on-disk cache for downloaded artwork. Images are
// keyed by their GameTDB cache key, compressed, and kept in a badger store
// under the user cache directory.
package artcache

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

type StoreConfig struct {
	Path             string // cache directory, created if missing
	MinimumFreeSpace int    // in GB; 0 disables the check
	Logger           *logrus.Logger
}

type Store struct {
	config       StoreConfig
	badgerDB     *badger.DB
	readCounter  uint64
	writeCounter uint64
}

func NewStore(config StoreConfig) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	log = config.Logger

	if err := config.checkConfig(); err != nil {
		return nil, fmt.Errorf("error checking config for artwork cache: %w", err)
	}

	opts := badger.DefaultOptions(config.Path)
	opts.Logger = nil
	opts.ValueLogFileSize = 1024 * 1024 * 100 // Set max size of each value log file to 100MB
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening artwork cache: %w", err)
	}

	// Usage numbers are informational; a cache works without them.
	if err := logSpaceInfo(config.Path); err != nil {
		log.Warnf("Error collecting disk usage for %s: %v", config.Path, err)
	}

	return &Store{
		config:   config,
		badgerDB: db,
	}, nil
}

func (sc *StoreConfig) checkConfig() error {
	if sc.Path == "" {
		return errors.New("no path provided in configuration")
	}

	if err := os.MkdirAll(sc.Path, 0o700); err != nil {
		return err
	}
	info, err := os.Stat(sc.Path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("path is not a directory")
	}

	if sc.MinimumFreeSpace == 0 {
		return nil
	}

	var stat syscall.Statfs_t
	syscall.Statfs(sc.Path, &stat)

	// Available blocks * size per block gives available space in bytes
	availableSpaceInGB := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if int(availableSpaceInGB) < sc.MinimumFreeSpace {
		return errors.New("not enough space available on disk")
	}

	return nil
}

// Put stores one image under its cache key. The payload is compressed
// before it hits the store; Get undoes this transparently.
func (s *Store) Put(key string, data []byte) error {
	atomic.AddUint64(&s.writeCounter, 1)

	compressed, err := compressWithLzma(data)
	if err != nil {
		return fmt.Errorf("error compressing %s: %w", key, err)
	}

	return s.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), compressed)
	})
}

// Get returns the cached image, or ok=false on a miss.
func (s *Store) Get(key string) ([]byte, bool, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var compressed []byte
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading key %s: %w", key, err)
	}

	data, err := decompressWithLzma(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("error decompressing %s: %w", key, err)
	}
	return data, true, nil
}

// Has reports whether a key is cached without touching the value log.
func (s *Store) Has(key string) (bool, error) {
	atomic.AddUint64(&s.readCounter, 1)

	err := s.badgerDB.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete drops one cached image. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	atomic.AddUint64(&s.writeCounter, 1)

	return s.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	if err := s.Clean(); err != nil {
		log.Warnf("Error cleaning artwork cache on close: %v", err)
	}
	return s.badgerDB.Close()
}

func (s *Store) Clean() error {
	err := s.badgerDB.Sync()
	if err != nil {
		return fmt.Errorf("error syncing db: %w", err)
	}

	// flatten the db
	err = s.badgerDB.Flatten(runtime.NumCPU()) // The parameter is the number of concurrent compactions
	if err != nil {
		return fmt.Errorf("error flattening db: %w", err)
	}

	err = s.badgerDB.RunValueLogGC(0.1)
	if err != nil {
		if err != badger.ErrNoRewrite {
			return fmt.Errorf("error cleaning db: %w", err)
		}
	}

	return nil
}
