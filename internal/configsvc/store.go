package configsvc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/ghodss/yaml"

	"github.com/zinput/zinput-go/device"
)

// Store persists named device configurations, keyed by the device's stable
// ID so a reconnecting device can have its config autoloaded.
type Store struct {
	db *badger.DB
}

func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

var ErrConfigNotFound = errors.New("device config not found")

func configKey(deviceID, name string) []byte {
	return []byte("config/" + deviceID + "/" + name)
}

func (s *Store) Save(deviceID, name string, cfg device.Config) error {
	if deviceID == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid config name %q for device %q", name, deviceID)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(configKey(deviceID, name), data)
	})
}

func (s *Store) Load(deviceID, name string) (device.Config, error) {
	var cfg device.Config
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(configKey(deviceID, name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s/%s", ErrConfigNotFound, deviceID, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return yaml.Unmarshal(val, &cfg)
		})
	})
	if err != nil {
		return device.Config{}, err
	}
	return cfg, nil
}

func (s *Store) Delete(deviceID, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(configKey(deviceID, name))
	})
}

// List returns the saved config names for a device.
func (s *Store) List(deviceID string) ([]string, error) {
	prefix := []byte("config/" + deviceID + "/")
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			names = append(names, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
