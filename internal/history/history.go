// Package history keeps a record of program runs in a bbolt file.
package history

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

var runsBucket = []byte("runs")

// Record is one finished run.
type Record struct {
	ID       uint64            `yaml:"id"`
	Program  string            `yaml:"program"`
	Path     string            `yaml:"path,omitempty"`
	Started  time.Time         `yaml:"started"`
	Duration time.Duration     `yaml:"duration"`
	Output   string            `yaml:"output,omitempty"`
	Error    string            `yaml:"error,omitempty"`
	Vars     map[string]string `yaml:"vars,omitempty"`
}

func (r Record) OK() bool { return r.Error == "" }

type DB struct {
	db *bolt.DB
}

// DefaultPath is history.db under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blocks", "history.db"), nil
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Add stores r under a new ID and returns it.
func (d *DB) Add(r Record) (uint64, error) {
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		r.ID = id
		data, err := yaml.Marshal(&r)
		if err != nil {
			return err
		}
		return b.Put(key(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("history: add: %w", err)
	}
	return r.ID, nil
}

func (d *DB) Get(id uint64) (Record, bool, error) {
	var r Record
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(runsBucket).Get(key(id))
		if data == nil {
			return nil
		}
		found = true
		return yaml.Unmarshal(data, &r)
	})
	return r, found, err
}

// List returns the newest runs first. An empty program matches every run;
// limit <= 0 means no limit.
func (d *DB) List(program string, limit int) ([]Record, error) {
	var out []Record
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Record
			if err := yaml.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			if program != "" && r.Program != program {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Clear drops every record. IDs keep counting up.
func (d *DB) Clear() error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		seq := b.Sequence()
		if err := tx.DeleteBucket(runsBucket); err != nil {
			return err
		}
		nb, err := tx.CreateBucket(runsBucket)
		if err != nil {
			return err
		}
		return nb.SetSequence(seq)
	})
}

var errStop = errors.New("stop")

func key(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}
