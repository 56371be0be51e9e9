package store

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
)

var descriptionKeyPrefix = []byte("d/")

// batchFlushSize is how many pending writes are buffered before a flush
const batchFlushSize = 10000

// BadgerDescriptions is a DescriptionTable backed by BadgerDB, for bulk
// label tables too large to hold comfortably in a Go map. The database is
// scratch space: an on-disk directory is emptied when opened.
type BadgerDescriptions struct {
	db      *badger.DB
	batch   *badger.WriteBatch
	pending int
}

// OpenBadgerDescriptions opens a badger description table in dir, or in
// memory when dir is empty
func OpenBadgerDescriptions(dir string) (*BadgerDescriptions, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Badger logs through its own logger otherwise

	opts.MemTableSize = 32 << 20
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 16 << 20
	opts.DetectConflicts = false
	opts.ValueThreshold = 1 << 10 // Labels are small; keep them in the LSM tree

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger description table")
	}
	if dir != "" {
		if err := db.DropAll(); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "reset badger description table")
		}
	}

	return &BadgerDescriptions{db: db}, nil
}

func descriptionKey(subject string) []byte {
	key := make([]byte, 0, len(descriptionKeyPrefix)+len(subject))
	key = append(key, descriptionKeyPrefix...)
	return append(key, subject...)
}

// Put buffers the write; it becomes visible no later than the next Get,
// Len or Close
func (d *BadgerDescriptions) Put(subject, text string) error {
	if d.batch == nil {
		d.batch = d.db.NewWriteBatch()
	}
	if err := d.batch.Set(descriptionKey(subject), []byte(text)); err != nil {
		return errors.Wrapf(err, "buffer description for %s", subject)
	}
	d.pending++
	if d.pending >= batchFlushSize {
		return d.flush()
	}
	return nil
}

func (d *BadgerDescriptions) flush() error {
	if d.batch == nil {
		return nil
	}
	batch := d.batch
	d.batch = nil
	d.pending = 0
	if err := batch.Flush(); err != nil {
		return errors.Wrap(err, "flush description batch")
	}
	return nil
}

func (d *BadgerDescriptions) Get(subject string) (string, bool, error) {
	if err := d.flush(); err != nil {
		return "", false, err
	}

	var text string
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(descriptionKey(subject))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			text = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read description for %s", subject)
	}
	return text, true, nil
}

// Len counts stored subjects with a key-only scan
func (d *BadgerDescriptions) Len() int {
	if err := d.flush(); err != nil {
		return 0
	}

	txn := d.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = descriptionKeyPrefix

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Rewind(); it.Valid(); it.Next() {
		count++
	}
	return count
}

func (d *BadgerDescriptions) Close() error {
	flushErr := d.flush()
	if err := d.db.Close(); err != nil {
		return errors.Wrap(err, "close badger description table")
	}
	return flushErr
}
