// Package catalog persists a record of every morphology the pipeline has processed, keyed by
// input path and indexed by content hash so unchanged inputs can be skipped.
package catalog

import (
	"crypto/sha256"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"go.jetify.com/typeid/v2"

	"github.com/2x3systems/govasc/govasc"
)

/***

Catalog database format:

	gStateKey                       => CatalogState
	'r', RecordID                   => MorphologyRecord
	'p', Path                       => RecordID
	'h', ContentHash                => RecordID

A path maps to at most one record; re-putting a path replaces its record but keeps its ID.

***/

var (
	gStateKey = []byte{0x00, 0x00, 0x01}

	ErrNotFound      = errors.New("catalog entry not found")
	ErrIncompatible  = errors.New("catalog version is incompatible")
	ErrCatalogClosed = errors.New("catalog is closed")
	ErrReadOnlyWrite = errors.New("catalog is read-only")
)

const (
	prefixRecord  = 'r'
	prefixPath    = 'p'
	prefixContent = 'h'

	majorVers = 2026
	minorVers = 1

	// IDPrefix prefixes every record ID.
	IDPrefix = "morph"
)

// Opts configures Open.
type Opts struct {
	DbPathName string // empty for an in-memory catalog
	ReadOnly   bool
}

var DefaultOpts = Opts{}

// Catalog is a badger-backed store of MorphologyRecords. It is safe for concurrent use.
type Catalog struct {
	mu       sync.Mutex
	db       *badger.DB
	state    CatalogState
	readOnly bool
}

// Open opens or creates the catalog at opts.DbPathName.
func Open(opts Opts) (*Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(govasc.ErrBadOpts, "DbPathName must be specified for a read-only catalog")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{
		db:       db,
		readOnly: opts.ReadOnly,
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		cat.state = CatalogState{MajorVers: majorVers, MinorVers: minorVers}
		err = nil
		if !cat.readOnly {
			err = cat.db.Update(cat.putState)
		}
	}
	if err == nil && (cat.state.MajorVers != majorVers || cat.state.MinorVers != minorVers) {
		err = errors.Wrapf(ErrIncompatible, "found %d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *Catalog) putState(txn *badger.Txn) error {
	buf, err := proto.Marshal(&cat.state)
	if err != nil {
		return err
	}
	return txn.Set(gStateKey, buf)
}

// Close flushes and closes the underlying db. Closing twice is a no-op.
func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return nil
	}
	err := cat.db.Close()
	cat.db = nil
	return err
}

// Len returns the number of records.
func (cat *Catalog) Len() int {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int(cat.state.NumRecords)
}

func key(prefix byte, s []byte) []byte {
	k := make([]byte, 0, 1+len(s))
	return append(append(k, prefix), s...)
}

// NewID issues a new record ID.
func NewID() string {
	return typeid.MustGenerate(IDPrefix).String()
}

// ValidateID checks that id is a well-formed record ID.
func ValidateID(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return errors.Wrapf(err, "invalid record ID %q", id)
	}
	if parsed.Prefix() != IDPrefix {
		return errors.Errorf("record ID %q has prefix %q", id, parsed.Prefix())
	}
	return nil
}

// Put stores rec under rec.Path. A record already held for that path is replaced and its ID
// reused; otherwise rec.ID is issued when empty. rec.ID is set on return.
func (cat *Catalog) Put(rec *MorphologyRecord) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	switch {
	case cat.db == nil:
		return ErrCatalogClosed
	case cat.readOnly:
		return ErrReadOnlyWrite
	case rec.Path == "":
		return errors.Wrap(govasc.ErrBadOpts, "record has no path")
	}

	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		prev, err := getRecordByPath(txn, rec.Path)
		switch {
		case err == nil:
			rec.ID = prev.ID
			if err = dropContentIndex(txn, prev); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			if rec.ID == "" {
				rec.ID = NewID()
			} else if err = ValidateID(rec.ID); err != nil {
				return err
			}
			added = true
			cat.state.NumRecords++
			if err = cat.putState(txn); err != nil {
				return err
			}
		default:
			return err
		}

		buf, err := proto.Marshal(rec)
		if err != nil {
			return err
		}
		id := []byte(rec.ID)
		if err = txn.Set(key(prefixRecord, id), buf); err != nil {
			return err
		}
		if err = txn.Set(key(prefixPath, []byte(rec.Path)), id); err != nil {
			return err
		}
		if len(rec.ContentHash) > 0 {
			err = txn.Set(key(prefixContent, rec.ContentHash), id)
		}
		return err
	})
	if err != nil && added {
		cat.state.NumRecords--
	}
	return err
}

// dropContentIndex removes prev's content-hash entry unless another record has since claimed it.
func dropContentIndex(txn *badger.Txn, prev *MorphologyRecord) error {
	if len(prev.ContentHash) == 0 {
		return nil
	}
	k := key(prefixContent, prev.ContentHash)
	item, err := txn.Get(k)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil || string(owner) != prev.ID {
		return err
	}
	return txn.Delete(k)
}

func getRecord(txn *badger.Txn, id []byte) (*MorphologyRecord, error) {
	item, err := txn.Get(key(prefixRecord, id))
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNotFound, "record %s", id)
	}
	if err != nil {
		return nil, err
	}
	rec := &MorphologyRecord{}
	err = item.Value(func(val []byte) error {
		return proto.Unmarshal(val, rec)
	})
	return rec, err
}

func getIndexed(txn *badger.Txn, indexKey []byte) (*MorphologyRecord, error) {
	item, err := txn.Get(indexKey)
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNotFound, "index %q", indexKey[1:])
	}
	if err != nil {
		return nil, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return getRecord(txn, id)
}

func getRecordByPath(txn *badger.Txn, pathname string) (*MorphologyRecord, error) {
	return getIndexed(txn, key(prefixPath, []byte(pathname)))
}

func (cat *Catalog) view(fn func(txn *badger.Txn) error) error {
	cat.mu.Lock()
	db := cat.db
	cat.mu.Unlock()
	if db == nil {
		return ErrCatalogClosed
	}
	return db.View(fn)
}

// Lookup returns the record held for pathname, or an error wrapping ErrNotFound.
func (cat *Catalog) Lookup(pathname string) (rec *MorphologyRecord, err error) {
	err = cat.view(func(txn *badger.Txn) error {
		rec, err = getRecordByPath(txn, pathname)
		return err
	})
	return rec, err
}

// LookupContent returns the record whose input had the given content hash.
func (cat *Catalog) LookupContent(hash []byte) (rec *MorphologyRecord, err error) {
	err = cat.view(func(txn *badger.Txn) error {
		rec, err = getIndexed(txn, key(prefixContent, hash))
		return err
	})
	return rec, err
}

// HasContent returns true if some record was produced from an input with this content hash.
func (cat *Catalog) HasContent(hash []byte) bool {
	_, err := cat.LookupContent(hash)
	return err == nil
}

// Each calls fn with every record in ID order until fn returns false.
// fn must not call back into the catalog.
func (cat *Catalog) Each(fn func(rec *MorphologyRecord) bool) error {
	return cat.view(func(txn *badger.Txn) error {
		prefix := []byte{prefixRecord}
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rec := &MorphologyRecord{}
			err := it.Item().Value(func(val []byte) error {
				return proto.Unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			if !fn(rec) {
				break
			}
		}
		return nil
	})
}

// ContentHash returns the SHA-256 digest of the file at pathname.
func ContentHash(pathname string) ([]byte, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
