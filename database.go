package docstore

import (
	"errors"
)

// Index configures a collection's secondary index. Key derives the secondary
// key of a value; it must be pure, because Insert calls it again on the
// stored copy to find the bucket to evict from. Returning false leaves the
// document out of the index.
type Index[T any, S any] struct {
	Codec KeyCodec[S]
	Key   func(data *T) (S, bool)
}

type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	encoding EncodingMethod
}

// WithEncoding selects how new documents are serialized. Documents written
// with another method stay readable.
func WithEncoding(enc EncodingMethod) DatabaseOption {
	return func(o *databaseOptions) {
		o.encoding = enc
	}
}

// Database stores documents of type T in one collection, with an optional
// secondary index keyed by S.
//
// A Database is meant for one logical thread of control. Overlapping calls on
// the same collection where one of them is Insert panic rather than race.
type Database[T any, S any] struct {
	db      *DB
	coll    *collection
	idx     Index[T, S]
	enc     EncodingMethod
	indexed bool
}

// GetDatabase returns the Database of a registered collection.
func GetDatabase[T any, S any](m *Manager, name string, idx Index[T, S], opts ...DatabaseOption) (*Database[T, S], error) {
	coll, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if idx.Key != nil && idx.Codec == nil {
		return nil, collErrf(name, nil, ErrBadRequest, "secondary index needs a key codec")
	}
	o := databaseOptions{encoding: defaultValueEncoding}
	for _, f := range opts {
		f(&o)
	}
	return &Database[T, S]{
		db:      m.db,
		coll:    coll,
		idx:     idx,
		enc:     o.encoding,
		indexed: coll.hasSecondary && idx.Key != nil,
	}, nil
}

// GetSimpleDatabase returns the Database of a collection that has no
// secondary key.
func GetSimpleDatabase[T any](m *Manager, name string, opts ...DatabaseOption) (*Database[T, NoKey], error) {
	return GetDatabase(m, name, Index[T, NoKey]{Codec: noKeyCodec{}}, opts...)
}

func (d *Database[T, S]) Name() string {
	return d.coll.name
}

func (d *Database[T, S]) Regions() Regions {
	return Regions{d.coll.primary, d.coll.secondary, d.coll.hasSecondary}
}

// HasSecondaryIndex reports whether queries by secondary key are possible
// through this handle.
func (d *Database[T, S]) HasSecondaryIndex() bool {
	if !d.coll.hasSecondary || d.idx.Codec == nil {
		return false
	}
	_, isNoKey := any(d.idx.Codec).(noKeyCodec)
	return !isNoKey
}

// Insert stores data at key, replacing any previous document, and keeps the
// secondary index pointing at the key's current value only. Either every
// change is applied or none is.
func (d *Database[T, S]) Insert(key CompositeKey, data T) (*Document[T], error) {
	d.coll.cell.borrowMut()
	defer d.coll.cell.releaseMut()

	doc := &Document[T]{CompositeKey: key, Data: data}
	raw, err := encodeDocument(doc, d.enc)
	if err != nil {
		return nil, d.finish(opInsert, &key, err)
	}

	ek := key.encode(nil)
	err = d.db.update(func(tx *tx) error {
		prim := tx.createRegion(d.coll.primary)
		var sec storageBucket
		if d.indexed {
			sec = tx.createRegion(d.coll.secondary)
		}

		if old := prim.Get(ek); old != nil && d.indexed {
			oldDoc, err := decodeDocument[T](old)
			if err != nil {
				return err
			}
			if sk, ok := d.idx.Key(&oldDoc.Data); ok {
				if err := evictFromBucket(sec, d.idx.Codec.EncodeKey(nil, sk), key); err != nil {
					return err
				}
			}
		}

		ensure(prim.Delete(ek))
		ensure(prim.Put(ek, raw))

		if d.indexed {
			if sk, ok := d.idx.Key(&doc.Data); ok {
				if err := appendToBucket(sec, d.idx.Codec.EncodeKey(nil, sk), key); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, d.finish(opInsert, &key, err)
	}
	d.db.metrics.documentSize(len(raw))
	d.db.debugf("docstore: PUT %s/%v (%d bytes)", d.coll.name, key, len(raw))
	return doc, d.finish(opInsert, &key, nil)
}

func evictFromBucket(sec storageBucket, sk []byte, key CompositeKey) error {
	raw := sec.Get(sk)
	if raw == nil {
		return nil
	}
	b, err := decodeIndexBucket(raw)
	if err != nil {
		return err
	}
	if !b.remove(key) {
		return nil
	}
	if len(b.Keys) == 0 {
		return sec.Delete(sk)
	}
	return sec.Put(sk, encodeIndexBucket(b))
}

func appendToBucket(sec storageBucket, sk []byte, key CompositeKey) error {
	b := new(indexBucket)
	if raw := sec.Get(sk); raw != nil {
		var err error
		b, err = decodeIndexBucket(raw)
		if err != nil {
			return err
		}
	}
	if !b.add(key) {
		return nil
	}
	return sec.Put(sk, encodeIndexBucket(b))
}

// Get returns the document at key, or an error matching ErrNotFound.
func (d *Database[T, S]) Get(key CompositeKey) (*Document[T], error) {
	d.coll.cell.borrow()
	defer d.coll.cell.release()

	var doc *Document[T]
	err := d.db.read(func(tx *tx) error {
		prim := tx.region(d.coll.primary)
		if prim == nil {
			return ErrNotFound
		}
		raw := prim.Get(key.encode(nil))
		if raw == nil {
			return ErrNotFound
		}
		var err error
		doc, err = decodeDocument[T](raw)
		return err
	})
	if err != nil {
		return nil, d.finish(opGet, &key, err)
	}
	return doc, d.finish(opGet, &key, nil)
}

func (d *Database[T, S]) Exists(key CompositeKey) (bool, error) {
	d.coll.cell.borrow()
	defer d.coll.cell.release()

	var found bool
	err := d.db.read(func(tx *tx) error {
		if prim := tx.region(d.coll.primary); prim != nil {
			found = prim.Get(key.encode(nil)) != nil
		}
		return nil
	})
	return found, d.finish(opExists, &key, err)
}

// Count returns the number of documents in a partition without decoding them.
func (d *Database[T, S]) Count(partitionKey string) (int, error) {
	d.coll.cell.borrow()
	defer d.coll.cell.release()

	var n int
	err := d.db.read(func(tx *tx) error {
		prim := tx.region(d.coll.primary)
		if prim == nil {
			return nil
		}
		c := partitionRange(partitionKey).newCursor(prim.Cursor())
		for c.Next() {
			n++
		}
		return nil
	})
	return n, d.finish(opCount, nil, err)
}

// SecondaryKeys lists the distinct secondary keys that currently index at
// least one document, in encoded order.
func (d *Database[T, S]) SecondaryKeys() ([]S, error) {
	if !d.HasSecondaryIndex() {
		return nil, collErrf(d.coll.name, nil, ErrSecondaryIndexUnavailable, "")
	}

	d.coll.cell.borrow()
	defer d.coll.cell.release()

	var keys []S
	err := d.db.read(func(tx *tx) error {
		sec := tx.region(d.coll.secondary)
		if sec == nil {
			return nil
		}
		c := RawAll().newCursor(sec.Cursor())
		for c.Next() {
			k, err := d.idx.Codec.DecodeKey(c.Key())
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return nil, collErrf(d.coll.name, nil, err, "listing secondary keys")
	}
	return keys, nil
}

// finish records the outcome of an operation and attaches the collection to
// the error.
func (d *Database[T, S]) finish(op string, key *CompositeKey, err error) error {
	d.db.metrics.observe(d.coll.name, op, err)
	if err == nil {
		return nil
	}
	var ce *CollectionError
	if errors.As(err, &ce) {
		return err
	}
	return collErrf(d.coll.name, key, err, "%s", op)
}
