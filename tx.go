package docstore

import (
	"fmt"
	"runtime/debug"
)

// tx is one storage transaction. Every store operation runs in exactly one.
type tx struct {
	db  *DB
	stx storageTx
}

// region returns the bucket of a region, or nil if nothing was ever written
// to it.
func (tx *tx) region(id RegionID) storageBucket {
	return tx.stx.Bucket(id.bucketName())
}

func (tx *tx) createRegion(id RegionID) storageBucket {
	return must(tx.stx.CreateBucket(id.bucketName()))
}

func (tx *tx) meta() storageBucket {
	return tx.stx.Bucket(metaBucket)
}

func (tx *tx) createMeta() storageBucket {
	return must(tx.stx.CreateBucket(metaBucket))
}

func (db *DB) read(f func(tx *tx) error) error {
	stx, err := db.st.BeginTx(false)
	if err != nil {
		return fmt.Errorf("docstore: begin read: %w", err)
	}
	db.ReaderCount.Add(1)
	defer db.ReaderCount.Add(-1)
	defer stx.Rollback()
	db.ReadCount.Add(1)

	return safelyCall(f, &tx{db: db, stx: stx})
}

// update runs f in a writable transaction and commits only if f succeeds.
// A panic inside f rolls back and is returned as an error.
func (db *DB) update(f func(tx *tx) error) error {
	db.PendingWriterCount.Add(1)
	stx, err := db.st.BeginTx(true)
	db.PendingWriterCount.Add(-1)
	if err != nil {
		return fmt.Errorf("docstore: begin update: %w", err)
	}
	db.WriterCount.Add(1)
	defer db.WriterCount.Add(-1)
	defer stx.Rollback()
	db.WriteCount.Add(1)

	err = safelyCall(f, &tx{db: db, stx: stx})
	if err != nil {
		return err
	}
	size := stx.Size()
	err = stx.Commit()
	if err != nil {
		return fmt.Errorf("docstore: commit: %w", err)
	}
	if size > 0 {
		db.lastSize.Store(size)
	}
	return nil
}

type panicked struct {
	reason any
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*tx) error, tx *tx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if bp, ok := p.(borrowPanic); ok {
				panic(bp)
			}
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}
