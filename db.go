package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.etcd.io/bbolt"
)

// InMemory is a path that makes Open create a transient store with no file
// behind it.
const InMemory = ":memory:"

// DB is one persistent address space shared by every collection registered
// with its Manager.
type DB struct {
	st      storage
	path    string
	logf    func(format string, args ...any)
	verbose bool
	metrics *metrics

	lastSize           atomic.Int64
	ReaderCount        atomic.Int64
	WriterCount        atomic.Int64
	PendingWriterCount atomic.Int64
	ReadCount          atomic.Uint64
	WriteCount         atomic.Uint64
}

type Options struct {
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	ReadOnly  bool
	MmapSize  int

	// Registerer receives the store's metrics; nil disables them.
	Registerer prometheus.Registerer
}

func Open(path string, opt Options) (*DB, error) {
	var st storage
	if path == InMemory {
		st = newMemStorage()
	} else {
		bopt := *bbolt.DefaultOptions
		bopt.Timeout = 10 * time.Second
		bopt.ReadOnly = opt.ReadOnly
		if opt.IsTesting {
			bopt.NoSync = true
			bopt.NoFreelistSync = true
			bopt.InitialMmapSize = 1024 * 1024 * 5
		} else {
			bopt.InitialMmapSize = 1024 * 1024 * 1024
			bopt.FreelistType = bbolt.FreelistMapType
		}
		if opt.MmapSize != 0 {
			bopt.InitialMmapSize = opt.MmapSize
		}
		bdb, err := bbolt.Open(path, 0666, &bopt)
		if err != nil {
			return nil, fmt.Errorf("docstore: %w", err)
		}
		st = newBoltStorage(bdb)
	}

	logger := slog.Default().With("component", "docstore")
	logf := opt.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			logger.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
		}
	}

	db := &DB{
		st:      st,
		path:    path,
		logf:    logf,
		verbose: opt.Verbose,
		metrics: newMetrics(opt.Registerer),
	}
	return db, nil
}

func (db *DB) Path() string {
	return db.path
}

// Size returns the file size observed by the last committed write, or 0 for
// in-memory stores and before the first write.
func (db *DB) Size() int64 {
	return db.lastSize.Load()
}

func (db *DB) Close() {
	err := db.st.Close()
	if err != nil {
		panic(fmt.Errorf("docstore: closing: %w", err))
	}
}

func (db *DB) debugf(format string, args ...any) {
	if db.verbose {
		db.logf(format, args...)
	}
}
