package docstore

import (
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

func storages(t *testing.T, f func(t *testing.T, st storage)) {
	t.Run("bolt", func(t *testing.T) {
		bdb := must(bbolt.Open(filepath.Join(t.TempDir(), "st.db"), 0666, &bbolt.Options{NoSync: true}))
		st := newBoltStorage(bdb)
		t.Cleanup(func() { st.Close() })
		f(t, st)
	})
	t.Run("mem", func(t *testing.T) {
		st := newMemStorage()
		t.Cleanup(func() { st.Close() })
		f(t, st)
	})
}

func write(t testing.TB, st storage, f func(tx storageTx)) {
	t.Helper()
	tx := must(st.BeginTx(true))
	defer tx.Rollback()
	f(tx)
	ensure(tx.Commit())
}

func read(t testing.TB, st storage, f func(tx storageTx)) {
	t.Helper()
	tx := must(st.BeginTx(false))
	defer tx.Rollback()
	f(tx)
}

func TestStorageBasics(t *testing.T) {
	storages(t, func(t *testing.T, st storage) {
		write(t, st, func(tx storageTx) {
			b := must(tx.CreateBucket("r001"))
			ensure(b.Put([]byte("b"), []byte("2")))
			ensure(b.Put([]byte("a"), []byte("1")))
			ensure(b.Put([]byte("c"), []byte("3")))
			ensure(b.Delete([]byte("c")))
			ensure(b.Delete([]byte("missing")))
			must(tx.CreateBucket("_meta"))
		})
		read(t, st, func(tx storageTx) {
			if tx.Bucket("nope") != nil {
				t.Errorf("** missing bucket is not nil")
			}
			b := tx.Bucket("r001")
			deepEqual(t, string(b.Get([]byte("a"))), "1")
			isempty(t, b.Get([]byte("c")))
			deepEqual(t, b.Stats().KeyN, 2)

			var names []string
			ensure(tx.ForEachBucket(func(name string) error {
				names = append(names, name)
				return nil
			}))
			deepEqual(t, names, []string{"_meta", "r001"})
		})
	})
}

func TestStorageRollback(t *testing.T) {
	storages(t, func(t *testing.T, st storage) {
		tx := must(st.BeginTx(true))
		b := must(tx.CreateBucket("r002"))
		ensure(b.Put([]byte("k"), []byte("v")))
		ensure(tx.Rollback())
		ensure(tx.Rollback())

		read(t, st, func(tx storageTx) {
			if tx.Bucket("r002") != nil {
				t.Errorf("** rolled back bucket exists")
			}
		})
	})
}

func TestStorageStatsSmallBucket(t *testing.T) {
	storages(t, func(t *testing.T, st storage) {
		write(t, st, func(tx storageTx) {
			b := must(tx.CreateBucket("r003"))
			ensure(b.Put([]byte("k"), []byte("v")))
		})
		read(t, st, func(tx storageTx) {
			bs := tx.Bucket("r003").Stats()
			deepEqual(t, bs.KeyN, 1)
			if bs.LeafInuse <= 0 {
				t.Errorf("** LeafInuse = %d, wanted positive", bs.LeafInuse)
			}
			if bs.TotalAlloc() < bs.LeafInuse {
				t.Errorf("** TotalAlloc = %d, wanted at least %d", bs.TotalAlloc(), bs.LeafInuse)
			}
		})
	})
}

func TestStorageCursor(t *testing.T) {
	storages(t, func(t *testing.T, st storage) {
		write(t, st, func(tx storageTx) {
			b := must(tx.CreateBucket("r"))
			for _, k := range []string{"a1", "a2", "b1", "b2", "c"} {
				ensure(b.Put([]byte(k), []byte("v"+k)))
			}
		})
		read(t, st, func(tx storageTx) {
			c := tx.Bucket("r").Cursor()
			k, v := c.First()
			deepEqual(t, string(k)+"="+string(v), "a1=va1")
			k, _ = c.Next()
			deepEqual(t, string(k), "a2")
			k, _ = c.Last()
			deepEqual(t, string(k), "c")
			k, _ = c.Prev()
			deepEqual(t, string(k), "b2")
			k, _ = c.Seek([]byte("b"))
			deepEqual(t, string(k), "b1")
			k, _ = c.Seek([]byte("d"))
			isempty(t, k)
			k, _ = seekLast(c, []byte("a"))
			deepEqual(t, string(k), "a2")
			k, _ = seekLast(c, []byte("b"))
			deepEqual(t, string(k), "b2")
			k, _ = seekLast(c, []byte("bb"))
			deepEqual(t, string(k), "b2")
			k, _ = seekLast(c, []byte("z"))
			deepEqual(t, string(k), "c")
		})
	})
}
