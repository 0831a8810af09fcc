package docstore

import (
	"encoding/json"
	"sort"
)

type RegionStats struct {
	ID    RegionID
	Owner string
	Role  string

	Keys  int
	Size  int64
	Alloc int64
}

type CollectionStats struct {
	Documents int
	IndexKeys int

	DataSize   int64
	DataAlloc  int64
	IndexSize  int64
	IndexAlloc int64
}

func (cs *CollectionStats) TotalSize() int64 {
	return cs.DataSize + cs.IndexSize
}

func (cs *CollectionStats) TotalAlloc() int64 {
	return cs.DataAlloc + cs.IndexAlloc
}

func regionStatsIn(tx *tx, id RegionID, claims map[RegionID]regionClaim) RegionStats {
	rs := RegionStats{ID: id}
	if claim, ok := claims[id]; ok {
		rs.Owner, rs.Role = claim.Owner, string(claim.Role)
	}
	if b := tx.region(id); b != nil {
		bs := b.Stats()
		rs.Keys = bs.KeyN
		rs.Size = bs.LeafInuse
		rs.Alloc = bs.TotalAlloc()
	}
	return rs
}

// RegionStats reports the size and owner of one region. Regions that were
// never written to report zero keys.
func (db *DB) RegionStats(id RegionID) (RegionStats, error) {
	var rs RegionStats
	err := db.read(func(tx *tx) error {
		claims, err := loadClaims(tx)
		if err != nil {
			return err
		}
		rs = regionStatsIn(tx, id, claims)
		return nil
	})
	return rs, err
}

// AllRegionStats reports every region that is claimed or holds data, in id
// order.
func (db *DB) AllRegionStats() ([]RegionStats, error) {
	var result []RegionStats
	err := db.read(func(tx *tx) error {
		claims, err := loadClaims(tx)
		if err != nil {
			return err
		}
		ids := usedRegions(tx, claims)
		for _, id := range ids {
			result = append(result, regionStatsIn(tx, id, claims))
		}
		return nil
	})
	return result, err
}

func usedRegions(tx *tx, claims map[RegionID]regionClaim) []RegionID {
	seen := make(map[RegionID]bool, len(claims))
	for id := range claims {
		seen[id] = true
	}
	ensure(tx.stx.ForEachBucket(func(name string) error {
		if id, ok := parseRegionBucketName(name); ok {
			seen[id] = true
		}
		return nil
	}))
	ids := make([]RegionID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Manager) CollectionStats(name string) (CollectionStats, error) {
	coll, err := m.lookup(name)
	if err != nil {
		return CollectionStats{}, err
	}
	var cs CollectionStats
	err = m.db.read(func(tx *tx) error {
		if b := tx.region(coll.primary); b != nil {
			bs := b.Stats()
			cs.Documents = bs.KeyN
			cs.DataSize = bs.LeafInuse
			cs.DataAlloc = bs.TotalAlloc()
		}
		if coll.hasSecondary {
			if b := tx.region(coll.secondary); b != nil {
				bs := b.Stats()
				cs.IndexKeys = bs.KeyN
				cs.IndexSize = bs.LeafInuse
				cs.IndexAlloc = bs.TotalAlloc()
			}
		}
		return nil
	})
	return cs, err
}

func loggableData(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "<unloggable: " + err.Error() + ">"
	}
	return string(raw)
}
