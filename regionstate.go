package docstore

import (
	"fmt"
	"time"
)

type regionRole string

const (
	rolePrimary   regionRole = "primary"
	roleSecondary regionRole = "secondary"
	roleReserved  regionRole = "reserved"
)

// regionClaim records which collection owns a region. Claims are stored in
// the _meta bucket so that a collection finds its regions again after the
// process restarts, and so that no other collection can take them.
type regionClaim struct {
	Owner   string     `msgpack:"o"`
	Role    regionRole `msgpack:"r"`
	Claimed time.Time  `msgpack:"t"`
}

const claimKeyPrefix = "region/"

func claimKey(id RegionID) []byte {
	return fmt.Appendf(nil, "%s%03d", claimKeyPrefix, id)
}

func (c regionClaim) heldBy(owner string, role regionRole) bool {
	return c.Owner == owner && c.Role == role
}

func loadClaims(tx *tx) (map[RegionID]regionClaim, error) {
	claims := make(map[RegionID]regionClaim)
	meta := tx.meta()
	if meta == nil {
		return claims, nil
	}
	rang := RawPrefix([]byte(claimKeyPrefix))
	c := rang.newCursor(meta.Cursor())
	for c.Next() {
		k := c.Key()
		id, ok := parseRegionBucketName(regionBucketPrefix + string(k[len(claimKeyPrefix):]))
		if !ok {
			return nil, dataErrf(k, 0, nil, "invalid region claim key")
		}
		var vle value
		if err := vle.decode(c.Value()); err != nil {
			return nil, fmt.Errorf("region %v claim: %w", id, err)
		}
		var claim regionClaim
		if err := vle.Flags.encoding().decode(vle.Data, &claim); err != nil {
			return nil, fmt.Errorf("region %v claim: %w", id, err)
		}
		claims[id] = claim
	}
	return claims, nil
}

func putClaim(tx *tx, id RegionID, claim regionClaim) {
	data := must(MsgPack.encode(nil, &claim))
	ensure(tx.createMeta().Put(claimKey(id), appendValue(nil, vfDefault, data)))
}
