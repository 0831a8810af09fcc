package docstore

import (
	"fmt"
	"strconv"
	"strings"
)

// RegionID identifies one disjoint region of the store. Every collection's
// primary map and secondary index live in regions, and ids are shared by all
// collections of a store.
type RegionID uint8

// MaxRegionID is the largest usable region id.
const MaxRegionID RegionID = 254

const (
	regionBucketPrefix = "r"
	metaBucket         = "_meta"
)

func (id RegionID) String() string {
	return strconv.Itoa(int(id))
}

func (id RegionID) valid() bool {
	return id <= MaxRegionID
}

func (id RegionID) bucketName() string {
	return fmt.Sprintf("%s%03d", regionBucketPrefix, id)
}

func parseRegionBucketName(name string) (RegionID, bool) {
	s, ok := strings.CutPrefix(name, regionBucketPrefix)
	if !ok || len(s) != 3 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || RegionID(v) > MaxRegionID {
		return 0, false
	}
	return RegionID(v), true
}
