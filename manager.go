package docstore

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Manager assigns regions to named collections and hands out Databases bound
// to them. No two collections ever share a region.
type Manager struct {
	db *DB

	mu           sync.Mutex
	collections  map[string]*collection
	owners       map[RegionID]string
	reservations []Reservation
	next         int
}

type collection struct {
	name         string
	primary      RegionID
	secondary    RegionID
	hasSecondary bool
	reserved     bool

	cell borrowCell
}

// Regions describes the regions held by a collection.
type Regions struct {
	Primary      RegionID
	Secondary    RegionID
	HasSecondary bool
}

// Reservation is a block of region ids set aside by ReserveRange.
type Reservation struct {
	Name  string
	Start RegionID
	End   RegionID
	Label string
}

type regionSpecKind uint8

const (
	specAuto regionSpecKind = iota
	specNone
	specExplicit
)

// RegionSpec says how Register picks a region: Auto, At(id), or NoIndex for
// a collection without a secondary index.
type RegionSpec struct {
	kind regionSpecKind
	id   RegionID
}

var (
	Auto    = RegionSpec{kind: specAuto}
	NoIndex = RegionSpec{kind: specNone}
)

func At(id RegionID) RegionSpec {
	return RegionSpec{kind: specExplicit, id: id}
}

func (s RegionSpec) String() string {
	switch s.kind {
	case specAuto:
		return "auto"
	case specNone:
		return "none"
	default:
		return s.id.String()
	}
}

func NewManager(db *DB) *Manager {
	return &Manager{
		db:          db,
		collections: make(map[string]*collection),
		owners:      make(map[RegionID]string),
	}
}

func (m *Manager) DB() *DB {
	return m.db
}

// Register creates a collection. Every check runs before anything is
// recorded, so a failed Register leaves both the Manager and the store
// untouched.
func (m *Manager) Register(name string, primary, secondary RegionSpec) error {
	if name == "" {
		return collErrf(name, nil, ErrBadRequest, "empty collection name")
	}
	if primary.kind == specNone {
		return collErrf(name, nil, ErrBadRequest, "primary region is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.collections[name]; found {
		return collErrf(name, nil, ErrAlreadyRegistered, "")
	}

	claims, err := m.loadClaims()
	if err != nil {
		return err
	}

	taken := make(map[RegionID]bool)
	var allocated []RegionID
	pick := func(spec RegionSpec, role regionRole) (RegionID, bool, error) {
		switch spec.kind {
		case specNone:
			return 0, false, nil
		case specExplicit:
			id := spec.id
			if !id.valid() {
				return 0, false, collErrf(name, nil, ErrBadRequest, "invalid %s region %v", role, id)
			}
			if err := m.checkFree(name, role, id, claims); err != nil {
				return 0, false, err
			}
			if taken[id] {
				return 0, false, collErrf(name, nil, ErrRegionInUse, "%s region %v is also requested as the other region", role, id)
			}
			taken[id] = true
			return id, true, nil
		default:
			id, fresh, err := m.allocate(name, role, claims, taken)
			if err != nil {
				return 0, false, err
			}
			taken[id] = true
			if fresh {
				allocated = append(allocated, id)
			}
			return id, true, nil
		}
	}

	// Explicit ids first, so that auto-allocation never picks them.
	coll := &collection{name: name}
	if secondary.kind == specExplicit {
		coll.secondary, coll.hasSecondary, err = pick(secondary, roleSecondary)
		if err != nil {
			return err
		}
	}
	coll.primary, _, err = pick(primary, rolePrimary)
	if err != nil {
		return err
	}
	if secondary.kind != specExplicit {
		coll.secondary, coll.hasSecondary, err = pick(secondary, roleSecondary)
		if err != nil {
			return err
		}
	}

	err = m.db.update(func(tx *tx) error {
		now := time.Now().UTC()
		m.claim(tx, claims, coll.primary, name, rolePrimary, now)
		if coll.hasSecondary {
			m.claim(tx, claims, coll.secondary, name, roleSecondary, now)
		}
		return nil
	})
	if err != nil {
		return collErrf(name, nil, err, "persisting region claims")
	}

	coll.cell.name = name
	m.collections[name] = coll
	m.owners[coll.primary] = name
	if coll.hasSecondary {
		m.owners[coll.secondary] = name
	}
	for _, id := range allocated {
		m.advance(id)
	}
	m.db.debugf("docstore: REGISTER %s primary=%v secondary=%v", name, coll.primary, regionOrNone(coll.secondary, coll.hasSecondary))
	return nil
}

// ReserveRange sets aside every id in [start, end] under a synthetic
// registration, and moves auto-allocation past end.
func (m *Manager) ReserveRange(start, end RegionID, label string) error {
	name := fmt.Sprintf("__reserved_%d_%d_%s", start, end, label)
	if start > end || !end.valid() {
		return collErrf(name, nil, ErrBadRequest, "invalid range %v..%v", start, end)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.collections[name]; found {
		return collErrf(name, nil, ErrAlreadyRegistered, "")
	}
	claims, err := m.loadClaims()
	if err != nil {
		return err
	}
	for id := int(start); id <= int(end); id++ {
		if err := m.checkFree(name, roleReserved, RegionID(id), claims); err != nil {
			return err
		}
	}

	err = m.db.update(func(tx *tx) error {
		now := time.Now().UTC()
		for id := int(start); id <= int(end); id++ {
			m.claim(tx, claims, RegionID(id), name, roleReserved, now)
		}
		return nil
	})
	if err != nil {
		return collErrf(name, nil, err, "persisting region claims")
	}

	m.collections[name] = &collection{name: name, reserved: true}
	for id := int(start); id <= int(end); id++ {
		m.owners[RegionID(id)] = name
	}
	m.reservations = append(m.reservations, Reservation{Name: name, Start: start, End: end, Label: label})
	m.advance(end)
	m.db.debugf("docstore: RESERVE %s %v..%v", name, start, end)
	return nil
}

// Collections returns the names of registered collections, excluding
// reservations, in name order.
func (m *Manager) Collections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name, coll := range m.collections {
		if !coll.reserved {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m *Manager) IsRegistered(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[name]
	return coll != nil && !coll.reserved
}

func (m *Manager) Regions(name string) (Regions, error) {
	coll, err := m.lookup(name)
	if err != nil {
		return Regions{}, err
	}
	return Regions{coll.primary, coll.secondary, coll.hasSecondary}, nil
}

func (m *Manager) Reservations() []Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reservations)
}

// Owner returns the collection (or reservation) holding a region, if any.
func (m *Manager) Owner(id RegionID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.owners[id]
	return name, ok
}

func (m *Manager) lookup(name string) (*collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[name]
	if coll == nil || coll.reserved {
		return nil, collErrf(name, nil, ErrNotRegistered, "")
	}
	return coll, nil
}

func (m *Manager) loadClaims() (map[RegionID]regionClaim, error) {
	var claims map[RegionID]regionClaim
	err := m.db.read(func(tx *tx) error {
		var err error
		claims, err = loadClaims(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("docstore: loading region claims: %w", err)
	}
	return claims, nil
}

func (m *Manager) checkFree(name string, role regionRole, id RegionID, claims map[RegionID]regionClaim) error {
	if owner, ok := m.owners[id]; ok {
		return collErrf(name, nil, ErrRegionInUse, "%s region %v is held by %s", role, id, owner)
	}
	if claim, ok := claims[id]; ok && !claim.heldBy(name, role) {
		return collErrf(name, nil, ErrRegionInUse, "%s region %v is claimed by %s (%s)", role, id, claim.Owner, claim.Role)
	}
	return nil
}

// allocate prefers the region this collection claimed in an earlier run, and
// otherwise takes the lowest free id at or after the counter. fresh is false
// for a reclaimed region.
func (m *Manager) allocate(name string, role regionRole, claims map[RegionID]regionClaim, taken map[RegionID]bool) (id RegionID, fresh bool, err error) {
	var prior []RegionID
	for id, claim := range claims {
		if claim.heldBy(name, role) && !taken[id] {
			if _, inUse := m.owners[id]; !inUse {
				prior = append(prior, id)
			}
		}
	}
	if len(prior) > 0 {
		return slices.Min(prior), false, nil
	}

	for id := m.next; id <= int(MaxRegionID); id++ {
		rid := RegionID(id)
		if taken[rid] {
			continue
		}
		if _, inUse := m.owners[rid]; inUse {
			continue
		}
		if _, claimed := claims[rid]; claimed {
			continue
		}
		return rid, true, nil
	}
	return 0, false, collErrf(name, nil, ErrRegionsExhausted, "cannot allocate %s region", role)
}

func (m *Manager) claim(tx *tx, claims map[RegionID]regionClaim, id RegionID, name string, role regionRole, now time.Time) {
	if claims[id].heldBy(name, role) {
		return
	}
	putClaim(tx, id, regionClaim{Owner: name, Role: role, Claimed: now})
}

func (m *Manager) advance(past RegionID) {
	if n := int(past) + 1; n > m.next {
		m.next = n
	}
}

func regionOrNone(id RegionID, ok bool) string {
	if !ok {
		return "none"
	}
	return id.String()
}
