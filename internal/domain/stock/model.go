package stock

import (
	"fmt"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
)

// LocationRef points at a storage place or at the free (unassigned) pool.
// The zero value is the free pool.
type LocationRef struct {
	id       int64
	assigned bool
}

func Unassigned() LocationRef { return LocationRef{} }

func AtLocation(id int64) LocationRef { return LocationRef{id: id, assigned: true} }

// FromID builds a ref from a nullable identifier.
func FromID(id *int64) LocationRef {
	if id == nil {
		return Unassigned()
	}
	return AtLocation(*id)
}

func (r LocationRef) Assigned() bool { return r.assigned }

// ID returns the location id; ok is false for the free pool.
func (r LocationRef) ID() (int64, bool) { return r.id, r.assigned }

func (r LocationRef) Equal(o LocationRef) bool {
	return r.assigned == o.assigned && (!r.assigned || r.id == o.id)
}

// Before orders refs globally: free pool first, then by id. Move locks its
// two rows in this order so opposite transfers cannot deadlock each other.
func (r LocationRef) Before(o LocationRef) bool {
	if r.assigned != o.assigned {
		return !r.assigned
	}
	return r.id < o.id
}

func (r LocationRef) String() string {
	if !r.assigned {
		return "free"
	}
	return fmt.Sprintf("#%d", r.id)
}

// Entry is one ledger row: the stock of one article at one location (or in
// the free pool), held as full sealed units plus loose pieces.
type Entry struct {
	ID          int64
	ArticleID   int64
	Location    LocationRef
	FullUnits   int
	LoosePieces int
}

// DetailedEntry is an Entry joined with its article and location name,
// as loaded for the overview and report reads.
type DetailedEntry struct {
	Entry
	Article      catalog.Article
	LocationName string // empty for the free pool
}

// Quantity is a (full units, loose pieces) pair outside any ledger row.
type Quantity struct {
	FullUnits   int
	LoosePieces int
}
