package stock

import (
	"context"
	"sort"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
)

// Ledger is the persistence contract for stock entries. The pgx Repo is the
// real implementation; tests substitute an in-memory one.
type Ledger interface {
	// WithinTx runs fn inside one transaction. Everything fn reads through
	// the LedgerTx is locked until commit; any error rolls the whole
	// transaction back.
	WithinTx(ctx context.Context, fn func(LedgerTx) error) error
	// Find reads one entry without locking it. Returns nil when absent.
	Find(ctx context.Context, articleID int64, loc LocationRef) (*Entry, error)
	// ListDetailed returns all entries joined with article and location.
	ListDetailed(ctx context.Context) ([]DetailedEntry, error)
}

// LedgerTx is the per-transaction view of the ledger.
type LedgerTx interface {
	// Get reads and locks one entry. Returns nil when absent.
	Get(ctx context.Context, articleID int64, loc LocationRef) (*Entry, error)
	Upsert(ctx context.Context, e Entry) error
	Delete(ctx context.Context, articleID int64, loc LocationRef) error
}

// ArticleSource is the catalog lookup the engine depends on.
type ArticleSource interface {
	GetByID(ctx context.Context, id int64) (*catalog.Article, error)
}

// LocationSource answers whether a storage place exists.
type LocationSource interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// maxAttempts bounds the retry loop around lock/serialization races.
const maxAttempts = 3

// Engine owns the three mutating stock operations and the read-side
// rollups. All invariant checks live here; the ledger only persists.
type Engine struct {
	ledger   Ledger
	articles ArticleSource
	places   LocationSource
}

func NewEngine(ledger Ledger, articles ArticleSource, places LocationSource) *Engine {
	return &Engine{ledger: ledger, articles: articles, places: places}
}

// SetResult reports the quantity a Set replaced, for the activity log.
type SetResult struct {
	Previous Quantity
}

func (e *Engine) article(ctx context.Context, id int64) (*catalog.Article, error) {
	a, err := e.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, newError(KindNotFound, "article %d not found", id)
	}
	return a, nil
}

func (e *Engine) checkLocation(ctx context.Context, loc LocationRef) error {
	id, ok := loc.ID()
	if !ok {
		return nil // free pool always exists
	}
	exists, err := e.places.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindNotFound, "location %d not found", id)
	}
	return nil
}

// checkShape validates loose pieces against the article's unit shape: plain
// articles carry no loose pieces at all, multi-part articles strictly fewer
// than one full unit.
func checkShape(a *catalog.Article, loosePieces int) error {
	if !a.IsMultiPart || a.PiecesPerUnit == nil {
		if loosePieces > 0 {
			return newError(KindValidation, "article %d does not have loose pieces", a.ID)
		}
		return nil
	}
	if perUnit := PiecesPerUnit(a); loosePieces >= perUnit {
		return newError(KindValidation, "loose pieces must be fewer than %d", perUnit)
	}
	return nil
}

func checkNonNegative(fullUnits, loosePieces int) error {
	if fullUnits < 0 || loosePieces < 0 {
		return newError(KindValidation, "quantities must not be negative")
	}
	return nil
}

// withRetry reruns the whole operation on lock/serialization races instead
// of reapplying a stale delta.
func (e *Engine) withRetry(ctx context.Context, fn func(LedgerTx) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = e.ledger.WithinTx(ctx, fn)
		if err == nil || !Retryable(err) {
			return err
		}
	}
	return err
}

// Add books additional stock onto one (article, location) key. The result is
// always positive, so Add never deletes a row.
func (e *Engine) Add(ctx context.Context, articleID int64, loc LocationRef, fullUnits, loosePieces int) error {
	if err := checkNonNegative(fullUnits, loosePieces); err != nil {
		return err
	}
	if fullUnits == 0 && loosePieces == 0 {
		return newError(KindValidation, "nothing to add")
	}
	a, err := e.article(ctx, articleID)
	if err != nil {
		return err
	}
	if err := e.checkLocation(ctx, loc); err != nil {
		return err
	}
	if err := checkShape(a, loosePieces); err != nil {
		return err
	}

	perUnit := PiecesPerUnit(a)
	return e.withRetry(ctx, func(tx LedgerTx) error {
		existing, err := tx.Get(ctx, articleID, loc)
		if err != nil {
			return err
		}
		entry := Entry{ArticleID: articleID, Location: loc}
		combined := ToPieces(fullUnits, loosePieces, perUnit)
		if existing != nil {
			entry = *existing
			combined += TotalPieces(*existing, perUnit)
		}
		entry.FullUnits, entry.LoosePieces = Canonical(combined, perUnit)
		return tx.Upsert(ctx, entry)
	})
}

// Set replaces the stock at one key with an absolute count (stocktake
// correction). Setting zero deletes the row; setting zero on a missing row
// is a no-op.
func (e *Engine) Set(ctx context.Context, articleID int64, loc LocationRef, fullUnits, loosePieces int) (SetResult, error) {
	var res SetResult
	if err := checkNonNegative(fullUnits, loosePieces); err != nil {
		return res, err
	}
	a, err := e.article(ctx, articleID)
	if err != nil {
		return res, err
	}
	if err := e.checkLocation(ctx, loc); err != nil {
		return res, err
	}
	if err := checkShape(a, loosePieces); err != nil {
		return res, err
	}

	perUnit := PiecesPerUnit(a)
	target := ToPieces(fullUnits, loosePieces, perUnit)
	err = e.withRetry(ctx, func(tx LedgerTx) error {
		existing, err := tx.Get(ctx, articleID, loc)
		if err != nil {
			return err
		}
		res.Previous = Quantity{}
		if existing != nil {
			res.Previous = Quantity{FullUnits: existing.FullUnits, LoosePieces: existing.LoosePieces}
		}
		if target == 0 {
			if existing == nil {
				return nil
			}
			return tx.Delete(ctx, articleID, loc)
		}
		entry := Entry{ArticleID: articleID, Location: loc}
		if existing != nil {
			entry = *existing
		}
		entry.FullUnits, entry.LoosePieces = Canonical(target, perUnit)
		return tx.Upsert(ctx, entry)
	})
	return res, err
}

// Move transfers stock between two keys of the same article. Both rows
// change in one transaction; the article's piece total across all locations
// is conserved.
func (e *Engine) Move(ctx context.Context, articleID int64, from, to LocationRef, fullUnits, loosePieces int) error {
	if from.Equal(to) {
		return newError(KindConflict, "source and destination are the same place")
	}
	if err := checkNonNegative(fullUnits, loosePieces); err != nil {
		return err
	}
	if fullUnits == 0 && loosePieces == 0 {
		return newError(KindValidation, "nothing to move")
	}
	a, err := e.article(ctx, articleID)
	if err != nil {
		return err
	}
	if err := e.checkLocation(ctx, from); err != nil {
		return err
	}
	if err := e.checkLocation(ctx, to); err != nil {
		return err
	}
	if err := checkShape(a, loosePieces); err != nil {
		return err
	}

	perUnit := PiecesPerUnit(a)
	requested := ToPieces(fullUnits, loosePieces, perUnit)
	return e.withRetry(ctx, func(tx LedgerTx) error {
		// Lock both rows in global key order, not transfer order.
		keys := []LocationRef{from, to}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
		locked := map[LocationRef]*Entry{}
		for _, k := range keys {
			entry, err := tx.Get(ctx, articleID, k)
			if err != nil {
				return err
			}
			locked[k] = entry
		}

		available := 0
		if src := locked[from]; src != nil {
			available = TotalPieces(*src, perUnit)
		}
		if requested > available {
			return newError(KindConflict, "only %d pieces available at the source", available)
		}

		remaining := available - requested
		if remaining <= 0 {
			if err := tx.Delete(ctx, articleID, from); err != nil {
				return err
			}
		} else {
			src := *locked[from]
			src.FullUnits, src.LoosePieces = Canonical(remaining, perUnit)
			if err := tx.Upsert(ctx, src); err != nil {
				return err
			}
		}

		dst := Entry{ArticleID: articleID, Location: to}
		existingPieces := 0
		if d := locked[to]; d != nil {
			dst = *d
			existingPieces = TotalPieces(*d, perUnit)
		}
		dst.FullUnits, dst.LoosePieces = Canonical(existingPieces+requested, perUnit)
		return tx.Upsert(ctx, dst)
	})
}

// Availability returns the piece total of one (article, location) key; 0
// when no row exists.
func (e *Engine) Availability(ctx context.Context, articleID int64, loc LocationRef) (int, error) {
	a, err := e.article(ctx, articleID)
	if err != nil {
		return 0, err
	}
	if err := e.checkLocation(ctx, loc); err != nil {
		return 0, err
	}
	entry, err := e.ledger.Find(ctx, articleID, loc)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return TotalPieces(*entry, PiecesPerUnit(a)), nil
}
