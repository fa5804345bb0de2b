package stock

import (
	"context"
	"maps"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
)

// memLedger is the in-memory Ledger used by the engine tests. WithinTx
// stages all writes on a copy and swaps it in on success, so a failed
// operation leaves the committed state untouched, like a rolled-back
// transaction would.
type memLedger struct {
	entries  map[memKey]Entry
	nextID   int64
	articles map[int64]*catalog.Article
	locNames map[int64]string
	failTxs  int // inject this many concurrency failures before succeeding
	txCount  int
}

type memKey struct {
	articleID int64
	loc       LocationRef
}

func newMemLedger(articles map[int64]*catalog.Article, locNames map[int64]string) *memLedger {
	return &memLedger{
		entries:  map[memKey]Entry{},
		articles: articles,
		locNames: locNames,
	}
}

func (m *memLedger) WithinTx(_ context.Context, fn func(LedgerTx) error) error {
	m.txCount++
	if m.failTxs > 0 {
		m.failTxs--
		return newError(KindConcurrency, "injected lock race")
	}
	staged := maps.Clone(m.entries)
	tx := &memTx{ledger: m, entries: staged}
	if err := fn(tx); err != nil {
		return err
	}
	m.entries = staged
	return nil
}

func (m *memLedger) Find(_ context.Context, articleID int64, loc LocationRef) (*Entry, error) {
	if e, ok := m.entries[memKey{articleID, loc}]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *memLedger) ListDetailed(_ context.Context) ([]DetailedEntry, error) {
	var out []DetailedEntry
	for _, e := range m.entries {
		d := DetailedEntry{Entry: e}
		if a := m.articles[e.ArticleID]; a != nil {
			d.Article = *a
		}
		if id, ok := e.Location.ID(); ok {
			d.LocationName = m.locNames[id]
		}
		out = append(out, d)
	}
	return out, nil
}

// total sums an article's pieces across every key, for conservation checks.
func (m *memLedger) total(articleID int64, perUnit int) int {
	sum := 0
	for k, e := range m.entries {
		if k.articleID == articleID {
			sum += TotalPieces(e, perUnit)
		}
	}
	return sum
}

type memTx struct {
	ledger  *memLedger
	entries map[memKey]Entry
}

func (t *memTx) Get(_ context.Context, articleID int64, loc LocationRef) (*Entry, error) {
	if e, ok := t.entries[memKey{articleID, loc}]; ok {
		return &e, nil
	}
	return nil, nil
}

func (t *memTx) Upsert(_ context.Context, e Entry) error {
	key := memKey{e.ArticleID, e.Location}
	if existing, ok := t.entries[key]; ok {
		e.ID = existing.ID
	} else {
		t.ledger.nextID++
		e.ID = t.ledger.nextID
	}
	t.entries[key] = e
	return nil
}

func (t *memTx) Delete(_ context.Context, articleID int64, loc LocationRef) error {
	delete(t.entries, memKey{articleID, loc})
	return nil
}

// placesStub answers location existence from the memLedger's name table.
type placesStub map[int64]string

func (p placesStub) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := p[id]
	return ok, nil
}

// catalogStub answers article lookups from a fixed table.
type catalogStub map[int64]*catalog.Article

func (c catalogStub) GetByID(_ context.Context, id int64) (*catalog.Article, error) {
	return c[id], nil
}
