// Package emit implements the emitter described in spec.md §4.5: it
// receives one classify.Record per watched call, deduplicates in memory on
// (name, file, line, column, category), and forwards surviving records to a
// persistent sink. The sink itself enforces the same uniqueness constraint
// (pkg/sink), so the in-memory set only saves redundant round trips within a
// run; it is not the sole line of defense.
package emit

import (
	"sync"

	"github.com/errorck-dev/errorck/pkg/classify"
)

// Sink is the narrow persistence interface the emitter writes through. The
// concrete implementation (pkg/sink) backs it with modernc.org/sqlite; tests
// use an in-memory fake.
type Sink interface {
	Insert(classify.Record) error
}

// Emitter deduplicates and forwards classification records. It is safe for
// concurrent use: the batch driver's subprocess-per-translation-unit model
// means a single Emitter is only ever fed by its own process, but the
// worker's NDJSON decode loop and any future direct embedding may still want
// to call Emit from more than one goroutine.
type Emitter struct {
	sink Sink

	mu   sync.Mutex
	seen map[key]bool

	// sticky latches true after the first sink error; per spec.md §7,
	// subsequent Emit calls become no-ops once set.
	sticky error
}

type key struct {
	name     string
	file     string
	line     int
	column   int
	category classify.Category
}

// New returns an Emitter writing through sink.
func New(sink Sink) *Emitter {
	return &Emitter{sink: sink, seen: make(map[key]bool)}
}

// Emit records one classification. It returns the emitter's sticky error (if
// any sink write has already failed), the result of this record's own sink
// write (if it was novel and the write failed), or nil on success or on a
// harmless duplicate.
func (e *Emitter) Emit(rec classify.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sticky != nil {
		return e.sticky
	}

	k := key{
		name:     rec.Site.Name,
		file:     rec.Site.Pos.File,
		line:     rec.Site.Pos.Line,
		column:   rec.Site.Pos.Column,
		category: rec.Category,
	}
	if e.seen[k] {
		return nil
	}
	e.seen[k] = true

	if err := e.sink.Insert(rec); err != nil {
		e.sticky = err
		return err
	}
	return nil
}

// Err returns the sticky sink error latched by a prior Emit call, or nil.
func (e *Emitter) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sticky
}
