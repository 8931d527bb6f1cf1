// Package diagnostics is the proxy's diagnostic sink (spec.md 7): it logs,
// persists, and exposes the protocol/invariant violations and packet
// traffic ChatQueue reports, without ever feeding back into the ordering
// core itself.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
)

// ViolationRecord is one persisted entry in the violation Ledger.
type ViolationRecord struct {
	Kind       string    `json:"kind"`
	Player     string    `json:"player"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Ledger is a persisted, append-only record of protocol/invariant
// violations, so they survive past the process that raised them - the
// source has no such trail (see SPEC_FULL.md 11).
type Ledger struct {
	db  *leveldb.DB
	seq uint64
}

// OpenLedger opens (or creates) a leveldb-backed ledger at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{Compression: opt.DefaultCompression})
	if err != nil {
		return nil, fmt.Errorf("open violation ledger: %w", err)
	}
	l := &Ledger{db: db}
	iter := db.NewIterator(nil, nil)
	if iter.Last() {
		_, _ = fmt.Sscanf(string(iter.Key()), "violation_%d", &l.seq)
	}
	iter.Release()
	return l, nil
}

// Record appends a violation. Failures to persist are swallowed - a
// diagnostic sink must never be the reason a task fails.
func (l *Ledger) Record(kind, player string, err error) {
	l.seq++
	rec := ViolationRecord{
		Kind:       kind,
		Player:     player,
		Message:    err.Error(),
		RecordedAt: time.Now(),
	}
	data, mErr := json.Marshal(rec)
	if mErr != nil {
		return
	}
	key := []byte(fmt.Sprintf("violation_%020d", l.seq))
	_ = l.db.Put(key, data, nil)
}

// All returns every recorded violation, oldest first.
func (l *Ledger) All() ([]ViolationRecord, error) {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	var out []ViolationRecord
	for iter.Next() {
		var rec ViolationRecord
		if err := json.Unmarshal(iter.Value(), &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out, iter.Error()
}

// Close releases the underlying leveldb handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
