package diagnostics

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLedgerRecordsAndListsInOrder(t *testing.T) {
	dir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(dir, "violations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	ledger.Record("protocol", "steve", errors.New("negative acknowledgement count"))
	ledger.Record("invariant", "steve", errors.New("delayed ack count mutated outside the owning queue"))

	records, err := ledger.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Kind != "protocol" || records[1].Kind != "invariant" {
		t.Fatalf("expected [protocol invariant], got [%s %s]", records[0].Kind, records[1].Kind)
	}
	if records[0].Player != "steve" {
		t.Fatalf("expected player steve, got %s", records[0].Player)
	}
}

func TestSinkWithoutLedgerDoesNotPanic(t *testing.T) {
	sink := NewSink("steve", nil)
	sink.ReportProtocolViolation(errors.New("malformed"))
	sink.ReportInvariantViolation(errors.New("bug"))
}

func TestSinkPersistsToLedger(t *testing.T) {
	dir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(dir, "violations.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	sink := NewSink("steve", ledger)
	sink.ReportProtocolViolation(errors.New("malformed"))

	records, err := ledger.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Kind != "protocol" {
		t.Fatalf("expected 1 protocol record, got %v", records)
	}
}
