package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rangePlanner/internal/model"
)

func TestJsonlStoragePutDraftBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "drafts.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutDraftBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch should not create the file")
	}

	first := []model.PositionDraftRecord{
		{ChainID: 1, Pool: "0xpool", TickLower: -120, TickUpper: 120, Liquidity: "1000", Amount0: "5", Amount1: "7"},
	}
	second := []model.PositionDraftRecord{
		{ChainID: 1, Pool: "0xpool", TickLower: -600, TickUpper: 600, Liquidity: "2000", RangeCase: "in"},
	}
	if err := sink.PutDraftBatch(first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutDraftBatch(second); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.PositionDraftRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.PositionDraftRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].TickLower != -120 || got[0].Amount1 != "7" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Liquidity != "2000" || got[1].RangeCase != "in" {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

type failingSink struct{ err error }

func (f failingSink) PutDraftBatch([]model.PositionDraftRecord) error { return f.err }

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.jsonl")
	boom := os.ErrPermission
	multi := MultiSink{failingSink{err: boom}, NewJsonlStorage(path)}

	err := multi.PutDraftBatch([]model.PositionDraftRecord{{Pool: "0xpool"}})
	if err != boom {
		t.Fatalf("expected first sink error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("second sink should not run after a failure")
	}
}
