package envelope

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/srdex/internal/domain/record"
)

func TestNewList_CountMatchesResults(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		recs := make([]record.Record, n)
		for i := range recs {
			recs[i] = record.Record{"index": "r"}
		}
		l := NewList(recs)
		if l.Count != len(l.Results) {
			t.Errorf("n=%d: count %d != len(results) %d", n, l.Count, len(l.Results))
		}
		if !l.Valid() {
			t.Errorf("n=%d: expected valid envelope", n)
		}
	}
}

func TestNewList_NilMarshalsAsEmptyArray(t *testing.T) {
	data, err := json.Marshal(NewList(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"count":0,"results":[]}` {
		t.Errorf("got %s", data)
	}
}

func TestBare(t *testing.T) {
	data, err := json.Marshal(List{}.Bare())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[]` {
		t.Errorf("got %s, want []", data)
	}
}

func TestValid_DetectsMismatch(t *testing.T) {
	l := List{Count: 3, Results: []record.Record{{}}}
	if l.Valid() {
		t.Error("expected invalid envelope")
	}
}
