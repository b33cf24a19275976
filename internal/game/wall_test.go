package game

import (
	"encoding/json"
	"testing"
)

func TestWallRecord_RoundTrip(t *testing.T) {
	w := NewWall(12.5, -3.25, 100.125, 10)
	if got := w.Record().Wall(); got != w {
		t.Fatalf("round trip = %+v, want %+v", got, w)
	}
}

func TestWallRecord_JSONShape(t *testing.T) {
	raw, err := json.Marshal(NewWall(1, 2, 3, 4).Record())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"position":{"x":1,"y":2},"width":3,"height":4}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
}

func TestWall_OverlapIsStrict(t *testing.T) {
	w := NewWall(100, 0, 10, 100)
	if w.overlapsBox(Vec(75, 50), 25, 25) {
		t.Fatal("box touching the wall edge must not overlap")
	}
	if !w.overlapsBox(Vec(76, 50), 25, 25) {
		t.Fatal("box crossing the wall edge must overlap")
	}
}
