package game

import (
	"strings"
	"testing"
)

func TestMatchLog_VerboseGate(t *testing.T) {
	quiet := NewMatchLog(false)
	quiet.AddVerbose(1, "alice", "move", "pose", "(1,1)", 0)
	if len(quiet.Entries()) != 0 {
		t.Fatal("verbose entry recorded in quiet log")
	}
	loud := NewMatchLog(true)
	loud.AddVerbose(1, "alice", "move", "pose", "(1,1)", 0)
	if len(loud.Entries()) != 1 {
		t.Fatal("verbose entry dropped in verbose log")
	}
}

func TestMatchLog_FilterAndRecent(t *testing.T) {
	ml := NewMatchLog(false)
	ml.Add(1, "alice", "fire", "shot", "ammo=4", 4)
	ml.Add(2, "bob", "fire", "shot", "ammo=4", 4)
	ml.Add(3, "bob", "bullet", "hit", "tank destroyed", 0)

	if got := ml.Count("fire", ""); got != 2 {
		t.Fatalf("fire entries = %d", got)
	}
	if got := len(ml.FilterPlayer("bob")); got != 2 {
		t.Fatalf("bob entries = %d", got)
	}
	last, ok := ml.LastOf("fire", "shot")
	if !ok || last.Player != "bob" {
		t.Fatalf("LastOf = %+v, %v", last, ok)
	}
	if r := ml.Recent(2); len(r) != 2 || r[0].Tick != 2 {
		t.Fatalf("Recent(2) = %+v", r)
	}
	if !ml.HasEntry("bullet", "hit", "destroyed") {
		t.Fatal("HasEntry missed the hit")
	}
	if !strings.Contains(ml.Format(), "[T=003] bob") {
		t.Fatalf("unexpected format:\n%s", ml.Format())
	}
}
