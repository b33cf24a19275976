package main

import (
	"errors"
	"testing"

	"github.com/Garsondee/Tank-Arena/internal/game"
	"github.com/Garsondee/Tank-Arena/internal/match"
)

func win(name string) game.Outcome {
	return game.Outcome{Result: game.ResultWin, Winner: &game.Player{Name: name}}
}

func TestWinnerCounts(t *testing.T) {
	all := []runStats{
		{res: match.Result{HostOutcome: win("host-bot")}},
		{res: match.Result{HostOutcome: win("host-bot")}},
		{res: match.Result{HostOutcome: win("guest-bot")}},
		{res: match.Result{HostOutcome: game.Outcome{Result: game.ResultDraw}}},
		{res: match.Result{}},
		{err: errors.New("boom")},
	}

	wins, draws, undecided := winnerCounts(all)
	if wins["host-bot"] != 2 || wins["guest-bot"] != 1 {
		t.Fatalf("expected host-bot=2 guest-bot=1, got %v", wins)
	}
	if draws != 1 || undecided != 2 {
		t.Fatalf("expected draws=1 undecided=2, got draws=%d undecided=%d", draws, undecided)
	}
}

func TestDisagreements_ReportsMismatchedSeeds(t *testing.T) {
	all := []runStats{
		{res: match.Result{Seed: 1, HostOutcome: win("a"), GuestOutcome: win("a")}},
		{res: match.Result{Seed: 2, HostOutcome: win("a"), GuestOutcome: win("b")}},
		{res: match.Result{Seed: 3, HostOutcome: win("a"), GuestOutcome: game.Outcome{}}},
		{res: match.Result{Seed: 4}, err: errors.New("handshake")},
	}

	seeds := disagreements(all)
	if len(seeds) != 2 || seeds[0] != 2 || seeds[1] != 3 {
		t.Fatalf("expected disagreements at seeds [2 3], got %v", seeds)
	}
}

func TestJoinCounts_Sorted(t *testing.T) {
	got := joinCounts(map[string]int{"zed": 1, "amy": 3})
	if got != "amy=3 zed=1" {
		t.Fatalf("unexpected join: %q", got)
	}
	if joinCounts(nil) != "-" {
		t.Fatal("empty counts should render as -")
	}
}
