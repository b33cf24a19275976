package game

import "fmt"

type MatchResult int

const (
	ResultUndecided MatchResult = iota
	ResultWin
	ResultDraw
)

func (r MatchResult) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultDraw:
		return "draw"
	case ResultUndecided:
		return "undecided"
	default:
		return "unknown"
	}
}

// Outcome describes how a match ended. Winner is nil unless Result is
// ResultWin.
type Outcome struct {
	Result MatchResult
	Winner *Player
	Tick   int
}

// Description is a one-line human readable summary.
func (o Outcome) Description() string {
	switch o.Result {
	case ResultWin:
		return fmt.Sprintf("%s wins", o.Winner.Name)
	case ResultDraw:
		return "draw"
	default:
		return "match in progress"
	}
}

// determineOutcome inspects the surviving players. Matches are decided only
// when fewer than two remain.
func determineOutcome(alive []*Player, tick int) Outcome {
	switch len(alive) {
	case 0:
		return Outcome{Result: ResultDraw, Tick: tick}
	case 1:
		return Outcome{Result: ResultWin, Winner: alive[0], Tick: tick}
	default:
		return Outcome{Result: ResultUndecided, Tick: tick}
	}
}
