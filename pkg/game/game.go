// Package game implements the counting game rules: members take turns
// posting the next integer, nobody counts twice in a row, and any slip
// resets the run to zero. Process is a pure function so the bot can
// replay history through it and tests need no fakes.
package game

// Outcome classifies what a submission did to the game.
type Outcome int

const (
	// Ignored means the message did not contain a number; the state is
	// untouched.
	Ignored Outcome = iota
	// Accepted means the count advanced.
	Accepted
	// WrongNumber means the value was not the expected next number.
	WrongNumber
	// DoubleCount means the value was right but the same user counted
	// twice in a row.
	DoubleCount
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Accepted:
		return "accepted"
	case WrongNumber:
		return "wrong number"
	case DoubleCount:
		return "double count"
	}
	return "unknown"
}

// State is the per-channel game state. The zero value is a fresh game.
type State struct {
	Count        int64
	LastUserID   string
	HighScore    int64
	HighScorerID string
}

// Submission is one candidate message from a participant.
type Submission struct {
	UserID  string
	Content string
}

// Options tune how submissions are judged.
type Options struct {
	// Extreme widens parsing to numbers embedded anywhere in the message
	// and lets milestone values be counted twice in a row.
	Extreme bool
}

// Result reports how a submission was judged.
type Result struct {
	Outcome  Outcome
	Value    int64 // parsed number; meaningless when Ignored
	Expected int64 // the number that was expected
	// NewRecord is set when an accepted count beats the high score.
	NewRecord bool
	// Milestone is set when the parsed value is a celebrated number.
	Milestone bool
}

// Process applies one submission to the state and returns the next state.
// It performs no I/O and reads no clocks; callers own persistence and
// per-channel serialization.
func Process(s State, sub Submission, opts Options) (State, Result) {
	expected := s.Count + 1

	val, ok := ParseCount(sub.Content, opts.Extreme)
	if !ok {
		return s, Result{Outcome: Ignored, Expected: expected}
	}

	res := Result{Value: val, Expected: expected, Milestone: IsMilestone(val)}

	if val != expected {
		res.Outcome = WrongNumber
		return reset(s), res
	}

	if s.LastUserID != "" && sub.UserID == s.LastUserID && !(opts.Extreme && res.Milestone) {
		res.Outcome = DoubleCount
		return reset(s), res
	}

	res.Outcome = Accepted
	next := State{
		Count:        val,
		LastUserID:   sub.UserID,
		HighScore:    s.HighScore,
		HighScorerID: s.HighScorerID,
	}
	if val > next.HighScore {
		next.HighScore = val
		next.HighScorerID = sub.UserID
		res.NewRecord = true
	}
	return next, res
}

// reset clears the running count but keeps the best run on record.
func reset(s State) State {
	hs, holder := s.HighScore, s.HighScorerID
	if s.Count > hs {
		hs = s.Count
		holder = s.LastUserID
	}
	return State{HighScore: hs, HighScorerID: holder}
}
