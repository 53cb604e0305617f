package game

import "testing"

func TestProcess(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		user    string
		content string
		opts    Options
		want    Outcome
		wantSt  State
	}{
		{
			name:    "accepted",
			state:   State{Count: 5, LastUserID: "A", HighScore: 10, HighScorerID: "C"},
			user:    "B",
			content: "6",
			want:    Accepted,
			wantSt:  State{Count: 6, LastUserID: "B", HighScore: 10, HighScorerID: "C"},
		},
		{
			name:    "first count of a fresh game",
			state:   State{},
			user:    "A",
			content: "1",
			want:    Accepted,
			wantSt:  State{Count: 1, LastUserID: "A", HighScore: 1, HighScorerID: "A"},
		},
		{
			name:    "wrong number resets and keeps best run",
			state:   State{Count: 5, LastUserID: "A"},
			user:    "B",
			content: "7",
			want:    WrongNumber,
			wantSt:  State{HighScore: 5, HighScorerID: "A"},
		},
		{
			name:    "wrong number by the last counter",
			state:   State{Count: 5, LastUserID: "A"},
			user:    "A",
			content: "9",
			want:    WrongNumber,
			wantSt:  State{HighScore: 5, HighScorerID: "A"},
		},
		{
			name:    "double count resets even though the value was right",
			state:   State{Count: 5, LastUserID: "A"},
			user:    "A",
			content: "6",
			want:    DoubleCount,
			wantSt:  State{HighScore: 5, HighScorerID: "A"},
		},
		{
			name:    "non-numeric is ignored",
			state:   State{Count: 3, LastUserID: "A", HighScore: 8},
			user:    "B",
			content: "banana",
			want:    Ignored,
			wantSt:  State{Count: 3, LastUserID: "A", HighScore: 8},
		},
		{
			name:    "reset does not lower an existing high score",
			state:   State{Count: 2, LastUserID: "A", HighScore: 50, HighScorerID: "C"},
			user:    "B",
			content: "99",
			want:    WrongNumber,
			wantSt:  State{HighScore: 50, HighScorerID: "C"},
		},
		{
			name:    "zero is never the expected number",
			state:   State{},
			user:    "A",
			content: "0",
			want:    WrongNumber,
			wantSt:  State{},
		},
		{
			name:    "negative value is wrong, not ignored",
			state:   State{Count: 5, LastUserID: "A"},
			user:    "B",
			content: "-6",
			want:    WrongNumber,
			wantSt:  State{HighScore: 5, HighScorerID: "A"},
		},
		{
			name:    "extreme milestone may be double counted",
			state:   State{Count: 68, LastUserID: "A", HighScore: 68, HighScorerID: "A"},
			user:    "A",
			content: "69",
			opts:    Options{Extreme: true},
			want:    Accepted,
			wantSt:  State{Count: 69, LastUserID: "A", HighScore: 69, HighScorerID: "A"},
		},
		{
			name:    "non-milestone double count still resets in extreme mode",
			state:   State{Count: 67, LastUserID: "A", HighScore: 67, HighScorerID: "A"},
			user:    "A",
			content: "68",
			opts:    Options{Extreme: true},
			want:    DoubleCount,
			wantSt:  State{HighScore: 67, HighScorerID: "A"},
		},
		{
			name:    "milestone double count resets outside extreme mode",
			state:   State{Count: 68, LastUserID: "A", HighScore: 68, HighScorerID: "A"},
			user:    "A",
			content: "69",
			want:    DoubleCount,
			wantSt:  State{HighScore: 68, HighScorerID: "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res := Process(tt.state, Submission{UserID: tt.user, Content: tt.content}, tt.opts)
			if res.Outcome != tt.want {
				t.Errorf("outcome = %v, want %v", res.Outcome, tt.want)
			}
			if got != tt.wantSt {
				t.Errorf("state = %+v, want %+v", got, tt.wantSt)
			}
		})
	}
}

func TestProcessResultDetails(t *testing.T) {
	st := State{Count: 5, LastUserID: "A", HighScore: 5, HighScorerID: "A"}

	next, res := Process(st, Submission{UserID: "B", Content: "6"}, Options{})
	if !res.NewRecord {
		t.Error("expected NewRecord when beating the high score")
	}
	if res.Value != 6 || res.Expected != 6 {
		t.Errorf("Value/Expected = %d/%d, want 6/6", res.Value, res.Expected)
	}

	_, res = Process(next, Submission{UserID: "A", Content: "8"}, Options{})
	if res.Outcome != WrongNumber || res.Expected != 7 {
		t.Errorf("got %v expected=%d, want wrong number expected=7", res.Outcome, res.Expected)
	}
}

// The high score only ever goes up, whatever sequence of resets happens.
func TestHighScoreMonotonic(t *testing.T) {
	var st State
	high := int64(0)

	script := []struct {
		user    string
		content string
	}{
		{"A", "1"}, {"B", "2"}, {"A", "3"},
		{"B", "nope"}, {"B", "5"}, // wrong, reset at 3
		{"A", "1"}, {"B", "2"},
		{"B", "3"}, // double count, reset at 2
		{"A", "1"},
	}
	for _, step := range script {
		st, _ = Process(st, Submission{UserID: step.user, Content: step.content}, Options{})
		if st.HighScore < high {
			t.Fatalf("high score dropped from %d to %d", high, st.HighScore)
		}
		high = st.HighScore
	}
	if high != 3 {
		t.Errorf("final high score = %d, want 3", high)
	}
}

func TestIgnoredNeverMutates(t *testing.T) {
	states := []State{
		{},
		{Count: 7, LastUserID: "A", HighScore: 12, HighScorerID: "B"},
	}
	for _, st := range states {
		for _, content := range []string{"", "hello", "1.5", "+3", "one"} {
			got, res := Process(st, Submission{UserID: "X", Content: content}, Options{})
			if res.Outcome != Ignored {
				t.Errorf("Process(%+v, %q) outcome = %v, want Ignored", st, content, res.Outcome)
			}
			if got != st {
				t.Errorf("Process(%+v, %q) mutated state to %+v", st, content, got)
			}
		}
	}
}
