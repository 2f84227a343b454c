package triage

import "testing"

func TestScoreSignalGrid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ScoreInput
		want int
	}{
		{"nothing", ScoreInput{}, 0},
		{"mention only", ScoreInput{HasMention: true}, 3},
		{"question only", ScoreInput{IsQuestion: true}, 2},
		{"long only", ScoreInput{TextLength: 101}, 1},
		{"priority sender only", ScoreInput{PrioritySender: true}, 2},
		{"mention and question", ScoreInput{HasMention: true, IsQuestion: true}, 5},
		{"mention and long", ScoreInput{HasMention: true, TextLength: 101}, 4},
		{"mention and priority", ScoreInput{HasMention: true, PrioritySender: true}, 5},
		{"question and long", ScoreInput{IsQuestion: true, TextLength: 101}, 3},
		{"question and priority", ScoreInput{IsQuestion: true, PrioritySender: true}, 4},
		{"long and priority", ScoreInput{TextLength: 101, PrioritySender: true}, 3},
		{"mention question long", ScoreInput{HasMention: true, IsQuestion: true, TextLength: 101}, 6},
		{"mention question priority", ScoreInput{HasMention: true, IsQuestion: true, PrioritySender: true}, 7},
		{"mention long priority", ScoreInput{HasMention: true, TextLength: 101, PrioritySender: true}, 6},
		{"question long priority", ScoreInput{IsQuestion: true, TextLength: 101, PrioritySender: true}, 5},
		{"everything", ScoreInput{HasMention: true, IsQuestion: true, TextLength: 101, PrioritySender: true}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Score(tt.in); got != tt.want {
				t.Errorf("Score(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreLengthBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length int
		want   int
	}{
		{99, 0},
		{100, 0}, // threshold is exclusive
		{101, 1},
	}

	for _, tt := range tests {
		if got := Score(ScoreInput{TextLength: tt.length}); got != tt.want {
			t.Errorf("Score(length=%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}
