package triage

// Scoring weights. The score of a message is the sum of the weights of the
// signals it carries; it is computed once at intake and never recomputed.
const (
	mentionWeight        = 3
	questionWeight       = 2
	longTextWeight       = 1
	prioritySenderWeight = 2

	// longTextThreshold is exclusive: the length bonus applies to messages
	// strictly longer than this many characters.
	longTextThreshold = 100
)

// ScoreInput holds the per-message signals that feed the priority score.
type ScoreInput struct {
	HasMention     bool
	IsQuestion     bool
	TextLength     int
	PrioritySender bool
}

// Score computes the priority score for a message from its signals.
func Score(in ScoreInput) int {
	score := 0
	if in.HasMention {
		score += mentionWeight
	}
	if in.IsQuestion {
		score += questionWeight
	}
	if in.TextLength > longTextThreshold {
		score += longTextWeight
	}
	if in.PrioritySender {
		score += prioritySenderWeight
	}
	return score
}
