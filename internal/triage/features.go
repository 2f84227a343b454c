package triage

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// mentionPattern matches @-style username mentions anywhere in the text.
var mentionPattern = regexp.MustCompile(`@\w+`)

// questionPrefixes are lowercase openers that mark a message as a question
// even without a trailing question mark. English and Portuguese forms, since
// both appear in the chats this runs against.
var questionPrefixes = []string{
	"what", "when", "where", "why", "how", "who", "which",
	"is ", "are ", "do ", "does ", "can ", "could ", "would ",
	"will ", "should ", "have ", "has ", "did ",
	"que ", "qual ", "quem ", "quando ", "onde ", "como ",
	"por que", "você ", "vocês ",
}

// Features holds the signals extracted from a message's text.
type Features struct {
	HasMention bool
	IsQuestion bool
	TextLength int
}

// FeatureExtractor derives triage signals from raw message text.
// watchUsername, when non-empty, is additionally matched as a literal
// case-insensitive @mention (usernames with characters the generic pattern
// misses still count).
type FeatureExtractor struct {
	watchUsername string
}

// NewFeatureExtractor creates an extractor. watchUsername may be given with
// or without a leading @ and may be empty.
func NewFeatureExtractor(watchUsername string) *FeatureExtractor {
	return &FeatureExtractor{
		watchUsername: strings.ToLower(strings.TrimPrefix(watchUsername, "@")),
	}
}

// Extract computes the features of text. Length is counted in characters,
// not bytes.
func (e *FeatureExtractor) Extract(text string) Features {
	return Features{
		HasMention: e.hasMention(text),
		IsQuestion: isQuestion(text),
		TextLength: utf8.RuneCountInString(text),
	}
}

func (e *FeatureExtractor) hasMention(text string) bool {
	if mentionPattern.MatchString(text) {
		return true
	}
	if e.watchUsername == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), "@"+e.watchUsername)
}

func isQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
