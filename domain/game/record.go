// Package game holds the daily trivia content model: a dated title with an
// ordered list of exactly AnswerCount answers.
package game

import (
	"strings"
)

const (
	// AnswerCount is the number of answer slots on every daily board.
	AnswerCount = 10

	// MaxLives is the number of wrong guesses a player may make per board.
	MaxLives = 5
)

// Record is the unit of persisted content, keyed by its ISO date.
type Record struct {
	Date           string   `json:"date"`
	Title          string   `json:"title"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// Candidate is freshly extracted content that has not been assigned a date
// or persisted yet.
type Candidate struct {
	Title          string
	CorrectAnswers []string
}

// ForDate turns the candidate into a record for the given date. The answer
// slice is copied so the record does not alias the extractor's buffer.
func (c Candidate) ForDate(date string) *Record {
	answers := make([]string, len(c.CorrectAnswers))
	copy(answers, c.CorrectAnswers)
	return &Record{
		Date:           date,
		Title:          c.Title,
		CorrectAnswers: answers,
	}
}

// Complete reports whether the candidate has a non-empty title and exactly
// AnswerCount non-empty answers.
func (c Candidate) Complete() bool {
	if strings.TrimSpace(c.Title) == "" || len(c.CorrectAnswers) != AnswerCount {
		return false
	}
	for _, a := range c.CorrectAnswers {
		if strings.TrimSpace(a) == "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	answers := make([]string, len(r.CorrectAnswers))
	copy(answers, r.CorrectAnswers)
	return &Record{Date: r.Date, Title: r.Title, CorrectAnswers: answers}
}

// NormalizeAnswer folds a guess into the form used for comparison.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// MatchAnswer returns the slot index of the guess, or -1 when the guess is
// not one of the correct answers.
func (r *Record) MatchAnswer(guess string) int {
	g := NormalizeAnswer(guess)
	if g == "" {
		return -1
	}
	for i, a := range r.CorrectAnswers {
		if NormalizeAnswer(a) == g {
			return i
		}
	}
	return -1
}
