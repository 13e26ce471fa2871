// Package meal defines the meal record, its validation rules and the
// typed failures shared by the catalogue store and its callers.
package meal

import "fmt"

// Difficulty is the preparation difficulty of a meal.
type Difficulty string

const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// Valid reports whether d is one of the recognized levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return true
	}
	return false
}

// ParseDifficulty returns the level named by s. Matching is exact.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", NewError(CodeInvalidArgument, fmt.Sprintf("invalid difficulty level: %s. Must be 'LOW', 'MED', or 'HIGH'", s))
	}
	return d, nil
}

// Outcome is the result of a battle for one meal.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// ParseOutcome returns the outcome named by s.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeWin, OutcomeLoss:
		return o, nil
	}
	return "", NewError(CodeInvalidArgument, fmt.Sprintf("invalid result: %s. Expected 'win' or 'loss'", s))
}

// SortKey selects the leaderboard ordering.
type SortKey string

const (
	SortByWins   SortKey = "wins"
	SortByWinPct SortKey = "win_pct"
)

// ParseSortKey returns the sort key named by s.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByWins, SortByWinPct:
		return k, nil
	}
	return "", NewError(CodeInvalidArgument, fmt.Sprintf("invalid sort_by parameter: %s", s))
}

// Meal is the public projection of a catalogue row. Statistics are not
// part of it; see LeaderboardEntry.
type Meal struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
}

// NewMeal builds a Meal, enforcing the stored-record invariants:
// price must be non-negative and difficulty a recognized level.
func NewMeal(id int64, name, cuisine string, price float64, difficulty string) (Meal, error) {
	if price < 0 {
		return Meal{}, NewError(CodeInvalidArgument, "price must be a positive value")
	}
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		return Meal{}, err
	}
	return Meal{
		ID:         id,
		Name:       name,
		Cuisine:    cuisine,
		Price:      price,
		Difficulty: d,
	}, nil
}

// ValidateNew checks the creation precondition, which is stricter than
// the stored invariant: price must be strictly positive.
func ValidateNew(price float64, difficulty string) error {
	if !(price > 0) {
		return NewError(CodeInvalidArgument, fmt.Sprintf("invalid price: %v. Price must be a positive number", price))
	}
	_, err := ParseDifficulty(difficulty)
	return err
}

// LeaderboardEntry is one ranked row of the leaderboard.
// WinPct is a percentage rounded to one decimal place.
type LeaderboardEntry struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Battles    int64      `json:"battles"`
	Wins       int64      `json:"wins"`
	WinPct     float64    `json:"win_pct"`
}
