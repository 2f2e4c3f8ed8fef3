package domain

import (
	"fmt"
	"strings"
)

// Difficulty is the level a question set targets.
type Difficulty string

// Difficulty levels in progression order.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates s as a difficulty level, ignoring case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
}

// Next returns the level that follows d. Hard is followed by hard again:
// completing a hard set always asks for a fresh hard set.
func (d Difficulty) Next() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	case DifficultyMedium, DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyEasy
	}
}
