package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
)

var (
	ErrInvalidHole  = errors.New("hole number must be between 1 and 18")
	ErrInvalidScore = errors.New("score must be a positive whole number")
)

// ValidateHoleScore checks a score entry before it is sent anywhere
func ValidateHoleScore(hole, score int) error {
	if !models.ValidHole(hole) {
		return ErrInvalidHole
	}
	if score < 1 {
		return ErrInvalidScore
	}
	return nil
}

// ParseScore reads a score typed into a form
func ParseScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || score < 1 {
		return 0, ErrInvalidScore
	}
	return score, nil
}

// ParseHole reads a hole number from a form or query string
func ParseHole(raw string) (int, error) {
	hole, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !models.ValidHole(hole) {
		return 0, ErrInvalidHole
	}
	return hole, nil
}
