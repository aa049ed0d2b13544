package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
		err      error
	}{
		{raw: "4", expected: 4},
		{raw: " 12 ", expected: 12},
		{raw: "0", err: ErrInvalidScore},
		{raw: "-1", err: ErrInvalidScore},
		{raw: "four", err: ErrInvalidScore},
		{raw: "3.5", err: ErrInvalidScore},
		{raw: "", err: ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			score, err := ParseScore(tt.raw)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestParseHole(t *testing.T) {
	hole, err := ParseHole("18")
	assert.NoError(t, err)
	assert.Equal(t, 18, hole)

	_, err = ParseHole("19")
	assert.ErrorIs(t, err, ErrInvalidHole)

	_, err = ParseHole("x")
	assert.ErrorIs(t, err, ErrInvalidHole)
}

func TestValidateHoleScore(t *testing.T) {
	assert.NoError(t, ValidateHoleScore(1, 1))
	assert.ErrorIs(t, ValidateHoleScore(0, 4), ErrInvalidHole)
	assert.ErrorIs(t, ValidateHoleScore(5, 0), ErrInvalidScore)
}
