package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_QuestionsHideAnswers(t *testing.T) {
	b := NewBank()
	qs := b.Questions()
	require.Len(t, qs, 4)
	assert.Equal(t, "What does P/E ratio stand for?", qs[0].Text)
	assert.Len(t, qs[2].Options, 4)

	// Mutating the returned view leaves the bank intact.
	qs[0].Options[0] = "changed"
	assert.Equal(t, "Price/Earnings", b.Questions()[0].Options[0])
}

func TestBank_Check(t *testing.T) {
	b := NewBank()

	res, err := b.Check(3, 3)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Contains(t, res.Explanation, "Large Cap")

	res, err = b.Check(2, 0)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.Answer)

	_, err = b.Check(99, 0)
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = b.Check(1, 4)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = b.Check(1, -1)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestBank_Grade(t *testing.T) {
	b := NewBank()

	score, err := b.Grade(map[int]int{1: 0, 2: 1, 3: 0})
	require.NoError(t, err)
	assert.Equal(t, Score{Correct: 2, Total: 4}, score)

	score, err = b.Grade(nil)
	require.NoError(t, err)
	assert.Equal(t, Score{Correct: 0, Total: 4}, score)

	_, err = b.Grade(map[int]int{7: 0})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}
