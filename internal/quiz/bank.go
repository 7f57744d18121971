// Package quiz serves the stock-knowledge quiz and grades answers
// server-side so the answer key never reaches the client up front.
package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidOption   = errors.New("invalid option")
)

type Question struct {
	ID          int
	Text        string
	Options     []string
	Answer      int
	Explanation string
}

// PublicQuestion is a question without its answer.
type PublicQuestion struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type CheckResult struct {
	Correct     bool   `json:"correct"`
	Answer      int    `json:"answer"`
	Explanation string `json:"explanation"`
}

type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

var defaultQuestions = []Question{
	{
		ID:          1,
		Text:        "What does P/E ratio stand for?",
		Options:     []string{"Price/Earnings", "Profit/Equity", "Price/Equity", "Performance/Earnings"},
		Answer:      0,
		Explanation: "The P/E ratio (Price-to-Earnings) shows how much investors are willing to pay for each dollar of a company's earnings.",
	},
	{
		ID:          2,
		Text:        "What is a dividend?",
		Options:     []string{"Company tax", "Profit distribution to shareholders", "Stock split", "Market capitalization measure"},
		Answer:      1,
		Explanation: "Dividends are portions of a company's profit that are paid out to shareholders as a reward for their investment.",
	},
	{
		ID:          3,
		Text:        "What is considered a high Market Cap?",
		Options:     []string{"Over $200 Million", "Over $2 Billion", "Over $10 Billion", "Over $100 Billion"},
		Answer:      3,
		Explanation: "Companies with market capitalization over $100 Billion are considered 'Large Cap' or 'Mega Cap' stocks.",
	},
	{
		ID:          4,
		Text:        "What is dollar-cost averaging?",
		Options:     []string{"Converting investments to USD", "Investing fixed amounts at regular intervals", "Measuring stock value in dollars", "Calculating average returns in dollars"},
		Answer:      1,
		Explanation: "Dollar-cost averaging is an investment strategy where you invest a fixed amount at regular intervals, regardless of share price.",
	},
}

// Bank is an immutable, ordered set of questions.
type Bank struct {
	questions []Question
	byID      map[int]int
}

// NewBank returns the built-in question bank.
func NewBank() *Bank {
	return NewBankFrom(defaultQuestions)
}

func NewBankFrom(questions []Question) *Bank {
	b := &Bank{
		questions: append([]Question(nil), questions...),
		byID:      make(map[int]int, len(questions)),
	}
	for i, q := range b.questions {
		b.byID[q.ID] = i
	}
	return b
}

func (b *Bank) Len() int { return len(b.questions) }

// Questions returns the questions in order, answers withheld.
func (b *Bank) Questions() []PublicQuestion {
	out := make([]PublicQuestion, 0, len(b.questions))
	for _, q := range b.questions {
		out = append(out, PublicQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		})
	}
	return out
}

// Check grades one answer.
func (b *Bank) Check(id, option int) (CheckResult, error) {
	i, ok := b.byID[id]
	if !ok {
		return CheckResult{}, fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}
	q := b.questions[i]
	if option < 0 || option >= len(q.Options) {
		return CheckResult{}, fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}
	return CheckResult{
		Correct:     option == q.Answer,
		Answer:      q.Answer,
		Explanation: q.Explanation,
	}, nil
}

// Grade scores a set of answers keyed by question id. Unanswered
// questions count as wrong; Total is always the bank size.
func (b *Bank) Grade(answers map[int]int) (Score, error) {
	score := Score{Total: len(b.questions)}
	for id, option := range answers {
		res, err := b.Check(id, option)
		if err != nil {
			return Score{}, err
		}
		if res.Correct {
			score.Correct++
		}
	}
	return score, nil
}
