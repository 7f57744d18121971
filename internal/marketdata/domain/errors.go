package domain

import "errors"

var (
	ErrEmptySymbol   = errors.New("Please enter a stock symbol")
	ErrEmptyQuestion = errors.New("Please enter a question")
	ErrAdvisorFailed = errors.New("Sorry, I couldn't process your question. Please try again.")
	ErrSourceFailed  = errors.New("Failed to load stock data")
)
