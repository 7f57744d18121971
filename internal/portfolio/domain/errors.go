package domain

import "errors"

// The messages of the first group are shown to the user verbatim.
var (
	ErrNotAuthenticated = errors.New("Please login to add stocks to your portfolio")
	ErrEmailNotVerified = errors.New("Please verify your email before adding stocks")
	ErrEmptySymbol      = errors.New("Please enter a stock symbol")
	ErrAddFailed        = errors.New("Error adding stock to portfolio")
	ErrLoadFailed       = errors.New("Failed to load your portfolio")
)

var (
	ErrDocumentNotFound = errors.New("portfolio document not found")
	ErrDocumentExists   = errors.New("portfolio document already exists")
)
