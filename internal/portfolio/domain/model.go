package domain

import (
	"strings"
	"time"
)

// Collection is the document-store collection holding one document per user.
const Collection = "users"

// Document is a user's portfolio document, keyed by user id.
type Document struct {
	UserID    string    `json:"user_id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	Portfolio []string  `json:"portfolio" firestore:"portfolio"`
}

// Normalize trims surrounding whitespace and upper-cases a ticker symbol.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
