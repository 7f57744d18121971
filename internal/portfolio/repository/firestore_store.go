package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techinvestorai/techinvestor-backend/internal/portfolio/domain"
)

// FirestoreStore keeps portfolios in the users/{uid} documents.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, collection: domain.Collection, now: time.Now}
}

func (s *FirestoreStore) doc(userID string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(userID)
}

func (s *FirestoreStore) Get(ctx context.Context, userID string) (*domain.Document, error) {
	snap, err := s.doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	var doc domain.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	doc.UserID = userID
	if doc.Portfolio == nil {
		doc.Portfolio = []string{}
	}
	return &doc, nil
}

func (s *FirestoreStore) Set(ctx context.Context, doc *domain.Document) error {
	ref := s.doc(doc.UserID)
	portfolio := doc.Portfolio
	if portfolio == nil {
		portfolio = []string{}
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			createdAt := doc.CreatedAt
			if createdAt.IsZero() {
				createdAt = s.now()
			}
			return tx.Set(ref, map[string]interface{}{
				"name":      doc.Name,
				"email":     doc.Email,
				"createdAt": createdAt,
				"portfolio": portfolio,
			})
		case err != nil:
			return err
		}
		return tx.Set(ref, map[string]interface{}{
			"name":      doc.Name,
			"email":     doc.Email,
			"portfolio": portfolio,
		}, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("failed to set portfolio: %w", err)
	}
	return nil
}

// UnionAppend relies on Firestore's server-side array union, so
// concurrent appends to one document never lose a symbol. A missing
// document is created with createdAt, as Set does.
func (s *FirestoreStore) UnionAppend(ctx context.Context, userID, symbol string) error {
	ref := s.doc(userID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		fields := map[string]interface{}{
			"portfolio": firestore.ArrayUnion(symbol),
		}
		_, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			fields["createdAt"] = s.now()
		case err != nil:
			return err
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("failed to add symbol: %w", err)
	}
	return nil
}
