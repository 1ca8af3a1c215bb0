package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const adminsCollection = "admins"

// Repository implements AdminChecker against Firestore: a user is an admin
// when a document exists under admins/{uid}.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a new admin allow-list repository.
func NewRepository(client *firestore.Client) AdminChecker {
	return &Repository{client: client}
}

func (r *Repository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	doc, err := r.client.Collection(adminsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("repository.IsAdmin: %w", err)
	}
	return doc.Exists(), nil
}
