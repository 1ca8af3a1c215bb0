// Package firebase wires up the hosted document backend.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Clients bundles the backend handles shared by all repositories.
type Clients struct {
	Firestore *firestore.Client
}

// New connects to the Firebase project using a service-account credentials
// file. The caller owns the Firestore client and must Close it on shutdown.
func New(ctx context.Context, projectID, credentialsFile string) (*Clients, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase.New: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase.New: firestore: %w", err)
	}

	return &Clients{Firestore: fs}, nil
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	return c.Firestore.Close()
}
