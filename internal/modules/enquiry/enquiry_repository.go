package enquiry

import (
	"context"
	"fmt"

	"alf-logistics/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const enquiriesCollection = "enquiries"

// RepositoryInterface defines the contract for the enquiry repository.
type RepositoryInterface interface {
	Insert(ctx context.Context, enq *models.Enquiry) (string, error)
	ListAll(ctx context.Context) ([]*models.Enquiry, error)
	MarkContacted(ctx context.Context, enquiryID string) error
	WatchAll(ctx context.Context) (<-chan []*models.Enquiry, func(), error)
}

// Repository implements RepositoryInterface against Firestore.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a new enquiry repository.
func NewRepository(client *firestore.Client) RepositoryInterface {
	return &Repository{client: client}
}

// Insert appends an enquiry and returns its generated id.
func (r *Repository) Insert(ctx context.Context, enq *models.Enquiry) (string, error) {
	ref, _, err := r.client.Collection(enquiriesCollection).Add(ctx, enq)
	if err != nil {
		return "", fmt.Errorf("repository.Insert: %w", err)
	}
	return ref.ID, nil
}

func collectEnquiries(iter *firestore.DocumentIterator) ([]*models.Enquiry, error) {
	defer iter.Stop()
	var out []*models.Enquiry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		enq := &models.Enquiry{}
		if err := doc.DataTo(enq); err != nil {
			return nil, fmt.Errorf("failed to decode enquiry: %w", err)
		}
		enq.ID = doc.Ref.ID
		out = append(out, enq)
	}
	return out, nil
}

// ListAll retrieves every enquiry, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Enquiry, error) {
	iter := r.client.Collection(enquiriesCollection).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	enquiries, err := collectEnquiries(iter)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAll: %w", err)
	}
	return enquiries, nil
}

// MarkContacted flips an enquiry to contacted and records when.
func (r *Repository) MarkContacted(ctx context.Context, enquiryID string) error {
	ref := r.client.Collection(enquiriesCollection).Doc(enquiryID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: models.EnquiryStatusContacted},
		{Path: "contactedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.MarkContacted: %w", err)
	}
	return nil
}

// WatchAll streams whole-list snapshots of the enquiry inbox, newest first.
func (r *Repository) WatchAll(ctx context.Context) (<-chan []*models.Enquiry, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := r.client.Collection(enquiriesCollection).
		OrderBy("timestamp", firestore.Desc).
		Snapshots(ctx)

	out := make(chan []*models.Enquiry, 1)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return
			}
			enquiries, err := collectEnquiries(snap.Documents)
			if err != nil {
				return
			}
			select {
			case out <- enquiries:
			default:
				select {
				case <-out:
				default:
				}
				out <- enquiries
			}
		}
	}()
	return out, cancel, nil
}
