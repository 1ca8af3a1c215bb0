package feedback

import (
	"context"
	"fmt"

	"alf-logistics/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	linksCollection    = "feedbackLinks"
	feedbackCollection = "feedback"
)

// RepositoryInterface defines the contract for the feedback repository.
type RepositoryInterface interface {
	CreateLink(ctx context.Context, link *models.FeedbackLink) error
	GetLink(ctx context.Context, token string) (*models.FeedbackLink, error)
	ExpireLink(ctx context.Context, token string) error
	Insert(ctx context.Context, fb *models.Feedback) (string, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*models.Feedback, error)
	ListAll(ctx context.Context) ([]*models.Feedback, error)
	WatchAll(ctx context.Context) (<-chan []*models.Feedback, func(), error)
}

// Repository implements RepositoryInterface against Firestore.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a new feedback repository.
func NewRepository(client *firestore.Client) RepositoryInterface {
	return &Repository{client: client}
}

// CreateLink stores a link under its token so resolution is a single
// document read.
func (r *Repository) CreateLink(ctx context.Context, link *models.FeedbackLink) error {
	ref := r.client.Collection(linksCollection).Doc(link.Token)
	if _, err := ref.Set(ctx, link); err != nil {
		return fmt.Errorf("repository.CreateLink: %w", err)
	}
	return nil
}

func (r *Repository) GetLink(ctx context.Context, token string) (*models.FeedbackLink, error) {
	doc, err := r.client.Collection(linksCollection).Doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.GetLink: %w", err)
	}
	link := &models.FeedbackLink{}
	if err := doc.DataTo(link); err != nil {
		return nil, fmt.Errorf("repository.GetLink: decode: %w", err)
	}
	link.Token = doc.Ref.ID
	return link, nil
}

// ExpireLink flips a link to expired. The document is kept as an audit
// record, never deleted.
func (r *Repository) ExpireLink(ctx context.Context, token string) error {
	_, err := r.client.Collection(linksCollection).Doc(token).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.LinkStatusExpired},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.ExpireLink: %w", err)
	}
	return nil
}

// Insert appends a feedback entry and returns its generated id.
func (r *Repository) Insert(ctx context.Context, fb *models.Feedback) (string, error) {
	ref, _, err := r.client.Collection(feedbackCollection).Add(ctx, fb)
	if err != nil {
		return "", fmt.Errorf("repository.Insert: %w", err)
	}
	return ref.ID, nil
}

func (r *Repository) collectFeedback(iter *firestore.DocumentIterator) ([]*models.Feedback, error) {
	defer iter.Stop()
	var out []*models.Feedback
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		fb := &models.Feedback{}
		if err := doc.DataTo(fb); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
		fb.ID = doc.Ref.ID
		out = append(out, fb)
	}
	return out, nil
}

func (r *Repository) ListByOrderID(ctx context.Context, orderID string) ([]*models.Feedback, error) {
	iter := r.client.Collection(feedbackCollection).
		Where("orderId", "==", orderID).
		Documents(ctx)
	entries, err := r.collectFeedback(iter)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByOrderID: %w", err)
	}
	return entries, nil
}

// ListAll retrieves every feedback entry, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Feedback, error) {
	iter := r.client.Collection(feedbackCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	entries, err := r.collectFeedback(iter)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAll: %w", err)
	}
	return entries, nil
}

// WatchAll streams whole-list snapshots of the feedback collection for the
// admin dashboard. Each send replaces the previous snapshot.
func (r *Repository) WatchAll(ctx context.Context) (<-chan []*models.Feedback, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := r.client.Collection(feedbackCollection).
		OrderBy("createdAt", firestore.Desc).
		Snapshots(ctx)

	out := make(chan []*models.Feedback, 1)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return
			}
			entries, err := r.collectFeedback(snap.Documents)
			if err != nil {
				return
			}
			select {
			case out <- entries:
			default:
				select {
				case <-out:
				default:
				}
				out <- entries
			}
		}
	}()
	return out, cancel, nil
}
