package orders

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
	ordersCollection   = "orders"
	countersCollection = "counters"
	orderCounterDoc    = "orderCounter"

	// publicMirrorPath is the sub-document holding the sanitized projection
	// readable without authentication: orders/{id}/public/info.
	publicCollection = "public"
	publicInfoDoc    = "info"

	// orderNumberBase keeps assigned numbers at five digits.
	orderNumberBase = 10000
)

// prefixEnd closes a prefix range query; U+F8FF sorts after every code
// point that can appear in a customer name.
const prefixEnd = "\uf8ff"

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	SearchByCustomerPrefix(ctx context.Context, prefix string) ([]*models.Order, error)
	SearchByID(ctx context.Context, orderID string) ([]*models.Order, error)
	Delete(ctx context.Context, orderID string) error
	MarkDelivered(ctx context.Context, orderID string) error
	NextOrderNumber(ctx context.Context) (int, error)
	AppendCheckpoint(ctx context.Context, orderID string, cp models.Checkpoint) error
	AppendCheckpointSerialized(ctx context.Context, orderID string, cp models.Checkpoint) error
	SetPublicMirror(ctx context.Context, orderID string, pub *models.PublicOrder) error
	GetPublicMirror(ctx context.Context, orderID string) (*models.PublicOrder, error)
	WatchOrders(ctx context.Context) (<-chan []*models.Order, func(), error)
	WatchOrder(ctx context.Context, orderID string) (<-chan *models.Order, func(), error)
	WatchPublicMirror(ctx context.Context, orderID string) (<-chan *models.PublicOrder, func(), error)
}

// Repository implements RepositoryInterface against Firestore.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a new order repository.
func NewRepository(client *firestore.Client) RepositoryInterface {
	return &Repository{client: client}
}

func (r *Repository) orderRef(orderID string) *firestore.DocumentRef {
	return r.client.Collection(ordersCollection).Doc(orderID)
}

func (r *Repository) mirrorRef(orderID string) *firestore.DocumentRef {
	return r.orderRef(orderID).Collection(publicCollection).Doc(publicInfoDoc)
}

// Create writes a new order under its client-supplied id.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if _, err := r.orderRef(order.ID).Set(ctx, order); err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func decodeOrder(doc *firestore.DocumentSnapshot) (*models.Order, error) {
	order := &models.Order{}
	if err := doc.DataTo(order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if order.ID == "" {
		order.ID = doc.Ref.ID
	}
	return order, nil
}

// GetByID retrieves a single canonical order by its document id.
func (r *Repository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	doc, err := r.orderRef(orderID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.GetByID: %w", err)
	}
	return decodeOrder(doc)
}

func (r *Repository) collectOrders(iter *firestore.DocumentIterator) ([]*models.Order, error) {
	defer iter.Stop()
	var out []*models.Order
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

// ListAll retrieves every order, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Order, error) {
	iter := r.client.Collection(ordersCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	orders, err := r.collectOrders(iter)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAll: %w", err)
	}
	return orders, nil
}

// SearchByCustomerPrefix matches customers case-insensitively on the
// precomputed customerLower field, then falls back to a case-sensitive
// prefix match on the display name for legacy records written before the
// lowercase field existed. Results are merged and deduped by document id.
func (r *Repository) SearchByCustomerPrefix(ctx context.Context, prefix string) ([]*models.Order, error) {
	lower := r.client.Collection(ordersCollection).
		Where("customerLower", ">=", prefix).
		Where("customerLower", "<=", prefix+prefixEnd).
		Documents(ctx)
	primary, err := r.collectOrders(lower)
	if err != nil {
		return nil, fmt.Errorf("repository.SearchByCustomerPrefix: %w", err)
	}

	legacy := r.client.Collection(ordersCollection).
		Where("customer", ">=", prefix).
		Where("customer", "<=", prefix+prefixEnd).
		Documents(ctx)
	fallback, err := r.collectOrders(legacy)
	if err != nil {
		return nil, fmt.Errorf("repository.SearchByCustomerPrefix: legacy: %w", err)
	}

	seen := make(map[string]struct{}, len(primary))
	for _, o := range primary {
		seen[o.ID] = struct{}{}
	}
	for _, o := range fallback {
		if _, dup := seen[o.ID]; !dup {
			primary = append(primary, o)
		}
	}
	return primary, nil
}

// SearchByID matches orders whose stored id field equals the query.
func (r *Repository) SearchByID(ctx context.Context, orderID string) ([]*models.Order, error) {
	iter := r.client.Collection(ordersCollection).
		Where("id", "==", orderID).
		Documents(ctx)
	orders, err := r.collectOrders(iter)
	if err != nil {
		return nil, fmt.Errorf("repository.SearchByID: %w", err)
	}
	return orders, nil
}

// Delete removes the canonical order and its public mirror. Terminal and
// irreversible.
func (r *Repository) Delete(ctx context.Context, orderID string) error {
	if _, err := r.mirrorRef(orderID).Delete(ctx); err != nil {
		return fmt.Errorf("repository.Delete: mirror: %w", err)
	}
	if _, err := r.orderRef(orderID).Delete(ctx); err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	return nil
}

// MarkDelivered flips the order to its terminal status. deliveredAt is
// assigned by the backend at write time.
func (r *Repository) MarkDelivered(ctx context.Context, orderID string) error {
	_, err := r.orderRef(orderID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.OrderStatusDelivered},
		{Path: "deliveredAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.MarkDelivered: %w", err)
	}
	return nil
}

// NextOrderNumber assigns the next order number through a single atomic
// read-modify-write on the counter document. Never read-then-write across
// two calls: two concurrent creations must not receive the same number.
func (r *Repository) NextOrderNumber(ctx context.Context) (int, error) {
	ref := r.client.Collection(countersCollection).Doc(orderCounterDoc)
	var next int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next = orderNumberBase
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil && doc.Exists() {
			var counter struct {
				Count int `firestore:"count"`
			}
			if err := doc.DataTo(&counter); err != nil {
				return err
			}
			if counter.Count >= orderNumberBase {
				next = counter.Count + 1
			}
		}
		return tx.Set(ref, map[string]interface{}{"count": next})
	})
	if err != nil {
		return 0, fmt.Errorf("repository.NextOrderNumber: %w", err)
	}
	return next, nil
}

// AppendCheckpoint appends a timeline entry using the backend's atomic
// array-union primitive.
func (r *Repository) AppendCheckpoint(ctx context.Context, orderID string, cp models.Checkpoint) error {
	_, err := r.orderRef(orderID).Update(ctx, []firestore.Update{
		{Path: "checkpoints", Value: firestore.ArrayUnion(cp)},
	})
	if err != nil {
		return fmt.Errorf("repository.AppendCheckpoint: %w", err)
	}
	return nil
}

// AppendCheckpointSerialized is the fallback append: a full read-modify-write
// inside a transaction, so concurrent appends are never lost. The backend
// retries the transaction internally on contention.
func (r *Repository) AppendCheckpointSerialized(ctx context.Context, orderID string, cp models.Checkpoint) error {
	ref := r.orderRef(orderID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		order := &models.Order{}
		if err := doc.DataTo(order); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "checkpoints", Value: append(order.Checkpoints, cp)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.AppendCheckpointSerialized: %w", err)
	}
	return nil
}

// SetPublicMirror upserts the sanitized projection of an order.
func (r *Repository) SetPublicMirror(ctx context.Context, orderID string, pub *models.PublicOrder) error {
	if _, err := r.mirrorRef(orderID).Set(ctx, pub); err != nil {
		return fmt.Errorf("repository.SetPublicMirror: %w", err)
	}
	return nil
}

// GetPublicMirror reads the sanitized projection.
func (r *Repository) GetPublicMirror(ctx context.Context, orderID string) (*models.PublicOrder, error) {
	doc, err := r.mirrorRef(orderID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.GetPublicMirror: %w", err)
	}
	pub := &models.PublicOrder{}
	if err := doc.DataTo(pub); err != nil {
		return nil, fmt.Errorf("repository.GetPublicMirror: decode: %w", err)
	}
	return pub, nil
}

// sendLatest replaces any undelivered snapshot so a slow consumer always
// observes the most recent state. Snapshots replace, they do not diff.
func sendLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// WatchOrders streams whole-list snapshots, newest order first, until the
// returned cancel func is called. The channel closes when the stream ends.
func (r *Repository) WatchOrders(ctx context.Context) (<-chan []*models.Order, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := r.client.Collection(ordersCollection).
		OrderBy("createdAt", firestore.Desc).
		Snapshots(ctx)

	out := make(chan []*models.Order, 1)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				return
			}
			orders, err := r.collectOrders(snap.Documents)
			if err != nil {
				return
			}
			sendLatest(out, orders)
		}
	}()
	return out, cancel, nil
}

// WatchOrder streams single-document snapshots. A nil snapshot means the
// order does not exist (or was deleted).
func (r *Repository) WatchOrder(ctx context.Context, orderID string) (<-chan *models.Order, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := r.orderRef(orderID).Snapshots(ctx)

	out := make(chan *models.Order, 1)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			doc, err := snaps.Next()
			if err != nil {
				return
			}
			if !doc.Exists() {
				sendLatest(out, nil)
				continue
			}
			order, err := decodeOrder(doc)
			if err != nil {
				return
			}
			sendLatest(out, order)
		}
	}()
	return out, cancel, nil
}

// WatchPublicMirror streams the sanitized projection for the share view.
func (r *Repository) WatchPublicMirror(ctx context.Context, orderID string) (<-chan *models.PublicOrder, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := r.mirrorRef(orderID).Snapshots(ctx)

	out := make(chan *models.PublicOrder, 1)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			doc, err := snaps.Next()
			if err != nil {
				return
			}
			if !doc.Exists() {
				sendLatest(out, (*models.PublicOrder)(nil))
				continue
			}
			pub := &models.PublicOrder{}
			if err := doc.DataTo(pub); err != nil {
				return
			}
			sendLatest(out, pub)
		}
	}()
	return out, cancel, nil
}
