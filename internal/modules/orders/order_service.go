package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"alf-logistics/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	createdCheckpointText   = "Order created"
	deliveredCheckpointText = "Order delivered successfully"
)

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	SearchOrders(ctx context.Context, searchType, query string) ([]*models.Order, error)
	AddCheckpoint(ctx context.Context, orderID string, req models.AddCheckpointRequest) (*models.Checkpoint, error)
	MarkDelivered(ctx context.Context, orderID string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetPublicOrder(ctx context.Context, orderID string) (*models.PublicOrder, error)
	WatchOrders(ctx context.Context) (<-chan []*models.Order, func(), error)
	WatchOrder(ctx context.Context, orderID string) (<-chan *models.Order, func(), error)
	WatchPublicOrder(ctx context.Context, orderID string) (<-chan *models.PublicOrder, func(), error)
}

// Service implements the order lifecycle: creation with race-free numbering,
// checkpoint appends, the delivered transition, and public mirror upkeep.
type Service struct {
	repo   RepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) newCheckpoint(text string) models.Checkpoint {
	return models.Checkpoint{
		ID:   "cp-" + uuid.NewString(),
		Text: text,
		Time: s.now().UTC().Format(time.RFC3339),
	}
}

// fallbackOrderNumber derives a pseudo-unique five-digit number from
// wall-clock time. Collisions are possible under sustained contention; this
// is the accepted degraded path when the counter transaction fails.
func fallbackOrderNumber(now time.Time) int {
	return orderNumberBase + int(now.UnixMilli()%90000)
}

// CreateOrder assigns the next order number, writes the canonical order with
// its initial checkpoint, and seeds the public mirror.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	num, err := s.repo.NextOrderNumber(ctx)
	if err != nil {
		num = fallbackOrderNumber(s.now())
		s.logger.Warn("order counter transaction failed, using time-derived number",
			zap.Int("orderNumber", num), zap.Error(err))
	}

	order := &models.Order{
		ID:          models.OrderIDPrefix + strconv.Itoa(num),
		OrderNumber: num,
		Customer:    strings.TrimSpace(req.Customer),
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
		Items:       strings.TrimSpace(req.Items),
		Status:      models.OrderStatusActive,
		Checkpoints: []models.Checkpoint{s.newCheckpoint(createdCheckpointText)},
	}
	order.NormalizeCustomer()

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("service.CreateOrder: %w", err)
	}

	s.syncMirror(ctx, order.ID)
	return s.repo.GetByID(ctx, order.ID)
}

// GetOrder retrieves an order for the admin detail view and opportunistically
// re-syncs the public mirror as a self-healing backfill.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPublicMirror(ctx, orderID, order.PublicView()); err != nil {
		s.logger.Warn("public mirror backfill failed", zap.String("orderID", orderID), zap.Error(err))
	}
	return order, nil
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return s.repo.ListAll(ctx)
}

// SearchOrders dispatches on the admin search type: case-insensitive
// customer-name prefix, or exact order id.
func (s *Service) SearchOrders(ctx context.Context, searchType, query string) ([]*models.Order, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.ListAll(ctx)
	}
	switch searchType {
	case models.SearchByID:
		return s.repo.SearchByID(ctx, query)
	default:
		return s.repo.SearchByCustomerPrefix(ctx, strings.ToLower(query))
	}
}

// appendCheckpoint prefers the backend's atomic array append and falls back
// to the serialized read-modify-write transaction on any error, so
// concurrent admin appends are never lost.
func (s *Service) appendCheckpoint(ctx context.Context, orderID string, cp models.Checkpoint) error {
	if err := s.repo.AppendCheckpoint(ctx, orderID, cp); err != nil {
		s.logger.Debug("atomic checkpoint append failed, falling back to transaction",
			zap.String("orderID", orderID), zap.Error(err))
		return s.repo.AppendCheckpointSerialized(ctx, orderID, cp)
	}
	return nil
}

// AddCheckpoint appends a timeline entry to an active order and re-syncs the
// public mirror. The time field is client-stamped; ordering relies on
// insertion order, not on the timestamp.
func (s *Service) AddCheckpoint(ctx context.Context, orderID string, req models.AddCheckpointRequest) (*models.Checkpoint, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusDelivered {
		return nil, models.ErrOrderDelivered
	}

	cp := s.newCheckpoint(strings.TrimSpace(req.Text))
	if err := s.appendCheckpoint(ctx, orderID, cp); err != nil {
		return nil, fmt.Errorf("service.AddCheckpoint: %w", err)
	}

	s.syncMirror(ctx, orderID)
	return &cp, nil
}

// MarkDelivered transitions an order to its terminal status, appends the
// final checkpoint, and re-syncs the mirror. Repeated calls only re-sync:
// the transition itself happens once.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		if err := s.repo.MarkDelivered(ctx, orderID); err != nil {
			return nil, fmt.Errorf("service.MarkDelivered: %w", err)
		}
		cp := s.newCheckpoint(deliveredCheckpointText)
		if err := s.appendCheckpoint(ctx, orderID, cp); err != nil {
			return nil, fmt.Errorf("service.MarkDelivered: final checkpoint: %w", err)
		}
	}

	s.syncMirror(ctx, orderID)
	return s.repo.GetByID(ctx, orderID)
}

// DeleteOrder removes an order permanently.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("service.DeleteOrder: %w", err)
	}
	return nil
}

// GetPublicOrder reads the sanitized projection for the share view.
func (s *Service) GetPublicOrder(ctx context.Context, orderID string) (*models.PublicOrder, error) {
	return s.repo.GetPublicMirror(ctx, orderID)
}

func (s *Service) WatchOrders(ctx context.Context) (<-chan []*models.Order, func(), error) {
	return s.repo.WatchOrders(ctx)
}

func (s *Service) WatchOrder(ctx context.Context, orderID string) (<-chan *models.Order, func(), error) {
	return s.repo.WatchOrder(ctx, orderID)
}

func (s *Service) WatchPublicOrder(ctx context.Context, orderID string) (<-chan *models.PublicOrder, func(), error) {
	return s.repo.WatchPublicMirror(ctx, orderID)
}

// syncMirror copies the sanitized projection of the canonical order into its
// publicly readable document. Mirror staleness is an accepted degradation:
// failures are logged and never propagate to the primary operation.
func (s *Service) syncMirror(ctx context.Context, orderID string) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("public mirror sync: canonical read failed",
				zap.String("orderID", orderID), zap.Error(err))
		}
		return
	}
	if err := s.repo.SetPublicMirror(ctx, orderID, order.PublicView()); err != nil {
		s.logger.Warn("public mirror sync failed",
			zap.String("orderID", orderID), zap.Error(err))
	}
}
