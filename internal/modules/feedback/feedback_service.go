package feedback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"alf-logistics/internal/models"
	"alf-logistics/pkg/token"

	"go.uber.org/zap"
)

// OrderGetter is the slice of the order repository the feedback flow needs:
// link generation refuses to mint tokens for orders that do not exist.
type OrderGetter interface {
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
}

// ServiceInterface defines the contract for the feedback service.
type ServiceInterface interface {
	CreateFeedbackLink(ctx context.Context, req models.CreateFeedbackLinkRequest) (*models.FeedbackLinkResponse, error)
	ResolveFeedbackLink(ctx context.Context, tok string) (string, error)
	SubmitFeedback(ctx context.Context, req models.SubmitFeedbackRequest) (*models.Feedback, error)
	GetOrderFeedback(ctx context.Context, orderID string) ([]*models.Feedback, error)
	ListFeedback(ctx context.Context) ([]*models.Feedback, error)
	GetStats(ctx context.Context) (*models.FeedbackStats, error)
	WatchFeedback(ctx context.Context) (<-chan []*models.Feedback, func(), error)
}

// Service implements tokenized feedback links with lazy expiry and the
// append-only feedback log.
type Service struct {
	repo    RepositoryInterface
	orders  OrderGetter
	logger  *zap.Logger
	baseURL string
	now     func() time.Time
}

// NewService creates a new feedback service. baseURL is the public site root
// used to build shareable link URLs.
func NewService(repo RepositoryInterface, orders OrderGetter, logger *zap.Logger, baseURL string) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// CreateFeedbackLink mints a random token valid for thirty days and returns
// the shareable URL. The order must exist.
func (s *Service) CreateFeedbackLink(ctx context.Context, req models.CreateFeedbackLinkRequest) (*models.FeedbackLinkResponse, error) {
	if _, err := s.orders.GetByID(ctx, req.OrderID); err != nil {
		return nil, err
	}

	tok, err := token.New()
	if err != nil {
		return nil, fmt.Errorf("service.CreateFeedbackLink: %w", err)
	}

	link := &models.FeedbackLink{
		Token:     tok,
		OrderID:   req.OrderID,
		Status:    models.LinkStatusActive,
		ExpiresAt: s.now().Add(models.FeedbackLinkTTL),
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("service.CreateFeedbackLink: %w", err)
	}

	return &models.FeedbackLinkResponse{
		Token:     tok,
		URL:       fmt.Sprintf("%s/f/%s?o=%s", s.baseURL, tok, req.OrderID),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// ResolveFeedbackLink returns the order id an active token grants access to.
// Expiry is lazy: the first resolution past the deadline flips the link to
// expired and from then on the token resolves to nothing.
func (s *Service) ResolveFeedbackLink(ctx context.Context, tok string) (string, error) {
	link, err := s.repo.GetLink(ctx, tok)
	if err != nil {
		return "", err
	}
	if link.Status == models.LinkStatusExpired {
		return "", models.ErrLinkExpired
	}
	if s.now().After(link.ExpiresAt) {
		if err := s.repo.ExpireLink(ctx, tok); err != nil {
			s.logger.Warn("lazy link expiry failed", zap.String("token", tok), zap.Error(err))
		}
		return "", models.ErrLinkExpired
	}
	return link.OrderID, nil
}

// SubmitFeedback records a review. The token is resolved first; the plain
// orderId field is a fallback for links whose token document cannot be read
// and is not a security boundary.
func (s *Service) SubmitFeedback(ctx context.Context, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if req.Token != "" {
		resolved, err := s.ResolveFeedbackLink(ctx, req.Token)
		switch {
		case err == nil:
			orderID = resolved
		case errors.Is(err, models.ErrLinkExpired):
			return nil, err
		case errors.Is(err, models.ErrNotFound) && orderID != "":
			s.logger.Warn("feedback token unresolvable, using orderId fallback",
				zap.String("orderId", orderID))
		default:
			return nil, err
		}
	}
	if orderID == "" {
		return nil, models.ErrNotFound
	}

	fb := &models.Feedback{
		OrderID:  orderID,
		Name:     strings.TrimSpace(req.Name),
		Rating:   req.Rating,
		Comments: strings.TrimSpace(req.Comments),
	}
	id, err := s.repo.Insert(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("service.SubmitFeedback: %w", err)
	}
	fb.ID = id
	return fb, nil
}

func (s *Service) GetOrderFeedback(ctx context.Context, orderID string) ([]*models.Feedback, error) {
	return s.repo.ListByOrderID(ctx, orderID)
}

func (s *Service) ListFeedback(ctx context.Context) ([]*models.Feedback, error) {
	return s.repo.ListAll(ctx)
}

// GetStats aggregates the full feedback log: total count, average rating to
// one decimal, rating distribution, and the share of four-plus ratings.
func (s *Service) GetStats(ctx context.Context) (*models.FeedbackStats, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.GetStats: %w", err)
	}

	stats := &models.FeedbackStats{Total: len(entries)}
	if stats.Total == 0 {
		return stats, nil
	}

	var sum, positive int
	for _, fb := range entries {
		if fb.Rating >= 1 && fb.Rating <= 5 {
			stats.Distribution[fb.Rating-1]++
		}
		sum += fb.Rating
		if fb.Rating >= 4 {
			positive++
		}
	}
	stats.Average = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	stats.PositiveRate = int(math.Round(float64(positive) / float64(stats.Total) * 100))
	return stats, nil
}

func (s *Service) WatchFeedback(ctx context.Context) (<-chan []*models.Feedback, func(), error) {
	return s.repo.WatchAll(ctx)
}
