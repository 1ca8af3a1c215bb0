package enquiry

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"alf-logistics/internal/models"
	"alf-logistics/pkg/notify"

	"go.uber.org/zap"
)

// indianPhonePattern accepts ten-digit Indian mobile numbers, optionally
// prefixed with +91 or a leading zero. Spaces and dashes are stripped before
// matching.
var indianPhonePattern = regexp.MustCompile(`^(\+91|0)?[6-9]\d{9}$`)

// ValidatePhone reports whether the given string is an acceptable Indian
// mobile number.
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return indianPhonePattern.MatchString(cleaned)
}

// ServiceInterface defines the contract for the enquiry service.
type ServiceInterface interface {
	SubmitEnquiry(ctx context.Context, req models.EnquiryRequest) (*models.Enquiry, error)
	ListEnquiries(ctx context.Context, statusFilter string) ([]*models.Enquiry, error)
	MarkContacted(ctx context.Context, enquiryID string) error
	WatchEnquiries(ctx context.Context) (<-chan []*models.Enquiry, func(), error)
}

// Service implements the public enquiry intake and the admin inbox.
type Service struct {
	repo     RepositoryInterface
	notifier notify.ServiceInterface
	logger   *zap.Logger
}

// NewService creates a new enquiry service. notifier may be nil, in which
// case no notification email is sent.
func NewService(repo RepositoryInterface, notifier notify.ServiceInterface, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitEnquiry validates and records an inbound enquiry, then notifies the
// operations inbox. The notification is best effort: a failed send never
// fails the submission.
func (s *Service) SubmitEnquiry(ctx context.Context, req models.EnquiryRequest) (*models.Enquiry, error) {
	if !ValidatePhone(req.Phone) {
		return nil, models.ErrInvalidPhone
	}

	enq := &models.Enquiry{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Service: strings.TrimSpace(req.Service),
		Remarks: strings.TrimSpace(req.Remarks),
		Status:  models.EnquiryStatusNew,
	}
	id, err := s.repo.Insert(ctx, enq)
	if err != nil {
		return nil, fmt.Errorf("service.SubmitEnquiry: %w", err)
	}
	enq.ID = id

	if s.notifier != nil {
		subject := "New enquiry: " + enq.Service
		body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nService: %s\n\n%s",
			enq.Name, enq.Email, enq.Phone, enq.Service, enq.Remarks)
		if err := s.notifier.Send(ctx, subject, body); err != nil {
			s.logger.Warn("enquiry notification failed", zap.String("enquiryID", id), zap.Error(err))
		}
	}
	return enq, nil
}

// ListEnquiries returns the inbox, optionally narrowed to one status.
func (s *Service) ListEnquiries(ctx context.Context, statusFilter string) ([]*models.Enquiry, error) {
	enquiries, err := s.repo.ListAll(ctx)
	if err != nil || statusFilter == "" {
		return enquiries, err
	}
	filtered := make([]*models.Enquiry, 0, len(enquiries))
	for _, enq := range enquiries {
		if enq.Status == statusFilter {
			filtered = append(filtered, enq)
		}
	}
	return filtered, nil
}

func (s *Service) MarkContacted(ctx context.Context, enquiryID string) error {
	return s.repo.MarkContacted(ctx, enquiryID)
}

func (s *Service) WatchEnquiries(ctx context.Context) (<-chan []*models.Enquiry, func(), error) {
	return s.repo.WatchAll(ctx)
}
