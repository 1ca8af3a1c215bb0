package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"alf-logistics/internal/models"

	"go.uber.org/zap"
)

type fakeRepo struct {
	links    map[string]*models.FeedbackLink
	feedback []*models.Feedback
	nextID   int

	expireErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{links: make(map[string]*models.FeedbackLink)}
}

func (f *fakeRepo) CreateLink(ctx context.Context, link *models.FeedbackLink) error {
	cp := *link
	cp.CreatedAt = time.Now()
	f.links[link.Token] = &cp
	return nil
}

func (f *fakeRepo) GetLink(ctx context.Context, token string) (*models.FeedbackLink, error) {
	link, ok := f.links[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (f *fakeRepo) ExpireLink(ctx context.Context, token string) error {
	if f.expireErr != nil {
		return f.expireErr
	}
	link, ok := f.links[token]
	if !ok {
		return models.ErrNotFound
	}
	link.Status = models.LinkStatusExpired
	return nil
}

func (f *fakeRepo) Insert(ctx context.Context, fb *models.Feedback) (string, error) {
	f.nextID++
	id := fmt.Sprintf("fb-%d", f.nextID)
	cp := *fb
	cp.ID = id
	cp.CreatedAt = time.Now()
	f.feedback = append(f.feedback, &cp)
	return id, nil
}

func (f *fakeRepo) ListByOrderID(ctx context.Context, orderID string) ([]*models.Feedback, error) {
	var out []*models.Feedback
	for _, fb := range f.feedback {
		if fb.OrderID == orderID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]*models.Feedback, error) {
	return f.feedback, nil
}

func (f *fakeRepo) WatchAll(ctx context.Context) (<-chan []*models.Feedback, func(), error) {
	ch := make(chan []*models.Feedback)
	close(ch)
	return ch, func() {}, nil
}

type fakeOrders struct {
	existing map[string]bool
}

func (f *fakeOrders) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	if !f.existing[orderID] {
		return nil, models.ErrNotFound
	}
	return &models.Order{ID: orderID}, nil
}

func newTestService(repo RepositoryInterface, orders OrderGetter) *Service {
	return NewService(repo, orders, zap.NewNop(), "https://alf.example.com/")
}

func TestCreateFeedbackLink(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{"ALF-10001": true}})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	resp, err := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-10001"})
	if err != nil {
		t.Fatalf("CreateFeedbackLink error: %v", err)
	}

	if len(resp.Token) != 32 {
		t.Errorf("token length = %d; want 32", len(resp.Token))
	}
	wantURL := "https://alf.example.com/f/" + resp.Token + "?o=ALF-10001"
	if resp.URL != wantURL {
		t.Errorf("url = %q; want %q", resp.URL, wantURL)
	}
	if !resp.ExpiresAt.Equal(base.Add(models.FeedbackLinkTTL)) {
		t.Errorf("expiresAt = %v; want creation time plus thirty days", resp.ExpiresAt)
	}

	stored, err := repo.GetLink(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("link not stored: %v", err)
	}
	if stored.OrderID != "ALF-10001" || stored.Status != models.LinkStatusActive {
		t.Errorf("stored link = %+v", stored)
	}
}

func TestCreateFeedbackLinkMissingOrder(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOrders{existing: map[string]bool{}})

	_, err := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-404"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("CreateFeedbackLink for missing order = %v; want ErrNotFound", err)
	}
}

func TestResolveFeedbackLinkLazyExpiry(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{"ALF-10002": true}})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	resp, err := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-10002"})
	if err != nil {
		t.Fatalf("CreateFeedbackLink error: %v", err)
	}

	orderID, err := svc.ResolveFeedbackLink(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ResolveFeedbackLink error: %v", err)
	}
	if orderID != "ALF-10002" {
		t.Errorf("resolved order = %q; want ALF-10002", orderID)
	}

	// One second before the deadline the link still works.
	svc.now = func() time.Time { return base.Add(models.FeedbackLinkTTL - time.Second) }
	if _, err := svc.ResolveFeedbackLink(context.Background(), resp.Token); err != nil {
		t.Fatalf("link expired early: %v", err)
	}

	// Past the deadline the first resolution flips the record to expired.
	svc.now = func() time.Time { return base.Add(models.FeedbackLinkTTL + time.Second) }
	if _, err := svc.ResolveFeedbackLink(context.Background(), resp.Token); !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("resolve past deadline = %v; want ErrLinkExpired", err)
	}
	if repo.links[resp.Token].Status != models.LinkStatusExpired {
		t.Errorf("link status = %q; want expired after lazy flip", repo.links[resp.Token].Status)
	}

	// Once flipped the link stays dead even if the clock moves back.
	svc.now = func() time.Time { return base }
	if _, err := svc.ResolveFeedbackLink(context.Background(), resp.Token); !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("resolve of flipped link = %v; want ErrLinkExpired", err)
	}
}

func TestResolveFeedbackLinkExpiryFlipFailureStillDenies(t *testing.T) {
	repo := newFakeRepo()
	repo.expireErr = errors.New("write denied")
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{"ALF-10003": true}})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	resp, _ := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-10003"})

	svc.now = func() time.Time { return base.Add(models.FeedbackLinkTTL + time.Hour) }
	if _, err := svc.ResolveFeedbackLink(context.Background(), resp.Token); !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("resolve = %v; want ErrLinkExpired even when the flip write fails", err)
	}
}

func TestSubmitFeedbackViaToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{"ALF-10004": true}})

	resp, _ := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-10004"})

	fb, err := svc.SubmitFeedback(context.Background(), models.SubmitFeedbackRequest{
		Token:    resp.Token,
		OrderID:  "ALF-99999", // token wins over the fallback field
		Name:     "  Priya  ",
		Rating:   5,
		Comments: "Arrived a day early",
	})
	if err != nil {
		t.Fatalf("SubmitFeedback error: %v", err)
	}
	if fb.OrderID != "ALF-10004" {
		t.Errorf("feedback orderId = %q; want the token's order", fb.OrderID)
	}
	if fb.Name != "Priya" {
		t.Errorf("name = %q; want trimmed", fb.Name)
	}
	if fb.ID == "" {
		t.Error("feedback id not assigned")
	}
}

func TestSubmitFeedbackOrderIDFallback(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{}})

	fb, err := svc.SubmitFeedback(context.Background(), models.SubmitFeedbackRequest{
		Token:   "no-such-token-aaaaaaaaaaaaaaaaaa",
		OrderID: "ALF-10005",
		Name:    "Arun",
		Rating:  4,
	})
	if err != nil {
		t.Fatalf("SubmitFeedback error: %v", err)
	}
	if fb.OrderID != "ALF-10005" {
		t.Errorf("feedback orderId = %q; want the fallback order", fb.OrderID)
	}
}

func TestSubmitFeedbackExpiredTokenRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{"ALF-10006": true}})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	resp, _ := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-10006"})
	svc.now = func() time.Time { return base.Add(models.FeedbackLinkTTL + time.Minute) }

	_, err := svc.SubmitFeedback(context.Background(), models.SubmitFeedbackRequest{
		Token:   resp.Token,
		OrderID: "ALF-10006",
		Name:    "Kiran",
		Rating:  3,
	})
	if !errors.Is(err, models.ErrLinkExpired) {
		t.Fatalf("SubmitFeedback with expired token = %v; want ErrLinkExpired, fallback must not bypass expiry", err)
	}
	if len(repo.feedback) != 0 {
		t.Errorf("feedback recorded despite expired token")
	}
}

func TestSubmitFeedbackNoTokenNoOrder(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOrders{existing: map[string]bool{}})

	_, err := svc.SubmitFeedback(context.Background(), models.SubmitFeedbackRequest{
		Name:   "Anon",
		Rating: 5,
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("SubmitFeedback without token or order = %v; want ErrNotFound", err)
	}
}

func TestGetStats(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeOrders{existing: map[string]bool{}})

	for _, rating := range []int{5, 5, 4, 3, 1} {
		repo.Insert(context.Background(), &models.Feedback{OrderID: "ALF-1", Name: "x", Rating: rating})
	}

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Total != 5 {
		t.Errorf("total = %d; want 5", stats.Total)
	}
	if stats.Average != 3.6 {
		t.Errorf("average = %v; want 3.6", stats.Average)
	}
	if stats.PositiveRate != 60 {
		t.Errorf("positiveRate = %d; want 60", stats.PositiveRate)
	}
	want := [5]int{1, 0, 1, 1, 2}
	if stats.Distribution != want {
		t.Errorf("distribution = %v; want %v", stats.Distribution, want)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOrders{existing: map[string]bool{}})

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Total != 0 || stats.Average != 0 || stats.PositiveRate != 0 {
		t.Errorf("empty stats = %+v; want zero values", stats)
	}
}

func TestFeedbackTokenShape(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeOrders{existing: map[string]bool{"ALF-1": true}})

	resp, err := svc.CreateFeedbackLink(context.Background(), models.CreateFeedbackLinkRequest{OrderID: "ALF-1"})
	if err != nil {
		t.Fatalf("CreateFeedbackLink error: %v", err)
	}
	if strings.ContainsAny(resp.Token, "/+=?&#%") {
		t.Errorf("token %q contains characters unsafe in a URL path", resp.Token)
	}
}
