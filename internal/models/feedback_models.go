package models

import "time"

// Feedback link statuses. A link flips to expired lazily, the first time it
// is resolved past its expiry; it is never physically deleted.
const (
	LinkStatusActive  = "active"
	LinkStatusExpired = "expired"
)

// FeedbackLinkTTL is the default lifetime of a tokenized feedback link.
const FeedbackLinkTTL = 30 * 24 * time.Hour

// FeedbackLink grants anonymous, time-limited access to submit feedback for
// one order. The token is the document key.
type FeedbackLink struct {
	Token     string    `firestore:"-" json:"token"`
	OrderID   string    `firestore:"orderId" json:"orderId"`
	Status    string    `firestore:"status" json:"status"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	ExpiresAt time.Time `firestore:"expiresAt" json:"expiresAt"`
}

// Feedback is an append-only customer review tied to an order.
type Feedback struct {
	ID        string    `firestore:"-" json:"id"`
	OrderID   string    `firestore:"orderId" json:"orderId"`
	Name      string    `firestore:"name" json:"name"`
	Rating    int       `firestore:"rating" json:"rating"`
	Comments  string    `firestore:"comments" json:"comments,omitempty"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// FeedbackStats summarizes received feedback for the admin dashboard.
type FeedbackStats struct {
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	PositiveRate int     `json:"positiveRate"`
	Distribution [5]int  `json:"distribution"`
}

// CreateFeedbackLinkRequest asks for a tokenized link for one order.
type CreateFeedbackLinkRequest struct {
	OrderID string `json:"orderId" validate:"required,max=50"`
}

// FeedbackLinkResponse is returned to the admin generating a link.
type FeedbackLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SubmitFeedbackRequest is the public feedback form. Token resolution is
// attempted first; OrderID is a plain fallback for restrictive
// read-permission setups and is not a security boundary.
type SubmitFeedbackRequest struct {
	Token    string `json:"token"`
	OrderID  string `json:"orderId"`
	Name     string `json:"name" validate:"required,max=100"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comments string `json:"comments" validate:"max=1000"`
}
