package models

import "time"

// Enquiry statuses. An enquiry is mutated once, when an admin marks it
// contacted; otherwise it is append-only.
const (
	EnquiryStatusNew       = "new"
	EnquiryStatusContacted = "contacted"
)

// Enquiry is an inbound contact-form submission, independent of any order.
type Enquiry struct {
	ID          string     `firestore:"-" json:"id"`
	Name        string     `firestore:"name" json:"name"`
	Email       string     `firestore:"email" json:"email"`
	Phone       string     `firestore:"phone" json:"phone"`
	Service     string     `firestore:"service" json:"service"`
	Remarks     string     `firestore:"remarks" json:"remarks,omitempty"`
	Status      string     `firestore:"status" json:"status"`
	Timestamp   time.Time  `firestore:"timestamp,serverTimestamp" json:"timestamp"`
	ContactedAt *time.Time `firestore:"contactedAt" json:"contactedAt,omitempty"`
}

// EnquiryRequest is the public enquiry form.
type EnquiryRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required"`
	Service string `json:"service" validate:"required,max=80"`
	Remarks string `json:"remarks" validate:"max=1000"`
}
