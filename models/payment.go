package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodUPI   PaymentMethod = "upi"
	PaymentMethodPaytm PaymentMethod = "paytm"
	PaymentMethodOther PaymentMethod = "other"
)

type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "pending"
	ProofStatusApproved ProofStatus = "approved"
	ProofStatusRejected ProofStatus = "rejected"
)

// PaymentProof is a user-submitted claim of an out-of-band top-up payment.
// It is created pending and transitioned exactly once by an admin review.
type PaymentProof struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Method        PaymentMethod   `json:"method" db:"method"`
	ReferenceID   *string         `json:"reference_id,omitempty" db:"reference_id"`
	ScreenshotKey *string         `json:"-" db:"screenshot_key"`
	ScreenshotURL *string         `json:"screenshot_url,omitempty" db:"-"`
	Status        ProofStatus     `json:"status" db:"status"`
	AdminNotes    *string         `json:"admin_notes,omitempty" db:"admin_notes"`
	ReviewedBy    *string         `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
