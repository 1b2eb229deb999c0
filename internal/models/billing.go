package models

import "time"

// Plan is a subscription tier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus mirrors the provider's subscription states we persist.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

type Subscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"userId"`
	StripeSubscriptionID *string            `json:"stripeSubscriptionId,omitempty"`
	StripePriceID        *string            `json:"stripePriceId,omitempty"`
	Plan                 Plan               `json:"plan"`
	Status               SubscriptionStatus `json:"status"`
	CurrentPeriodStart   *time.Time         `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd    bool               `json:"cancelAtPeriodEnd"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// PaymentStatus is the outcome of a charge.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID                    string        `json:"id"`
	UserID                *string       `json:"userId,omitempty"`
	StripePaymentIntentID *string       `json:"stripePaymentIntentId,omitempty"`
	Amount                int64         `json:"amount"` // minor currency units
	Currency              string        `json:"currency"`
	Status                PaymentStatus `json:"status"`
	Description           *string       `json:"description,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
}
