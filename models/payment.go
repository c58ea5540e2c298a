package models

import "time"

type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodNetbanking, MethodWallet:
		return true
	}
	return false
}

type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordSucceeded PaymentRecordStatus = "succeeded"
	PaymentRecordFailed    PaymentRecordStatus = "failed"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

// Payment records one gateway payment attempt for a booking.
type Payment struct {
	ID              string              `bson:"id" json:"id"`
	UserID          string              `bson:"user_id" json:"userId"`
	BookingID       string              `bson:"booking_id" json:"bookingId"`
	Amount          float64             `bson:"amount" json:"amount"`
	Currency        string              `bson:"currency" json:"currency"`
	PaymentMethod   PaymentMethod       `bson:"payment_method" json:"paymentMethod"`
	PaymentIntentID string              `bson:"payment_intent_id" json:"paymentIntentId"`
	Status          PaymentRecordStatus `bson:"status" json:"status"`
	RefundID        string              `bson:"refund_id,omitempty" json:"refundId,omitempty"`
	RefundedAmount  float64             `bson:"refunded_amount,omitempty" json:"refundedAmount,omitempty"`
	Metadata        map[string]string   `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updated_at" json:"updatedAt"`
}
