package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EligibilitySubmission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FullName    string             `bson:"fullName" json:"fullName"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	NationalID  string             `bson:"nationalId" json:"nationalId"`
	Gender      string             `bson:"gender" json:"gender"`
	DateOfBirth string             `bson:"dateOfBirth" json:"dateOfBirth"`
	County      string             `bson:"county" json:"county"`
	Education   string             `bson:"education" json:"education"`
	Employment  string             `bson:"employment" json:"employment"`
	Income      string             `bson:"income" json:"income"`
	LoanPurpose string             `bson:"loanPurpose" json:"loanPurpose"`
	Eligible    bool               `bson:"eligible" json:"eligible"`
	Limit       int64              `bson:"limit" json:"limit"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

type Loan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PhoneNumber    string             `bson:"phoneNumber" json:"phoneNumber"`
	NationalID     string             `bson:"nationalId" json:"nationalId"`
	Amount         int64              `bson:"amount" json:"amount"`
	Status         string             `bson:"status" json:"status"`
	RepaymentDue   time.Time          `bson:"repaymentDue" json:"repaymentDue"`
	TrackingNumber string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	FeeReference   string             `bson:"feeReference,omitempty" json:"feeReference,omitempty"`
	ServiceFee     int64              `bson:"serviceFee" json:"serviceFee"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// FeeTransaction is the persisted form of a service fee STK push attempt.
type FeeTransaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Reference       string             `bson:"reference"`
	ClientReference string             `bson:"clientReference"`
	TrackingNumber  string             `bson:"trackingNumber"`
	PhoneNumber     string             `bson:"phoneNumber"`
	Amount          int64              `bson:"amount"`
	Status          string             `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}
