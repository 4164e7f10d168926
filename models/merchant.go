package models

import "time"

type BankDetails struct {
	AccountName   string `bson:"accountname,omitempty" json:"accountName,omitempty"`
	AccountNumber string `bson:"accountnumber,omitempty" json:"accountNumber,omitempty"`
	IFSC          string `bson:"ifsc,omitempty" json:"ifsc,omitempty"`
}

// Merchant is a local host going through onboarding review.
type Merchant struct {
	MerchantID      string       `bson:"merchantid" json:"merchantId"`
	BusinessName    string       `bson:"businessname" json:"businessName"`
	OwnerName       string       `bson:"ownername" json:"ownerName"`
	Email           string       `bson:"email" json:"email"`
	Phone           string       `bson:"phone" json:"phone"`
	BusinessType    string       `bson:"businesstype" json:"businessType"`
	Description     string       `bson:"description,omitempty" json:"description,omitempty"`
	Address         string       `bson:"address,omitempty" json:"address,omitempty"`
	Languages       []string     `bson:"languages,omitempty" json:"languages,omitempty"`
	BankDetails     *BankDetails `bson:"bankdetails,omitempty" json:"bankDetails,omitempty"`
	CommissionRate  float64      `bson:"commissionrate" json:"commissionRate"`
	Status          string       `bson:"status" json:"status"` // pending, approved, rejected
	IsVerified      bool         `bson:"isverified" json:"isVerified"`
	RejectionReason string       `bson:"rejectionreason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time    `bson:"createdat" json:"createdAt"`
	ApprovedAt      *time.Time   `bson:"approvedat,omitempty" json:"approvedAt,omitempty"`
	RejectedAt      *time.Time   `bson:"rejectedat,omitempty" json:"rejectedAt,omitempty"`
}

// PublicView hides contact and payout details from non-admin callers.
func (m Merchant) PublicView() Merchant {
	v := m
	v.Email = ""
	v.Phone = ""
	v.Address = ""
	v.BankDetails = nil
	v.RejectionReason = ""
	return v
}
