package models

import "time"

// SignatureRecord is the append-only signing ledger. One row per
// (document, signer, hop); existence for the acting head is the gate for
// forwarding and releasing.
type SignatureRecord struct {
	SignatureID  int       `gorm:"primaryKey;column:signature_id" json:"signature_id"`
	DocumentID   int       `gorm:"column:document_id" json:"document_id"`
	SignerID     int       `gorm:"column:signer_id" json:"signer_id"`
	DepartmentID int       `gorm:"column:department_id" json:"department_id"`
	Remarks      *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	SignedAt     time.Time `gorm:"column:signed_at" json:"signed_at"`

	Signer *User `gorm:"foreignKey:SignerID" json:"signer,omitempty"`
}

func (SignatureRecord) TableName() string {
	return "signature_records"
}
