package models

import (
	"encoding/json"
	"time"
)

// Document status values. Terminal statuses permit no further transitions.
const (
	StatusToReceive           = "to_receive"
	StatusOngoing             = "ongoing"
	StatusToRelease           = "to_release"
	StatusCompleted           = "completed"
	StatusDeclined            = "declined"
	StatusPending             = "pending"
	StatusApprovedByDean      = "approved_by_dean"
	StatusApprovedByPresident = "approved_by_president"
	StatusRejected            = "rejected"
)

// Document types. Clearances and accomplishment reports continue past the
// department chain into dean/president approval.
const (
	TypeRequestLetter        = "request_letter"
	TypeClearance            = "clearance"
	TypeAccomplishmentReport = "accomplishment_report"
)

// Document represents one routable unit in the documents table.
type Document struct {
	DocumentID          int             `gorm:"primaryKey;column:document_id" json:"document_id"`
	DocumentNumber      string          `gorm:"column:document_number;unique" json:"document_number"`
	DocumentType        string          `gorm:"column:document_type" json:"document_type"`
	UserID              int             `gorm:"column:user_id" json:"user_id"`
	Purpose             string          `gorm:"column:purpose" json:"purpose"`
	Status              string          `gorm:"column:status" json:"status"`
	CurrentDepartmentID int             `gorm:"column:current_department_id" json:"current_department_id"`
	LastDepartmentID    *int            `gorm:"column:last_department_id" json:"last_department_id,omitempty"`
	AllSignature        json.RawMessage `gorm:"column:all_signature;type:json" json:"all_signature,omitempty"`

	// Higher-up routing flags, used by clearances and accomplishment reports.
	IsInDean                 bool `gorm:"column:is_in_dean" json:"is_in_dean"`
	IsInPresident            bool `gorm:"column:is_in_president" json:"is_in_president"`
	IsHaveDeanSignature      bool `gorm:"column:is_have_dean_signature" json:"is_have_dean_signature"`
	IsHavePresidentSignature bool `gorm:"column:is_have_president_signature" json:"is_have_president_signature"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Requester         User           `gorm:"foreignKey:UserID" json:"requester,omitempty"`
	CurrentDepartment Department     `gorm:"foreignKey:CurrentDepartmentID" json:"current_department,omitempty"`
	LastDepartment    *Department    `gorm:"foreignKey:LastDepartmentID" json:"last_department,omitempty"`
	Files             []DocumentFile `gorm:"foreignKey:DocumentID" json:"files,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// NumberPrefix returns the sequence-number prefix for a document type.
func NumberPrefix(documentType string) string {
	switch documentType {
	case TypeRequestLetter:
		return "REQ"
	case TypeClearance:
		return "CLR"
	case TypeAccomplishmentReport:
		return "ACR"
	default:
		return "DOC"
	}
}

// IsValidDocumentType reports whether documentType is one of the routable kinds.
func IsValidDocumentType(documentType string) bool {
	switch documentType {
	case TypeRequestLetter, TypeClearance, TypeAccomplishmentReport:
		return true
	}
	return false
}

// HasHigherUpChain reports whether the document continues into dean/president
// approval after the department chain completes.
func (d *Document) HasHigherUpChain() bool {
	return d.DocumentType == TypeClearance || d.DocumentType == TypeAccomplishmentReport
}

// IsTerminalStatus reports whether no further transition is permitted.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusDeclined, StatusRejected, StatusApprovedByPresident:
		return true
	}
	return false
}

// ParseAllSignature decodes the ordered signer-id set for the current hop.
func (d *Document) ParseAllSignature() ([]int, error) {
	if len(d.AllSignature) == 0 {
		return nil, nil
	}
	var signers []int
	if err := json.Unmarshal(d.AllSignature, &signers); err != nil {
		return nil, err
	}
	return signers, nil
}

// SetAllSignature replaces the signer-id set. An empty set is stored as [].
func (d *Document) SetAllSignature(signers []int) error {
	if signers == nil {
		signers = []int{}
	}
	data, err := json.Marshal(signers)
	if err != nil {
		return err
	}
	d.AllSignature = data
	return nil
}

// HasSignature reports whether signerID has signed at the current hop.
func (d *Document) HasSignature(signerID int) bool {
	signers, err := d.ParseAllSignature()
	if err != nil {
		return false
	}
	for _, id := range signers {
		if id == signerID {
			return true
		}
	}
	return false
}
