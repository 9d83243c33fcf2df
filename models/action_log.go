package models

import "time"

// Action names as recorded in action_logs. SUBMITTED is written at creation
// so a document's state is replayable from its log alone.
const (
	ActionSubmitted           = "SUBMITTED"
	ActionAccepted            = "ACCEPTED"
	ActionSigned              = "SIGNED"
	ActionForwarded           = "FORWARDED"
	ActionReleased            = "RELEASED"
	ActionCompleted           = "COMPLETED"
	ActionDeclined            = "DECLINED"
	ActionApprovedByDean      = "APPROVED_BY_DEAN"
	ActionApprovedByPresident = "APPROVED_BY_PRESIDENT"
	ActionRejected            = "REJECTED"
)

// ActionLog is the append-only audit trail. One row per transition; rows are
// never updated or deleted.
type ActionLog struct {
	LogID            int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	DocumentID       int       `gorm:"column:document_id" json:"document_id"`
	Action           string    `gorm:"column:action" json:"action"`
	ActorID          int       `gorm:"column:actor_id" json:"actor_id"`
	ActorName        string    `gorm:"column:actor_name" json:"actor_name"`
	FromDepartmentID int       `gorm:"column:from_department_id" json:"from_department_id"`
	ToDepartmentID   *int      `gorm:"column:to_department_id" json:"to_department_id,omitempty"`
	Remarks          *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ActionLog) TableName() string {
	return "action_logs"
}
