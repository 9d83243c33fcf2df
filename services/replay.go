package services

import (
	"document-tracking-api/errs"
	"document-tracking-api/models"
)

// ReplayState is the routing state rebuilt from an action-log sequence. The
// log is the source of truth; the columns on the documents row are a
// materialized cache of it, and the two must always agree.
type ReplayState struct {
	Status                   string `json:"status"`
	CurrentDepartmentID      int    `json:"current_department_id"`
	LastDepartmentID         *int   `json:"last_department_id,omitempty"`
	AllSignature             []int  `json:"all_signature"`
	IsInDean                 bool   `json:"is_in_dean"`
	IsInPresident            bool   `json:"is_in_president"`
	IsHaveDeanSignature      bool   `json:"is_have_dean_signature"`
	IsHavePresidentSignature bool   `json:"is_have_president_signature"`
}

// ReplayActionLog replays a document's log entries from creation and returns
// the resulting state. Entries must be in creation order and start with
// SUBMITTED.
func ReplayActionLog(documentType string, entries []models.ActionLog) (*ReplayState, error) {
	if len(entries) == 0 {
		return nil, errs.New(errs.ErrValidation, "action log is empty")
	}
	if entries[0].Action != models.ActionSubmitted {
		return nil, errs.Newf(errs.ErrValidation, "action log must start with %s, got %s", models.ActionSubmitted, entries[0].Action)
	}

	higherUp := documentType == models.TypeClearance || documentType == models.TypeAccomplishmentReport

	state := &ReplayState{
		Status:              models.StatusToReceive,
		CurrentDepartmentID: entries[0].FromDepartmentID,
		AllSignature:        []int{},
	}

	for _, entry := range entries[1:] {
		switch entry.Action {
		case models.ActionAccepted:
			state.Status = models.StatusOngoing
		case models.ActionSigned:
			state.AllSignature = append(state.AllSignature, entry.ActorID)
		case models.ActionForwarded:
			if entry.ToDepartmentID == nil {
				return nil, errs.New(errs.ErrValidation, "forwarded log entry is missing its target department")
			}
			last := state.CurrentDepartmentID
			state.LastDepartmentID = &last
			state.CurrentDepartmentID = *entry.ToDepartmentID
			state.AllSignature = []int{}
			state.Status = models.StatusOngoing
		case models.ActionReleased:
			state.Status = models.StatusToRelease
		case models.ActionCompleted:
			if higherUp {
				state.Status = models.StatusPending
				state.IsInDean = true
			} else {
				state.Status = models.StatusCompleted
			}
		case models.ActionDeclined:
			state.Status = models.StatusDeclined
		case models.ActionApprovedByDean:
			state.Status = models.StatusApprovedByDean
			state.IsInDean = false
			state.IsInPresident = true
			state.IsHaveDeanSignature = true
		case models.ActionApprovedByPresident:
			state.Status = models.StatusApprovedByPresident
			state.IsInPresident = false
			state.IsHavePresidentSignature = true
		case models.ActionRejected:
			state.Status = models.StatusRejected
			state.IsInDean = false
			state.IsInPresident = false
		default:
			return nil, errs.Newf(errs.ErrValidation, "unknown log action %q", entry.Action)
		}
	}

	return state, nil
}

// MatchesDocument reports whether the replayed state agrees with the
// materialized document row.
func (s *ReplayState) MatchesDocument(doc *models.Document) bool {
	if s.Status != doc.Status || s.CurrentDepartmentID != doc.CurrentDepartmentID {
		return false
	}
	if (s.LastDepartmentID == nil) != (doc.LastDepartmentID == nil) {
		return false
	}
	if s.LastDepartmentID != nil && *s.LastDepartmentID != *doc.LastDepartmentID {
		return false
	}
	signers, err := doc.ParseAllSignature()
	if err != nil || len(signers) != len(s.AllSignature) {
		return false
	}
	for i := range signers {
		if signers[i] != s.AllSignature[i] {
			return false
		}
	}
	return true
}
