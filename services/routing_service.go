package services

import (
	"context"
	"errors"
	"time"

	"document-tracking-api/errs"
	"document-tracking-api/models"

	"gorm.io/gorm"
)

// RoutingService validates and applies document transitions. Every mutation
// runs as one transaction: the CAS status update, the signature-ledger insert
// and the action-log insert succeed or fail together.
type RoutingService struct {
	db *gorm.DB
}

func NewRoutingService(db *gorm.DB) *RoutingService {
	return &RoutingService{db: db}
}

// ApplyAction authorizes and applies one action on one document. The actor is
// resolved fresh on every call; nothing is trusted from the client beyond ids
// and the payload. Concurrent conflicting transitions lose the compare-and-swap
// and are reported as a conflict, never silently overwritten.
func (s *RoutingService) ApplyAction(ctx context.Context, actorID, documentID int, action string, payload ActionPayload) (*models.Document, error) {
	db := s.db.WithContext(ctx)

	actor, err := ResolveActor(db, actorID)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := db.Where("document_id = ? AND delete_at IS NULL", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.ErrNotFound, "document %d not found", documentID)
		}
		return nil, errs.Wrap(errs.ErrDatabase, "failed to load document", err)
	}

	if action == ActionForward && payload.TargetDepartmentID != nil {
		var target models.Department
		if err := db.Where("department_id = ? AND delete_at IS NULL", *payload.TargetDepartmentID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.Newf(errs.ErrNotFound, "target department %d not found", *payload.TargetDepartmentID)
			}
			return nil, errs.Wrap(errs.ErrDatabase, "failed to load target department", err)
		}
	}

	plan, err := planTransition(&doc, actor, action, payload)
	if err != nil {
		return nil, err
	}
	if plan.NoOp {
		return &doc, nil
	}

	now := time.Now()

	newSignatures, err := doc.ParseAllSignature()
	if err != nil {
		return nil, errs.Wrap(errs.ErrDatabase, "corrupt signature set", err)
	}
	if plan.ResetSignatures {
		newSignatures = []int{}
	}
	if plan.AddSignature {
		newSignatures = append(newSignatures, actor.UserID)
	}
	updated := doc
	if err := updated.SetAllSignature(newSignatures); err != nil {
		return nil, errs.Wrap(errs.ErrDatabase, "failed to encode signature set", err)
	}

	updates := map[string]interface{}{
		"status":                plan.NewStatus,
		"current_department_id": plan.NewCurrentDepartmentID,
		"last_department_id":    plan.NewLastDepartmentID,
		"all_signature":         updated.AllSignature,
		"update_at":             now,
	}
	if plan.IsInDean != nil {
		updates["is_in_dean"] = *plan.IsInDean
	}
	if plan.IsInPresident != nil {
		updates["is_in_president"] = *plan.IsInPresident
	}
	if plan.IsHaveDeanSignature != nil {
		updates["is_have_dean_signature"] = *plan.IsHaveDeanSignature
	}
	if plan.IsHavePresidentSignature != nil {
		updates["is_have_president_signature"] = *plan.IsHavePresidentSignature
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, errs.Wrap(errs.ErrDatabase, "failed to begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Compare-and-swap on the routing state; a concurrent transition that
	// already moved the document, or an owner delete that committed after our
	// read, makes RowsAffected zero.
	result := tx.Model(&models.Document{}).
		Where("document_id = ? AND status = ? AND current_department_id = ? AND delete_at IS NULL",
			doc.DocumentID, doc.Status, doc.CurrentDepartmentID).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, errs.Wrap(errs.ErrDatabase, "failed to update document", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, errs.Newf(errs.ErrConflict, "document %s was modified by a concurrent action", doc.DocumentNumber)
	}

	if plan.AddSignature {
		signature := models.SignatureRecord{
			DocumentID:   doc.DocumentID,
			SignerID:     actor.UserID,
			DepartmentID: doc.CurrentDepartmentID,
			SignedAt:     now,
		}
		if payload.Remarks != "" {
			remarks := payload.Remarks
			signature.Remarks = &remarks
		}
		if err := tx.Create(&signature).Error; err != nil {
			tx.Rollback()
			return nil, errs.Wrap(errs.ErrDatabase, "failed to record signature", err)
		}
	}

	logEntry := models.ActionLog{
		DocumentID:       doc.DocumentID,
		Action:           plan.LogAction,
		ActorID:          actor.UserID,
		ActorName:        actor.DisplayName,
		FromDepartmentID: doc.CurrentDepartmentID,
		CreatedAt:        now,
	}
	if plan.LogAction == models.ActionForwarded {
		toDept := plan.NewCurrentDepartmentID
		logEntry.ToDepartmentID = &toDept
	}
	if payload.Remarks != "" {
		remarks := payload.Remarks
		logEntry.Remarks = &remarks
	}
	if err := tx.Create(&logEntry).Error; err != nil {
		tx.Rollback()
		return nil, errs.Wrap(errs.ErrDatabase, "failed to write action log", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errs.Wrap(errs.ErrDatabase, "failed to commit transition", err)
	}

	updated.Status = plan.NewStatus
	updated.CurrentDepartmentID = plan.NewCurrentDepartmentID
	updated.LastDepartmentID = plan.NewLastDepartmentID
	updated.UpdateAt = now
	if plan.IsInDean != nil {
		updated.IsInDean = *plan.IsInDean
	}
	if plan.IsInPresident != nil {
		updated.IsInPresident = *plan.IsInPresident
	}
	if plan.IsHaveDeanSignature != nil {
		updated.IsHaveDeanSignature = *plan.IsHaveDeanSignature
	}
	if plan.IsHavePresidentSignature != nil {
		updated.IsHavePresidentSignature = *plan.IsHavePresidentSignature
	}
	return &updated, nil
}
