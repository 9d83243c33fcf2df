package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"document-tracking-api/errs"
	"document-tracking-api/models"
)

func actorRowStep(userID, roleID, departmentID int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `users` WHERE user_id = \\?"),
		columns: []string{"user_id", "user_fname", "user_lname", "email", "role_id", "department_id"},
		rows: [][]driver.Value{
			{userID, "Avery", "Cruz", "avery.cruz@example.edu", roleID, departmentID},
		},
	}
}

func documentRowStep(documentID int64, status string, departmentID int64, signatures string) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `documents` WHERE document_id = \\?"),
		columns: []string{"document_id", "document_number", "document_type", "user_id", "status", "current_department_id", "all_signature"},
		rows: [][]driver.Value{
			{documentID, "REQ-2026-0007", models.TypeRequestLetter, int64(100), status, departmentID, []byte(signatures)},
		},
	}
}

func TestApplyActionAccept(t *testing.T) {
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		documentRowStep(7, models.StatusToReceive, 1, "[]"),
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `documents` SET .* WHERE document_id = \\? AND status = \\? AND current_department_id = \\? AND delete_at IS NULL"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `action_logs`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	doc, err := svc.ApplyAction(context.Background(), 11, 7, ActionAccept, ActionPayload{})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if doc.Status != models.StatusOngoing {
		t.Fatalf("expected status ongoing, got %s", doc.Status)
	}
	if doc.CurrentDepartmentID != 1 {
		t.Fatalf("accepting must not move the document, got department %d", doc.CurrentDepartmentID)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApplyActionSignWritesLedger(t *testing.T) {
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		documentRowStep(7, models.StatusOngoing, 1, "[]"),
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `documents` SET .* WHERE document_id = \\? AND status = \\? AND current_department_id = \\? AND delete_at IS NULL"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `signature_records`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `action_logs`"),
			result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	doc, err := svc.ApplyAction(context.Background(), 11, 7, ActionSign, ActionPayload{})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	signers, err := doc.ParseAllSignature()
	if err != nil {
		t.Fatalf("failed to parse signatures: %v", err)
	}
	if len(signers) != 1 || signers[0] != 11 {
		t.Fatalf("expected signer 11, got %v", signers)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApplyActionReSignIsNoOp(t *testing.T) {
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		documentRowStep(7, models.StatusOngoing, 1, "[11]"),
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	doc, err := svc.ApplyAction(context.Background(), 11, 7, ActionSign, ActionPayload{})
	if err != nil {
		t.Fatalf("re-sign must succeed without writing: %v", err)
	}
	if doc.Status != models.StatusOngoing {
		t.Fatalf("expected status ongoing, got %s", doc.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApplyActionConcurrentLoserGetsConflict(t *testing.T) {
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		documentRowStep(7, models.StatusToReceive, 1, "[]"),
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `documents` SET .* WHERE document_id = \\? AND status = \\? AND current_department_id = \\? AND delete_at IS NULL"),
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	if _, err := svc.ApplyAction(context.Background(), 11, 7, ActionAccept, ActionPayload{}); !errs.IsConflict(err) {
		t.Fatalf("expected a conflict, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApplyActionRacedOwnerDeleteGetsConflict(t *testing.T) {
	// The owner soft-deletes a to_receive document after our read but before
	// our update. The row keeps its status, so only the delete_at IS NULL
	// guard makes the CAS miss; the deleted document must stay untouched.
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		documentRowStep(7, models.StatusToReceive, 1, "[]"),
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `documents` SET .* WHERE document_id = \\? AND status = \\? AND current_department_id = \\? AND delete_at IS NULL"),
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	if _, err := svc.ApplyAction(context.Background(), 11, 7, ActionAccept, ActionPayload{}); !errs.IsConflict(err) {
		t.Fatalf("expected a conflict, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApplyActionUnknownDocument(t *testing.T) {
	steps := []*queryStep{
		actorRowStep(11, int64(models.RoleHead), 1),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `documents` WHERE document_id = \\?"),
			columns: []string{"document_id"},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoutingService(db)
	if _, err := svc.ApplyAction(context.Background(), 11, 99, ActionAccept, ActionPayload{}); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
