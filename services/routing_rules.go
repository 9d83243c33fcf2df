package services

import (
	"document-tracking-api/errs"
	"document-tracking-api/models"
)

// Client-facing action names.
const (
	ActionAccept   = "accept"
	ActionDeny     = "deny"
	ActionSign     = "sign"
	ActionForward  = "forward"
	ActionRelease  = "release"
	ActionComplete = "complete"
	ActionApprove  = "approve"
	ActionReject   = "reject"
)

// AllActions lists every routable action, in the order UI buttons render.
var AllActions = []string{
	ActionAccept,
	ActionSign,
	ActionForward,
	ActionRelease,
	ActionComplete,
	ActionApprove,
	ActionDeny,
	ActionReject,
}

// ActionPayload carries the caller-supplied parameters of a transition.
type ActionPayload struct {
	Remarks            string `json:"remarks"`
	TargetDepartmentID *int   `json:"to_department_id"`
}

// transitionPlan is the fully validated effect of one action on one document.
// The engine applies it atomically; nothing in here touches the database.
type transitionPlan struct {
	LogAction string
	NewStatus string

	// department hop
	NewCurrentDepartmentID int
	NewLastDepartmentID    *int
	ResetSignatures        bool

	// signing
	AddSignature bool

	// higher-up flags; nil means unchanged
	IsInDean                 *bool
	IsInPresident            *bool
	IsHaveDeanSignature      *bool
	IsHavePresidentSignature *bool

	// an idempotent re-apply: report success without mutating anything
	NoOp bool
}

func boolPtr(v bool) *bool { return &v }

// planTransition validates one action against the state machine and returns
// the effect to apply. Every guard failure maps onto the error taxonomy; a
// nil error with plan.NoOp set means the action already happened and must be
// reported as success without mutation.
func planTransition(doc *models.Document, actor *Actor, action string, payload ActionPayload) (*transitionPlan, error) {
	if models.IsTerminalStatus(doc.Status) {
		return nil, errs.Newf(errs.ErrPreconditionFailed, "document %s is in terminal status %s", doc.DocumentNumber, doc.Status)
	}

	switch action {
	case ActionAccept:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may accept")
		}
		if doc.Status != models.StatusToReceive {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot accept a document in status %s", doc.Status)
		}
		return &transitionPlan{
			LogAction:              models.ActionAccepted,
			NewStatus:              models.StatusOngoing,
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
		}, nil

	case ActionDeny:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may deny")
		}
		switch doc.Status {
		case models.StatusToReceive, models.StatusOngoing, models.StatusToRelease:
		default:
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot deny a document in status %s", doc.Status)
		}
		if payload.Remarks == "" {
			return nil, errs.New(errs.ErrValidation, "remarks are required when denying")
		}
		return &transitionPlan{
			LogAction:              models.ActionDeclined,
			NewStatus:              models.StatusDeclined,
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
		}, nil

	case ActionSign:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may sign")
		}
		if doc.Status != models.StatusOngoing {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot sign a document in status %s", doc.Status)
		}
		if doc.HasSignature(actor.UserID) {
			// re-signing the same hop is a no-op success
			return &transitionPlan{NoOp: true}, nil
		}
		return &transitionPlan{
			LogAction:              models.ActionSigned,
			NewStatus:              models.StatusOngoing,
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
			AddSignature:           true,
		}, nil

	case ActionForward:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may forward")
		}
		if doc.Status != models.StatusOngoing && doc.Status != models.StatusToRelease {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot forward a document in status %s", doc.Status)
		}
		if !doc.HasSignature(actor.UserID) {
			return nil, errs.New(errs.ErrPreconditionFailed, "document must be signed before forwarding")
		}
		if payload.TargetDepartmentID == nil {
			return nil, errs.New(errs.ErrValidation, "target department is required when forwarding")
		}
		if *payload.TargetDepartmentID == doc.CurrentDepartmentID {
			return nil, errs.New(errs.ErrValidation, "cannot forward a document to its current department")
		}
		last := doc.CurrentDepartmentID
		return &transitionPlan{
			LogAction:              models.ActionForwarded,
			NewStatus:              models.StatusOngoing,
			NewCurrentDepartmentID: *payload.TargetDepartmentID,
			NewLastDepartmentID:    &last,
			ResetSignatures:        true,
		}, nil

	case ActionRelease:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may release")
		}
		if doc.Status != models.StatusOngoing {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot release a document in status %s", doc.Status)
		}
		if !doc.HasSignature(actor.UserID) {
			return nil, errs.New(errs.ErrPreconditionFailed, "document must be signed before releasing")
		}
		return &transitionPlan{
			LogAction:              models.ActionReleased,
			NewStatus:              models.StatusToRelease,
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
		}, nil

	case ActionComplete:
		if !actor.IsHeadOf(doc.CurrentDepartmentID) {
			return nil, errs.New(errs.ErrUnauthorized, "only the head of the current department may complete")
		}
		if doc.Status != models.StatusToRelease {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "cannot complete a document in status %s", doc.Status)
		}
		plan := &transitionPlan{
			LogAction:              models.ActionCompleted,
			NewStatus:              models.StatusCompleted,
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
		}
		if doc.HasHigherUpChain() {
			// clearances and accomplishment reports continue to the dean
			plan.NewStatus = models.StatusPending
			plan.IsInDean = boolPtr(true)
		}
		return plan, nil

	case ActionApprove:
		return planHigherUpDecision(doc, actor, true, payload)

	case ActionReject:
		return planHigherUpDecision(doc, actor, false, payload)

	default:
		return nil, errs.Newf(errs.ErrValidation, "unknown action %q", action)
	}
}

// planHigherUpDecision covers dean and president approve/reject, which share
// their stage gates.
func planHigherUpDecision(doc *models.Document, actor *Actor, approve bool, payload ActionPayload) (*transitionPlan, error) {
	if !approve && payload.Remarks == "" {
		return nil, errs.New(errs.ErrValidation, "remarks are required when rejecting")
	}

	switch actor.RoleID {
	case models.RoleDean:
		if !doc.IsInDean {
			return nil, errs.New(errs.ErrUnauthorized, "document is not awaiting dean review")
		}
		if doc.Status != models.StatusPending {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "dean cannot decide a document in status %s", doc.Status)
		}
		plan := &transitionPlan{
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
			IsInDean:               boolPtr(false),
		}
		if approve {
			plan.LogAction = models.ActionApprovedByDean
			plan.NewStatus = models.StatusApprovedByDean
			plan.IsHaveDeanSignature = boolPtr(true)
			plan.IsInPresident = boolPtr(true)
		} else {
			plan.LogAction = models.ActionRejected
			plan.NewStatus = models.StatusRejected
		}
		return plan, nil

	case models.RolePresident:
		if !doc.IsInPresident {
			return nil, errs.New(errs.ErrUnauthorized, "document is not awaiting president review")
		}
		if doc.Status != models.StatusApprovedByDean {
			return nil, errs.Newf(errs.ErrPreconditionFailed, "president cannot decide a document in status %s", doc.Status)
		}
		plan := &transitionPlan{
			NewCurrentDepartmentID: doc.CurrentDepartmentID,
			NewLastDepartmentID:    doc.LastDepartmentID,
			IsInPresident:          boolPtr(false),
		}
		if approve {
			plan.LogAction = models.ActionApprovedByPresident
			plan.NewStatus = models.StatusApprovedByPresident
			plan.IsHavePresidentSignature = boolPtr(true)
		} else {
			plan.LogAction = models.ActionRejected
			plan.NewStatus = models.StatusRejected
		}
		return plan, nil

	default:
		return nil, errs.New(errs.ErrUnauthorized, "only the dean or president may decide at this stage")
	}
}

// AvailableActions derives the set of legal actions for an actor on a
// document, so callers render only buttons that would succeed.
func AvailableActions(doc *models.Document, actor *Actor) []string {
	available := make([]string, 0, len(AllActions))
	probe := ActionPayload{Remarks: "probe"}
	if doc.Status == models.StatusOngoing || doc.Status == models.StatusToRelease {
		// any department other than the current one stands in for a real target
		target := doc.CurrentDepartmentID + 1
		probe.TargetDepartmentID = &target
	}
	for _, action := range AllActions {
		plan, err := planTransition(doc, actor, action, probe)
		if err != nil {
			continue
		}
		if plan.NoOp {
			continue
		}
		available = append(available, action)
	}
	return available
}
