package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"document-tracking-api/errs"
	"document-tracking-api/models"
)

// fakeApplier scripts per-document outcomes so the coordinator can be tested
// without a database.
type fakeApplier struct {
	mu       sync.Mutex
	failures map[int]error
	slow     map[int]time.Duration
	calls    []int
}

func (f *fakeApplier) ApplyAction(ctx context.Context, actorID, documentID int, action string, payload ActionPayload) (*models.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, documentID)
	f.mu.Unlock()

	if delay, ok := f.slow[documentID]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.failures[documentID]; ok {
		return nil, err
	}
	return &models.Document{DocumentID: documentID, Status: models.StatusOngoing}, nil
}

func (f *fakeApplier) callCount(documentID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, id := range f.calls {
		if id == documentID {
			count++
		}
	}
	return count
}

func itemByID(t *testing.T, result *BulkResult, documentID int) BulkItemResult {
	t.Helper()
	for _, item := range result.Items {
		if item.DocumentID == documentID {
			return item
		}
	}
	t.Fatalf("no result item for document %d", documentID)
	return BulkItemResult{}
}

func TestBulkActionPartialFailure(t *testing.T) {
	applier := &fakeApplier{
		failures: map[int]error{
			2: errs.New(errs.ErrPreconditionFailed, "document 2 is in terminal status completed"),
			4: errs.New(errs.ErrPreconditionFailed, "document 4 is in terminal status completed"),
		},
	}
	svc := &BulkService{applier: applier, itemTimeout: time.Second}

	result, err := svc.ApplyBulkAction(context.Background(), 11, ActionAccept, ActionPayload{}, []int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("bulk call failed: %v", err)
	}
	if result.Succeeded != 3 || result.Failed != 2 {
		t.Fatalf("expected 3 succeeded and 2 failed, got %d and %d", result.Succeeded, result.Failed)
	}
	if len(result.Items) != 5 {
		t.Fatalf("expected an item per requested id, got %d", len(result.Items))
	}

	for _, id := range []int{2, 4} {
		item := itemByID(t, result, id)
		if item.Success {
			t.Fatalf("document %d should have failed", id)
		}
		if item.Code != errs.CodeOf(errs.ErrPreconditionFailed) {
			t.Fatalf("document %d: expected precondition code, got %s", id, item.Code)
		}
		if item.Message == "" {
			t.Fatalf("failed items carry their message")
		}
	}
	for _, id := range []int{1, 3, 5} {
		if !itemByID(t, result, id).Success {
			t.Fatalf("document %d should have succeeded", id)
		}
	}
}

func TestBulkActionDeduplicatesIDs(t *testing.T) {
	applier := &fakeApplier{}
	svc := &BulkService{applier: applier, itemTimeout: time.Second}

	result, err := svc.ApplyBulkAction(context.Background(), 11, ActionSign, ActionPayload{}, []int{7, 7, 8, 7, 8})
	if err != nil {
		t.Fatalf("bulk call failed: %v", err)
	}
	if result.Succeeded+result.Failed != 2 {
		t.Fatalf("expected 2 distinct items, got %d", result.Succeeded+result.Failed)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 result items, got %d", len(result.Items))
	}
	for _, id := range []int{7, 8} {
		if applier.callCount(id) != 1 {
			t.Fatalf("document %d applied %d times, want exactly once", id, applier.callCount(id))
		}
	}
}

func TestBulkActionRejectsEmptyRequest(t *testing.T) {
	svc := &BulkService{applier: &fakeApplier{}, itemTimeout: time.Second}

	if _, err := svc.ApplyBulkAction(context.Background(), 11, ActionAccept, ActionPayload{}, nil); !errs.IsNoEligibleItems(err) {
		t.Fatalf("expected no-eligible-items error, got %v", err)
	}
}

func TestBulkActionItemTimeout(t *testing.T) {
	applier := &fakeApplier{
		slow: map[int]time.Duration{2: time.Second},
	}
	svc := &BulkService{applier: applier, itemTimeout: 20 * time.Millisecond}

	result, err := svc.ApplyBulkAction(context.Background(), 11, ActionAccept, ActionPayload{}, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("bulk call failed: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded and 1 failed, got %d and %d", result.Succeeded, result.Failed)
	}
	item := itemByID(t, result, 2)
	if item.Success || item.Code != "timeout" {
		t.Fatalf("stuck item must fail with the timeout code, got %+v", item)
	}
}

func TestBulkItemTimeoutFromEnv(t *testing.T) {
	t.Setenv("BULK_ITEM_TIMEOUT_SECONDS", "3")
	if got := bulkItemTimeoutFromEnv(); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}

	t.Setenv("BULK_ITEM_TIMEOUT_SECONDS", "not-a-number")
	if got := bulkItemTimeoutFromEnv(); got != defaultBulkItemTimeout {
		t.Fatalf("expected the default on a bad value, got %v", got)
	}
}
