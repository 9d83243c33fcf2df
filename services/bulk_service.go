package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"document-tracking-api/errs"
	"document-tracking-api/models"

	"github.com/samber/lo"
)

const defaultBulkItemTimeout = 10 * time.Second

// ActionApplier is the routing-engine surface the bulk coordinator fans out
// over.
type ActionApplier interface {
	ApplyAction(ctx context.Context, actorID, documentID int, action string, payload ActionPayload) (*models.Document, error)
}

// BulkItemResult is the outcome for one document id in a bulk call.
type BulkItemResult struct {
	DocumentID int    `json:"document_id"`
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// BulkResult aggregates a bulk call. Succeeded+Failed always equals the
// number of distinct requested ids, and every id appears exactly once in
// Items.
type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// BulkService fans one action out over a set of documents. Items are applied
// independently and concurrently: a failure never aborts its siblings, and
// there is no rollback across ids. Each successful item writes its own
// action-log entry; there is no separate bulk audit entity.
type BulkService struct {
	applier     ActionApplier
	itemTimeout time.Duration
}

func NewBulkService(applier ActionApplier) *BulkService {
	return &BulkService{
		applier:     applier,
		itemTimeout: bulkItemTimeoutFromEnv(),
	}
}

func bulkItemTimeoutFromEnv() time.Duration {
	raw := os.Getenv("BULK_ITEM_TIMEOUT_SECONDS")
	if raw == "" {
		return defaultBulkItemTimeout
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultBulkItemTimeout
	}
	return time.Duration(seconds) * time.Second
}

// ApplyBulkAction applies one action to every distinct id and reports the
// aggregate. An empty id set is rejected up front rather than silently
// issuing zero calls. Per-item timeouts keep one stuck call from stalling
// the whole aggregate; timed-out items count as failures and are not retried.
func (s *BulkService) ApplyBulkAction(ctx context.Context, actorID int, action string, payload ActionPayload, documentIDs []int) (*BulkResult, error) {
	ids := lo.Uniq(documentIDs)
	if len(ids) == 0 {
		return nil, errs.New(errs.ErrNoEligibleItems, "bulk request contains no document ids")
	}

	items := make([]BulkItemResult, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, documentID int) {
			defer wg.Done()
			itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
			defer cancel()

			_, err := s.applier.ApplyAction(itemCtx, actorID, documentID, action, payload)
			if err != nil {
				code, message := errs.CodeOf(err), errs.MessageOf(err)
				if errors.Is(err, context.DeadlineExceeded) {
					code, message = "timeout", "action timed out"
				}
				items[i] = BulkItemResult{
					DocumentID: documentID,
					Success:    false,
					Code:       code,
					Message:    message,
				}
				return
			}
			items[i] = BulkItemResult{DocumentID: documentID, Success: true}
		}(i, id)
	}
	wg.Wait()

	result := &BulkResult{Items: items}
	for _, item := range items {
		if item.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}
