package live

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/deskhub/support-portal/internal/domain"
)

// Mutator issues independent single-ticket writes against the backing store.
// A write against a ticket that no longer exists returns
// domain.ErrTicketNotFound, which bulk operations treat as a silent skip.
type Mutator interface {
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) error
	Assign(ctx context.Context, id string, admin *string) error
	Delete(ctx context.Context, id string) error
}

// Confirmer gates destructive operations. Declining is a no-op, not an error.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// BulkResult collects the per-ticket outcomes of a bulk batch. Each write is
// its own unit: failures never roll back the writes that succeeded.
type BulkResult struct {
	Applied []string
	Skipped []string
	Failed  map[string]error
}

// Controller tracks the admin's multi-select set and applies bulk mutations
// to it. The selection is session-scoped and never persisted. The controller
// also holds the open detail-view handle so deletes can close it.
type Controller struct {
	mutator Mutator
	logger  *zap.Logger

	mu       sync.Mutex
	selected map[string]struct{}
	detail   string
}

// NewController builds a controller with an empty selection.
func NewController(mutator Mutator, logger *zap.Logger) *Controller {
	return &Controller{
		mutator:  mutator,
		logger:   logger,
		selected: make(map[string]struct{}),
	}
}

// Toggle adds id to the selection if absent and removes it if present,
// returning whether the id is selected afterward. The id is not required to
// exist in the current list; a concurrently deleted ticket simply becomes a
// stale reference that later bulk operations skip.
func (c *Controller) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false
	}
	c.selected[id] = struct{}{}
	return true
}

// IsSelected reports whether id is in the selection.
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// Selected returns the selected ids in sorted order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Count returns the selection size.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// Clear empties the selection.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]struct{})
}

// OpenDetail records the ticket whose detail view is open.
func (c *Controller) OpenDetail(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = id
}

// CloseDetail closes the detail view.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = ""
}

// Detail returns the open detail ticket id, if any.
func (c *Controller) Detail() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail, c.detail != ""
}

// BulkSetStatus sets the status on every selected ticket with one
// independent write each. The selection is not cleared.
func (c *Controller) BulkSetStatus(ctx context.Context, status domain.TicketStatus) (BulkResult, error) {
	if !status.Valid() {
		return BulkResult{}, fmt.Errorf("invalid ticket status %q", status)
	}
	ids := c.Selected()
	res := fanOut(ctx, ids, func(ctx context.Context, id string) error {
		return c.mutator.SetStatus(ctx, id, status)
	})
	c.logBulk("bulk_set_status", res)
	return res, nil
}

// BulkAssign sets the assignee on every selected ticket. A nil admin
// unassigns; an empty string is a distinct, literal assignment.
func (c *Controller) BulkAssign(ctx context.Context, admin *string) BulkResult {
	ids := c.Selected()
	res := fanOut(ctx, ids, func(ctx context.Context, id string) error {
		return c.mutator.Assign(ctx, id, admin)
	})
	c.logBulk("bulk_assign", res)
	return res
}

// BulkDelete deletes every selected ticket after confirmation. The returned
// bool reports whether the batch ran at all: an empty selection or a declined
// confirmation is a no-op. After the batch, ids that were deleted (or already
// gone) leave the selection; failed ids stay selected so the action can be
// re-issued. The detail view closes if its ticket was removed.
func (c *Controller) BulkDelete(ctx context.Context, confirm Confirmer) (BulkResult, bool) {
	ids := c.Selected()
	if len(ids) == 0 {
		return BulkResult{}, false
	}
	if confirm == nil || !confirm.Confirm(fmt.Sprintf("Delete %d selected requests?", len(ids))) {
		return BulkResult{}, false
	}

	res := fanOut(ctx, ids, func(ctx context.Context, id string) error {
		return c.mutator.Delete(ctx, id)
	})

	c.mu.Lock()
	for _, id := range res.Applied {
		delete(c.selected, id)
	}
	for _, id := range res.Skipped {
		delete(c.selected, id)
	}
	if c.detail != "" {
		if _, failed := res.Failed[c.detail]; !failed && contains(ids, c.detail) {
			c.detail = ""
		}
	}
	c.mu.Unlock()

	c.logBulk("bulk_delete", res)
	return res, true
}

// DeleteOne deletes a single ticket after confirmation, removing it from the
// selection and closing the detail view if it referenced the ticket. A stale
// reference is a silent no-op.
func (c *Controller) DeleteOne(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm("Are you sure you want to delete this request?") {
		return false, nil
	}

	err := c.mutator.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrTicketNotFound) {
		return true, err
	}

	c.mu.Lock()
	delete(c.selected, id)
	if c.detail == id {
		c.detail = ""
	}
	c.mu.Unlock()
	return true, nil
}

func (c *Controller) snapshotLocked() []string {
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Controller) logBulk(op string, res BulkResult) {
	if c.logger == nil {
		return
	}
	c.logger.Info("bulk mutation finished",
		zap.String("op", op),
		zap.Int("applied", len(res.Applied)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failed)),
	)
}

// fanOut issues one independent write per id and waits for all of them,
// collecting partial failures. Missing tickets are skipped, not failed.
func fanOut(ctx context.Context, ids []string, op func(context.Context, string) error) BulkResult {
	res := BulkResult{Failed: make(map[string]error)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := op(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				res.Applied = append(res.Applied, id)
			case errors.Is(err, domain.ErrTicketNotFound):
				res.Skipped = append(res.Skipped, id)
			default:
				res.Failed[id] = err
			}
		}(id)
	}
	wg.Wait()
	sort.Strings(res.Applied)
	sort.Strings(res.Skipped)
	return res
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
