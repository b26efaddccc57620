package reminders

import (
	"context"

	"burnstop/internal/platform/store"
)

// Index is the per-organization time-ordered reminder index: a sorted set
// mapping service id to its next due timestamp. Upserts rely on the store's
// member-replacement semantics, no application-level locking.
type Index struct {
	store *store.Store
}

func NewIndex(s *store.Store) *Index {
	return &Index{store: s}
}

type Entry struct {
	ServiceID string
	DueTS     int64
}

// Schedule upserts the service's due timestamp. An already scheduled service
// gets its score replaced, never a second entry.
func (i *Index) Schedule(ctx context.Context, orgID, serviceID string, dueTS int64) error {
	return i.store.ZAdd(ctx, store.RemindersKey(orgID), serviceID, float64(dueTS))
}

// Unschedule removes the service's entry. No-op when absent.
func (i *Index) Unschedule(ctx context.Context, orgID, serviceID string) error {
	return i.store.ZRem(ctx, store.RemindersKey(orgID), serviceID)
}

// DueWithin returns entries with from <= due <= to, ascending by due
// timestamp. Order among equal timestamps is unspecified.
func (i *Index) DueWithin(ctx context.Context, orgID string, from, to int64) ([]Entry, error) {
	members, err := i.store.ZRangeByScore(ctx, store.RemindersKey(orgID), float64(from), float64(to))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, Entry{ServiceID: m.Member, DueTS: int64(m.Score)})
	}
	return entries, nil
}

// Drop removes the organization's entire index, used by the org delete
// cascade.
func (i *Index) Drop(ctx context.Context, orgID string) error {
	return i.store.Delete(ctx, store.RemindersKey(orgID))
}
