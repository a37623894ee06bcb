package memory

import (
	"context"
	"sort"
	"sync"

	finance "e2d/internal/finance/domain"
)

// RecordRepository is an in-memory record store for demo/testing.
type RecordRepository struct {
	mu   sync.RWMutex
	data map[string]finance.Record
}

// NewRecordRepository constructs a repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{data: make(map[string]finance.Record)}
}

// ListByKind returns every record of one kind ordered by date.
func (r *RecordRepository) ListByKind(ctx context.Context, kind finance.Kind) ([]finance.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []finance.Record
	for _, record := range r.data {
		if record.Kind == kind {
			records = append(records, record)
		}
	}
	sortRecords(records)
	return records, nil
}

// List returns all records ordered by date.
func (r *RecordRepository) List(ctx context.Context) ([]finance.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]finance.Record, 0, len(r.data))
	for _, record := range r.data {
		records = append(records, record)
	}
	sortRecords(records)
	return records, nil
}

// Get loads one record by id.
func (r *RecordRepository) Get(ctx context.Context, id string) (*finance.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.data[id]
	if !ok {
		return nil, finance.ErrNotFound
	}
	return &record, nil
}

// Create inserts a record.
func (r *RecordRepository) Create(ctx context.Context, record *finance.Record) error {
	_ = ctx
	if record == nil {
		return finance.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[record.ID] = *record
	return nil
}

// Update overwrites an existing record.
func (r *RecordRepository) Update(ctx context.Context, record *finance.Record) error {
	_ = ctx
	if record == nil {
		return finance.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[record.ID]; !ok {
		return finance.ErrNotFound
	}
	r.data[record.ID] = *record
	return nil
}

// Delete removes a record by id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return finance.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func sortRecords(records []finance.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].RecordDate.Equal(records[j].RecordDate) {
			return records[i].ID < records[j].ID
		}
		return records[i].RecordDate.Before(records[j].RecordDate)
	})
}
