package stocktaking

import (
	"context"
	"sort"
	"sync"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain"
)

// MemoryRepository is an in-memory stocktaking store for unit tests.
type MemoryRepository struct {
	mu    sync.Mutex
	docs  map[id.ID]Stocktaking
	lines map[id.ID][]Line
	order []id.ID
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:  make(map[id.ID]Stocktaking),
		lines: make(map[id.ID][]Line),
	}
}

// Create implements Repository.
func (r *MemoryRepository) Create(ctx context.Context, doc *Stocktaking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return apperror.NewDuplicate("stocktaking", "id", doc.ID.String())
	}
	stored := *doc
	stored.Lines = nil
	r.docs[doc.ID] = stored
	r.order = append(r.order, doc.ID)
	return nil
}

// GetByID implements Repository.
func (r *MemoryRepository) GetByID(ctx context.Context, docID id.ID) (*Stocktaking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("stocktaking", docID.String())
	}
	out := stored
	return &out, nil
}

// GetByIDForUpdate implements Repository.
func (r *MemoryRepository) GetByIDForUpdate(ctx context.Context, docID id.ID) (*Stocktaking, error) {
	return r.GetByID(ctx, docID)
}

// Update implements Repository.
func (r *MemoryRepository) Update(ctx context.Context, doc *Stocktaking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("stocktaking", doc.ID.String())
	}
	if stored.Version != doc.Version-1 {
		return apperror.NewConcurrentModification("stocktaking", doc.ID.String())
	}
	updated := *doc
	updated.Lines = nil
	r.docs[doc.ID] = updated
	return nil
}

// Delete implements Repository.
func (r *MemoryRepository) Delete(ctx context.Context, docID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("stocktaking", docID.String())
	}
	delete(r.docs, docID)
	delete(r.lines, docID)
	for i, oid := range r.order {
		if oid == docID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SaveLines implements Repository.
func (r *MemoryRepository) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]Line, len(lines))
	copy(stored, lines)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].LineNo < stored[j].LineNo })
	r.lines[docID] = stored
	return nil
}

// GetLines implements Repository.
func (r *MemoryRepository) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.lines[docID]
	out := make([]Line, len(stored))
	copy(out, stored)
	return out, nil
}

// List implements Repository.
func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktaking], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*Stocktaking
	for i := len(r.order) - 1; i >= 0; i-- {
		stored, ok := r.docs[r.order[i]]
		if !ok {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.FromDate != nil && stored.Date.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && stored.Date.After(*filter.ToDate) {
			continue
		}
		out := stored
		matched = append(matched, &out)
	}

	result := domain.ListResult[*Stocktaking]{
		TotalCount: int64(len(matched)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	result.Items = matched
	return result, nil
}

// HistorySummary implements Repository.
func (r *MemoryRepository) HistorySummary(ctx context.Context) ([]SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionSummary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		stored, ok := r.docs[r.order[i]]
		if !ok {
			continue
		}
		summary := SessionSummary{
			ID:     stored.ID,
			Number: stored.Number,
			Date:   stored.Date,
		}
		for _, line := range r.lines[stored.ID] {
			summary.ProductsCount++
			switch {
			case line.Difference == nil || *line.Difference == 0:
				summary.MatchedCount++
			case *line.Difference < 0:
				summary.ShortageCount++
			default:
				summary.OverageCount++
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
