package memory

import (
	"context"
	"sort"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
)

type DisputeRepo struct{ s *Store }

func cloneDispute(d *models.Dispute) *models.Dispute {
	out := *d
	out.AdminNotes = append([]models.AdminNote(nil), d.AdminNotes...)
	out.Messages = append([]models.DisputeMessage(nil), d.Messages...)
	out.Evidence = append([]models.Evidence(nil), d.Evidence...)
	return &out
}

func (r *DisputeRepo) Create(ctx context.Context, dispute *models.Dispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.disputes[dispute.ID]; ok {
		return apperrors.Conflict("dispute already exists")
	}
	now := time.Now()
	dispute.CreatedAt = now
	dispute.UpdatedAt = now
	if dispute.AdminNotes == nil {
		dispute.AdminNotes = []models.AdminNote{}
	}
	if dispute.Messages == nil {
		dispute.Messages = []models.DisputeMessage{}
	}
	if dispute.Evidence == nil {
		dispute.Evidence = []models.Evidence{}
	}
	r.s.disputes[dispute.ID] = cloneDispute(dispute)
	return nil
}

func (r *DisputeRepo) GetByID(ctx context.Context, id string) (*models.Dispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.disputes[id]
	if !ok {
		return nil, apperrors.NotFound("dispute", id)
	}
	return cloneDispute(d), nil
}

func (r *DisputeRepo) List(ctx context.Context, f models.DisputeFilter) ([]models.Dispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	disputes := []models.Dispute{}
	for _, d := range r.s.disputes {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Party != "" && !d.IsParty(f.Party) {
			continue
		}
		if f.Assigned != "" && d.AssignedAdmin != f.Assigned {
			continue
		}
		disputes = append(disputes, *cloneDispute(d))
	}
	sort.Slice(disputes, func(i, j int) bool { return disputes[i].CreatedAt.After(disputes[j].CreatedAt) })
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return page(disputes, limit, f.Skip), nil
}

// update applies fn under the lock. When guarded is set, a terminal dispute is a conflict.
func (r *DisputeRepo) update(id string, guarded func(s models.DisputeStatus) bool, fn func(d *models.Dispute)) (*models.Dispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.disputes[id]
	if !ok {
		return nil, apperrors.NotFound("dispute", id)
	}
	if guarded != nil && !guarded(d.Status) {
		return nil, apperrors.Conflict("dispute is already %s", d.Status)
	}
	fn(d)
	return cloneDispute(d), nil
}

func notTerminal(s models.DisputeStatus) bool { return !s.IsTerminal() }

func (r *DisputeRepo) AddAdminNote(ctx context.Context, id string, note models.AdminNote) (*models.Dispute, error) {
	return r.update(id, nil, func(d *models.Dispute) {
		d.AdminNotes = append(d.AdminNotes, note)
		d.UpdatedAt = note.Timestamp
	})
}

func (r *DisputeRepo) AddMessage(ctx context.Context, id string, msg models.DisputeMessage) (*models.Dispute, error) {
	return r.update(id, nil, func(d *models.Dispute) {
		d.Messages = append(d.Messages, msg)
		d.UpdatedAt = msg.Timestamp
	})
}

func (r *DisputeRepo) AddEvidence(ctx context.Context, id string, evidence models.Evidence) (*models.Dispute, error) {
	return r.update(id, nil, func(d *models.Dispute) {
		d.Evidence = append(d.Evidence, evidence)
		d.UpdatedAt = evidence.UploadedAt
	})
}

func (r *DisputeRepo) Assign(ctx context.Context, id, adminID string) (*models.Dispute, error) {
	return r.update(id, notTerminal, func(d *models.Dispute) {
		d.AssignedAdmin = adminID
		if d.Status == models.DisputeOpen {
			d.Status = models.DisputeUnderReview
		}
		d.UpdatedAt = time.Now()
	})
}

func (r *DisputeRepo) UpdateStatus(ctx context.Context, id string, status models.DisputeStatus) (*models.Dispute, error) {
	guard := notTerminal
	if status == models.DisputeClosed {
		guard = func(s models.DisputeStatus) bool { return s != models.DisputeClosed }
	}
	return r.update(id, guard, func(d *models.Dispute) {
		d.Status = status
		d.UpdatedAt = time.Now()
	})
}

func (r *DisputeRepo) Resolve(ctx context.Context, id string, resolution models.Resolution) (*models.Dispute, error) {
	return r.update(id, notTerminal, func(d *models.Dispute) {
		d.Resolve(resolution)
	})
}

func (r *DisputeRepo) CountByStatus(ctx context.Context) (map[models.DisputeStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.DisputeStatus]int64{}
	for _, d := range r.s.disputes {
		counts[d.Status]++
	}
	return counts, nil
}
