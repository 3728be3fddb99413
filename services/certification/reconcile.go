package certification

import (
	"context"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/utils"

	"go.uber.org/zap"
)

// Reconcile overwrites drifted counters with values recomputed from the certification
// collection. Providers without certifications are reset to zero.
//
// The bulk aggregate only picks candidates. Each candidate's counters are read, recomputed,
// and written back only if they did not change in between, so a concurrent review is never
// overwritten. A provider skipped that way is picked up by the next run.
func (s *DefaultCertificationService) Reconcile(ctx context.Context) (int, error) {
	scores, err := s.Repo.ProviderScores(ctx)
	if err != nil {
		return 0, err
	}
	byProvider := make(map[string]models.ProviderScore, len(scores))
	for _, sc := range scores {
		byProvider[sc.ProviderID] = sc
	}

	ids, err := s.Users.ListProviderIDs(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		snapshot, ok := byProvider[id]
		if !ok {
			snapshot = models.ProviderScore{ProviderID: id}
		}
		u, err := s.Users.GetByID(ctx, id)
		if err != nil {
			utils.GetLogger().Warn("reconcile: provider lookup failed", zap.String("provider", id), zap.Error(err))
			continue
		}
		if inSync(u, snapshot) {
			continue
		}

		ok, err = s.reconcileProvider(ctx, id)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// reconcileProvider repairs one provider and reports whether anything was written.
func (s *DefaultCertificationService) reconcileProvider(ctx context.Context, id string) (bool, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	seen := u.CertificationScore()
	want, err := s.Repo.ProviderScore(ctx, id)
	if err != nil {
		return false, err
	}
	if inSync(u, want) {
		return false, nil
	}

	err = s.Users.SetScore(ctx, want, seen)
	if apperrors.IsConflict(err) {
		utils.GetLogger().Info("reconcile: counters moved, skipping provider", zap.String("provider", id))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	utils.GetLogger().Info("reconciled provider score",
		zap.String("provider", id),
		zap.Int("from", seen.CertificationPoints),
		zap.Int("to", want.CertificationPoints),
	)
	return true, nil
}

func inSync(u *models.User, score models.ProviderScore) bool {
	return u.CertificationScore().SameCounters(score) &&
		u.CertificationLevel == models.CalculatedLevel(score.CertificationPoints)
}
