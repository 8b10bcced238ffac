package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type rewardsRepository interface {
	GetPoints(ctx context.Context, studentID string) (int, error)
	ListThresholds(ctx context.Context) ([]models.TrophyThreshold, error)
}

// RewardsService derives trophy tiers from accumulated lesson points.
type RewardsService struct {
	repo   rewardsRepository
	logger *zap.Logger
}

// NewRewardsService constructs RewardsService.
func NewRewardsService(repo rewardsRepository, logger *zap.Logger) *RewardsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RewardsService{repo: repo, logger: logger}
}

// TrophyFor returns the label of the highest threshold not exceeding points,
// or nil when every threshold is above it. Thresholds must be sorted by
// required points ascending.
func TrophyFor(points int, thresholds []models.TrophyThreshold) *string {
	var trophy *string
	for i := range thresholds {
		if thresholds[i].RequiredPoints > points {
			break
		}
		trophy = &thresholds[i].Label
	}
	return trophy
}

// StudentRewards returns the student's point total and current trophy tier.
// Students with no counter yet hold zero points.
func (s *RewardsService) StudentRewards(ctx context.Context, studentID string) (*models.StudentRewards, error) {
	points, err := s.repo.GetPoints(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student points")
	}
	thresholds, err := s.repo.ListThresholds(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trophy thresholds")
	}
	return &models.StudentRewards{
		StudentID: studentID,
		Points:    points,
		Trophy:    TrophyFor(points, thresholds),
	}, nil
}
