package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
)

type fakeRewardsRepo struct {
	points     map[string]int
	thresholds []models.TrophyThreshold
}

func (f *fakeRewardsRepo) GetPoints(ctx context.Context, studentID string) (int, error) {
	return f.points[studentID], nil
}

func (f *fakeRewardsRepo) ListThresholds(ctx context.Context) ([]models.TrophyThreshold, error) {
	return f.thresholds, nil
}

func medalThresholds() []models.TrophyThreshold {
	return []models.TrophyThreshold{
		{ID: "th-1", Label: "Bronze", RequiredPoints: 0},
		{ID: "th-2", Label: "Silver", RequiredPoints: 50},
		{ID: "th-3", Label: "Gold", RequiredPoints: 100},
	}
}

func TestTrophyForPicksHighestReachedThreshold(t *testing.T) {
	thresholds := medalThresholds()

	cases := []struct {
		points int
		want   string
	}{
		{0, "Bronze"},
		{49, "Bronze"},
		{50, "Silver"},
		{75, "Silver"},
		{100, "Gold"},
		{1000, "Gold"},
	}
	for _, tc := range cases {
		trophy := TrophyFor(tc.points, thresholds)
		require.NotNil(t, trophy, "points=%d", tc.points)
		require.Equal(t, tc.want, *trophy, "points=%d", tc.points)
	}
}

func TestTrophyForBelowLowestThreshold(t *testing.T) {
	thresholds := []models.TrophyThreshold{
		{ID: "th-1", Label: "Bronze", RequiredPoints: 10},
	}
	require.Nil(t, TrophyFor(5, thresholds))
}

func TestTrophyForEmptyTable(t *testing.T) {
	require.Nil(t, TrophyFor(42, nil))
}

func TestStudentRewardsCombinesPointsAndTrophy(t *testing.T) {
	repo := &fakeRewardsRepo{
		points:     map[string]int{"stu-1": 75},
		thresholds: medalThresholds(),
	}
	svc := NewRewardsService(repo, zap.NewNop())

	rewards, err := svc.StudentRewards(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, 75, rewards.Points)
	require.NotNil(t, rewards.Trophy)
	require.Equal(t, "Silver", *rewards.Trophy)
}

func TestStudentRewardsUnknownStudentHasZeroPoints(t *testing.T) {
	repo := &fakeRewardsRepo{thresholds: medalThresholds()}
	svc := NewRewardsService(repo, zap.NewNop())

	rewards, err := svc.StudentRewards(context.Background(), "stu-unknown")
	require.NoError(t, err)
	require.Zero(t, rewards.Points)
	require.NotNil(t, rewards.Trophy)
	require.Equal(t, "Bronze", *rewards.Trophy)
}
