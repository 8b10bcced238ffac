package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRewardsRepositoryIncrementPoints(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRewardsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id) DO UPDATE SET")).
		WithArgs("stu-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementPoints(context.Background(), nil, "stu-1", 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardsRepositoryGetPointsDefaultsToZero(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRewardsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT points FROM student_points WHERE student_id = $1")).
		WithArgs("stu-unknown").
		WillReturnRows(sqlmock.NewRows([]string{"points"}))

	points, err := repo.GetPoints(context.Background(), "stu-unknown")
	require.NoError(t, err)
	require.Zero(t, points)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRewardsRepositoryListThresholdsOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRewardsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "label", "required_points"}).
		AddRow("th-1", "Bronze", 0).
		AddRow("th-2", "Silver", 50).
		AddRow("th-3", "Gold", 100)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY required_points ASC")).
		WillReturnRows(rows)

	thresholds, err := repo.ListThresholds(context.Background())
	require.NoError(t, err)
	require.Len(t, thresholds, 3)
	require.Equal(t, "Bronze", thresholds[0].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}
