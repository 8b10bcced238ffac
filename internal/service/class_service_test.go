package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaris/lms-api/internal/models"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
)

type fakeClassRepo struct {
	classes map[string]*models.Class
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	if f.classes == nil {
		f.classes = make(map[string]*models.Class)
	}
	if class.ID == "" {
		class.ID = "class-new"
	}
	copied := *class
	f.classes[class.ID] = &copied
	return nil
}

func (f *fakeClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := f.classes[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClassRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	var list []models.Class
	for _, c := range f.classes {
		if c.TeacherID == teacherID {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (f *fakeClassRepo) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	if c, ok := f.classes[id]; ok {
		c.Status = status
	}
	return nil
}

func TestClassCreateStartsActive(t *testing.T) {
	repo := &fakeClassRepo{}
	svc := NewClassService(repo, nil, zap.NewNop())

	class, err := svc.Create(context.Background(), CreateClassRequest{
		TeacherID: "tch-1", SubjectID: "sub-1", SectionID: "sec-1",
	})
	require.NoError(t, err)
	require.Equal(t, models.ClassStatusActive, class.Status)
}

func TestClassCreateValidatesPayload(t *testing.T) {
	svc := NewClassService(&fakeClassRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateClassRequest{TeacherID: "tch-1"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassSetStatusRejectsUnknownLiteral(t *testing.T) {
	svc := NewClassService(&fakeClassRepo{}, nil, zap.NewNop())

	_, err := svc.SetStatus(context.Background(), "class-1", models.ClassStatus("archived"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestClassSetStatusArchivesWithoutDeleting(t *testing.T) {
	repo := &fakeClassRepo{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Status: models.ClassStatusActive},
	}}
	svc := NewClassService(repo, nil, zap.NewNop())

	class, err := svc.SetStatus(context.Background(), "class-1", models.ClassStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.ClassStatusCompleted, class.Status)
	require.Contains(t, repo.classes, "class-1")
}
