package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
)

type stubClassGetter struct {
	classes map[int64]*models.Class
}

func (s *stubClassGetter) GetByID(_ context.Context, id int64) (*models.Class, error) {
	return s.classes[id], nil
}

type stubEnrollmentChecker struct {
	enrolled map[int64]map[int64]bool // classID -> alumnoID
}

func (s *stubEnrollmentChecker) IsEnrolled(_ context.Context, classID, alumnoID int64) (bool, error) {
	return s.enrolled[classID][alumnoID], nil
}

func newAuthzFixture() (*AuthorizationService, *models.User, *models.User, *models.User) {
	owner := &models.User{ID: 1, Email: "maestro@example.com", Role: models.RoleMaestro}
	student := &models.User{ID: 2, Email: "alumno@example.com", Role: models.RoleAlumno}
	outsider := &models.User{ID: 3, Email: "otro@example.com", Role: models.RoleAlumno}

	classes := &stubClassGetter{classes: map[int64]*models.Class{
		10: {ID: 10, Nombre: "Historia", Codigo: "AAAA11", MaestroID: owner.ID},
	}}
	enrollments := &stubEnrollmentChecker{enrolled: map[int64]map[int64]bool{
		10: {student.ID: true},
	}}

	return NewAuthorizationService(classes, enrollments), owner, student, outsider
}

func TestLevelFor(t *testing.T) {
	owner := &models.User{ID: 1}
	student := &models.User{ID: 2}
	class := &models.Class{ID: 10, MaestroID: 1}

	tests := []struct {
		name     string
		user     *models.User
		class    *models.Class
		enrolled bool
		want     AccessLevel
	}{
		{"owner", owner, class, false, AccessTeacher},
		{"owner enrollment flag ignored", owner, class, true, AccessTeacher},
		{"enrolled student", student, class, true, AccessStudent},
		{"outsider", student, class, false, AccessNone},
		{"nil user", nil, class, true, AccessNone},
		{"nil class", student, nil, true, AccessNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.user, tt.class, tt.enrolled))
		})
	}
}

func TestAccessLevelString(t *testing.T) {
	assert.Equal(t, "teacher", AccessTeacher.String())
	assert.Equal(t, "student", AccessStudent.String())
	assert.Equal(t, "none", AccessNone.String())
}

func TestLevelForClass(t *testing.T) {
	svc, owner, student, outsider := newAuthzFixture()
	ctx := context.Background()

	level, class, err := svc.LevelForClass(ctx, owner, 10)
	require.NoError(t, err)
	assert.Equal(t, AccessTeacher, level)
	require.NotNil(t, class)
	assert.Equal(t, "Historia", class.Nombre)

	level, _, err = svc.LevelForClass(ctx, student, 10)
	require.NoError(t, err)
	assert.Equal(t, AccessStudent, level)

	level, _, err = svc.LevelForClass(ctx, outsider, 10)
	require.NoError(t, err)
	assert.Equal(t, AccessNone, level)

	_, _, err = svc.LevelForClass(ctx, owner, 999)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestRequireMember(t *testing.T) {
	svc, owner, student, outsider := newAuthzFixture()
	ctx := context.Background()

	level, _, err := svc.RequireMember(ctx, owner, 10)
	require.NoError(t, err)
	assert.Equal(t, AccessTeacher, level)

	level, _, err = svc.RequireMember(ctx, student, 10)
	require.NoError(t, err)
	assert.Equal(t, AccessStudent, level)

	// Outsiders and anonymous callers can not tell a hidden class from a
	// missing one
	_, _, err = svc.RequireMember(ctx, outsider, 10)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	_, _, err = svc.RequireMember(ctx, nil, 10)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestRequireOwner(t *testing.T) {
	svc, owner, student, outsider := newAuthzFixture()
	ctx := context.Background()

	class, err := svc.RequireOwner(ctx, owner, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), class.ID)

	_, err = svc.RequireOwner(ctx, student, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.RequireOwner(ctx, outsider, 10)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}
