package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/elihudev/elihudroom/internal/app/auth"
	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/joincode"
)

func newClassServiceFixture() (ClassService, *fakeClassStore, *fakeEnrollmentStore, *fakeFeed) {
	classes := newFakeClassStore()
	enrollments := newFakeEnrollmentStore()
	feed := newFakeFeed()
	authz := appauth.NewAuthorizationService(classes, enrollments)
	return NewClassService(classes, enrollments, authz, feed), classes, enrollments, feed
}

func seedClass(t *testing.T, classes *fakeClassStore, owner *models.User, codigo string) *models.Class {
	t.Helper()
	class := &models.Class{
		Nombre:        "Biología",
		Codigo:        codigo,
		MaestroID:     owner.ID,
		MaestroName:   owner.Name,
		FechaCreacion: time.Now(),
	}
	id, err := classes.Create(context.Background(), class)
	require.NoError(t, err)
	class.ID = id
	return class
}

func TestCreateClass(t *testing.T) {
	svc, _, _, _ := newClassServiceFixture()
	owner := teacherUser(1)

	resp, err := svc.CreateClass(context.Background(), owner, &dto.CreateClassRequest{
		Nombre:      "  Biología 101  ",
		Descripcion: "Celulas y más",
	})
	require.NoError(t, err)

	assert.Equal(t, "Biología 101", resp.Nombre)
	assert.Equal(t, owner.ID, resp.MaestroID)
	assert.Equal(t, owner.Name, resp.MaestroName)
	assert.Equal(t, 0, resp.AlumnoCount)
	assert.Nil(t, resp.FechaEdicion)
	assert.True(t, joincode.IsWellFormed(resp.Codigo), "generated code %q must be well formed", resp.Codigo)
}

func TestCreateClassGeneratesDistinctCodes(t *testing.T) {
	svc, _, _, _ := newClassServiceFixture()
	owner := teacherUser(1)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		resp, err := svc.CreateClass(context.Background(), owner, &dto.CreateClassRequest{Nombre: "Clase"})
		require.NoError(t, err)
		assert.False(t, seen[resp.Codigo], "duplicate join code %q", resp.Codigo)
		seen[resp.Codigo] = true
	}
}

func TestCreateClassRetriesTakenCodes(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	owner := teacherUser(1)

	// The first two generated codes look taken; the third draw succeeds.
	classes.codeExistsCollisions = 2

	resp, err := svc.CreateClass(context.Background(), owner, &dto.CreateClassRequest{Nombre: "Clase"})
	require.NoError(t, err)
	assert.True(t, joincode.IsWellFormed(resp.Codigo))
	assert.Equal(t, 0, classes.codeExistsCollisions, "pre-check was not consulted for every draw")
}

func TestCreateClassRetriesOnInsertCollision(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	owner := teacherUser(1)

	// The pre-check passes but the insert loses to a concurrent allocation of
	// the same code; the unique constraint surfaces it and a fresh code is
	// drawn.
	classes.createCollisions = 2

	resp, err := svc.CreateClass(context.Background(), owner, &dto.CreateClassRequest{Nombre: "Clase"})
	require.NoError(t, err)
	assert.True(t, joincode.IsWellFormed(resp.Codigo))

	stored, err := classes.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, resp.Codigo, stored.Codigo)
	assert.Len(t, classes.classes, 1)
}

func TestCreateClassFailsWhenCodesExhausted(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	owner := teacherUser(1)

	// Every attempt collides: allocation must fail, never accept a duplicate.
	classes.createCollisions = maxJoinCodeAttempts

	_, err := svc.CreateClass(context.Background(), owner, &dto.CreateClassRequest{Nombre: "Clase"})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Empty(t, classes.classes)
}

func TestCreateClassRejectsStudents(t *testing.T) {
	svc, _, _, _ := newClassServiceFixture()

	_, err := svc.CreateClass(context.Background(), studentUser(2), &dto.CreateClassRequest{Nombre: "Clase"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateClassRejectsEmptyName(t *testing.T) {
	svc, _, _, _ := newClassServiceFixture()

	_, err := svc.CreateClass(context.Background(), teacherUser(1), &dto.CreateClassRequest{Nombre: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetClassRosterVisibility(t *testing.T) {
	svc, classes, enrollments, _ := newClassServiceFixture()
	owner := teacherUser(1)
	student := studentUser(2)
	class := seedClass(t, classes, owner, "AAAA11")

	_, err := enrollments.Create(context.Background(), &models.Enrollment{
		ClaseID:     class.ID,
		AlumnoID:    student.ID,
		AlumnoEmail: student.Email,
	})
	require.NoError(t, err)

	// Owner sees the roster
	asOwner, err := svc.GetClass(context.Background(), owner, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, asOwner.AlumnoCount)
	require.Len(t, asOwner.Alumnos, 1)
	assert.Equal(t, student.ID, asOwner.Alumnos[0].AlumnoID)

	// Members see the head count only
	asStudent, err := svc.GetClass(context.Background(), student, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, asStudent.AlumnoCount)
	assert.Empty(t, asStudent.Alumnos)
}

func TestGetClassHidesExistenceFromOutsiders(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	class := seedClass(t, classes, teacherUser(1), "AAAA11")

	_, err := svc.GetClass(context.Background(), studentUser(99), class.ID)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestListClassesByRole(t *testing.T) {
	svc, classes, enrollments, _ := newClassServiceFixture()
	owner := teacherUser(1)
	student := studentUser(2)
	class := seedClass(t, classes, owner, "AAAA11")
	other := seedClass(t, classes, teacherUser(3), "BBBB22")

	_, err := enrollments.Create(context.Background(), &models.Enrollment{
		ClaseID:     class.ID,
		AlumnoID:    student.ID,
		AlumnoEmail: student.Email,
	})
	require.NoError(t, err)

	owned, err := svc.ListClasses(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, owned.Classes, 1)
	assert.Equal(t, class.ID, owned.Classes[0].ID)
	assert.Equal(t, 1, owned.Classes[0].AlumnoCount)

	joined, err := svc.ListClasses(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, joined.Classes, 1)
	assert.Equal(t, class.ID, joined.Classes[0].ID)

	_ = other
}

func TestListClassesSkipsDeleted(t *testing.T) {
	svc, classes, enrollments, _ := newClassServiceFixture()
	owner := teacherUser(1)
	student := studentUser(2)
	kept := seedClass(t, classes, owner, "AAAA11")
	doomed := seedClass(t, classes, owner, "BBBB22")

	for _, c := range []*models.Class{kept, doomed} {
		_, err := enrollments.Create(context.Background(), &models.Enrollment{
			ClaseID:     c.ID,
			AlumnoID:    student.ID,
			AlumnoEmail: student.Email,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteClass(context.Background(), owner, doomed.ID))

	// The stale enrollment points at a class that no longer exists; the
	// listing silently skips it.
	joined, err := svc.ListClasses(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, joined.Classes, 1)
	assert.Equal(t, kept.ID, joined.Classes[0].ID)
}

func TestUpdateClass(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	owner := teacherUser(1)
	class := seedClass(t, classes, owner, "AAAA11")

	nombre := "Biología Avanzada"
	resp, err := svc.UpdateClass(context.Background(), owner, class.ID, &dto.UpdateClassRequest{Nombre: &nombre})
	require.NoError(t, err)

	assert.Equal(t, "Biología Avanzada", resp.Nombre)
	assert.Equal(t, class.Codigo, resp.Codigo, "join code must survive edits")
	require.NotNil(t, resp.FechaEdicion)
}

func TestUpdateClassPermissions(t *testing.T) {
	svc, classes, enrollments, _ := newClassServiceFixture()
	owner := teacherUser(1)
	student := studentUser(2)
	class := seedClass(t, classes, owner, "AAAA11")

	_, err := enrollments.Create(context.Background(), &models.Enrollment{
		ClaseID:     class.ID,
		AlumnoID:    student.ID,
		AlumnoEmail: student.Email,
	})
	require.NoError(t, err)

	nombre := "Otra"

	// An enrolled student is told no
	_, err = svc.UpdateClass(context.Background(), student, class.ID, &dto.UpdateClassRequest{Nombre: &nombre})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// An outsider learns nothing
	_, err = svc.UpdateClass(context.Background(), studentUser(99), class.ID, &dto.UpdateClassRequest{Nombre: &nombre})
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestDeleteClassClosesFeed(t *testing.T) {
	svc, classes, _, feed := newClassServiceFixture()
	owner := teacherUser(1)
	class := seedClass(t, classes, owner, "AAAA11")

	require.NoError(t, svc.DeleteClass(context.Background(), owner, class.ID))

	stored, err := classes.GetByID(context.Background(), class.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// Watchers got a final empty snapshot, then the hub dropped the class
	require.Len(t, feed.published[class.ID], 1)
	assert.Empty(t, feed.published[class.ID][0])
	assert.Equal(t, []int64{class.ID}, feed.closed)
}

func TestDeleteClassRequiresOwner(t *testing.T) {
	svc, classes, _, _ := newClassServiceFixture()
	class := seedClass(t, classes, teacherUser(1), "AAAA11")

	err := svc.DeleteClass(context.Background(), teacherUser(5), class.ID)
	assert.True(t, errors.Is(err, apperrors.ErrClassNotFound))
}
