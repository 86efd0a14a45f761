// Package seed creates demo data for local development
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/elihudev/elihudroom/internal/app/models"
	appRepos "github.com/elihudev/elihudroom/internal/app/repositories"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	pkgAuth "github.com/elihudev/elihudroom/internal/pkg/auth"
)

// CreateDemoData creates a demo teacher, student and class so a fresh
// database has something to look at. Existing rows are left alone, so
// running it twice is harmless.
func CreateDemoData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	classRepo := appRepos.NewClassRepository(dbPool)
	enrollmentRepo := appRepos.NewEnrollmentRepository(dbPool)

	lgr.Info().Msg("Checking/Creating demo data...")
	var finalErr error

	teacherID, err := seedUser(ctx, userRepo, "maestro@elihudroom.app", "Profesora Demo", appModels.RoleMaestro)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo teacher")
		finalErr = errors.Join(finalErr, err)
	}

	studentID, err := seedUser(ctx, userRepo, "alumno@elihudroom.app", "Alumno Demo", appModels.RoleAlumno)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo student")
		finalErr = errors.Join(finalErr, err)
	}

	if teacherID == 0 {
		return finalErr
	}

	classes, err := classRepo.GetByMaestroID(ctx, teacherID)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking demo classes")
		return errors.Join(finalErr, err)
	}
	if len(classes) > 0 {
		return finalErr
	}

	teacher, err := userRepo.GetUserByID(ctx, teacherID)
	if err != nil {
		return errors.Join(finalErr, err)
	}

	class := &appModels.Class{
		Nombre:        "Clase de Bienvenida",
		Descripcion:   "Clase de demostración creada automáticamente",
		Codigo:        "DEMO01",
		MaestroID:     teacher.ID,
		MaestroName:   teacher.Name,
		FechaCreacion: time.Now(),
	}
	classID, err := classRepo.Create(ctx, class)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo class")
		return errors.Join(finalErr, err)
	}

	if studentID > 0 {
		student, err := userRepo.GetUserByID(ctx, studentID)
		if err != nil {
			return errors.Join(finalErr, err)
		}
		_, err = enrollmentRepo.Create(ctx, &appModels.Enrollment{
			ClaseID:          classID,
			AlumnoID:         student.ID,
			AlumnoEmail:      student.Email,
			FechaInscripcion: time.Now(),
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Error enrolling demo student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Int64("classId", classID).Msg("Demo data created")
	return finalErr
}

// seedUser creates a user unless the email is already taken, in which case
// the existing user's id is returned.
func seedUser(ctx context.Context, userRepo *appRepos.UserRepository, email, name string, role appModels.RoleType) (int64, error) {
	hashed, err := pkgAuth.HashPassword("demo-password")
	if err != nil {
		return 0, err
	}

	id, err := userRepo.CreateUser(ctx, &appModels.User{
		Email:    email,
		Password: hashed,
		Name:     name,
		Role:     role,
	})
	if err == nil {
		return id, nil
	}
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		existing, errGet := userRepo.GetUserByEmail(ctx, email)
		if errGet != nil {
			return 0, errGet
		}
		return existing.ID, nil
	}
	return 0, err
}
