package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/dberrors"
	"github.com/elihudev/elihudroom/internal/pkg/joincode"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
)

// EnrollmentService handles join-by-code
type EnrollmentService interface {
	JoinClass(ctx context.Context, student *models.User, codigo string) (*dto.ClassResponse, error)
}

type enrollmentService struct {
	classes     ClassStore
	enrollments EnrollmentStore
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService instance
func NewEnrollmentService(classes ClassStore, enrollments EnrollmentStore) EnrollmentService {
	return &enrollmentService{
		classes:     classes,
		enrollments: enrollments,
		logger:      logger.WithField("component", "enrollment_service"),
	}
}

// JoinClass enrolls a student in the class behind a join code. The code match
// is the only credential; codes are normalized to uppercase first. Joining a
// class the student already belongs to yields ErrAlreadyEnrolled and leaves
// the existing enrollment untouched.
func (s *enrollmentService) JoinClass(ctx context.Context, student *models.User, codigo string) (*dto.ClassResponse, error) {
	if student == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if student.IsTeacher() {
		return nil, apperrors.NewForbiddenError("teachers cannot join classes as students")
	}

	code := joincode.Normalize(codigo)
	if !joincode.IsWellFormed(code) {
		// Malformed codes match nothing, so the answer is the same as for
		// an unknown code.
		return nil, apperrors.ErrCodeNotFound
	}

	class, err := s.classes.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("codigo", code).Msg("Failed to look up class by code")
		return nil, err
	}
	if class == nil {
		return nil, apperrors.ErrCodeNotFound
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, class.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperrors.ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		ClaseID:          class.ID,
		AlumnoID:         student.ID,
		AlumnoEmail:      student.Email,
		FechaInscripcion: time.Now(),
	}
	if _, err := s.enrollments.Create(ctx, enrollment); err != nil {
		// Two concurrent joins race past the IsEnrolled check; the unique
		// constraint turns the loser into the same answer.
		if dberrors.IsDuplicateConstraintError(err, "inscripciones_clase_id_alumno_id_key") {
			return nil, apperrors.ErrAlreadyEnrolled
		}
		s.logger.Error().Err(err).Int64("classId", class.ID).Int64("alumnoId", student.ID).Msg("Failed to create enrollment")
		return nil, err
	}

	s.logger.Info().Int64("classId", class.ID).Int64("alumnoId", student.ID).Msg("Student joined class")

	counts, err := s.enrollments.GetCountsByClassIDs(ctx, []int64{class.ID})
	if err != nil {
		return nil, err
	}

	return &dto.ClassResponse{
		ID:            class.ID,
		Nombre:        class.Nombre,
		Descripcion:   class.Descripcion,
		Codigo:        class.Codigo,
		MaestroID:     class.MaestroID,
		MaestroName:   class.MaestroName,
		FechaCreacion: class.FechaCreacion,
		FechaEdicion:  class.FechaEdicion,
		AlumnoCount:   counts[class.ID],
	}, nil
}
