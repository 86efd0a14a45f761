package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/elihudev/elihudroom/internal/app/auth"
	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/dberrors"
	"github.com/elihudev/elihudroom/internal/pkg/joincode"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
)

// maxJoinCodeAttempts bounds the generate-and-insert retry loop. The code
// space is 36^6 so more than one collision in a row is already unlikely.
const maxJoinCodeAttempts = 5

// ClassService handles class lifecycle and listing
type ClassService interface {
	CreateClass(ctx context.Context, owner *models.User, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	GetClass(ctx context.Context, caller *models.User, classID int64) (*dto.ClassResponse, error)
	ListClasses(ctx context.Context, caller *models.User) (*dto.ClassListResponse, error)
	UpdateClass(ctx context.Context, caller *models.User, classID int64, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	DeleteClass(ctx context.Context, caller *models.User, classID int64) error
}

type classService struct {
	classes     ClassStore
	enrollments EnrollmentStore
	authz       *appauth.AuthorizationService
	feed        FeedPublisher
	logger      zerolog.Logger
}

// FeedPublisher receives feed lifecycle events for classes. The feed hub
// satisfies it.
type FeedPublisher interface {
	Publish(classID int64, posts []*models.Post)
	CloseClass(classID int64)
}

// NewClassService creates a new ClassService instance
func NewClassService(classes ClassStore, enrollments EnrollmentStore, authz *appauth.AuthorizationService, feed FeedPublisher) ClassService {
	return &classService{
		classes:     classes,
		enrollments: enrollments,
		authz:       authz,
		feed:        feed,
		logger:      logger.WithField("component", "class_service"),
	}
}

func (s *classService) CreateClass(ctx context.Context, owner *models.User, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	if owner == nil || !owner.IsTeacher() {
		return nil, apperrors.NewForbiddenError("only teachers can create classes")
	}
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apperrors.NewValidationError("nombre must not be empty")
	}

	class := &models.Class{
		Nombre:        nombre,
		Descripcion:   strings.TrimSpace(req.Descripcion),
		MaestroID:     owner.ID,
		MaestroName:   owner.Name,
		FechaCreacion: time.Now(),
	}

	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := joincode.Generate()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate join code")
			return nil, apperrors.NewStoreUnavailableError("could not generate a join code", err)
		}

		// Cheap pre-check; the unique constraint on codigo is the real guard.
		taken, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		class.Codigo = code
		id, err := s.classes.Create(ctx, class)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "clases_codigo_key") {
				s.logger.Debug().Str("codigo", code).Msg("Join code collided on insert, retrying")
				continue
			}
			s.logger.Error().Err(err).Msg("Failed to create class")
			return nil, err
		}
		class.ID = id

		s.logger.Info().Int64("classId", id).Int64("maestroId", owner.ID).Msg("Class created")
		resp := s.toClassResponse(class, 0, nil)
		return &resp, nil
	}

	return nil, apperrors.NewStoreUnavailableError("could not allocate a unique join code", nil)
}

func (s *classService) GetClass(ctx context.Context, caller *models.User, classID int64) (*dto.ClassResponse, error) {
	level, class, err := s.authz.RequireMember(ctx, caller, classID)
	if err != nil {
		return nil, err
	}

	counts, err := s.enrollments.GetCountsByClassIDs(ctx, []int64{classID})
	if err != nil {
		return nil, err
	}

	// The full roster is owner-only; members just see the head count.
	var roster []models.RosterEntry
	if level == appauth.AccessTeacher {
		roster, err = s.enrollments.GetRosterByClassID(ctx, classID)
		if err != nil {
			return nil, err
		}
	}

	resp := s.toClassResponse(class, counts[classID], roster)
	return &resp, nil
}

func (s *classService) ListClasses(ctx context.Context, caller *models.User) (*dto.ClassListResponse, error) {
	if caller == nil {
		return nil, apperrors.ErrTokenInvalid
	}

	var classes []*models.Class
	var err error
	if caller.IsTeacher() {
		classes, err = s.classes.GetByMaestroID(ctx, caller.ID)
	} else {
		var ids []int64
		ids, err = s.enrollments.GetClassIDsByAlumno(ctx, caller.ID)
		if err == nil {
			// Classes deleted since enrollment are silently absent.
			classes, err = s.classes.GetByIDs(ctx, ids)
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("userId", caller.ID).Msg("Failed to list classes")
		return nil, err
	}

	ids := make([]int64, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	counts, err := s.enrollments.GetCountsByClassIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClassListResponse{Classes: make([]dto.ClassResponse, 0, len(classes))}
	for _, c := range classes {
		resp.Classes = append(resp.Classes, s.toClassResponse(c, counts[c.ID], nil))
	}
	return resp, nil
}

func (s *classService) UpdateClass(ctx context.Context, caller *models.User, classID int64, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := s.authz.RequireOwner(ctx, caller, classID)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, apperrors.NewValidationError("nombre must not be empty")
		}
		class.Nombre = nombre
	}
	if req.Descripcion != nil {
		class.Descripcion = strings.TrimSpace(*req.Descripcion)
	}
	now := time.Now()
	class.FechaEdicion = &now

	if err := s.classes.Update(ctx, class); err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to update class")
		return nil, err
	}

	counts, err := s.enrollments.GetCountsByClassIDs(ctx, []int64{classID})
	if err != nil {
		return nil, err
	}
	resp := s.toClassResponse(class, counts[classID], nil)
	return &resp, nil
}

func (s *classService) DeleteClass(ctx context.Context, caller *models.User, classID int64) error {
	if _, err := s.authz.RequireOwner(ctx, caller, classID); err != nil {
		return err
	}

	posts, enrollments, err := s.classes.DeleteWithChildren(ctx, classID)
	if err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to delete class")
		return err
	}

	// Live feed watchers get a final empty snapshot before the hub drops
	// the class entry.
	s.feed.Publish(classID, nil)
	s.feed.CloseClass(classID)

	s.logger.Info().
		Int64("classId", classID).
		Int64("postsDeleted", posts).
		Int64("enrollmentsDeleted", enrollments).
		Msg("Class deleted with children")
	return nil
}

func (s *classService) toClassResponse(class *models.Class, count int, roster []models.RosterEntry) dto.ClassResponse {
	resp := dto.ClassResponse{
		ID:            class.ID,
		Nombre:        class.Nombre,
		Descripcion:   class.Descripcion,
		Codigo:        class.Codigo,
		MaestroID:     class.MaestroID,
		MaestroName:   class.MaestroName,
		FechaCreacion: class.FechaCreacion,
		FechaEdicion:  class.FechaEdicion,
		AlumnoCount:   count,
	}
	for _, entry := range roster {
		resp.Alumnos = append(resp.Alumnos, dto.RosterEntryResponse{
			AlumnoID:         entry.AlumnoID,
			AlumnoEmail:      entry.AlumnoEmail,
			FechaInscripcion: entry.FechaInscripcion,
		})
	}
	return resp
}
