package auth

import (
	"context"
	"fmt"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
)

// AccessLevel is a user's relationship to a class
type AccessLevel int

const (
	// AccessNone means no relationship; callers must answer with NotFound so
	// class existence is never revealed to outsiders
	AccessNone AccessLevel = iota
	// AccessStudent means the user holds an enrollment in the class
	AccessStudent
	// AccessTeacher means the user owns the class
	AccessTeacher
)

// String returns a readable access level name
func (l AccessLevel) String() string {
	switch l {
	case AccessTeacher:
		return "teacher"
	case AccessStudent:
		return "student"
	default:
		return "none"
	}
}

// LevelFor is the pure access decision: teacher if the user owns the class,
// student if enrolled tells us an enrollment exists, none otherwise.
func LevelFor(user *models.User, class *models.Class, enrolled bool) AccessLevel {
	if user == nil || class == nil {
		return AccessNone
	}
	if user.ID == class.MaestroID {
		return AccessTeacher
	}
	if enrolled {
		return AccessStudent
	}
	return AccessNone
}

// ClassGetter fetches a class by id, nil if absent
type ClassGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Class, error)
}

// EnrollmentChecker reports whether a student holds an enrollment in a class
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, classID, alumnoID int64) (bool, error)
}

// AuthorizationService resolves access levels against stored classes and
// enrollments. Every class-scoped read or write goes through it first.
type AuthorizationService struct {
	classes     ClassGetter
	enrollments EnrollmentChecker
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(classes ClassGetter, enrollments EnrollmentChecker) *AuthorizationService {
	return &AuthorizationService{
		classes:     classes,
		enrollments: enrollments,
	}
}

// LevelForClass computes the caller's access level for a class. A missing
// class yields ErrClassNotFound.
func (s *AuthorizationService) LevelForClass(ctx context.Context, user *models.User, classID int64) (AccessLevel, *models.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		logger.Error().Err(err).Int64("classID", classID).Msg("Error fetching class for access check")
		return AccessNone, nil, fmt.Errorf("error getting class: %w", err)
	}
	if class == nil {
		return AccessNone, nil, apperrors.ErrClassNotFound
	}

	if user != nil && user.ID == class.MaestroID {
		return AccessTeacher, class, nil
	}

	enrolled := false
	if user != nil {
		enrolled, err = s.enrollments.IsEnrolled(ctx, classID, user.ID)
		if err != nil {
			logger.Error().Err(err).Int64("classID", classID).Int64("userID", user.ID).Msg("Error checking enrollment for access check")
			return AccessNone, nil, fmt.Errorf("error checking enrollment: %w", err)
		}
	}

	return LevelFor(user, class, enrolled), class, nil
}

// RequireMember validates that the caller may read the class. Outsiders get
// ErrClassNotFound, not Forbidden, so they learn nothing.
func (s *AuthorizationService) RequireMember(ctx context.Context, user *models.User, classID int64) (AccessLevel, *models.Class, error) {
	level, class, err := s.LevelForClass(ctx, user, classID)
	if err != nil {
		return AccessNone, nil, err
	}
	if level == AccessNone {
		return AccessNone, nil, apperrors.ErrClassNotFound
	}
	return level, class, nil
}

// RequireOwner validates that the caller owns the class. Enrolled students
// get Forbidden; outsiders get NotFound.
func (s *AuthorizationService) RequireOwner(ctx context.Context, user *models.User, classID int64) (*models.Class, error) {
	level, class, err := s.LevelForClass(ctx, user, classID)
	if err != nil {
		return nil, err
	}
	switch level {
	case AccessTeacher:
		return class, nil
	case AccessStudent:
		return nil, apperrors.NewForbiddenError("only the class owner may perform this action")
	default:
		return nil, apperrors.ErrClassNotFound
	}
}
