package services

import (
	"context"
	"time"

	"github.com/elihudev/elihudroom/internal/app/models"
)

// Store interfaces consumed by the services. The pgx-backed repositories
// satisfy them in production; tests substitute in-memory fakes.

// UserStore persists user records
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenUserID(ctx context.Context, token string) (int64, error)
	DeleteToken(ctx context.Context, token string) error
}

// ClassStore persists class records
type ClassStore interface {
	Create(ctx context.Context, class *models.Class) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	GetByCode(ctx context.Context, codigo string) (*models.Class, error)
	CodeExists(ctx context.Context, codigo string) (bool, error)
	GetByMaestroID(ctx context.Context, maestroID int64) ([]*models.Class, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	DeleteWithChildren(ctx context.Context, classID int64) (postsDeleted, enrollmentsDeleted int64, err error)
}

// EnrollmentStore persists enrollment records
type EnrollmentStore interface {
	IsEnrolled(ctx context.Context, classID, alumnoID int64) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) (int64, error)
	GetClassIDsByAlumno(ctx context.Context, alumnoID int64) ([]int64, error)
	GetRosterByClassID(ctx context.Context, classID int64) ([]models.RosterEntry, error)
	GetCountsByClassIDs(ctx context.Context, classIDs []int64) (map[int64]int, error)
}

// PostStore persists post records
type PostStore interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByClassID(ctx context.Context, classID int64) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
}
