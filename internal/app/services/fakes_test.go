package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
)

// In-memory stores backing the service tests.

var (
	errUserMissing  = apperrors.ErrUserNotFound
	errClassMissing = errors.New("no rows affected")
	errPostMissing  = errors.New("no rows affected")
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	s.nextID++
	u := *user
	u.ID = s.nextID
	s.users[u.ID] = &u
	return u.ID, nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errUserMissing
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errUserMissing
	}
	copied := *u
	return &copied, nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]int64)}
}

func (s *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) GetTokenUserID(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	return userID, nil
}

func (s *fakeTokenStore) DeleteToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

type fakeClassStore struct {
	mu      sync.Mutex
	nextID  int64
	classes map[int64]*models.Class

	// counts returned by DeleteWithChildren
	postsDeleted       int64
	enrollmentsDeleted int64

	// forced join-code collisions: CodeExists answers true and Create fails
	// with a codigo unique violation this many times, whatever the code
	codeExistsCollisions int
	createCollisions     int
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{classes: make(map[int64]*models.Class)}
}

func (s *fakeClassStore) Create(_ context.Context, class *models.Class) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createCollisions > 0 {
		s.createCollisions--
		return 0, uniqueViolation("clases_codigo_key")
	}
	for _, c := range s.classes {
		if c.Codigo == class.Codigo {
			return 0, uniqueViolation("clases_codigo_key")
		}
	}
	s.nextID++
	c := *class
	c.ID = s.nextID
	s.classes[c.ID] = &c
	return c.ID, nil
}

func (s *fakeClassStore) GetByID(_ context.Context, id int64) (*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *fakeClassStore) GetByCode(_ context.Context, codigo string) (*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.classes {
		if c.Codigo == codigo {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeClassStore) CodeExists(_ context.Context, codigo string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codeExistsCollisions > 0 {
		s.codeExistsCollisions--
		return true, nil
	}
	for _, c := range s.classes {
		if c.Codigo == codigo {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeClassStore) GetByMaestroID(_ context.Context, maestroID int64) ([]*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Class
	for _, c := range s.classes {
		if c.MaestroID == maestroID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaCreacion.After(out[j].FechaCreacion) })
	return out, nil
}

func (s *fakeClassStore) GetByIDs(_ context.Context, ids []int64) ([]*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Class
	for _, id := range ids {
		if c, ok := s.classes[id]; ok {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeClassStore) Update(_ context.Context, class *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[class.ID]; !ok {
		return errClassMissing
	}
	copied := *class
	s.classes[class.ID] = &copied
	return nil
}

func (s *fakeClassStore) DeleteWithChildren(_ context.Context, classID int64) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[classID]; !ok {
		return 0, 0, errClassMissing
	}
	delete(s.classes, classID)
	return s.postsDeleted, s.enrollmentsDeleted, nil
}

type fakeEnrollmentStore struct {
	mu          sync.Mutex
	nextID      int64
	enrollments []*models.Enrollment

	// hideEnrollmentOnce makes the next IsEnrolled call answer false even
	// when an enrollment exists, simulating a lost race with a concurrent
	// insert.
	hideEnrollmentOnce bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{}
}

func (s *fakeEnrollmentStore) IsEnrolled(_ context.Context, classID, alumnoID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hideEnrollmentOnce {
		s.hideEnrollmentOnce = false
		return false, nil
	}
	for _, e := range s.enrollments {
		if e.ClaseID == classID && e.AlumnoID == alumnoID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeEnrollmentStore) Create(_ context.Context, enrollment *models.Enrollment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.ClaseID == enrollment.ClaseID && e.AlumnoID == enrollment.AlumnoID {
			return 0, uniqueViolation("inscripciones_clase_id_alumno_id_key")
		}
	}
	s.nextID++
	e := *enrollment
	e.ID = s.nextID
	s.enrollments = append(s.enrollments, &e)
	return e.ID, nil
}

func (s *fakeEnrollmentStore) GetClassIDsByAlumno(_ context.Context, alumnoID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, e := range s.enrollments {
		if e.AlumnoID == alumnoID {
			out = append(out, e.ClaseID)
		}
	}
	return out, nil
}

func (s *fakeEnrollmentStore) GetRosterByClassID(_ context.Context, classID int64) ([]models.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RosterEntry
	for _, e := range s.enrollments {
		if e.ClaseID == classID {
			out = append(out, models.RosterEntry{
				AlumnoID:         e.AlumnoID,
				AlumnoEmail:      e.AlumnoEmail,
				FechaInscripcion: e.FechaInscripcion,
			})
		}
	}
	return out, nil
}

func (s *fakeEnrollmentStore) GetCountsByClassIDs(_ context.Context, classIDs []int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[int64]int)
	for _, id := range classIDs {
		for _, e := range s.enrollments {
			if e.ClaseID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

type fakePostStore struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*models.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[int64]*models.Post)}
}

func (s *fakePostStore) Create(_ context.Context, post *models.Post) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := *post
	p.ID = s.nextID
	s.posts[p.ID] = &p
	return p.ID, nil
}

func (s *fakePostStore) GetByID(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakePostStore) GetByClassID(_ context.Context, classID int64) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Post
	for _, p := range s.posts {
		if p.ClaseID == classID {
			copied := *p
			out = append(out, &copied)
		}
	}
	// Newest first, ties by insertion order
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaCreacion.Equal(out[j].FechaCreacion) {
			return out[i].FechaCreacion.After(out[j].FechaCreacion)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakePostStore) Update(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return errPostMissing
	}
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return errPostMissing
	}
	delete(s.posts, id)
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	published map[int64][][]*models.Post
	closed    []int64
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{published: make(map[int64][][]*models.Post)}
}

func (f *fakeFeed) Publish(classID int64, posts []*models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[classID] = append(f.published[classID], posts)
}

func (f *fakeFeed) CloseClass(classID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, classID)
}

// Handy fixture users
func teacherUser(id int64) *models.User {
	return &models.User{ID: id, Email: "profe@elihudroom.app", Name: "Elena Vargas", Role: models.RoleMaestro, CreatedAt: time.Now()}
}

func studentUser(id int64) *models.User {
	return &models.User{ID: id, Email: "alumno@elihudroom.app", Name: "Marco Díaz", Role: models.RoleAlumno, CreatedAt: time.Now()}
}
