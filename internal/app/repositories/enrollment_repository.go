package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elihudev/elihudroom/internal/app/models"
)

// EnrollmentRepository handles database operations for the inscripciones
// table. Enrollments are the authoritative membership records; class rosters
// are derived from them on read.
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// IsEnrolled checks if a student already holds an enrollment in a class
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, classID, alumnoID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("inscripciones").
		Where(squirrel.Eq{"clase_id": classID, "alumno_id": alumnoID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// Create inserts an enrollment and returns its id. A unique constraint on
// (clase_id, alumno_id) backs the at-most-one-enrollment invariant.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (int64, error) {
	query := r.sb.Insert("inscripciones").
		Columns("clase_id", "alumno_id", "alumno_email", "fecha_inscripcion").
		Values(enrollment.ClaseID, enrollment.AlumnoID, enrollment.AlumnoEmail, enrollment.FechaInscripcion).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// GetClassIDsByAlumno retrieves the ids of all classes a student belongs to
func (r *EnrollmentRepository) GetClassIDsByAlumno(ctx context.Context, alumnoID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("clase_id").
		From("inscripciones").
		Where(squirrel.Eq{"alumno_id": alumnoID}).
		OrderBy("fecha_inscripcion DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var classIDs []int64
	for rows.Next() {
		var classID int64
		if err := rows.Scan(&classID); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		classIDs = append(classIDs, classID)
	}

	return classIDs, rows.Err()
}

// GetRosterByClassID retrieves the enrolled students of a class, oldest first
func (r *EnrollmentRepository) GetRosterByClassID(ctx context.Context, classID int64) ([]models.RosterEntry, error) {
	sql, args, err := r.sb.Select("alumno_id", "alumno_email", "fecha_inscripcion").
		From("inscripciones").
		Where(squirrel.Eq{"clase_id": classID}).
		OrderBy("fecha_inscripcion ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		if err := rows.Scan(&entry.AlumnoID, &entry.AlumnoEmail, &entry.FechaInscripcion); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		roster = append(roster, entry)
	}

	return roster, rows.Err()
}

// GetCountsByClassIDs retrieves enrollment counts for multiple classes
func (r *EnrollmentRepository) GetCountsByClassIDs(ctx context.Context, classIDs []int64) (map[int64]int, error) {
	if len(classIDs) == 0 {
		return make(map[int64]int), nil
	}

	sql, args, err := r.sb.Select("clase_id", "COUNT(*)").
		From("inscripciones").
		Where(squirrel.Eq{"clase_id": classIDs}).
		GroupBy("clase_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var classID int64
		var count int
		if err := rows.Scan(&classID, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[classID] = count
	}

	return counts, rows.Err()
}
