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

// ClassRepository handles database operations for the clases table
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const classColumns = "id, nombre, descripcion, codigo, maestro_id, maestro_name, fecha_creacion, fecha_edicion"

func scanClass(row pgx.Row) (*models.Class, error) {
	var class models.Class
	err := row.Scan(
		&class.ID,
		&class.Nombre,
		&class.Descripcion,
		&class.Codigo,
		&class.MaestroID,
		&class.MaestroName,
		&class.FechaCreacion,
		&class.FechaEdicion,
	)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a new class and returns its id. A unique constraint on
// codigo backs the join-code uniqueness invariant; callers must treat a
// unique violation as a retryable collision.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) (int64, error) {
	query := r.sb.Insert("clases").
		Columns("nombre", "descripcion", "codigo", "maestro_id", "maestro_name", "fecha_creacion").
		Values(class.Nombre, class.Descripcion, class.Codigo, class.MaestroID, class.MaestroName, class.FechaCreacion).
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

// GetByID retrieves a class by id, returning nil if it does not exist
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.sb.Select(classColumns).
		From("clases").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	class, err := scanClass(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return class, nil
}

// GetByCode retrieves the class with the given join code, nil if none
func (r *ClassRepository) GetByCode(ctx context.Context, codigo string) (*models.Class, error) {
	sql, args, err := r.sb.Select(classColumns).
		From("clases").
		Where(squirrel.Eq{"codigo": codigo}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	class, err := scanClass(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return class, nil
}

// CodeExists checks whether a join code is already taken
func (r *ClassRepository) CodeExists(ctx context.Context, codigo string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("clases").
		Where(squirrel.Eq{"codigo": codigo}).
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

// GetByMaestroID retrieves all classes owned by a teacher, newest first
func (r *ClassRepository) GetByMaestroID(ctx context.Context, maestroID int64) ([]*models.Class, error) {
	sql, args, err := r.sb.Select(classColumns).
		From("clases").
		Where(squirrel.Eq{"maestro_id": maestroID}).
		OrderBy("fecha_creacion DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryClasses(ctx, sql, args)
}

// GetByIDs retrieves the classes with the given ids. Ids that no longer
// resolve are simply absent from the result, not an error.
func (r *ClassRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Class, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := r.sb.Select(classColumns).
		From("clases").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("fecha_creacion DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryClasses(ctx, sql, args)
}

func (r *ClassRepository) queryClasses(ctx context.Context, sql string, args []interface{}) ([]*models.Class, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var classes []*models.Class
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		classes = append(classes, class)
	}

	return classes, rows.Err()
}

// Update persists metadata changes (nombre, descripcion, fecha_edicion).
// The join code is never updated.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Update("clases").
		Set("nombre", class.Nombre).
		Set("descripcion", class.Descripcion).
		Set("fecha_edicion", class.FechaEdicion).
		Where(squirrel.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}

// DeleteWithChildren removes a class together with its posts and enrollments
// in one transaction, children first. If any child delete fails the class row
// survives untouched; foreign keys additionally forbid orphaned children.
func (r *ClassRepository) DeleteWithChildren(ctx context.Context, classID int64) (postsDeleted, enrollmentsDeleted int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	posts, err := tx.Exec(ctx, `DELETE FROM publicaciones WHERE clase_id = $1`, classID)
	if err != nil {
		return 0, 0, fmt.Errorf("error deleting class posts: %w", err)
	}

	enrollments, err := tx.Exec(ctx, `DELETE FROM inscripciones WHERE clase_id = $1`, classID)
	if err != nil {
		return 0, 0, fmt.Errorf("error deleting class enrollments: %w", err)
	}

	class, err := tx.Exec(ctx, `DELETE FROM clases WHERE id = $1`, classID)
	if err != nil {
		return 0, 0, fmt.Errorf("error deleting class: %w", err)
	}
	if class.RowsAffected() == 0 {
		return 0, 0, fmt.Errorf("no rows affected")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return posts.RowsAffected(), enrollments.RowsAffected(), nil
}
