package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elihudev/elihudroom/internal/app/models"
)

// PostRepository handles database operations for the publicaciones table.
// Attachments are stored inline on the post row as JSONB.
type PostRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const postColumns = "id, clase_id, titulo, contenido, archivos, maestro_id, maestro_name, fecha_creacion, fecha_edicion"

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var archivos []byte
	err := row.Scan(
		&post.ID,
		&post.ClaseID,
		&post.Titulo,
		&post.Contenido,
		&archivos,
		&post.MaestroID,
		&post.MaestroName,
		&post.FechaCreacion,
		&post.FechaEdicion,
	)
	if err != nil {
		return nil, err
	}
	if len(archivos) > 0 {
		if err := json.Unmarshal(archivos, &post.Archivos); err != nil {
			return nil, fmt.Errorf("error decoding attachments: %w", err)
		}
	}
	return &post, nil
}

func encodeArchivos(archivos []models.Attachment) ([]byte, error) {
	if archivos == nil {
		archivos = []models.Attachment{}
	}
	data, err := json.Marshal(archivos)
	if err != nil {
		return nil, fmt.Errorf("error encoding attachments: %w", err)
	}
	return data, nil
}

// Create inserts a new post and returns its id
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	archivos, err := encodeArchivos(post.Archivos)
	if err != nil {
		return 0, err
	}

	query := r.sb.Insert("publicaciones").
		Columns("clase_id", "titulo", "contenido", "archivos", "maestro_id", "maestro_name", "fecha_creacion").
		Values(post.ClaseID, post.Titulo, post.Contenido, archivos, post.MaestroID, post.MaestroName, post.FechaCreacion).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a post by id, returning nil if it does not exist
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	sql, args, err := r.sb.Select(postColumns).
		From("publicaciones").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return post, nil
}

// GetByClassID retrieves every post in a class ordered by creation time
// descending; rows created in the same instant keep insertion order.
func (r *PostRepository) GetByClassID(ctx context.Context, classID int64) ([]*models.Post, error) {
	sql, args, err := r.sb.Select(postColumns).
		From("publicaciones").
		Where(squirrel.Eq{"clase_id": classID}).
		OrderBy("fecha_creacion DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Update persists titulo, contenido, the full replacement attachment list and
// fecha_edicion
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	archivos, err := encodeArchivos(post.Archivos)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Update("publicaciones").
		Set("titulo", post.Titulo).
		Set("contenido", post.Contenido).
		Set("archivos", archivos).
		Set("fecha_edicion", post.FechaEdicion).
		Where(squirrel.Eq{"id": post.ID}).
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

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("publicaciones").
		Where(squirrel.Eq{"id": id}).
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
