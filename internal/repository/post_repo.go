package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-app/internal/domain"
)

// PostRepository define el contrato de persistencia para publicaciones.
// Las mutaciones de likes y comentarios son sentencias únicas: el lock de
// fila serializa toggles concurrentes sobre el mismo post.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	UpdateFields(ctx context.Context, id string, update domain.PostUpdate) (domain.Post, error)
	DeleteOne(ctx context.Context, id string) (int64, error)
	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) ([]string, error)
	AppendComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error)
	RemoveComment(ctx context.Context, postID, commentID string) ([]domain.Comment, error)
}

// PgPostRepository implementa PostRepository usando pgxpool.
type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

const postColumns = `id, user_id, title, author, content, likes, comments, created_at`

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, user_id, title, author, content, likes, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}
	comments, err := json.Marshal(post.Comments)
	if err != nil {
		return err
	}
	if post.Comments == nil {
		comments = []byte(`[]`)
	}
	_, err = r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.Title,
		post.Author,
		post.Content,
		likes,
		string(comments),
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgPostRepository) UpdateFields(ctx context.Context, id string, update domain.PostUpdate) (domain.Post, error) {
	const query = `
		UPDATE posts
		SET title   = COALESCE($2, title),
		    author  = COALESCE($3, author),
		    content = COALESCE($4, content)
		WHERE id = $1
		RETURNING ` + postColumns + `
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, update.Title, update.Author, update.Content))
}

func (r *PgPostRepository) DeleteOne(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM posts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgPostRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	const query = `DELETE FROM posts WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgPostRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM posts WHERE user_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(&count)
	return count, err
}

func (r *PgPostRepository) CountAll(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM posts`
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	return count, err
}

func (r *PgPostRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *PgPostRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ToggleLike agrega o quita el like en una sola sentencia atómica.
func (r *PgPostRepository) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	const query = `
		UPDATE posts
		SET likes = CASE
			WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
			ELSE array_append(likes, $2)
		END
		WHERE id = $1
		RETURNING likes
	`
	var likes []string
	err := r.pool.QueryRow(ctx, query, postID, userID).Scan(&likes)
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

func (r *PgPostRepository) AppendComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error) {
	const query = `
		UPDATE posts
		SET comments = comments || $2::jsonb
		WHERE id = $1
		RETURNING comments
	`
	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, err
	}
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, postID, string(payload)).Scan(&raw); err != nil {
		return nil, err
	}
	return decodeComments(raw)
}

// RemoveComment filtra un comentario por id reconstruyendo el array jsonb en
// una sola sentencia; pgx.ErrNoRows cubre tanto post como comentario ausente.
func (r *PgPostRepository) RemoveComment(ctx context.Context, postID, commentID string) ([]domain.Comment, error) {
	const query = `
		UPDATE posts
		SET comments = COALESCE(
			(SELECT jsonb_agg(c) FROM jsonb_array_elements(comments) AS c WHERE c->>'id' <> $2),
			'[]'::jsonb)
		WHERE id = $1
		  AND comments @> jsonb_build_array(jsonb_build_object('id', $2::text))
		RETURNING comments
	`
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, postID, commentID).Scan(&raw); err != nil {
		return nil, err
	}
	return decodeComments(raw)
}

func (r *PgPostRepository) scanOne(row pgx.Row) (domain.Post, error) {
	var (
		p   domain.Post
		raw []byte
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Author,
		&p.Content,
		&p.Likes,
		&raw,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.Comments, err = decodeComments(raw)
	if err != nil {
		return domain.Post{}, err
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return p, nil
}

func (r *PgPostRepository) scanAll(rows pgx.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func decodeComments(raw []byte) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	if len(raw) == 0 {
		return comments, nil
	}
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
