package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

// PostService aplica las mutaciones de publicaciones: alta, edición,
// borrado con alcance de dueño, y el toggle de likes y comentarios.
type PostService struct {
	logger *zap.Logger
	posts  repository.PostRepository
	users  repository.UserRepository
	cache  FeedCache
}

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

func NewPostService(logger *zap.Logger, posts repository.PostRepository, users repository.UserRepository, cache FeedCache) *PostService {
	return &PostService{
		logger: logger,
		posts:  posts,
		users:  users,
		cache:  cache,
	}
}

// Create registra la publicación a nombre del llamador; la etiqueta de autor
// sale de su perfil, no del body.
func (s *PostService) Create(ctx context.Context, ownerID, title, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, ErrValidation
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		UserID:    owner.ID,
		Title:     strings.TrimSpace(title),
		Author:    owner.Name,
		Content:   content,
		Likes:     []string{},
		Comments:  []domain.Comment{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return domain.Post{}, err
	}
	s.invalidateFeed(ctx)
	return post, nil
}

// ToggleLike delega en la mutación atómica del store: quitar si el usuario ya
// figura en el set, agregar si no. Persistir y responder son pasos separados.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	likes, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return likes, nil
}

// AddComment agrega al final de la secuencia; nunca deduplica.
func (s *PostService) AddComment(ctx context.Context, postID, authorID, text string) ([]domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidation
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comment := domain.Comment{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Author:    author.Name,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	comments, err := s.posts.AppendComment(ctx, postID, comment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comments, nil
}

// RemoveComment quita un comentario por id. Puede hacerlo su autor o el dueño
// del post; cualquier otro llamador recibe ErrForbidden.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, callerID string) ([]domain.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var target *domain.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			target = &post.Comments[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if target.AuthorID != callerID && post.UserID != callerID {
		return nil, ErrForbidden
	}

	comments, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Otro request lo quitó entre la lectura y la mutación.
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comments, nil
}

// Update aplica una actualización parcial sobre un post propio.
func (s *PostService) Update(ctx context.Context, postID, callerID string, update domain.PostUpdate) (domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	if post.UserID != callerID {
		return domain.Post{}, ErrForbidden
	}

	updated, err := s.posts.UpdateFields(ctx, postID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	s.invalidateFeed(ctx)
	return updated, nil
}

// DeleteOne borra un post propio.
func (s *PostService) DeleteOne(ctx context.Context, postID, callerID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if post.UserID != callerID {
		return ErrForbidden
	}

	if _, err := s.posts.DeleteOne(ctx, postID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// DeleteAllByOwner borra todos los posts del llamador; cero posts es un
// resultado vacío exitoso, no un error.
func (s *PostService) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	deleted, err := s.posts.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.invalidateFeed(ctx)
	}
	return deleted, nil
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateGlobal(ctx); err != nil && s.logger != nil {
		s.logger.Warn("feed cache invalidate failed", zap.Error(err))
	}
}
