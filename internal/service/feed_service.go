package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

// FeedService arma páginas de publicaciones, propias o globales, con el
// perfil del solicitante incluido.
type FeedService struct {
	posts repository.PostRepository
	users repository.UserRepository
	cache FeedCache
}

// ErrInvalidPage indica page < 1; nunca se calcula un offset negativo.
var ErrInvalidPage = errors.New("invalid page")

const defaultPageSize = 5

func NewFeedService(posts repository.PostRepository, users repository.UserRepository, cache FeedCache) *FeedService {
	return &FeedService{
		posts: posts,
		users: users,
		cache: cache,
	}
}

// UserFeed devuelve la página pedida de los posts del usuario, los más
// nuevos primero.
func (s *FeedService) UserFeed(ctx context.Context, userID string, page, pageSize int) (domain.Feed, error) {
	page, pageSize, err := normalizePage(page, pageSize)
	if err != nil {
		return domain.Feed{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feed{}, ErrNotFound
		}
		return domain.Feed{}, err
	}

	total, err := s.posts.CountByOwner(ctx, userID)
	if err != nil {
		return domain.Feed{}, err
	}
	posts, err := s.posts.ListByOwner(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.Feed{}, err
	}

	return buildFeed(user, posts, total, page, pageSize), nil
}

// GlobalFeed pagina sobre todas las publicaciones sin filtrar.
func (s *FeedService) GlobalFeed(ctx context.Context, callerID string, page, pageSize int) (domain.Feed, error) {
	page, pageSize, err := normalizePage(page, pageSize)
	if err != nil {
		return domain.Feed{}, err
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feed{}, ErrNotFound
		}
		return domain.Feed{}, err
	}

	if s.cache != nil {
		if posts, total, ok := s.cache.GetGlobalPage(ctx, page, pageSize); ok {
			return buildFeed(user, posts, total, page, pageSize), nil
		}
	}

	total, err := s.posts.CountAll(ctx)
	if err != nil {
		return domain.Feed{}, err
	}
	posts, err := s.posts.ListAll(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.Feed{}, err
	}

	if s.cache != nil {
		// Cache best-effort: una falla no afecta la respuesta.
		_ = s.cache.SetGlobalPage(ctx, page, pageSize, posts, total)
	}

	return buildFeed(user, posts, total, page, pageSize), nil
}

func normalizePage(page, pageSize int) (int, int, error) {
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize, nil
}

func buildFeed(user domain.User, posts []domain.Post, total, page, pageSize int) domain.Feed {
	if posts == nil {
		posts = []domain.Post{}
	}
	totalPages := (total + pageSize - 1) / pageSize
	return domain.Feed{
		User:        user,
		Posts:       posts,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
