package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"social-app/internal/domain"
	"social-app/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

type mockPostRepo struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]domain.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []domain.Comment{}
	}
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	return post, nil
}

func (m *mockPostRepo) UpdateFields(_ context.Context, id string, update domain.PostUpdate) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Author != nil {
		post.Author = *update.Author
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	m.posts[id] = post
	return post, nil
}

func (m *mockPostRepo) DeleteOne(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return 0, nil
	}
	delete(m.posts, id)
	return 1, nil
}

func (m *mockPostRepo) DeleteAllByOwner(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, post := range m.posts {
		if post.UserID == ownerID {
			delete(m.posts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockPostRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, post := range m.posts {
		if post.UserID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *mockPostRepo) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts), nil
}

func (m *mockPostRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []domain.Post
	for _, post := range m.posts {
		if post.UserID == ownerID {
			posts = append(posts, post)
		}
	}
	return paginate(posts, limit, offset), nil
}

func (m *mockPostRepo) ListAll(_ context.Context, limit, offset int) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]domain.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	return paginate(posts, limit, offset), nil
}

func (m *mockPostRepo) ToggleLike(_ context.Context, postID, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	likes := make([]string, 0, len(post.Likes))
	removed := false
	for _, id := range post.Likes {
		if id == userID {
			removed = true
			continue
		}
		likes = append(likes, id)
	}
	if !removed {
		likes = append(likes, userID)
	}
	post.Likes = likes
	m.posts[postID] = post
	return likes, nil
}

func (m *mockPostRepo) AppendComment(_ context.Context, postID string, comment domain.Comment) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	post.Comments = append(post.Comments, comment)
	m.posts[postID] = post
	return post.Comments, nil
}

func (m *mockPostRepo) RemoveComment(_ context.Context, postID, commentID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	comments := make([]domain.Comment, 0, len(post.Comments))
	found := false
	for _, comment := range post.Comments {
		if comment.ID == commentID {
			found = true
			continue
		}
		comments = append(comments, comment)
	}
	if !found {
		return nil, pgx.ErrNoRows
	}
	post.Comments = comments
	m.posts[postID] = post
	return comments, nil
}

func paginate(posts []domain.Post, limit, offset int) []domain.Post {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	if offset >= len(posts) {
		return nil
	}
	posts = posts[offset:]
	if limit < len(posts) {
		posts = posts[:limit]
	}
	return posts
}

type mockFeedCache struct {
	mu          sync.Mutex
	pages       map[string]cachedFeedPage
	invalidates int
	hits        int
	sets        int
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{pages: make(map[string]cachedFeedPage)}
}

func (c *mockFeedCache) GetGlobalPage(_ context.Context, page, pageSize int) ([]domain.Post, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.pages[feedPageKey(page, pageSize)]
	if !ok {
		return nil, 0, false
	}
	c.hits++
	return cached.Posts, cached.Total, true
}

func (c *mockFeedCache) SetGlobalPage(_ context.Context, page, pageSize int, posts []domain.Post, total int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[feedPageKey(page, pageSize)] = cachedFeedPage{Posts: posts, Total: total}
	c.sets++
	return nil
}

func (c *mockFeedCache) InvalidateGlobal(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[string]cachedFeedPage)
	c.invalidates++
	return nil
}
