package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/domains/post/model"
	"bloghub-backend/internal/infrastructure/storage"
)

// =====================================================
// FAKES
// =====================================================

type memoryPostRepo struct {
	posts  map[uuid.UUID]*model.Post
	owners map[uuid.UUID]string // post ID -> owning external identity ID

	listRelatedErr error
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{
		posts:  make(map[uuid.UUID]*model.Post),
		owners: make(map[uuid.UUID]string),
	}
}

func (r *memoryPostRepo) Create(_ context.Context, p *model.Post) (*model.Post, error) {
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.posts[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memoryPostRepo) Patch(_ context.Context, id uuid.UUID, patch model.PostPatch) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	p.Title = patch.Title
	p.Category = patch.Category
	p.Body = patch.Body
	if patch.CoverImageURL != nil {
		p.CoverImageURL = *patch.CoverImageURL
	}
	if patch.CoverImageKey != nil {
		p.CoverImageKey = *patch.CoverImageKey
	}
	p.UpdatedAt = time.Now().UTC()
	out := *p
	return &out, nil
}

func (r *memoryPostRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(r.posts, id)
	delete(r.owners, id)
	return nil
}

func (r *memoryPostRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return p, nil
}

func (r *memoryPostRepo) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range r.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, model.ErrPostNotFound
}

func (r *memoryPostRepo) GetOwner(_ context.Context, id uuid.UUID) (*model.PostOwner, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return &model.PostOwner{
		PostID:           id,
		AuthorID:         p.AuthorID,
		AuthorExternalID: r.owners[id],
		Slug:             p.Slug,
		CoverImageKey:    p.CoverImageKey,
	}, nil
}

func (r *memoryPostRepo) List(_ context.Context, q model.ListPostsQuery) ([]model.PostSummary, error) {
	summaries := make([]model.PostSummary, 0, len(r.posts))
	for _, p := range r.posts {
		if !q.Matches(p.Title, p.Category, p.Body) {
			continue
		}
		summaries = append(summaries, model.PostSummary{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Category:    p.Category,
			PublishedAt: p.PublishedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PublishedAt.After(summaries[j].PublishedAt)
	})
	return summaries, nil
}

func (r *memoryPostRepo) ListRelated(_ context.Context, category string, excludeID uuid.UUID, limit int) ([]model.PostSummary, error) {
	if r.listRelatedErr != nil {
		return nil, r.listRelatedErr
	}
	summaries := []model.PostSummary{}
	for _, p := range r.posts {
		if p.Category == category && p.ID != excludeID && len(summaries) < limit {
			summaries = append(summaries, model.PostSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Category: p.Category})
		}
	}
	return summaries, nil
}

func (r *memoryPostRepo) ListByAuthorExternalID(_ context.Context, externalID string) ([]model.PostSummary, error) {
	summaries := []model.PostSummary{}
	for id, owner := range r.owners {
		if owner == externalID {
			p := r.posts[id]
			summaries = append(summaries, model.PostSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Category: p.Category})
		}
	}
	return summaries, nil
}

func (r *memoryPostRepo) ListCoverImageKeys(_ context.Context) ([]string, error) {
	keys := []string{}
	for _, p := range r.posts {
		if p.CoverImageKey != "" {
			keys = append(keys, p.CoverImageKey)
		}
	}
	return keys, nil
}

// fakeAuthorService assigns one stable author ID per external identity.
type fakeAuthorService struct {
	ids   map[string]uuid.UUID
	calls int
}

func newFakeAuthorService() *fakeAuthorService {
	return &fakeAuthorService{ids: make(map[string]uuid.UUID)}
}

func (s *fakeAuthorService) GetOrCreate(_ context.Context, ident identity.Identity) (uuid.UUID, error) {
	s.calls++
	if id, ok := s.ids[ident.ExternalID]; ok {
		return id, nil
	}
	id := uuid.New()
	s.ids[ident.ExternalID] = id
	return id, nil
}

type fakeObjectStorage struct {
	uploads    map[string][]byte
	deleted    []string
	failUpload bool
	failDelete bool
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{uploads: make(map[string][]byte)}
}

func (s *fakeObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.failUpload {
		return "", errors.New("bucket unavailable")
	}
	s.uploads[key] = data
	return "https://cdn.test/" + key, nil
}

func (s *fakeObjectStorage) Delete(_ context.Context, key string) error {
	if s.failDelete {
		return errors.New("bucket unavailable")
	}
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

func (s *fakeObjectStorage) ListKeys(_ context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for k := range s.uploads {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// =====================================================
// HELPERS
// =====================================================

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

type fixture struct {
	svc     ServiceInterface
	repo    *memoryPostRepo
	authors *fakeAuthorService
	objects *fakeObjectStorage
}

func newFixture() *fixture {
	repo := newMemoryPostRepo()
	authors := newFakeAuthorService()
	objects := newFakeObjectStorage()
	return &fixture{
		svc:     NewPostService(repo, authors, objects, storage.NewImageProcessor()),
		repo:    repo,
		authors: authors,
		objects: objects,
	}
}

func validCreateRequest() model.CreatePostRequest {
	return model.CreatePostRequest{
		Title:    "My First Post",
		Category: "tech",
		Body:     "First paragraph.\n\nSecond paragraph.",
	}
}

func testIdentity(externalID string) identity.Identity {
	return identity.Identity{
		ExternalID: externalID,
		Name:       "Test Author",
		Email:      "author@example.com",
	}
}

// mustCreate seeds a post through the service so ownership wiring matches
// production (repo owners map keyed off the acting identity).
func (f *fixture) mustCreate(t *testing.T, ident identity.Identity, req model.CreatePostRequest, image *model.ImageUpload) *model.Post {
	t.Helper()
	created, err := f.svc.Create(context.Background(), ident, req, image)
	require.NoError(t, err)
	f.repo.owners[created.ID] = ident.ExternalID
	return created
}

// =====================================================
// CREATE
// =====================================================

func TestCreatePost(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Create(context.Background(), testIdentity("user_1"), validCreateRequest(), nil)

	require.NoError(t, err)
	assert.Equal(t, "my-first-post", created.Slug)
	assert.Equal(t, "tech", created.Category)
	assert.Len(t, created.Body, 2, "blank-line-separated paragraphs become blocks")
	assert.Equal(t, "First paragraph.", created.Body[0].Text)
	assert.False(t, created.PublishedAt.IsZero())
	assert.Equal(t, f.authors.ids["user_1"], created.AuthorID)
	assert.Empty(t, created.CoverImageURL, "no image uploaded")
}

func TestCreatePostRequiresIdentity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), identity.Identity{}, validCreateRequest(), nil)

	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
	assert.Empty(t, f.repo.posts, "nothing persisted")
	assert.Zero(t, f.authors.calls, "no author created for an anonymous request")
}

func TestCreatePostRejectsInvalidRequest(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		req  model.CreatePostRequest
	}{
		{"missing title", model.CreatePostRequest{Category: "tech", Body: "text"}},
		{"missing body", model.CreatePostRequest{Title: "Hello", Category: "tech"}},
		{"unknown category", model.CreatePostRequest{Title: "Hello", Category: "blockchain", Body: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), testIdentity("user_1"), tt.req, nil)

			var verr validation.Errors
			assert.ErrorAs(t, err, &verr)
			assert.Empty(t, f.repo.posts, "invalid request must not persist anything")
		})
	}
}

func TestCreatePostWithCoverImage(t *testing.T) {
	f := newFixture()
	upload := &model.ImageUpload{Data: testJPEG(t), Filename: "cover.jpg"}

	created, err := f.svc.Create(context.Background(), testIdentity("user_1"), validCreateRequest(), upload)

	require.NoError(t, err)
	assert.Contains(t, created.CoverImageURL, "https://cdn.test/covers/")
	assert.Len(t, f.objects.uploads, 1)
}

func TestCreatePostRejectsNonImageUpload(t *testing.T) {
	f := newFixture()
	upload := &model.ImageUpload{Data: []byte("definitely not an image"), Filename: "cover.jpg"}

	_, err := f.svc.Create(context.Background(), testIdentity("user_1"), validCreateRequest(), upload)

	assert.ErrorIs(t, err, model.ErrUploadFailed)
	assert.Empty(t, f.repo.posts, "failed upload must not leave a half-created post")
}

func TestCreatePostUploadFailure(t *testing.T) {
	f := newFixture()
	f.objects.failUpload = true
	upload := &model.ImageUpload{Data: testJPEG(t), Filename: "cover.jpg"}

	_, err := f.svc.Create(context.Background(), testIdentity("user_1"), validCreateRequest(), upload)

	assert.ErrorIs(t, err, model.ErrUploadFailed)
	assert.Empty(t, f.repo.posts)
}

func TestSequentialCreatesReuseAuthor(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")

	first, err := f.svc.Create(context.Background(), ident, validCreateRequest(), nil)
	require.NoError(t, err)

	second, err := f.svc.Create(context.Background(), ident, model.CreatePostRequest{
		Title:    "Another Post",
		Category: "travel",
		Body:     "More text.",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.AuthorID, second.AuthorID, "same identity maps to one author")
	assert.Len(t, f.authors.ids, 1)
}

// =====================================================
// UPDATE
// =====================================================

func TestUpdatePost(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), nil)

	updated, err := f.svc.Update(context.Background(), ident, created.ID, model.UpdatePostRequest{
		Title:    "A Completely New Title",
		Category: "science",
		Body:     "Rewritten body.",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "A Completely New Title", updated.Title)
	assert.Equal(t, "science", updated.Category)
	assert.Equal(t, created.Slug, updated.Slug, "slug must not change when the title does")
}

func TestUpdatePostByNonOwner(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, testIdentity("user_1"), validCreateRequest(), nil)

	_, err := f.svc.Update(context.Background(), testIdentity("user_2"), created.ID, model.UpdatePostRequest{
		Title:    "Hijacked",
		Category: "tech",
		Body:     "Hijacked body.",
	}, nil)

	assert.ErrorIs(t, err, model.ErrNotPostOwner)
	assert.Equal(t, "My First Post", f.repo.posts[created.ID].Title, "rejected update leaves the post unchanged")
}

func TestUpdatePostWithoutIdentity(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, testIdentity("user_1"), validCreateRequest(), nil)

	_, err := f.svc.Update(context.Background(), identity.Identity{}, created.ID, model.UpdatePostRequest{
		Title:    "Anonymous",
		Category: "tech",
		Body:     "text",
	}, nil)

	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestUpdatePostMissingPost(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Update(context.Background(), testIdentity("user_1"), uuid.New(), model.UpdatePostRequest{
		Title:    "Ghost",
		Category: "tech",
		Body:     "text",
	}, nil)

	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestUpdatePostKeepsCoverWhenOmitted(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), &model.ImageUpload{Data: testJPEG(t), Filename: "cover.jpg"})
	originalURL := created.CoverImageURL

	updated, err := f.svc.Update(context.Background(), ident, created.ID, model.UpdatePostRequest{
		Title:    "Edited",
		Category: "tech",
		Body:     "Edited body.",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, originalURL, updated.CoverImageURL, "omitted image leaves the cover untouched")
	assert.Empty(t, f.objects.deleted)
}

func TestUpdatePostReplacesCover(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), &model.ImageUpload{Data: testJPEG(t), Filename: "old.jpg"})
	oldKey := created.CoverImageKey
	require.NotEmpty(t, oldKey)

	updated, err := f.svc.Update(context.Background(), ident, created.ID, model.UpdatePostRequest{
		Title:    "Edited",
		Category: "tech",
		Body:     "Edited body.",
	}, &model.ImageUpload{Data: testJPEG(t), Filename: "new.jpg"})

	require.NoError(t, err)
	assert.NotEqual(t, created.CoverImageURL, updated.CoverImageURL)
	assert.Contains(t, f.objects.deleted, oldKey, "replaced cover object is removed")
}

func TestUpdatePostToleratesOldCoverDeleteFailure(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), &model.ImageUpload{Data: testJPEG(t), Filename: "old.jpg"})
	f.objects.failDelete = true

	updated, err := f.svc.Update(context.Background(), ident, created.ID, model.UpdatePostRequest{
		Title:    "Edited",
		Category: "tech",
		Body:     "Edited body.",
	}, &model.ImageUpload{Data: testJPEG(t), Filename: "new.jpg"})

	require.NoError(t, err, "a failed cleanup must not fail the update")
	assert.NotEqual(t, created.CoverImageURL, updated.CoverImageURL)
}

// =====================================================
// DELETE
// =====================================================

func TestDeletePost(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), &model.ImageUpload{Data: testJPEG(t), Filename: "cover.jpg"})

	err := f.svc.Delete(context.Background(), ident, created.ID)

	require.NoError(t, err)
	_, err = f.repo.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
	assert.Contains(t, f.objects.deleted, created.CoverImageKey, "cover object is cleaned up with the post")
}

func TestDeletePostByNonOwner(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, testIdentity("user_1"), validCreateRequest(), nil)

	err := f.svc.Delete(context.Background(), testIdentity("user_2"), created.ID)

	assert.ErrorIs(t, err, model.ErrNotPostOwner)
	assert.Contains(t, f.repo.posts, created.ID, "post survives a forbidden delete")
}

func TestDeleteMissingPost(t *testing.T) {
	f := newFixture()

	err := f.svc.Delete(context.Background(), testIdentity("user_1"), uuid.New())

	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

// =====================================================
// READ SIDE
// =====================================================

func TestGetBySlugWithRelated(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	created := f.mustCreate(t, ident, validCreateRequest(), nil)
	for i := 0; i < 5; i++ {
		f.mustCreate(t, ident, model.CreatePostRequest{
			Title:    fmt.Sprintf("Related %d", i),
			Category: "tech",
			Body:     "text",
		}, nil)
	}

	post, related, err := f.svc.GetBySlug(context.Background(), created.Slug)

	require.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
	assert.Len(t, related, 3, "related posts capped at 3")
	for _, r := range related {
		assert.NotEqual(t, created.ID, r.ID, "post never relates to itself")
	}
}

func TestGetBySlugToleratesRelatedFailure(t *testing.T) {
	f := newFixture()
	created := f.mustCreate(t, testIdentity("user_1"), validCreateRequest(), nil)
	f.repo.listRelatedErr = errors.New("query timeout")

	post, related, err := f.svc.GetBySlug(context.Background(), created.Slug)

	require.NoError(t, err, "post page must render even when related posts fail")
	assert.Equal(t, created.ID, post.ID)
	assert.Empty(t, related)
}

func TestGetBySlugMissing(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.GetBySlug(context.Background(), "no-such-post")

	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestListFiltersBySearch(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	f.mustCreate(t, ident, model.CreatePostRequest{
		Title:    "Learning Go",
		Category: "tech",
		Body:     "Goroutines make concurrency cheap.",
	}, nil)
	f.mustCreate(t, ident, model.CreatePostRequest{
		Title:    "Weekend in Lisbon",
		Category: "travel",
		Body:     "Pastel de nata and tram rides.",
	}, nil)

	byTitle, err := f.svc.List(context.Background(), model.ListPostsQuery{Search: "lisbon"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1, "case-insensitive title substring")
	assert.Equal(t, "weekend-in-lisbon", byTitle[0].Slug)

	byBody, err := f.svc.List(context.Background(), model.ListPostsQuery{Search: "GOROUTINES"})
	require.NoError(t, err)
	require.Len(t, byBody, 1, "search covers body block text")
	assert.Equal(t, "learning-go", byBody[0].Slug)

	none, err := f.svc.List(context.Background(), model.ListPostsQuery{Search: "rust"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListFiltersByCategories(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	f.mustCreate(t, ident, model.CreatePostRequest{Title: "Go Tips", Category: "tech", Body: "text"}, nil)
	f.mustCreate(t, ident, model.CreatePostRequest{Title: "Lab Notes", Category: "science", Body: "text"}, nil)
	f.mustCreate(t, ident, model.CreatePostRequest{Title: "City Walks", Category: "travel", Body: "text"}, nil)

	filtered, err := f.svc.List(context.Background(), model.ListPostsQuery{Categories: []string{"tech", "science"}})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, s := range filtered {
		assert.Contains(t, []string{"tech", "science"}, s.Category)
	}

	all, err := f.svc.List(context.Background(), model.ListPostsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "empty category set matches everything")
}

func TestListOrdersByPublishedDesc(t *testing.T) {
	f := newFixture()
	ident := testIdentity("user_1")
	oldest := f.mustCreate(t, ident, model.CreatePostRequest{Title: "Oldest", Category: "tech", Body: "text"}, nil)
	middle := f.mustCreate(t, ident, model.CreatePostRequest{Title: "Middle", Category: "tech", Body: "text"}, nil)
	newest := f.mustCreate(t, ident, model.CreatePostRequest{Title: "Newest", Category: "tech", Body: "text"}, nil)

	base := time.Now().UTC()
	f.repo.posts[oldest.ID].PublishedAt = base.Add(-2 * time.Hour)
	f.repo.posts[middle.ID].PublishedAt = base.Add(-time.Hour)
	f.repo.posts[newest.ID].PublishedAt = base

	listed, err := f.svc.List(context.Background(), model.ListPostsQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "newest", listed[0].Slug)
	assert.Equal(t, "middle", listed[1].Slug)
	assert.Equal(t, "oldest", listed[2].Slug)
}

func TestListMine(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, testIdentity("user_1"), validCreateRequest(), nil)
	f.mustCreate(t, testIdentity("user_2"), model.CreatePostRequest{
		Title:    "Someone Else",
		Category: "travel",
		Body:     "text",
	}, nil)

	mine, err := f.svc.ListMine(context.Background(), testIdentity("user_1"))

	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "my-first-post", mine[0].Slug)
}

func TestListMineRequiresIdentity(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListMine(context.Background(), identity.Identity{})

	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}
