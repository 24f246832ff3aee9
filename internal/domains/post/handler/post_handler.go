package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/domains/post/model"
	"bloghub-backend/internal/domains/post/service"
	"bloghub-backend/internal/shared/response"
)

// Handler - HTTP handler for post routes
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListPosts - GET /v1/posts
// Query params: search, categories (comma-separated)
func (h *Handler) ListPosts(c *gin.Context) {
	q := model.ListPostsQuery{
		Search: c.Query("search"),
	}
	if cats := c.Query("categories"); cats != "" {
		q.Categories = strings.Split(cats, ",")
	}

	posts, err := h.service.List(c.Request.Context(), q)
	if model.HandlePostError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, posts)
}

// GetPost - GET /v1/posts/:slug
// Returns the post plus up to 3 related posts from the same category.
func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, related, err := h.service.GetBySlug(c.Request.Context(), slug)
	if model.HandlePostError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"post":          post,
		"related_posts": related,
	})
}

// ListCategories - GET /v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	response.Success(c, http.StatusOK, model.Categories)
}

// ListMyPosts - GET /v1/me/posts (authenticated)
func (h *Handler) ListMyPosts(c *gin.Context) {
	ident, err := identity.FromContext(c)
	if model.HandlePostError(c, err) {
		return
	}

	posts, err := h.service.ListMine(c.Request.Context(), ident)
	if model.HandlePostError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, posts)
}

// CreatePost - POST /v1/posts (authenticated, multipart form)
// Fields: title, category, body, image (optional file)
func (h *Handler) CreatePost(c *gin.Context) {
	ident, err := identity.FromContext(c)
	if model.HandlePostError(c, err) {
		return
	}

	req := model.CreatePostRequest{
		Title:    c.PostForm("title"),
		Category: c.PostForm("category"),
		Body:     c.PostForm("body"),
	}

	image, err := readImageFile(c)
	if err != nil {
		response.BadRequest(c, "could not read image upload")
		return
	}

	post, err := h.service.Create(c.Request.Context(), ident, req, image)
	if model.HandlePostError(c, err) {
		return
	}

	// Slug comes back with the document so the client can redirect to /{slug}.
	response.Success(c, http.StatusCreated, post)
}

// UpdatePost - PUT /v1/posts/:id (authenticated, multipart form)
// Omitting the image field leaves the existing cover untouched.
func (h *Handler) UpdatePost(c *gin.Context) {
	ident, err := identity.FromContext(c)
	if model.HandlePostError(c, err) {
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	req := model.UpdatePostRequest{
		Title:    c.PostForm("title"),
		Category: c.PostForm("category"),
		Body:     c.PostForm("body"),
	}

	image, err := readImageFile(c)
	if err != nil {
		response.BadRequest(c, "could not read image upload")
		return
	}

	post, err := h.service.Update(c.Request.Context(), ident, postID, req, image)
	if model.HandlePostError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, post)
}

// DeletePost - DELETE /v1/posts/:id (authenticated)
func (h *Handler) DeletePost(c *gin.Context) {
	ident, err := identity.FromContext(c)
	if model.HandlePostError(c, err) {
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), ident, postID); model.HandlePostError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// readImageFile extracts the optional cover upload from the multipart form.
// Missing file is the valid no-image state, not an error.
func readImageFile(c *gin.Context) (*model.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &model.ImageUpload{
		Data:     data,
		Filename: fileHeader.Filename,
	}, nil
}
