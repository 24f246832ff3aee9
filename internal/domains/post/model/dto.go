package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreatePostRequest - POST /v1/posts (multipart form fields)
type CreatePostRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

// Validate enforces required fields server-side. Client-side `required`
// attributes are UX only and are not trusted.
func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 200).Error("title must be 1-200 characters"),
		),
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			validation.In(categoryValues()...).Error("unknown category"),
		),
		validation.Field(&r.Body,
			validation.Required.Error("body is required"),
			validation.Length(1, 100000),
		),
	)
}

// UpdatePostRequest - PUT /v1/posts/:id
// Same field set as create; title, category and body always overwrite.
type UpdatePostRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

func (r UpdatePostRequest) Validate() error {
	return CreatePostRequest(r).Validate()
}

// ImageUpload is an optional cover image payload. A nil/empty upload is a
// valid no-image state, distinct from an upload failure.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// ListPostsQuery - GET /v1/posts filters. Search matches title or any body
// block text, case-insensitive substring. Categories is a set-membership
// filter; values outside the enum simply match nothing.
type ListPostsQuery struct {
	Categories []string
	Search     string
}

// Matches reports whether a post with the given title, category and body
// satisfies the filter. This is the listing contract: search is a
// case-insensitive substring over the title or any body block text, and a
// non-empty category set is membership. The SQL listing query implements the
// same predicate server-side.
func (q ListPostsQuery) Matches(title, category string, body Body) bool {
	if len(q.Categories) > 0 {
		member := false
		for _, c := range q.Categories {
			if c == category {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}

	if q.Search == "" {
		return true
	}

	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(title), needle) {
		return true
	}
	for _, blk := range body {
		if strings.Contains(strings.ToLower(blk.Text), needle) {
			return true
		}
	}
	return false
}
