package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Block is one rich-text body block. The body is stored as an ordered list of
// blocks so paragraph structure survives storage and the generator output is
// not flattened into a single opaque span.
type Block struct {
	Key   string `json:"key"`
	Style string `json:"style"`
	Text  string `json:"text"`
}

// Body is the post body block list, persisted as JSONB.
type Body []Block

// BodyFromText parses plain text into paragraph blocks, one block per
// blank-line-separated paragraph. Single-paragraph input yields one block.
func BodyFromText(text string) Body {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	body := Body{}
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		body = append(body, Block{
			Key:   newBlockKey(),
			Style: "normal",
			Text:  para,
		})
	}
	return body
}

// PlainText flattens the body back to plain text. Used for previews and by
// tests asserting search coverage over block text.
func (b Body) PlainText() string {
	parts := make([]string, 0, len(b))
	for _, blk := range b {
		parts = append(parts, blk.Text)
	}
	return strings.Join(parts, "\n\n")
}

func newBlockKey() string {
	return uuid.New().String()[:8]
}

// AuthorInfo is the author profile joined onto post reads.
type AuthorInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Post is a content document owned by exactly one author. The ownership link
// is set at creation and never changes. Slug is derived from the title at
// creation and stays stable across edits so inbound links keep working.
type Post struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Category      string      `json:"category"`
	CoverImageURL string      `json:"cover_image_url,omitempty"`
	CoverImageKey string      `json:"-"`
	Body          Body        `json:"body"`
	PublishedAt   time.Time   `json:"published_at"`
	AuthorID      uuid.UUID   `json:"author_id"`
	Author        *AuthorInfo `json:"author,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// PostSummary is the listing projection (cards, my-posts, related posts).
type PostSummary struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Category      string     `json:"category"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	PublishedAt   time.Time  `json:"published_at"`
	Author        AuthorInfo `json:"author"`
}

// PostOwner is the ownership probe used by update/delete: the post's owning
// author's external identity ID plus what's needed for cleanup/invalidation.
type PostOwner struct {
	PostID           uuid.UUID
	AuthorID         uuid.UUID
	AuthorExternalID string
	Slug             string
	CoverImageKey    string
}

// PostPatch carries the fields applied by an update. Title, category and body
// are always overwritten; the cover image fields are applied only when a new
// image was uploaded (partial update semantics).
type PostPatch struct {
	Title         string
	Category      string
	Body          Body
	CoverImageURL *string
	CoverImageKey *string
}
