package postservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/pressbox/internal/common"
)

func NewPostService(db *sql.DB) *PostService {
	return &PostService{m: newPostModel(db)}
}

// Create persists a new post. Category and status fall back to their
// defaults when absent; the author must be the caller's session identity.
func (s *PostService) Create(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	if req.Category == "" {
		req.Category = DefaultCategory
	}
	if req.Status == "" {
		req.Status = DefaultStatus
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateDatePublished(v, req.DatePublished)
	validateStatus(v, req.Status, StatusDraft, StatusPublished, StatusArchived)
	validateInt(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.insert(ctx, req)
}

func (s *PostService) GetByID(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getPostByID(ctx, id)
}

// List returns post summaries ordered by creation time descending. An empty
// or "all" status returns every post; anything else is an exact filter.
func (s *PostService) List(ctx context.Context, status string) ([]PostSummary, error) {
	return s.m.getPosts(ctx, status)
}

// UpdateStatus flips a post between published and draft, touching nothing
// but status and updated_at.
func (s *PostService) UpdateStatus(ctx context.Context, id int, status string) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateStatus(v, status, StatusDraft, StatusPublished)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.m.getPostByID(ctx, id)
}

// Update applies a partial update. Fields left nil keep their stored value;
// updated_at is refreshed regardless of which fields changed.
func (s *PostService) Update(ctx context.Context, id int, patch *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if patch.Title != nil {
		validateTitle(v, *patch.Title)
	}
	if patch.Content != nil {
		validateContent(v, *patch.Content)
	}
	if patch.DatePublished != nil {
		validateDatePublished(v, *patch.DatePublished)
	}
	if patch.Status != nil {
		validateStatus(v, *patch.Status, StatusDraft, StatusPublished, StatusArchived)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updatePost(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.m.getPostByID(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deletePost(ctx, id)
}

// IncrementViews bumps the view counter. There is deliberately no dedup or
// replay window: every read-by-id counts.
func (s *PostService) IncrementViews(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.incrementViews(ctx, id)
}

// Stats aggregates over published posts only.
func (s *PostService) Stats(ctx context.Context) (*BlogStats, error) {
	return s.m.getStats(ctx)
}
