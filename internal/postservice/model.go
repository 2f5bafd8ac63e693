package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrAuthorForeignKey = errors.New("author_id does not exist")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError reports whether err is a violation of the named foreign
// key constraint.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *PostModel) insert(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	query := `
		INSERT INTO blog_posts (title, summary, content, featured_image, featured_image_filename, category, author_id, date_published, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, views, created_at, updated_at`

	args := []any{
		req.Title,
		req.Summary,
		req.Content,
		req.FeaturedImage,
		req.FeaturedImageFilename,
		req.Category,
		req.AuthorID,
		req.DatePublished,
		req.Status,
	}

	post := Post{
		Title:                 req.Title,
		Summary:               req.Summary,
		Content:               req.Content,
		FeaturedImage:         req.FeaturedImage,
		FeaturedImageFilename: req.FeaturedImageFilename,
		Category:              req.Category,
		AuthorID:              req.AuthorID,
		DatePublished:         req.DatePublished,
		Status:                req.Status,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&post.ID, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blog_posts_author_id_fkey"):
			return nil, ErrAuthorForeignKey
		default:
			return nil, err
		}
	}

	return &post, nil
}

func (m *PostModel) getPostByID(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT bp.id, bp.title, bp.summary, bp.content, bp.featured_image, bp.featured_image_filename, bp.category, bp.author_id, COALESCE(u.email, ''), bp.date_published, bp.status, bp.views, bp.created_at, bp.updated_at
		FROM blog_posts bp
		LEFT JOIN users u ON bp.author_id = u.id
		WHERE bp.id = $1`

	var post Post

	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Summary,
		&post.Content,
		&post.FeaturedImage,
		&post.FeaturedImageFilename,
		&post.Category,
		&post.AuthorID,
		&post.AuthorEmail,
		&post.DatePublished,
		&post.Status,
		&post.Views,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &post, nil
}

func (m *PostModel) getPosts(ctx context.Context, status string) ([]PostSummary, error) {
	query := `
		SELECT bp.id, bp.title, bp.summary, bp.featured_image_filename, bp.category, COALESCE(u.email, ''), bp.date_published, bp.status, bp.views, bp.created_at, bp.updated_at
		FROM blog_posts bp
		LEFT JOIN users u ON bp.author_id = u.id`

	var args []any
	if status != "" && status != "all" {
		query += ` WHERE bp.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY bp.created_at DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []PostSummary{}
	for rows.Next() {
		var p PostSummary
		err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.FeaturedImageFilename, &p.Category, &p.AuthorEmail, &p.DatePublished, &p.Status, &p.Views, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// updatePost builds the SET list from the fields actually present in the
// patch. updated_at is always refreshed, even for an otherwise-empty patch.
func (m *PostModel) updatePost(ctx context.Context, id int, patch *UpdatePostRequest) error {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.FeaturedImage != nil {
		add("featured_image", *patch.FeaturedImage)
	}
	if patch.FeaturedImageFilename != nil {
		add("featured_image_filename", *patch.FeaturedImageFilename)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.DatePublished != nil {
		add("date_published", *patch.DatePublished)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE blog_posts
		SET %s
		WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *PostModel) updateStatus(ctx context.Context, id int, status string) error {
	query := `
		UPDATE blog_posts
		SET status = $1, updated_at = now()
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *PostModel) deletePost(ctx context.Context, id int) error {
	query := `
		DELETE FROM blog_posts
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *PostModel) incrementViews(ctx context.Context, id int) error {
	query := `
		UPDATE blog_posts
		SET views = views + 1
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *PostModel) getStats(ctx context.Context) (*BlogStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE created_at >= now() - interval '1 month'),
		       COALESCE(SUM(views), 0)
		FROM blog_posts
		WHERE status = 'published'`

	var stats BlogStats

	err := m.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Monthly, &stats.Views)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
