package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogsmith-backend/internal/models"
)

// ErrDuplicatePost is returned by Create when the owner already has a post for
// the same YouTube link.
var ErrDuplicatePost = errors.New("blog post already exists for this link")

type BlogPostRepo struct {
	pool *pgxpool.Pool
}

func NewBlogPostRepo(pool *pgxpool.Pool) *BlogPostRepo {
	return &BlogPostRepo{pool: pool}
}

// Create inserts p and fills in its ID and CreatedAt. The insert is skipped,
// and ErrDuplicatePost returned, when (user_id, youtube_link) already exists.
func (r *BlogPostRepo) Create(ctx context.Context, p *models.BlogPost) error {
	id := uuid.New()

	query := `INSERT INTO blog_posts (id, user_id, youtube_title, youtube_link, content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, youtube_link) DO NOTHING
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		id, p.UserID, p.YouTubeTitle, p.YouTubeLink, p.Content,
	).Scan(&p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicatePost
	}
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

func (r *BlogPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	query := `SELECT id, user_id, youtube_title, youtube_link, content, created_at
		FROM blog_posts WHERE id = $1`

	return scanBlogPost(r.pool.QueryRow(ctx, query, id))
}

// GetByUserAndLink returns pgx.ErrNoRows when the user has no post for link.
func (r *BlogPostRepo) GetByUserAndLink(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error) {
	query := `SELECT id, user_id, youtube_title, youtube_link, content, created_at
		FROM blog_posts WHERE user_id = $1 AND youtube_link = $2
		ORDER BY created_at ASC LIMIT 1`

	return scanBlogPost(r.pool.QueryRow(ctx, query, userID, link))
}

// ListByUser returns the user's posts, newest first.
func (r *BlogPostRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlogPost, error) {
	query := `SELECT id, user_id, youtube_title, youtube_link, content, created_at
		FROM blog_posts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func scanBlogPost(row pgx.Row) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	err := row.Scan(&p.ID, &p.UserID, &p.YouTubeTitle, &p.YouTubeLink, &p.Content, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
