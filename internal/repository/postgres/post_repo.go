package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacic/picstream/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, image_url, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.ImageURL, post.Caption, post.CreatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.image_url, p.caption, p.created_at,
			u.username, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`
	var p domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.ImageURL, &p.Caption, &p.CreatedAt,
		&p.Author.Username, &p.Author.AvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.author_id, p.image_url, p.caption, p.created_at,
			u.username, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.created_at DESC`)
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.author_id, p.image_url, p.caption, p.created_at,
			u.username, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC`, authorID)
}

func (r *PostRepo) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.author_id, p.image_url, p.caption, p.created_at,
			u.username, u.avatar_url
		FROM bookmarks b
		JOIN posts p ON b.post_id = p.id
		JOIN users u ON p.author_id = u.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`, userID)
}

// Delete removes the post row; comments, likes and bookmarks go with it
// through the schema's ON DELETE CASCADE, so the cascade is atomic.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

func (r *PostRepo) Like(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, postID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostRepo) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	return err
}

func (r *PostRepo) Likes(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostRepo) Bookmark(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO bookmarks (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, userID, postID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostRepo) Unbookmark(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	return err
}

func (r *PostRepo) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.ImageURL, &p.Caption, &p.CreatedAt,
			&p.Author.Username, &p.Author.AvatarURL,
		); err != nil {
			return nil, err
		}
		p.Author.ID = p.AuthorID
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, r.attach(ctx, posts)
}

// attach fills the likes set and comment list of every post in one
// round-trip each.
func (r *PostRepo) attach(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]*domain.Post, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		posts[i].Likes = []uuid.UUID{}
		posts[i].Comments = []domain.Comment{}
		index[posts[i].ID] = &posts[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID, userID uuid.UUID
		if err := rows.Scan(&postID, &userID); err != nil {
			return err
		}
		if p, ok := index[postID]; ok {
			p.Likes = append(p.Likes, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
			u.username, u.avatar_url
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&c.Author.Username, &c.Author.AvatarURL,
		); err != nil {
			return err
		}
		c.Author.ID = c.AuthorID
		if p, ok := index[c.PostID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	return rows.Err()
}
