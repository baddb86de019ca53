package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacic/picstream/internal/domain"
)

const userColumns = "id, email, username, bio, gender, avatar_url, password_hash, created_at, updated_at"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, bio, gender, avatar_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.Bio, user.Gender,
		user.AvatarURL, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(username) = LOWER($1)", username)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET bio = $1, gender = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, query,
		user.Bio, user.Gender, user.AvatarURL, user.UpdatedAt, user.ID,
	)
	return err
}

func (r *UserRepo) ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id <> $1 ORDER BY created_at DESC LIMIT $2"

	rows, err := r.pool.Query(ctx, query, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepo) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	return err
}

func (r *UserRepo) Followers(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.scanIDs(ctx, `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at`, id)
}

func (r *UserRepo) Following(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.scanIDs(ctx, `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at`, id)
}

func (r *UserRepo) scanIDs(ctx context.Context, query string, arg any) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, arg)
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

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := scanUserRow(r.pool.QueryRow(ctx, query, arg), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUserRow(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Bio, &u.Gender,
		&u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
}
