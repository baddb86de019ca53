package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]domain.User, error)

	// Follow inserts the edge and reports whether it was newly created;
	// false means the caller was already following.
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Followers(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	Following(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error)
	ListBookmarked(ctx context.Context, userID uuid.UUID) ([]domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Like inserts into the like set and reports whether the set changed.
	Like(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, postID, userID uuid.UUID) error
	Likes(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)

	// Bookmark inserts into the caller's bookmark set and reports
	// whether the set changed.
	Bookmark(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Unbookmark(ctx context.Context, userID, postID uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
}

type ConversationRepository interface {
	// GetOrCreate returns the unique conversation for the canonical
	// pair (user1ID < user2ID), creating it if absent. Concurrent
	// creators converge on the same row via the pair's unique
	// constraint.
	GetOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error)
	GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateMessage(ctx context.Context, msg *domain.Message) error
	GetMessageByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}
