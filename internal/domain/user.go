package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	Gender       string    `json:"gender"`
	AvatarURL    string    `json:"avatar_url"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the slim author shape embedded in posts, comments
// and notifications.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Profile is the full page payload for a user: the account itself plus
// its social edges, own posts and bookmarked posts.
type Profile struct {
	User      *User       `json:"user"`
	Followers []uuid.UUID `json:"followers"`
	Following []uuid.UUID `json:"following"`
	Posts     []Post      `json:"posts"`
	Bookmarks []Post      `json:"bookmarks"`
}
