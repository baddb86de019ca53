package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mkovacic/picstream/internal/domain"
	"github.com/mkovacic/picstream/internal/media"
	"github.com/mkovacic/picstream/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("cannot follow yourself")
)

const (
	FollowStateFollowing  = "following"
	FollowStateUnfollowed = "unfollowed"

	suggestLimit    = 20
	suggestCacheTTL = 30 * time.Second

	avatarWidth = 192
)

type UserService struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	uploader  media.Uploader
	cdn       *media.CDN
	suggested *gocache.Cache
	notifier  Notifier
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, uploader media.Uploader, cdn *media.CDN) *UserService {
	return &UserService{
		userRepo:  userRepo,
		postRepo:  postRepo,
		uploader:  uploader,
		cdn:       cdn,
		suggested: gocache.New(suggestCacheTTL, time.Minute),
	}
}

func (s *UserService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Profile returns the user page payload: the account, its edges, its
// posts newest-first and its bookmarked posts.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.userRepo.Followers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.Following(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.postRepo.ListBookmarked(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.Profile{
		User:      user,
		Followers: followers,
		Following: following,
		Posts:     posts,
		Bookmarks: bookmarks,
	}, nil
}

type UpdateProfileInput struct {
	Bio    *string
	Gender *string
	// Avatar, when set, is uploaded to the media host and replaces the
	// current avatar.
	Avatar            []byte
	AvatarContentType string
}

func (s *UserService) UpdateProfile(ctx context.Context, callerID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if len(input.Avatar) > 0 {
		path, err := s.uploader.Upload(ctx, input.Avatar, input.AvatarContentType)
		if err != nil {
			return nil, fmt.Errorf("uploading avatar: %w", err)
		}
		user.AvatarURL = s.cdn.Deliver(path, avatarWidth)
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// Suggested returns candidate accounts for the caller to follow. The
// caller is always excluded; results are cached briefly per caller.
func (s *UserService) Suggested(ctx context.Context, callerID uuid.UUID) ([]domain.User, error) {
	if cached, ok := s.suggested.Get(callerID.String()); ok {
		return cached.([]domain.User), nil
	}

	users, err := s.userRepo.ListOthers(ctx, callerID, suggestLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	s.suggested.SetDefault(callerID.String(), users)
	return users, nil
}

// FollowToggle flips the caller's follow edge to target. The edge is a
// single row, so both "sides" of the relationship change together or
// not at all.
func (s *UserService) FollowToggle(ctx context.Context, callerID, targetID uuid.UUID) (string, error) {
	if callerID == targetID {
		return "", ErrSelfFollow
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return "", err
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	if caller == nil || target == nil {
		return "", ErrUserNotFound
	}

	created, err := s.userRepo.Follow(ctx, callerID, targetID)
	if err != nil {
		return "", fmt.Errorf("following: %w", err)
	}
	if !created {
		// Already following: this toggle unfollows.
		if err := s.userRepo.Unfollow(ctx, callerID, targetID); err != nil {
			return "", fmt.Errorf("unfollowing: %w", err)
		}
		return FollowStateUnfollowed, nil
	}

	if s.notifier != nil {
		s.notifier.NotifyFollow(targetID, caller.Summary())
	}
	return FollowStateFollowing, nil
}
