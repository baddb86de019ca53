package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
	"github.com/mkovacic/picstream/internal/media"
	"github.com/mkovacic/picstream/internal/repository"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("only the author can delete a post")
	ErrEmptyComment = errors.New("comment text is required")
)

const (
	BookmarkStateSaved   = "saved"
	BookmarkStateUnsaved = "unsaved"

	postImageWidth = 800
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	uploader    media.Uploader
	cdn         *media.CDN
	notifier    Notifier
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, uploader media.Uploader, cdn *media.CDN) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		cdn:         cdn,
	}
}

func (s *PostService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreatePostInput struct {
	Caption     string
	Image       []byte
	ContentType string
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	path, err := s.uploader.Upload(ctx, input.Image, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}

	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		ImageURL:  s.cdn.Deliver(path, postImageWidth),
		Caption:   input.Caption,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	// Re-read for the joined author summary.
	return s.postRepo.GetByID(ctx, post.ID)
}

// Feed returns every post newest-first with author, likes and comments.
func (s *PostService) Feed(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (s *PostService) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// Like adds the caller to the post's like set. Liking twice is a no-op;
// only an actual state change notifies the author, and a self-like
// never does.
func (s *PostService) Like(ctx context.Context, callerID, postID uuid.UUID) ([]uuid.UUID, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	changed, err := s.postRepo.Like(ctx, postID, callerID)
	if err != nil {
		return nil, fmt.Errorf("liking post: %w", err)
	}

	if changed && post.AuthorID != callerID && s.notifier != nil {
		if caller, err := s.userRepo.GetByID(ctx, callerID); err == nil && caller != nil {
			s.notifier.NotifyLike(post.AuthorID, caller.Summary(), postID)
		}
	}

	return s.postRepo.Likes(ctx, postID)
}

func (s *PostService) Unlike(ctx context.Context, callerID, postID uuid.UUID) ([]uuid.UUID, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if err := s.postRepo.Unlike(ctx, postID, callerID); err != nil {
		return nil, fmt.Errorf("unliking post: %w", err)
	}
	return s.postRepo.Likes(ctx, postID)
}

func (s *PostService) Comment(ctx context.Context, callerID, postID uuid.UUID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  callerID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// Comments never fails on a missing post: after a delete cascade the
// list is simply empty.
func (s *PostService) Comments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// Delete removes the post and, through the store's cascade, all of its
// comments, likes and bookmark references in one atomic operation.
func (s *PostService) Delete(ctx context.Context, callerID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != callerID {
		return ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

func (s *PostService) BookmarkToggle(ctx context.Context, callerID, postID uuid.UUID) (string, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", ErrPostNotFound
	}

	saved, err := s.postRepo.Bookmark(ctx, callerID, postID)
	if err != nil {
		return "", fmt.Errorf("bookmarking post: %w", err)
	}
	if !saved {
		if err := s.postRepo.Unbookmark(ctx, callerID, postID); err != nil {
			return "", fmt.Errorf("removing bookmark: %w", err)
		}
		return BookmarkStateUnsaved, nil
	}
	return BookmarkStateSaved, nil
}
