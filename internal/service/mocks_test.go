package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkovacic/picstream/internal/domain"
)

func seedUser(t *testing.T, store *fakeStore, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "irrelevant",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, store.userRepo().Create(context.Background(), user))
	return user
}

// fakeStore holds in-memory state shared by the per-interface fakes.
// It mimics the store semantics the services rely on: idempotent edge
// inserts, delete cascades and creation-time ordering.
type fakeStore struct {
	mu sync.Mutex

	users     map[uuid.UUID]*domain.User
	follows   map[[2]uuid.UUID]bool
	posts     map[uuid.UUID]*domain.Post
	comments  map[uuid.UUID]*domain.Comment
	likes     map[uuid.UUID][]uuid.UUID
	bookmarks map[uuid.UUID][]uuid.UUID
	convs     map[[2]uuid.UUID]*domain.Conversation
	messages  map[uuid.UUID][]domain.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]*domain.User),
		follows:   make(map[[2]uuid.UUID]bool),
		posts:     make(map[uuid.UUID]*domain.Post),
		comments:  make(map[uuid.UUID]*domain.Comment),
		likes:     make(map[uuid.UUID][]uuid.UUID),
		bookmarks: make(map[uuid.UUID][]uuid.UUID),
		convs:     make(map[[2]uuid.UUID]*domain.Conversation),
		messages:  make(map[uuid.UUID][]domain.Message),
	}
}

func (s *fakeStore) userRepo() *fakeUserRepo       { return &fakeUserRepo{s} }
func (s *fakeStore) postRepo() *fakePostRepo       { return &fakePostRepo{s} }
func (s *fakeStore) commentRepo() *fakeCommentRepo { return &fakeCommentRepo{s} }
func (s *fakeStore) convRepo() *fakeConvRepo       { return &fakeConvRepo{s} }

// --- repository.UserRepository ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []domain.User
	for _, u := range r.s.users {
		if u.ID == exclude {
			continue
		}
		users = append(users, *u)
		if len(users) == limit {
			break
		}
	}
	return users, nil
}

func (r *fakeUserRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{followerID, followeeID}
	if r.s.follows[key] {
		return false, nil
	}
	r.s.follows[key] = true
	return true, nil
}

func (r *fakeUserRepo) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.follows, [2]uuid.UUID{followerID, followeeID})
	return nil
}

func (r *fakeUserRepo) Followers(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{}
	for key := range r.s.follows {
		if key[1] == id {
			ids = append(ids, key[0])
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) Following(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []uuid.UUID{}
	for key := range r.s.follows {
		if key[0] == id {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

// --- repository.PostRepository ---

type fakePostRepo struct{ s *fakeStore }

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *post
	r.s.posts[post.ID] = &p
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	if author, ok := r.s.users[p.AuthorID]; ok {
		copied.Author = author.Summary()
	}
	return &copied, nil
}

func (r *fakePostRepo) List(ctx context.Context) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var posts []domain.Post
	for _, p := range r.s.posts {
		posts = append(posts, *p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *fakePostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	posts := []domain.Post{}
	for _, p := range r.s.posts {
		if p.AuthorID == authorID {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *fakePostRepo) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	posts := []domain.Post{}
	for _, postID := range r.s.bookmarks[userID] {
		if p, ok := r.s.posts[postID]; ok {
			posts = append(posts, *p)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.posts, id)
	delete(r.s.likes, id)
	// Cascade, as the schema's foreign keys would.
	for cid, c := range r.s.comments {
		if c.PostID == id {
			delete(r.s.comments, cid)
		}
	}
	for userID, ids := range r.s.bookmarks {
		kept := ids[:0]
		for _, postID := range ids {
			if postID != id {
				kept = append(kept, postID)
			}
		}
		r.s.bookmarks[userID] = kept
	}
	return nil
}

func (r *fakePostRepo) Like(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.likes[postID] {
		if id == userID {
			return false, nil
		}
	}
	r.s.likes[postID] = append(r.s.likes[postID], userID)
	return true, nil
}

func (r *fakePostRepo) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.likes[postID][:0]
	for _, id := range r.s.likes[postID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	r.s.likes[postID] = kept
	return nil
}

func (r *fakePostRepo) Likes(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]uuid.UUID{}, r.s.likes[postID]...), nil
}

func (r *fakePostRepo) Bookmark(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.bookmarks[userID] {
		if id == postID {
			return false, nil
		}
	}
	r.s.bookmarks[userID] = append(r.s.bookmarks[userID], postID)
	return true, nil
}

func (r *fakePostRepo) Unbookmark(ctx context.Context, userID, postID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.bookmarks[userID][:0]
	for _, id := range r.s.bookmarks[userID] {
		if id != postID {
			kept = append(kept, id)
		}
	}
	r.s.bookmarks[userID] = kept
	return nil
}

// --- repository.CommentRepository ---

type fakeCommentRepo struct{ s *fakeStore }

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *comment
	r.s.comments[comment.ID] = &c
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	if author, ok := r.s.users[c.AuthorID]; ok {
		copied.Author = author.Summary()
	}
	return &copied, nil
}

func (r *fakeCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comments := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

// --- repository.ConversationRepository ---

type fakeConvRepo struct{ s *fakeStore }

func (r *fakeConvRepo) GetOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{user1ID, user2ID}
	if conv, ok := r.s.convs[key]; ok {
		copied := *conv
		return &copied, nil
	}
	conv := &domain.Conversation{
		ID:            uuid.New(),
		User1ID:       user1ID,
		User2ID:       user2ID,
		CreatedAt:     time.Now(),
		LastMessageAt: time.Now(),
	}
	r.s.convs[key] = conv
	copied := *conv
	return &copied, nil
}

func (r *fakeConvRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	conv, ok := r.s.convs[[2]uuid.UUID{user1ID, user2ID}]
	if !ok {
		return nil, nil
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeConvRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	convs := []domain.Conversation{}
	for _, conv := range r.s.convs {
		if conv.User1ID == userID || conv.User2ID == userID {
			convs = append(convs, *conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].LastMessageAt.After(convs[j].LastMessageAt) })
	return convs, nil
}

func (r *fakeConvRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, conv := range r.s.convs {
		if conv.ID == id {
			conv.LastMessageAt = at
		}
	}
	return nil
}

func (r *fakeConvRepo) CreateMessage(ctx context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages[msg.ConversationID] = append(r.s.messages[msg.ConversationID], *msg)
	return nil
}

func (r *fakeConvRepo) GetMessageByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, msgs := range r.s.messages {
		for _, m := range msgs {
			if m.ID == id {
				copied := m
				if sender, ok := r.s.users[m.SenderID]; ok {
					copied.Sender = sender.Summary()
				}
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msgs := append([]domain.Message{}, r.s.messages[conversationID]...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

// --- media.Uploader ---

type fakeUploader struct {
	uploads int
	lastCT  string
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	f.uploads++
	f.lastCT = contentType
	return "assets/fake-upload.jpg", nil
}

// --- Notifier ---

type notification struct {
	kind   string
	target uuid.UUID
	actor  domain.UserSummary
	postID uuid.UUID
	msg    *domain.Message
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyFollow(targetID uuid.UUID, actor domain.UserSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{kind: "follow", target: targetID, actor: actor})
}

func (n *recordingNotifier) NotifyLike(targetID uuid.UUID, actor domain.UserSummary, postID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{kind: "like", target: targetID, actor: actor, postID: postID})
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{kind: "message", msg: msg})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification{}, n.events...)
}
