package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
	"github.com/mkovacic/picstream/internal/repository"
)

var (
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrEmptyMessage = errors.New("message cannot be empty")
)

type MessageService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewMessageService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		convRepo: convRepo,
		userRepo: userRepo,
	}
}

func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send appends a message to the unique conversation for the pair,
// creating the conversation on first contact. The notifier echoes the
// message to every live connection of both participants.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := canonicalPair(senderID, receiverID)
	conv, err := s.convRepo.GetOrCreate(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	if err := s.convRepo.Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("touching conversation: %w", err)
	}

	full, err := s.convRepo.GetMessageByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// History returns the pair's messages ascending by creation time, or an
// empty list when the two have never talked.
func (s *MessageService) History(ctx context.Context, callerID, otherID uuid.UUID) ([]domain.Message, error) {
	u1, u2 := canonicalPair(callerID, otherID)
	conv, err := s.convRepo.GetByUsers(ctx, u1, u2)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []domain.Message{}, nil
	}
	return s.convRepo.ListMessages(ctx, conv.ID)
}

// Conversations lists the caller's threads, most recently active first.
func (s *MessageService) Conversations(ctx context.Context, callerID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

// canonicalPair orders two ids so the pair key is independent of who
// started the conversation.
func canonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
