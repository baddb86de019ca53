package service

import (
	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
)

// Notifier pushes best-effort events to a user's live connections.
// Implementations must never block and never fail the caller; a target
// with no connections is a silent no-op.
type Notifier interface {
	NotifyFollow(targetID uuid.UUID, actor domain.UserSummary)
	NotifyLike(targetID uuid.UUID, actor domain.UserSummary, postID uuid.UUID)
	NotifyNewMessage(msg *domain.Message)
}
