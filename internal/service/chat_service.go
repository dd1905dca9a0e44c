package service

import (
	"context"
	"log/slog"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// ChatService is the passive per-group message sink. Append-only, insertion
// order authoritative, no money semantics.
type ChatService struct {
	store storage.Store
}

// NewChatService creates a ChatService with the given storage backend.
func NewChatService(store storage.Store) *ChatService {
	return &ChatService{store: store}
}

// PostMessage appends a message to the group's chat history. The sender must
// be a member.
func (s *ChatService) PostMessage(ctx context.Context, groupID, senderID, text string) (*models.ChatMessage, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member := group.Member(senderID)
	if member == nil {
		return nil, models.ErrNotAMember
	}

	msg := &models.ChatMessage{
		GroupID:    groupID,
		SenderID:   senderID,
		SenderName: member.Name,
		Text:       text,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		slog.Error("PostMessage failed", "group_id", groupID, "sender_id", senderID, "error", err)
		return nil, err
	}

	return msg, nil
}

// Messages returns the group's chat history in insertion order. Like
// posting, reading is members only.
func (s *ChatService) Messages(ctx context.Context, groupID, callerID string) ([]*models.ChatMessage, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Member(callerID) == nil {
		return nil, models.ErrNotAMember
	}
	return s.store.ListMessages(ctx, groupID)
}
