package chat

import (
	"fmt"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
)

// VerifyOwnership checks that a chat belongs to the caller's workspace.
// Personal chats must belong to the same user with no organization;
// organization chats must match both the organization and the original
// creator.
func VerifyOwnership(chat *chatModels.Chat, ws models.Workspace) error {
	if ws.IsOrg() {
		if chat.OrgID == nil || *chat.OrgID != *ws.OrgID || chat.UserID != ws.UserID {
			return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrForbidden)
		}
		return nil
	}

	if chat.UserID != ws.UserID || chat.OrgID != nil {
		return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrForbidden)
	}

	return nil
}
