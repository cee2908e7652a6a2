package chat

import (
	"context"
	"fmt"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	"fundscope/internal/domain/repositories"
	chatRepo "fundscope/internal/domain/repositories/chat"
)

// TrialQuotaChecker enforces the chat quota for organizations on the
// trial plan. Paid organizations are never limited, and personal
// workspaces are outside quota scope entirely.
type TrialQuotaChecker struct {
	orgRepo  repositories.OrganizationRepository
	chatRepo chatRepo.ChatRepository
}

// NewTrialQuotaChecker creates a new quota checker.
func NewTrialQuotaChecker(orgRepo repositories.OrganizationRepository, chats chatRepo.ChatRepository) *TrialQuotaChecker {
	return &TrialQuotaChecker{
		orgRepo:  orgRepo,
		chatRepo: chats,
	}
}

// CanCreateChat returns nil when the organization may create another
// chat, or a QuotaError (402 with a machine-readable code) when the
// trial limit is reached. Only chat creation consults the quota;
// messages to existing chats are never blocked.
func (q *TrialQuotaChecker) CanCreateChat(ctx context.Context, orgID string) error {
	org, err := q.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load organization for quota check: %w", err)
	}

	if org.Plan != models.PlanTrial {
		return nil
	}

	count, err := q.chatRepo.CountByOrg(ctx, orgID)
	if err != nil {
		return fmt.Errorf("count chats for quota check: %w", err)
	}

	if count >= org.TrialChatLimit {
		return &domain.QuotaError{
			Message: fmt.Sprintf("trial limit of %d chats reached; upgrade to continue", org.TrialChatLimit),
			Code:    domain.QuotaCodeTrialChatLimit,
		}
	}

	return nil
}
