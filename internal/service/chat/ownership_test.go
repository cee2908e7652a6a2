package chat

import (
	"errors"
	"testing"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
)

func TestVerifyOwnership(t *testing.T) {
	org1 := "org-1"
	org2 := "org-2"

	tests := []struct {
		name    string
		chat    *chatModels.Chat
		ws      models.Workspace
		wantErr bool
	}{
		{
			name:    "personal chat own user",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1"},
			ws:      models.PersonalWorkspace("user-1"),
			wantErr: false,
		},
		{
			name:    "personal chat other user",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1"},
			ws:      models.PersonalWorkspace("user-2"),
			wantErr: true,
		},
		{
			name:    "org chat same org same creator",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1", OrgID: &org1},
			ws:      models.OrgWorkspace("user-1", "org-1"),
			wantErr: false,
		},
		{
			name:    "org chat same org different creator",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1", OrgID: &org1},
			ws:      models.OrgWorkspace("user-2", "org-1"),
			wantErr: true,
		},
		{
			name:    "org chat different org",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1", OrgID: &org1},
			ws:      models.OrgWorkspace("user-1", "org-2"),
			wantErr: true,
		},
		{
			name:    "org chat from personal workspace",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1", OrgID: &org1},
			ws:      models.PersonalWorkspace("user-1"),
			wantErr: true,
		},
		{
			name:    "personal chat from org workspace",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1"},
			ws:      models.OrgWorkspace("user-1", "org-1"),
			wantErr: true,
		},
		{
			name:    "org chat wrong org and wrong creator",
			chat:    &chatModels.Chat{ID: "c1", UserID: "user-1", OrgID: &org2},
			ws:      models.OrgWorkspace("user-3", "org-1"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyOwnership(tt.chat, tt.ws)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("ownership failures must map to ErrForbidden, got %v", err)
			}
		})
	}
}
