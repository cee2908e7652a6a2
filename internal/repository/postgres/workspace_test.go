package postgres

import (
	"testing"

	"fundscope/internal/domain/models"
)

func TestWorkspaceClause(t *testing.T) {
	tests := []struct {
		name       string
		ws         models.Workspace
		argIndex   int
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "personal workspace",
			ws:         models.PersonalWorkspace("user-1"),
			argIndex:   1,
			wantClause: "user_id = $1 AND org_id IS NULL",
			wantArgs:   []interface{}{"user-1"},
		},
		{
			name:       "org workspace",
			ws:         models.OrgWorkspace("user-1", "org-1"),
			argIndex:   1,
			wantClause: "org_id = $1",
			wantArgs:   []interface{}{"org-1"},
		},
		{
			name:       "later placeholder index",
			ws:         models.PersonalWorkspace("user-2"),
			argIndex:   3,
			wantClause: "user_id = $3 AND org_id IS NULL",
			wantArgs:   []interface{}{"user-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := WorkspaceClause(tt.ws, tt.argIndex)
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
