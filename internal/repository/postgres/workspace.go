package postgres

import (
	"fmt"

	"fundscope/internal/domain/models"
)

// WorkspaceClause builds the tenant predicate for a workspace. Personal
// workspaces match rows owned by the user with no organization; org
// workspaces match every row in the organization. Placeholders start at
// argIndex.
func WorkspaceClause(ws models.Workspace, argIndex int) (string, []interface{}) {
	if ws.IsOrg() {
		return fmt.Sprintf("org_id = $%d", argIndex), []interface{}{*ws.OrgID}
	}
	return fmt.Sprintf("user_id = $%d AND org_id IS NULL", argIndex), []interface{}{ws.UserID}
}
