package models

// Workspace is the tenancy scope derived per request from the
// authenticated user and their optional active organization. Every query
// touching subjects, chats, documents, or messages is filtered through it.
type Workspace struct {
	UserID string
	OrgID  *string // nil for personal workspaces
}

// PersonalWorkspace scopes access to the user alone.
func PersonalWorkspace(userID string) Workspace {
	return Workspace{UserID: userID}
}

// OrgWorkspace scopes access to a specific organization.
func OrgWorkspace(userID, orgID string) Workspace {
	return Workspace{UserID: userID, OrgID: &orgID}
}

// IsOrg returns true if this workspace is organization-scoped.
func (w Workspace) IsOrg() bool {
	return w.OrgID != nil
}
