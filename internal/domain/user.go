package domain

// User is the single mirrored Clockify user. IDs are opaque strings assigned
// by the remote API.
type User struct {
	ID               string
	Name             string
	Email            string
	DefaultWorkspace string
	ActiveWorkspace  string // empty when the user has never switched workspaces
	TimeZone         string
}

// Workspace resolves the workspace the user is billing against, preferring
// the active workspace over the default one.
func (u User) Workspace() string {
	if u.ActiveWorkspace != "" {
		return u.ActiveWorkspace
	}
	return u.DefaultWorkspace
}
