package domain

// Workspace is a mirrored Clockify workspace.
type Workspace struct {
	ID   string
	Name string
}
