// AngelaMos | 2026
// access.go

package store

// Access is the outcome of a successful guard check: either Owner, derived
// from stores.owner_id, or Member carrying the stored membership role.
type Access interface {
	RoleName() string
	CanWrite() bool
	IsOwner() bool
	sealed()
}

type Owner struct{}

func (Owner) RoleName() string { return RoleOwner }
func (Owner) CanWrite() bool   { return true }
func (Owner) IsOwner() bool    { return true }
func (Owner) sealed()          {}

type Member struct {
	Role string
}

func (m Member) RoleName() string { return m.Role }

func (m Member) CanWrite() bool {
	return m.Role == RoleAdmin || m.Role == RoleEditor
}

func (Member) IsOwner() bool { return false }
func (Member) sealed()       {}

// AccessError is a guard failure. Message is shown to the user verbatim;
// Err is core.ErrForbidden or core.ErrNotFound.
type AccessError struct {
	Message string
	Err     error
}

func (e *AccessError) Error() string {
	return e.Message
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
