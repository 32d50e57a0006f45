package port

import "context"

//go:generate mockgen -source=privilege.go -destination=mocks/privilege_mock.go -package=mocks

// AdminPrompter obtains an interactive administrator authorization from
// the OS privilege subsystem. A nil return means the grant was given.
// Denial and cancellation surface as ErrAuthDenied / ErrAuthCancelled.
type AdminPrompter interface {
	RequestGrant(ctx context.Context, reason string) error
}

// PrivilegedCopier copies a single file into a protected location using an
// already-established authorization grant.
type PrivilegedCopier interface {
	Copy(ctx context.Context, src, dst string) error
}
