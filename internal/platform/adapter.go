package platform

import (
	"context"

	"github.com/Void-Roleplay/backend/internal/model"
)

// Principal is a platform's representation of a user
type Principal struct {
	Handle      model.Handle
	DisplayName string
}

// Adapter is the per-platform capability set consumed by the linking engine.
// Implementations own the wire protocol; the engine never sees it. All calls
// may perform network I/O and honor ctx cancellation.
type Adapter interface {
	// Platform identifies which platform this adapter serves
	Platform() model.Platform

	// FindPrincipal resolves a handle to a principal.
	// Returns model.ErrUnknownExternalAccount if the platform cannot resolve it.
	FindPrincipal(ctx context.Context, handle model.Handle) (*Principal, error)

	// SendMessage delivers a plain notification to the principal
	SendMessage(ctx context.Context, principal *Principal, text string) error

	// PromptConfirmation asks the principal to accept or deny a link request.
	// Fire-and-forget: the answer arrives later as a confirmation signal.
	PromptConfirmation(ctx context.Context, principal *Principal, text string) error

	// ListGroups returns the groups the principal currently holds
	ListGroups(ctx context.Context, principal *Principal) (map[model.GroupID]struct{}, error)

	// AddGroup and RemoveGroup mutate a single group membership
	AddGroup(ctx context.Context, principal *Principal, group model.GroupID) error
	RemoveGroup(ctx context.Context, principal *Principal, group model.GroupID) error

	// SupportsUnsolicited reports whether the platform allows messaging a
	// principal outside an active session (timeout notices need this)
	SupportsUnsolicited() bool
}
