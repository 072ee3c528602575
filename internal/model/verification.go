package model

import "time"

// PendingVerification is an in-flight link request awaiting platform-side
// confirmation. Entries are ephemeral: they live only in the verification
// store and end in exactly one of approve/reject/expire/cancel.
type PendingVerification struct {
	Platform    Platform
	Handle      Handle
	PlayerUUID  PlayerID
	DisplayName string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the entry's deadline has passed
func (v *PendingVerification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// GroupDelta is the set of group operations needed to move a principal's
// actual platform groups to the target set. Computed fresh on every
// reconciliation, never cached.
type GroupDelta struct {
	ToAdd    []GroupID
	ToRemove []GroupID
}

// Empty reports whether the delta contains no operations
func (d GroupDelta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}
