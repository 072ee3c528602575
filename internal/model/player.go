package model

import "github.com/google/uuid"

// PlayerID is the stable in-game identity key (a UUID, never reused)
type PlayerID string

// Validate checks that the ID is a well-formed UUID
func (id PlayerID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return ErrInvalidPlayerID
	}
	return nil
}

// Platform identifies an external chat/voice platform
type Platform string

const (
	PlatformTeamSpeak Platform = "teamspeak"
	PlatformDiscord   Platform = "discord"
)

// Platforms lists every supported platform
var Platforms = []Platform{PlatformTeamSpeak, PlatformDiscord}

// Valid reports whether the platform is one we support
func (p Platform) Valid() bool {
	switch p {
	case PlatformTeamSpeak, PlatformDiscord:
		return true
	}
	return false
}

// Handle is a platform-specific unique identifier used to look up a principal
// (TeamSpeak unique identifier, Discord user ID)
type Handle string

// GroupID is an opaque platform-side group/role identifier.
// The engine only ever compares it for equality.
type GroupID string

// PlayerRecord is the in-game identity as held by the account directory.
// The engine treats it as read-mostly; only the external handles are ever
// written, and only as the terminal step of a successful confirmation.
type PlayerRecord struct {
	UUID            PlayerID
	DisplayName     string
	RankID          int
	FactionID       *string // nil when unaffiliated
	IsFactionLeader bool
	SecondaryTeamID *string
	Handles         map[Platform]Handle
}

// Handle returns the player's handle on the given platform, if linked
func (p *PlayerRecord) Handle(platform Platform) (Handle, bool) {
	h, ok := p.Handles[platform]
	return h, ok && h != ""
}
