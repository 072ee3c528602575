package model

// Rank maps an in-game rank to platform-side groups.
// Secondary ranks are independent of the primary rank ladder and may stack.
type Rank struct {
	ID          int
	Name        string
	IsSecondary bool
	Groups      map[Platform]GroupID
}

// Faction maps an in-game faction to platform-side groups.
// Leader and member variants are distinct groups where the platform has them.
type Faction struct {
	ID           string
	IsActive     bool
	Groups       map[Platform]GroupID
	LeaderGroups map[Platform]GroupID
	MemberGroups map[Platform]GroupID
}

// RoleCatalog is an immutable snapshot of the rank and faction group mappings,
// taken fresh for each reconciliation. Group IDs are opaque.
type RoleCatalog struct {
	Ranks    []Rank
	Factions []Faction

	// MemberDefaultRank names the rank granted to every linked player
	// regardless of their numeric rank
	MemberDefaultRank string
}

// FactionByID returns the faction with the given id, if present
func (c *RoleCatalog) FactionByID(id string) (*Faction, bool) {
	for i := range c.Factions {
		if c.Factions[i].ID == id {
			return &c.Factions[i], true
		}
	}
	return nil, false
}
