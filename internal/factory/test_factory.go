package factory

import (
	"context"
	"time"

	"github.com/Void-Roleplay/backend/internal/dependencies/mocks"
	"github.com/Void-Roleplay/backend/internal/directory/memory"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
	platformmocks "github.com/Void-Roleplay/backend/internal/platform/mocks"
	"github.com/Void-Roleplay/backend/internal/services/linking"
	"github.com/Void-Roleplay/backend/internal/services/reconcile"
	"github.com/Void-Roleplay/backend/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockAdapters map[model.Platform]*platformmocks.Adapter
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Both platforms get a recording mock adapter; TeamSpeak carries the
// unverified sentinel group and cannot send unsolicited messages, Discord can.
func NewTestApp() *TestApp {
	dir := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	teamspeak := platformmocks.NewAdapter(model.PlatformTeamSpeak)
	teamspeak.Unsolicited = false
	discord := platformmocks.NewAdapter(model.PlatformDiscord)

	mockAdapters := map[model.Platform]*platformmocks.Adapter{
		model.PlatformTeamSpeak: teamspeak,
		model.PlatformDiscord:   discord,
	}
	adapters := make(map[model.Platform]platform.Adapter, len(mockAdapters))
	for p, a := range mockAdapters {
		adapters[p] = a
	}

	groups := map[model.Platform]reconcile.PlatformGroups{
		model.PlatformTeamSpeak: {Baseline: "TS_GUEST", Unverified: "2235"},
		model.PlatformDiscord:   {Baseline: "DC_EVERYONE"},
	}

	app := newWithDependencies(dir, mockClock, adapters, groups, linking.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockAdapters: mockAdapters,
	}
}

// LoadTestCatalog saves a small role catalog for testing
func (t *TestApp) LoadTestCatalog() error {
	catalog := &model.RoleCatalog{
		MemberDefaultRank: "Spieler",
		Ranks: []model.Rank{
			{ID: 0, Name: "Spieler", Groups: map[model.Platform]model.GroupID{
				model.PlatformTeamSpeak: "TS_SPIELER",
				model.PlatformDiscord:   "DC_SPIELER",
			}},
			{ID: 5, Name: "Moderator", Groups: map[model.Platform]model.GroupID{
				model.PlatformTeamSpeak: "TS_MOD",
				model.PlatformDiscord:   "DC_MOD",
			}},
		},
		Factions: []model.Faction{
			{
				ID:       "reds",
				IsActive: true,
				Groups: map[model.Platform]model.GroupID{
					model.PlatformTeamSpeak: "TS_REDS",
					model.PlatformDiscord:   "DC_REDS",
				},
				LeaderGroups: map[model.Platform]model.GroupID{
					model.PlatformTeamSpeak: "TS_REDS_LEAD",
					model.PlatformDiscord:   "DC_REDS_LEAD",
				},
				MemberGroups: map[model.Platform]model.GroupID{
					model.PlatformTeamSpeak: "TS_REDS_MEMBER",
					model.PlatformDiscord:   "DC_REDS_MEMBER",
				},
			},
		},
	}
	return t.Directory.SaveRoleCatalog(context.Background(), catalog)
}
