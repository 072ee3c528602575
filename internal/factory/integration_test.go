package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Void-Roleplay/backend/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestCatalog())
}

func (s *IntegrationSuite) seedPlayer(uuid, name string) model.PlayerID {
	faction := "reds"
	id := model.PlayerID(uuid)
	s.Require().NoError(s.app.Directory.SavePlayer(s.ctx, &model.PlayerRecord{
		UUID:            id,
		DisplayName:     name,
		RankID:          5,
		FactionID:       &faction,
		IsFactionLeader: true,
	}))
	return id
}

// Test: complete link flow from request through confirmation to unlink
func (s *IntegrationSuite) TestCompleteLinkFlow() {
	ts := s.app.MockAdapters[model.PlatformTeamSpeak]

	// Setup: a player in the directory, a guest on the TeamSpeak server
	id := s.seedPlayer("11111111-2222-3333-4444-555555555555", "Notch")
	ts.AddPrincipal("uid-1", "notch", "TS_GUEST", "2235")

	// Step 1: the in-game command starts the link
	err := s.app.LinkingService.RequestLink(s.ctx, id, "uid-1", model.PlatformTeamSpeak)
	s.Require().NoError(err)
	s.Len(ts.Prompts, 1)
	s.Equal(1, s.app.Store.Len())

	// Step 2: the gateway reports the user said yes
	s.app.LinkingService.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)

	// The handle is committed and the pending entry consumed
	player, err := s.app.Directory.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.Handle("uid-1"), player.Handles[model.PlatformTeamSpeak])
	s.Equal(0, s.app.Store.Len())

	// Groups match the player's rank and faction leadership
	held := ts.HeldGroups("uid-1")
	s.Contains(held, model.GroupID("TS_MOD"))
	s.Contains(held, model.GroupID("TS_SPIELER"))
	s.Contains(held, model.GroupID("TS_REDS"))
	s.Contains(held, model.GroupID("TS_REDS_LEAD"))
	s.NotContains(held, model.GroupID("TS_REDS_MEMBER"))
	s.NotContains(held, model.GroupID("2235"))

	// Step 3: unlink returns the account to its unverified state
	err = s.app.LinkingService.Unlink(s.ctx, id, model.PlatformTeamSpeak)
	s.Require().NoError(err)

	player, err = s.app.Directory.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(player.Handles[model.PlatformTeamSpeak])

	held = ts.HeldGroups("uid-1")
	s.Contains(held, model.GroupID("TS_GUEST"))
	s.Contains(held, model.GroupID("2235"))
	s.NotContains(held, model.GroupID("TS_MOD"))
	s.NotContains(held, model.GroupID("TS_REDS_LEAD"))
}

// Test: an unanswered request expires on sweep and a linked player on
// another platform is unaffected
func (s *IntegrationSuite) TestExpiryAcrossPlatforms() {
	dc := s.app.MockAdapters[model.PlatformDiscord]
	ts := s.app.MockAdapters[model.PlatformTeamSpeak]

	id := s.seedPlayer("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", "Jeb")
	dc.AddPrincipal("jeb#1", "jeb", "DC_EVERYONE")
	ts.AddPrincipal("uid-9", "jeb", "TS_GUEST", "2235")

	s.Require().NoError(s.app.LinkingService.RequestLink(s.ctx, id, "jeb#1", model.PlatformDiscord))
	s.Require().NoError(s.app.LinkingService.RequestLink(s.ctx, id, "uid-9", model.PlatformTeamSpeak))
	s.Equal(2, s.app.Store.Len())

	// The TeamSpeak window (2m) lapses, the Discord window (10m) does not
	s.app.MockClock.Advance(3 * time.Minute)
	s.app.LinkingService.SweepOnce(s.ctx)
	s.Equal(1, s.app.Store.Len())

	// A late TeamSpeak yes finds nothing to commit
	s.app.LinkingService.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-9", true)
	player, err := s.app.Directory.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(player.Handles[model.PlatformTeamSpeak])

	// The Discord confirmation still lands
	s.app.LinkingService.OnConfirmationSignal(s.ctx, model.PlatformDiscord, "jeb#1", true)
	player, err = s.app.Directory.GetPlayer(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.Handle("jeb#1"), player.Handles[model.PlatformDiscord])
}
