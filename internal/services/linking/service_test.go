package linking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Void-Roleplay/backend/internal/dependencies/mocks"
	"github.com/Void-Roleplay/backend/internal/directory/memory"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
	platformmocks "github.com/Void-Roleplay/backend/internal/platform/mocks"
	"github.com/Void-Roleplay/backend/internal/services/reconcile"
	"github.com/Void-Roleplay/backend/internal/services/verification"
)

const (
	playerUUID = model.PlayerID("11111111-2222-3333-4444-555555555555")
	tsBaseline = model.GroupID("TS_BASE")
	tsGuest    = model.GroupID("TS_GUEST")
)

type ServiceSuite struct {
	suite.Suite
	dir       *memory.Directory
	teamspeak *platformmocks.Adapter
	discord   *platformmocks.Adapter
	store     *verification.Store
	clock     *mocks.MockClock
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.dir = memory.New()
	s.teamspeak = platformmocks.NewAdapter(model.PlatformTeamSpeak)
	s.teamspeak.Unsolicited = false // chat-session platform
	s.discord = platformmocks.NewAdapter(model.PlatformDiscord)
	s.store = verification.NewStore()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	reconciler := reconcile.New(map[model.Platform]reconcile.PlatformGroups{
		model.PlatformTeamSpeak: {Baseline: tsBaseline, Unverified: tsGuest},
		model.PlatformDiscord:   {Baseline: "DC_EVERYONE"},
	}, logger)

	adapters := map[model.Platform]platform.Adapter{
		model.PlatformTeamSpeak: s.teamspeak,
		model.PlatformDiscord:   s.discord,
	}

	s.service = New(s.dir, adapters, s.store, reconciler, s.clock, logger, DefaultConfig())

	s.seedDirectory()
}

func (s *ServiceSuite) seedDirectory() {
	ts := model.PlatformTeamSpeak
	catalog := &model.RoleCatalog{
		MemberDefaultRank: "Spieler",
		Ranks: []model.Rank{
			{ID: 0, Name: "Spieler", Groups: map[model.Platform]model.GroupID{ts: "R0"}},
			{ID: 5, Name: "Moderator", Groups: map[model.Platform]model.GroupID{ts: "R5"}},
		},
		Factions: []model.Faction{
			{
				ID:           "reds",
				IsActive:     true,
				Groups:       map[model.Platform]model.GroupID{ts: "REDS_BASE"},
				LeaderGroups: map[model.Platform]model.GroupID{ts: "REDS_LEAD"},
				MemberGroups: map[model.Platform]model.GroupID{ts: "REDS_MEMBER"},
			},
		},
	}
	s.Require().NoError(s.dir.SaveRoleCatalog(s.ctx, catalog))

	faction := "reds"
	player := &model.PlayerRecord{
		UUID:            playerUUID,
		DisplayName:     "Notch",
		RankID:          5,
		FactionID:       &faction,
		IsFactionLeader: true,
		Handles:         map[model.Platform]model.Handle{},
	}
	s.Require().NoError(s.dir.SavePlayer(s.ctx, player))
}

// RequestLink tests

func (s *ServiceSuite) TestRequestLinkPromptsAndRegisters() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline, tsGuest)

	err := s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak)
	s.Require().NoError(err)

	s.Len(s.teamspeak.Prompts, 1)
	s.Contains(s.teamspeak.Prompts[0], "Notch")
	s.Equal(1, s.store.Len())
}

func (s *ServiceSuite) TestRequestLinkUnknownPlayer() {
	s.teamspeak.AddPrincipal("uid-1", "notch")

	err := s.service.RequestLink(s.ctx, "99999999-9999-9999-9999-999999999999", "uid-1", model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Equal(0, s.store.Len())
}

func (s *ServiceSuite) TestRequestLinkUnknownExternalAccount() {
	err := s.service.RequestLink(s.ctx, playerUUID, "missing", model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrUnknownExternalAccount)
}

func (s *ServiceSuite) TestRequestLinkTwiceConflicts() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)

	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	err := s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrVerificationConflict)
}

func (s *ServiceSuite) TestRequestLinkRollsBackWhenPromptFails() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)
	s.teamspeak.SendErr = errors.New("session dropped")

	err := s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak)
	s.Error(err)
	s.Equal(0, s.store.Len())
}

func (s *ServiceSuite) TestRequestLinkUnknownPlatform() {
	err := s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.Platform("irc"))
	s.ErrorIs(err, model.ErrUnknownPlatform)
}

// Confirmation signal tests

func (s *ServiceSuite) TestApprovalLinksAndReconciles() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline, tsGuest)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)

	player, err := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Require().NoError(err)
	s.Equal(model.Handle("uid-1"), player.Handles[model.PlatformTeamSpeak])

	held := s.teamspeak.HeldGroups("uid-1")
	s.Contains(held, model.GroupID("R5"))
	s.Contains(held, model.GroupID("R0"))
	s.Contains(held, model.GroupID("REDS_BASE"))
	s.Contains(held, model.GroupID("REDS_LEAD"))

	// The unverified guest group came off with the link
	s.NotContains(held, tsGuest)

	// Success notification was sent
	s.Require().NotEmpty(s.teamspeak.Messages)
	s.Contains(s.teamspeak.Messages[len(s.teamspeak.Messages)-1], "linked")
}

func (s *ServiceSuite) TestRejectionLeavesDirectoryUntouched() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline, tsGuest)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", false)

	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Empty(player.Handles[model.PlatformTeamSpeak])
	s.NotContains(s.teamspeak.HeldGroups("uid-1"), model.GroupID("R5"))
}

func (s *ServiceSuite) TestSpuriousSignalIsNoOp() {
	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "nobody", true)

	s.Empty(s.teamspeak.Messages)
	s.Empty(s.teamspeak.Added)
}

func (s *ServiceSuite) TestDuplicateApprovalIsNoOp() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)
	messagesAfterFirst := len(s.teamspeak.Messages)

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)
	s.Equal(messagesAfterFirst, len(s.teamspeak.Messages))
}

func (s *ServiceSuite) TestApprovalForVanishedPlayerSkipsCommit() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)

	entry := &model.PendingVerification{
		Platform:    model.PlatformTeamSpeak,
		Handle:      "uid-1",
		PlayerUUID:  "99999999-9999-9999-9999-999999999999",
		DisplayName: "Ghost",
		CreatedAt:   s.clock.Now(),
		ExpiresAt:   s.clock.Now().Add(time.Minute),
	}
	s.Require().NoError(s.store.Put(entry))

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)

	s.Empty(s.teamspeak.Added)
	s.Require().NotEmpty(s.teamspeak.Messages)
	s.Contains(s.teamspeak.Messages[0], "went wrong")
}

// Cancel tests

func (s *ServiceSuite) TestCancelPendingRequest() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	err := s.service.Cancel(s.ctx, playerUUID, model.PlatformTeamSpeak)
	s.Require().NoError(err)
	s.Equal(0, s.store.Len())

	// Cancelled request no longer accepts signals
	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)
	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Empty(player.Handles[model.PlatformTeamSpeak])
}

func (s *ServiceSuite) TestCancelWithoutPending() {
	err := s.service.Cancel(s.ctx, playerUUID, model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrNoVerification)
}

func (s *ServiceSuite) TestCancelThenRelinkWithNewHandle() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)
	s.teamspeak.AddPrincipal("uid-2", "notch-alt", tsBaseline)

	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))
	s.Require().NoError(s.service.Cancel(s.ctx, playerUUID, model.PlatformTeamSpeak))
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-2", model.PlatformTeamSpeak))

	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-2", true)

	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Equal(model.Handle("uid-2"), player.Handles[model.PlatformTeamSpeak])
}

// Unlink tests

func (s *ServiceSuite) TestUnlinkClearsHandleAndGroups() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline, tsGuest)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))
	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)

	err := s.service.Unlink(s.ctx, playerUUID, model.PlatformTeamSpeak)
	s.Require().NoError(err)

	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Empty(player.Handles[model.PlatformTeamSpeak])

	held := s.teamspeak.HeldGroups("uid-1")
	s.Contains(held, tsBaseline)
	s.Contains(held, tsGuest)
	s.NotContains(held, model.GroupID("R5"))
	s.NotContains(held, model.GroupID("REDS_LEAD"))
}

func (s *ServiceSuite) TestUnlinkWhenNotLinked() {
	err := s.service.Unlink(s.ctx, playerUUID, model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrNotLinked)
}

// ReconcileNow tests

func (s *ServiceSuite) TestReconcileNowAfterRankChange() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline, tsGuest)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))
	s.service.OnConfirmationSignal(s.ctx, model.PlatformTeamSpeak, "uid-1", true)

	// Demote the player and drop the faction
	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	player.RankID = 0
	player.FactionID = nil
	s.Require().NoError(s.dir.SavePlayer(s.ctx, player))

	s.Require().NoError(s.service.ReconcileNow(s.ctx, playerUUID, model.PlatformTeamSpeak))

	held := s.teamspeak.HeldGroups("uid-1")
	s.Contains(held, model.GroupID("R0"))
	s.NotContains(held, model.GroupID("R5"))
	s.NotContains(held, model.GroupID("REDS_LEAD"))
	s.NotContains(held, model.GroupID("REDS_BASE"))
}

func (s *ServiceSuite) TestReconcileNowWhenNotLinked() {
	err := s.service.ReconcileNow(s.ctx, playerUUID, model.PlatformTeamSpeak)
	s.ErrorIs(err, model.ErrNotLinked)
}

// Sweep tests

func (s *ServiceSuite) TestSweepExpiresStaleRequest() {
	s.discord.AddPrincipal("disc-1", "notch#0001", "DC_EVERYONE")
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "disc-1", model.PlatformDiscord))

	s.clock.Advance(11 * time.Minute)
	s.service.SweepOnce(s.ctx)

	s.Equal(0, s.store.Len())
	s.Require().NotEmpty(s.discord.Messages)
	s.Contains(s.discord.Messages[0], "expired")

	// Expired request no longer accepts signals
	s.service.OnConfirmationSignal(s.ctx, model.PlatformDiscord, "disc-1", true)
	player, _ := s.dir.GetPlayer(s.ctx, playerUUID)
	s.Empty(player.Handles[model.PlatformDiscord])
}

func (s *ServiceSuite) TestSweepSkipsTimeoutNoticeWithoutUnsolicitedSupport() {
	s.teamspeak.AddPrincipal("uid-1", "notch", tsBaseline)
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "uid-1", model.PlatformTeamSpeak))

	s.clock.Advance(3 * time.Minute)
	s.service.SweepOnce(s.ctx)

	s.Equal(0, s.store.Len())
	s.Empty(s.teamspeak.Messages)
}

func (s *ServiceSuite) TestSweepLeavesFreshRequestsAlone() {
	s.discord.AddPrincipal("disc-1", "notch#0001")
	s.Require().NoError(s.service.RequestLink(s.ctx, playerUUID, "disc-1", model.PlatformDiscord))

	s.clock.Advance(time.Minute)
	s.service.SweepOnce(s.ctx)

	s.Equal(1, s.store.Len())
}
