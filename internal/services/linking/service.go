package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Void-Roleplay/backend/internal/dependencies/clock"
	"github.com/Void-Roleplay/backend/internal/directory"
	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
	"github.com/Void-Roleplay/backend/internal/services/reconcile"
	"github.com/Void-Roleplay/backend/internal/services/verification"
)

// Config holds per-platform linking settings
type Config struct {
	// VerifyTTL is the confirmation window per platform
	VerifyTTL map[model.Platform]time.Duration
}

// DefaultConfig returns default linking configuration
func DefaultConfig() Config {
	return Config{
		VerifyTTL: map[model.Platform]time.Duration{
			model.PlatformTeamSpeak: 2 * time.Minute,
			model.PlatformDiscord:   10 * time.Minute,
		},
	}
}

// Service orchestrates account linking: it registers pending verifications,
// drives them through their lifecycle on platform-originated signals, and
// runs the group reconciler once a link is committed.
type Service struct {
	dir        directory.Directory
	adapters   map[model.Platform]platform.Adapter
	store      *verification.Store
	reconciler *reconcile.Reconciler
	clock      clock.Clock
	logger     *slog.Logger
	cfg        Config
}

// New creates a linking service
func New(dir directory.Directory, adapters map[model.Platform]platform.Adapter, store *verification.Store, reconciler *reconcile.Reconciler, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.VerifyTTL == nil {
		cfg.VerifyTTL = DefaultConfig().VerifyTTL
	}
	return &Service{
		dir:        dir,
		adapters:   adapters,
		store:      store,
		reconciler: reconciler,
		clock:      clk,
		logger:     logger.With(slog.String("component", "linking")),
		cfg:        cfg,
	}
}

// RequestLink starts a link between a player and an external handle. It
// returns as soon as the pending entry is registered and the principal has
// been prompted; the commit happens later on the signal-delivery path.
func (s *Service) RequestLink(ctx context.Context, playerID model.PlayerID, handle model.Handle, p model.Platform) error {
	adapter, ok := s.adapters[p]
	if !ok {
		return model.ErrUnknownPlatform
	}

	player, err := s.dir.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("resolving player %s: %w", playerID, err)
	}

	principal, err := adapter.FindPrincipal(ctx, handle)
	if err != nil {
		return fmt.Errorf("resolving handle %q on %s: %w", handle, p, err)
	}

	now := s.clock.Now()
	entry := &model.PendingVerification{
		Platform:    p,
		Handle:      handle,
		PlayerUUID:  player.UUID,
		DisplayName: player.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.verifyTTL(p)),
	}

	if err := s.store.Put(entry); err != nil {
		return err
	}

	prompt := fmt.Sprintf("%s wants to link this account with their in-game identity. Confirm or deny the request.", player.DisplayName)
	if err := adapter.PromptConfirmation(ctx, principal, prompt); err != nil {
		// Without the prompt the user can never answer, so roll the
		// entry back instead of letting it sit until expiry
		s.store.Resolve(p, handle)
		return fmt.Errorf("prompting %q on %s: %w", handle, p, err)
	}

	s.logger.Info("link requested",
		slog.String("player", string(playerID)),
		slog.String("platform", string(p)),
		slog.String("handle", string(handle)))
	return nil
}

// OnConfirmationSignal is the sole entry point by which platform-side user
// action reaches the confirmation state machine. Resolve is single-consumer,
// so a duplicate or late signal finds no entry and is a silent no-op
// (platforms deliver at-least-once).
func (s *Service) OnConfirmationSignal(ctx context.Context, p model.Platform, handle model.Handle, accepted bool) {
	entry, ok := s.store.Resolve(p, handle)
	if !ok {
		return
	}

	adapter := s.adapters[p]
	if adapter == nil {
		return
	}

	if !accepted {
		s.logger.Info("link rejected",
			slog.String("player", string(entry.PlayerUUID)),
			slog.String("platform", string(p)),
			slog.String("handle", string(handle)))
		s.notify(ctx, adapter, handle, "The link request was denied.")
		return
	}

	player, err := s.dir.GetPlayer(ctx, entry.PlayerUUID)
	if err != nil {
		// Account disappeared between request and confirmation: no
		// directory write, no reconciliation
		s.logger.Warn("link approved for missing player",
			slog.String("player", string(entry.PlayerUUID)),
			slog.String("platform", string(p)))
		s.notify(ctx, adapter, handle, "Something went wrong, the account could not be linked.")
		return
	}

	if err := s.dir.SetExternalHandle(ctx, player.UUID, p, handle); err != nil {
		s.logger.Error("failed to store external handle",
			slog.String("player", string(player.UUID)),
			slog.String("platform", string(p)),
			slog.String("error", err.Error()))
		s.notify(ctx, adapter, handle, "Something went wrong, the account could not be linked.")
		return
	}
	player.Handles[p] = handle

	s.logger.Info("link approved",
		slog.String("player", string(player.UUID)),
		slog.String("platform", string(p)),
		slog.String("handle", string(handle)))

	s.reconcilePlayer(ctx, adapter, player, handle)
	s.dropSentinel(ctx, adapter, handle)
	s.notify(ctx, adapter, handle, fmt.Sprintf("Your account is now linked with %s.", entry.DisplayName))
}

// Cancel discards the player's pending request on a platform, notifying the
// principal only if the request was still open
func (s *Service) Cancel(ctx context.Context, playerID model.PlayerID, p model.Platform) error {
	entry, ok := s.store.CancelForPlayer(playerID, p)
	if !ok {
		return model.ErrNoVerification
	}

	s.logger.Info("link cancelled",
		slog.String("player", string(playerID)),
		slog.String("platform", string(p)))

	if adapter := s.adapters[p]; adapter != nil {
		s.notify(ctx, adapter, entry.Handle, "The link request was cancelled.")
	}
	return nil
}

// Unlink clears the player's handle and returns the platform account to an
// unlinked role state
func (s *Service) Unlink(ctx context.Context, playerID model.PlayerID, p model.Platform) error {
	adapter, ok := s.adapters[p]
	if !ok {
		return model.ErrUnknownPlatform
	}

	player, err := s.dir.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("resolving player %s: %w", playerID, err)
	}

	handle, linked := player.Handle(p)
	if !linked {
		return model.ErrNotLinked
	}

	if err := s.dir.ClearExternalHandle(ctx, playerID, p); err != nil {
		return fmt.Errorf("clearing handle: %w", err)
	}

	s.logger.Info("unlinked",
		slog.String("player", string(playerID)),
		slog.String("platform", string(p)),
		slog.String("handle", string(handle)))

	principal, err := adapter.FindPrincipal(ctx, handle)
	if err != nil {
		// The handle is already cleared; group cleanup will happen on
		// the next link of that account
		s.logger.Warn("unlink could not resolve principal",
			slog.String("handle", string(handle)),
			slog.String("error", err.Error()))
		return nil
	}

	if _, err := s.reconciler.Clear(ctx, adapter, principal); err != nil {
		s.logger.Warn("unlink group cleanup failed",
			slog.String("handle", string(handle)),
			slog.String("error", err.Error()))
	}
	s.notify(ctx, adapter, handle, "Your account link has been removed.")
	return nil
}

// ReconcileNow forces an out-of-band reconciliation for a linked player,
// e.g. after a rank or faction change
func (s *Service) ReconcileNow(ctx context.Context, playerID model.PlayerID, p model.Platform) error {
	adapter, ok := s.adapters[p]
	if !ok {
		return model.ErrUnknownPlatform
	}

	player, err := s.dir.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("resolving player %s: %w", playerID, err)
	}

	handle, linked := player.Handle(p)
	if !linked {
		return model.ErrNotLinked
	}

	return s.reconcilePlayer(ctx, adapter, player, handle)
}

// RunSweeper expires stale verifications until ctx is done. Expiry is the
// sweep's job alone: there is no per-request timer, so a request outlives its
// deadline by at most one interval.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("verification sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("verification sweeper stopped")
			return
		}
	}
}

// SweepOnce expires every overdue verification and sends timeout notices
// where the platform supports unsolicited messages
func (s *Service) SweepOnce(ctx context.Context) {
	expired := s.store.SweepExpired(s.clock.Now())
	for _, entry := range expired {
		s.logger.Info("link request expired",
			slog.String("player", string(entry.PlayerUUID)),
			slog.String("platform", string(entry.Platform)),
			slog.String("handle", string(entry.Handle)))

		adapter := s.adapters[entry.Platform]
		if adapter == nil || !adapter.SupportsUnsolicited() {
			continue
		}
		s.notify(ctx, adapter, entry.Handle, "The link request expired. Please try again.")
	}
}

// reconcilePlayer snapshots the catalog and runs one reconciliation
func (s *Service) reconcilePlayer(ctx context.Context, adapter platform.Adapter, player *model.PlayerRecord, handle model.Handle) error {
	catalog, err := s.dir.RoleCatalog(ctx)
	if err != nil {
		return fmt.Errorf("loading role catalog: %w", err)
	}

	principal, err := adapter.FindPrincipal(ctx, handle)
	if err != nil {
		return fmt.Errorf("resolving handle %q on %s: %w", handle, adapter.Platform(), err)
	}

	delta, err := s.reconciler.Reconcile(ctx, adapter, principal, player, catalog)
	if err != nil {
		return err
	}
	if !delta.Empty() {
		s.logger.Info("groups reconciled",
			slog.String("player", string(player.UUID)),
			slog.String("platform", string(adapter.Platform())),
			slog.Int("added", len(delta.ToAdd)),
			slog.Int("removed", len(delta.ToRemove)))
	}
	return nil
}

// dropSentinel takes the unverified sentinel group off a freshly linked
// principal. The reconciler never touches the sentinel; the link transition
// owns it.
func (s *Service) dropSentinel(ctx context.Context, adapter platform.Adapter, handle model.Handle) {
	sentinel := s.reconciler.Sentinel(adapter.Platform())
	if sentinel == "" {
		return
	}
	principal, err := adapter.FindPrincipal(ctx, handle)
	if err != nil {
		return
	}
	if err := adapter.RemoveGroup(ctx, principal, sentinel); err != nil {
		s.logger.Warn("failed to remove unverified group",
			slog.String("handle", string(handle)),
			slog.String("group", string(sentinel)),
			slog.String("error", err.Error()))
	}
}

// notify sends a best-effort message; failures are cosmetic, not part of the
// correctness contract, and are swallowed
func (s *Service) notify(ctx context.Context, adapter platform.Adapter, handle model.Handle, text string) {
	principal, err := adapter.FindPrincipal(ctx, handle)
	if err != nil {
		if !errors.Is(err, model.ErrUnknownExternalAccount) {
			s.logger.Debug("notification skipped", slog.String("error", err.Error()))
		}
		return
	}
	if err := adapter.SendMessage(ctx, principal, text); err != nil {
		s.logger.Debug("notification failed", slog.String("error", err.Error()))
	}
}

func (s *Service) verifyTTL(p model.Platform) time.Duration {
	if ttl, ok := s.cfg.VerifyTTL[p]; ok && ttl > 0 {
		return ttl
	}
	return 5 * time.Minute
}
