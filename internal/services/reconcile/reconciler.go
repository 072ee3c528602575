package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
)

// PlatformGroups holds the fixed groups of one platform that reconciliation
// treats specially: the baseline group every principal keeps, and the
// optional "unverified" sentinel owned by the link/unlink transition.
type PlatformGroups struct {
	Baseline   model.GroupID
	Unverified model.GroupID
}

// Reconciler computes and applies group-membership deltas between a player's
// entitlements and the groups actually held on a platform
type Reconciler struct {
	groups map[model.Platform]PlatformGroups
	logger *slog.Logger
}

// New creates a reconciler with the per-platform fixed groups
func New(groups map[model.Platform]PlatformGroups, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		groups: groups,
		logger: logger.With(slog.String("component", "reconciler")),
	}
}

// TargetGroups computes the full set of groups the player is entitled to on
// the given platform
func (r *Reconciler) TargetGroups(player *model.PlayerRecord, catalog *model.RoleCatalog, p model.Platform) map[model.GroupID]struct{} {
	target := make(map[model.GroupID]struct{})

	if baseline := r.groups[p].Baseline; baseline != "" {
		target[baseline] = struct{}{}
	}

	for _, rank := range catalog.Ranks {
		group, ok := rank.Groups[p]
		if !ok || group == "" {
			continue
		}
		// The member-default rank is granted to every linked player
		// regardless of numeric rank
		if (rank.ID == player.RankID && !rank.IsSecondary) || rank.Name == catalog.MemberDefaultRank {
			target[group] = struct{}{}
		}
		// Secondary ranks stack independently of the primary ladder
		if rank.IsSecondary && player.SecondaryTeamID != nil && rank.Name == *player.SecondaryTeamID {
			target[group] = struct{}{}
		}
	}

	if player.FactionID != nil {
		if faction, ok := catalog.FactionByID(*player.FactionID); ok && faction.IsActive {
			if group := faction.Groups[p]; group != "" {
				target[group] = struct{}{}
			}
			variant := faction.MemberGroups
			if player.IsFactionLeader {
				variant = faction.LeaderGroups
			}
			if group := variant[p]; group != "" {
				target[group] = struct{}{}
			}
		}
	}

	return target
}

// Diff computes the operations needed to move actual to target. The baseline
// and unverified sentinel groups are never removal candidates; the linking
// transition alone controls the sentinel.
func (r *Reconciler) Diff(target, actual map[model.GroupID]struct{}, p model.Platform) model.GroupDelta {
	protected := r.groups[p]

	var delta model.GroupDelta
	for group := range target {
		if _, held := actual[group]; !held {
			delta.ToAdd = append(delta.ToAdd, group)
		}
	}
	for group := range actual {
		if group == protected.Baseline || group == protected.Unverified {
			continue
		}
		if _, wanted := target[group]; !wanted {
			delta.ToRemove = append(delta.ToRemove, group)
		}
	}
	return delta
}

// Apply issues each add/remove independently. A failure on one operation is
// logged and the rest continue; reconciliation is self-healing on the next
// run, so partial application is acceptable.
func (r *Reconciler) Apply(ctx context.Context, adapter platform.Adapter, principal *platform.Principal, delta model.GroupDelta) {
	for _, group := range delta.ToAdd {
		if err := adapter.AddGroup(ctx, principal, group); err != nil {
			r.logger.Warn("failed to add group",
				slog.String("platform", string(adapter.Platform())),
				slog.String("handle", string(principal.Handle)),
				slog.String("group", string(group)),
				slog.String("error", err.Error()))
		}
	}
	for _, group := range delta.ToRemove {
		if err := adapter.RemoveGroup(ctx, principal, group); err != nil {
			r.logger.Warn("failed to remove group",
				slog.String("platform", string(adapter.Platform())),
				slog.String("handle", string(principal.Handle)),
				slog.String("group", string(group)),
				slog.String("error", err.Error()))
		}
	}
}

// Reconcile snapshots the principal's actual groups once, computes the full
// delta, then applies it. Never mutates while iterating platform state.
func (r *Reconciler) Reconcile(ctx context.Context, adapter platform.Adapter, principal *platform.Principal, player *model.PlayerRecord, catalog *model.RoleCatalog) (model.GroupDelta, error) {
	actual, err := adapter.ListGroups(ctx, principal)
	if err != nil {
		return model.GroupDelta{}, fmt.Errorf("listing groups: %w", err)
	}

	target := r.TargetGroups(player, catalog, adapter.Platform())
	delta := r.Diff(target, actual, adapter.Platform())
	r.Apply(ctx, adapter, principal, delta)
	return delta, nil
}

// Clear reconciles against an empty target set, returning the principal to an
// unlinked role state: every rank/faction group is removed, the baseline is
// kept, and the unverified sentinel is re-added where the platform uses one.
func (r *Reconciler) Clear(ctx context.Context, adapter platform.Adapter, principal *platform.Principal) (model.GroupDelta, error) {
	actual, err := adapter.ListGroups(ctx, principal)
	if err != nil {
		return model.GroupDelta{}, fmt.Errorf("listing groups: %w", err)
	}

	p := adapter.Platform()
	target := make(map[model.GroupID]struct{})
	if baseline := r.groups[p].Baseline; baseline != "" {
		target[baseline] = struct{}{}
	}

	delta := r.Diff(target, actual, p)

	sentinel := r.groups[p].Unverified
	if sentinel != "" {
		if _, held := actual[sentinel]; !held {
			delta.ToAdd = append(delta.ToAdd, sentinel)
		}
	}

	r.Apply(ctx, adapter, principal, delta)
	return delta, nil
}

// Sentinel returns the platform's unverified sentinel group, empty if the
// platform has none
func (r *Reconciler) Sentinel(p model.Platform) model.GroupID {
	return r.groups[p].Unverified
}
