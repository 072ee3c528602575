package mocks

import (
	"context"
	"sync"

	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
)

// Adapter is a scriptable in-memory platform adapter for tests.
// It records every message and group mutation it is asked to perform.
type Adapter struct {
	mu sync.Mutex

	ForPlatform model.Platform
	Unsolicited bool

	// Principals known to the fake platform, keyed by handle
	Principals map[model.Handle]*platform.Principal

	// Groups currently held per handle
	Groups map[model.Handle]map[model.GroupID]struct{}

	// Scripted failures
	FindErr   error
	SendErr   error
	ListErr   error
	AddErr    map[model.GroupID]error
	RemoveErr map[model.GroupID]error

	// Recorded calls
	Messages []string
	Prompts  []string
	Added    []model.GroupID
	Removed  []model.GroupID
}

// Ensure Adapter implements the interface
var _ platform.Adapter = (*Adapter)(nil)

// NewAdapter creates a mock adapter for the given platform
func NewAdapter(p model.Platform) *Adapter {
	return &Adapter{
		ForPlatform: p,
		Unsolicited: true,
		Principals:  make(map[model.Handle]*platform.Principal),
		Groups:      make(map[model.Handle]map[model.GroupID]struct{}),
	}
}

// AddPrincipal registers a principal with the fake platform
func (a *Adapter) AddPrincipal(handle model.Handle, displayName string, groups ...model.GroupID) *platform.Principal {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := &platform.Principal{Handle: handle, DisplayName: displayName}
	a.Principals[handle] = p
	set := make(map[model.GroupID]struct{}, len(groups))
	for _, g := range groups {
		set[g] = struct{}{}
	}
	a.Groups[handle] = set
	return p
}

func (a *Adapter) Platform() model.Platform {
	return a.ForPlatform
}

func (a *Adapter) FindPrincipal(ctx context.Context, handle model.Handle) (*platform.Principal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FindErr != nil {
		return nil, a.FindErr
	}
	p, ok := a.Principals[handle]
	if !ok {
		return nil, model.ErrUnknownExternalAccount
	}
	return p, nil
}

func (a *Adapter) SendMessage(ctx context.Context, principal *platform.Principal, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.SendErr != nil {
		return a.SendErr
	}
	a.Messages = append(a.Messages, text)
	return nil
}

func (a *Adapter) PromptConfirmation(ctx context.Context, principal *platform.Principal, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.SendErr != nil {
		return a.SendErr
	}
	a.Prompts = append(a.Prompts, text)
	return nil
}

func (a *Adapter) ListGroups(ctx context.Context, principal *platform.Principal) (map[model.GroupID]struct{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ListErr != nil {
		return nil, a.ListErr
	}
	out := make(map[model.GroupID]struct{}, len(a.Groups[principal.Handle]))
	for g := range a.Groups[principal.Handle] {
		out[g] = struct{}{}
	}
	return out, nil
}

func (a *Adapter) AddGroup(ctx context.Context, principal *platform.Principal, group model.GroupID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.AddErr[group]; err != nil {
		return err
	}
	if a.Groups[principal.Handle] == nil {
		a.Groups[principal.Handle] = make(map[model.GroupID]struct{})
	}
	a.Groups[principal.Handle][group] = struct{}{}
	a.Added = append(a.Added, group)
	return nil
}

func (a *Adapter) RemoveGroup(ctx context.Context, principal *platform.Principal, group model.GroupID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.RemoveErr[group]; err != nil {
		return err
	}
	delete(a.Groups[principal.Handle], group)
	a.Removed = append(a.Removed, group)
	return nil
}

func (a *Adapter) SupportsUnsolicited() bool {
	return a.Unsolicited
}

// HeldGroups returns a copy of the groups the handle currently holds
func (a *Adapter) HeldGroups(handle model.Handle) map[model.GroupID]struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[model.GroupID]struct{}, len(a.Groups[handle]))
	for g := range a.Groups[handle] {
		out[g] = struct{}{}
	}
	return out
}
