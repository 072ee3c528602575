package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Void-Roleplay/backend/internal/model"
	"github.com/Void-Roleplay/backend/internal/platform"
)

// errNotFound marks a gateway 404; translated to the model error at the
// adapter boundary
var errNotFound = errors.New("gateway resource not found")

// Adapter implements the platform capability set against a bot gateway:
// a separate process that owns the platform's wire protocol (ServerQuery,
// Discord gateway) and exposes it as a small JSON/HTTP API.
type Adapter struct {
	name        model.Platform
	client      *Client
	unsolicited bool
}

// Config holds bridge adapter settings
type Config struct {
	Platform   model.Platform
	GatewayURL string

	// Unsolicited reports whether the platform can be messaged outside an
	// active session
	Unsolicited bool
}

// New creates a bridge adapter for one platform gateway
func New(cfg Config) *Adapter {
	return &Adapter{
		name:        cfg.Platform,
		client:      NewClient(cfg.GatewayURL),
		unsolicited: cfg.Unsolicited,
	}
}

// Ensure Adapter implements the interface
var _ platform.Adapter = (*Adapter)(nil)

func (a *Adapter) Platform() model.Platform {
	return a.name
}

// principalResponse is the gateway's representation of a resolved user
type principalResponse struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
}

func (a *Adapter) FindPrincipal(ctx context.Context, handle model.Handle) (*platform.Principal, error) {
	var resp principalResponse
	err := a.client.get(ctx, "/principals/"+url.PathEscape(string(handle)), &resp)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, model.ErrUnknownExternalAccount
		}
		return nil, fmt.Errorf("resolving principal %q: %w", handle, err)
	}
	return &platform.Principal{
		Handle:      model.Handle(resp.Handle),
		DisplayName: resp.DisplayName,
	}, nil
}

type messageRequest struct {
	Handle string `json:"handle"`
	Text   string `json:"text"`
}

func (a *Adapter) SendMessage(ctx context.Context, principal *platform.Principal, text string) error {
	req := messageRequest{Handle: string(principal.Handle), Text: text}
	if err := a.client.post(ctx, "/messages", req, nil); err != nil {
		return fmt.Errorf("sending message to %q: %w", principal.Handle, err)
	}
	return nil
}

func (a *Adapter) PromptConfirmation(ctx context.Context, principal *platform.Principal, text string) error {
	req := messageRequest{Handle: string(principal.Handle), Text: text}
	if err := a.client.post(ctx, "/prompts", req, nil); err != nil {
		return fmt.Errorf("prompting %q: %w", principal.Handle, err)
	}
	return nil
}

type groupsResponse struct {
	Groups []string `json:"groups"`
}

func (a *Adapter) ListGroups(ctx context.Context, principal *platform.Principal) (map[model.GroupID]struct{}, error) {
	var resp groupsResponse
	path := "/principals/" + url.PathEscape(string(principal.Handle)) + "/groups"
	if err := a.client.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing groups for %q: %w", principal.Handle, err)
	}
	groups := make(map[model.GroupID]struct{}, len(resp.Groups))
	for _, g := range resp.Groups {
		groups[model.GroupID(g)] = struct{}{}
	}
	return groups, nil
}

type groupRequest struct {
	Group string `json:"group"`
}

func (a *Adapter) AddGroup(ctx context.Context, principal *platform.Principal, group model.GroupID) error {
	path := "/principals/" + url.PathEscape(string(principal.Handle)) + "/groups"
	if err := a.client.post(ctx, path, groupRequest{Group: string(group)}, nil); err != nil {
		return fmt.Errorf("adding group %s to %q: %w", group, principal.Handle, err)
	}
	return nil
}

func (a *Adapter) RemoveGroup(ctx context.Context, principal *platform.Principal, group model.GroupID) error {
	path := "/principals/" + url.PathEscape(string(principal.Handle)) + "/groups/" + url.PathEscape(string(group))
	if err := a.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("removing group %s from %q: %w", group, principal.Handle, err)
	}
	return nil
}

func (a *Adapter) SupportsUnsolicited() bool {
	return a.unsolicited
}
