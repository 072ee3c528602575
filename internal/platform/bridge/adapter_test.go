package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Void-Roleplay/backend/internal/model"
)

// fakeGateway is an in-process stand-in for a platform bot gateway
type fakeGateway struct {
	principals map[string]string              // handle -> display name
	groups     map[string]map[string]struct{} // handle -> held groups
	messages   []string
	prompts    []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		principals: make(map[string]string),
		groups:     make(map[string]map[string]struct{}),
	}
}

func (g *fakeGateway) handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/principals/{handle}", func(w http.ResponseWriter, req *http.Request) {
		handle := mux.Vars(req)["handle"]
		name, ok := g.principals[handle]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"handle":       handle,
			"display_name": name,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/messages", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.messages = append(g.messages, body.Text)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	r.HandleFunc("/prompts", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.prompts = append(g.prompts, body.Text)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	r.HandleFunc("/principals/{handle}/groups", func(w http.ResponseWriter, req *http.Request) {
		handle := mux.Vars(req)["handle"]
		held := make([]string, 0, len(g.groups[handle]))
		for group := range g.groups[handle] {
			held = append(held, group)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"groups": held})
	}).Methods(http.MethodGet)

	r.HandleFunc("/principals/{handle}/groups", func(w http.ResponseWriter, req *http.Request) {
		handle := mux.Vars(req)["handle"]
		var body struct {
			Group string `json:"group"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if g.groups[handle] == nil {
			g.groups[handle] = make(map[string]struct{})
		}
		g.groups[handle][body.Group] = struct{}{}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	r.HandleFunc("/principals/{handle}/groups/{group}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		delete(g.groups[vars["handle"]], vars["group"])
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	return r
}

func newTestAdapter(t *testing.T) (*Adapter, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	srv := httptest.NewServer(gw.handler())
	t.Cleanup(srv.Close)

	adapter := New(Config{
		Platform:    model.PlatformTeamSpeak,
		GatewayURL:  srv.URL,
		Unsolicited: false,
	})
	return adapter, gw
}

func TestFindPrincipal(t *testing.T) {
	adapter, gw := newTestAdapter(t)
	gw.principals["uid-1"] = "notch"

	principal, err := adapter.FindPrincipal(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, model.Handle("uid-1"), principal.Handle)
	assert.Equal(t, "notch", principal.DisplayName)
}

func TestFindPrincipalNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.FindPrincipal(context.Background(), "nobody")
	assert.ErrorIs(t, err, model.ErrUnknownExternalAccount)
}

func TestSendMessageAndPrompt(t *testing.T) {
	adapter, gw := newTestAdapter(t)
	gw.principals["uid-1"] = "notch"

	principal, err := adapter.FindPrincipal(context.Background(), "uid-1")
	require.NoError(t, err)

	require.NoError(t, adapter.SendMessage(context.Background(), principal, "hello"))
	require.NoError(t, adapter.PromptConfirmation(context.Background(), principal, "confirm?"))

	assert.Equal(t, []string{"hello"}, gw.messages)
	assert.Equal(t, []string{"confirm?"}, gw.prompts)
}

func TestGroupRoundTrip(t *testing.T) {
	adapter, gw := newTestAdapter(t)
	gw.principals["uid-1"] = "notch"
	gw.groups["uid-1"] = map[string]struct{}{"7": {}}

	principal, err := adapter.FindPrincipal(context.Background(), "uid-1")
	require.NoError(t, err)

	held, err := adapter.ListGroups(context.Background(), principal)
	require.NoError(t, err)
	assert.Contains(t, held, model.GroupID("7"))

	require.NoError(t, adapter.AddGroup(context.Background(), principal, "R5"))
	require.NoError(t, adapter.RemoveGroup(context.Background(), principal, "7"))

	held, err = adapter.ListGroups(context.Background(), principal)
	require.NoError(t, err)
	assert.Contains(t, held, model.GroupID("R5"))
	assert.NotContains(t, held, model.GroupID("7"))
}

func TestGatewayErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "UPSTREAM_DOWN",
			"message": "the bot lost its connection",
		})
	}))
	t.Cleanup(srv.Close)

	adapter := New(Config{Platform: model.PlatformDiscord, GatewayURL: srv.URL})

	_, err := adapter.FindPrincipal(context.Background(), "jeb#1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_DOWN")
}
