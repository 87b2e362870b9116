package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smallhorseman/SEM37/analyzer"
)

const authBase = "http://auth.test"

func newAuthClient(t *testing.T) (*analyzer.Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	c := analyzer.New(authBase, time.Second, analyzer.WithHTTPClient(&http.Client{Transport: transport}))
	return c, transport
}

func TestLoginPersistsAndLogoutClears(t *testing.T) {
	ctx := context.Background()
	client, transport := newAuthClient(t)

	var got map[string]string
	transport.RegisterResponder(http.MethodPost, authBase+analyzer.EndpointLogin,
		func(req *http.Request) (*http.Response, error) {
			data, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(data, &got)
			return httpmock.NewStringResponse(http.StatusOK, `{"token": "abc"}`), nil
		})

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, err := OpenSession(ctx, store, client, "browser-1", nil)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.True(t, s.Login(ctx, " a@b.c ", "pw"))
	assert.Equal(t, map[string]string{"email": "a@b.c", "password": "pw"}, got)
	assert.Equal(t, "abc", s.Token())

	token, ok, err := store.Get(ctx, "browser-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	// A fresh session for the same browser starts logged in.
	restored, err := OpenSession(ctx, store, client, "browser-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", restored.Token())

	require.NoError(t, s.Logout(ctx))
	assert.Empty(t, s.Token())
	_, ok, err = store.Get(ctx, "browser-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginFailuresReturnFalse(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"unauthorized", httpmock.NewStringResponder(http.StatusUnauthorized, `{"error": "bad credentials"}`)},
		{"empty token", httpmock.NewStringResponder(http.StatusOK, `{"token": ""}`)},
		{"not json", httpmock.NewStringResponder(http.StatusOK, `<html></html>`)},
		{"unreachable", httpmock.NewErrorResponder(io.ErrUnexpectedEOF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client, transport := newAuthClient(t)
			transport.RegisterResponder(http.MethodPost, authBase+analyzer.EndpointLogin, tt.responder)

			core, logs := observer.New(zap.WarnLevel)
			store, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			s, err := OpenSession(ctx, store, client, "browser-1", zap.New(core))
			require.NoError(t, err)

			assert.False(t, s.Login(ctx, "a@b.c", "wrong"))
			assert.Empty(t, s.Token())
			assert.Equal(t, 1, logs.FilterMessage("login failed").Len())

			_, ok, err := store.Get(ctx, "browser-1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFailedLoginKeepsExistingToken(t *testing.T) {
	ctx := context.Background()
	client, transport := newAuthClient(t)
	transport.RegisterResponder(http.MethodPost, authBase+analyzer.EndpointLogin,
		httpmock.NewStringResponder(http.StatusUnauthorized, `{}`))

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "browser-1", "old"))

	s, err := OpenSession(ctx, store, client, "browser-1", nil)
	require.NoError(t, err)
	assert.False(t, s.Login(ctx, "a@b.c", "wrong"))
	assert.Equal(t, "old", s.Token())
}

func TestNilSessionHasNoToken(t *testing.T) {
	var s *Session
	assert.Empty(t, s.Token())
	assert.False(t, s.LoggedIn())
}
