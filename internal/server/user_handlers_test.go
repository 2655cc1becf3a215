package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountVerification(t *testing.T) {
	t.Parallel()
	srv, app, db := newTestServer(t)

	alice := createTestUser(t, db, "alice@example.com", models.RoleUser)
	bob := createTestUser(t, db, "bob@example.com", models.RoleUser)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	aliceToken := accessTokenFor(t, srv, alice.ID)
	bobToken := accessTokenFor(t, srv, bob.ID)
	adminToken := accessTokenFor(t, srv, admin.ID)

	// A user verifies their own account through the auth endpoint.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/verify", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_verified"])

	// Self-verification also works via the users endpoint.
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/verify", bob.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, bob.ID).Error)
	assert.True(t, stored.IsVerified)

	// A regular user cannot verify someone else's account.
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/verify", admin.ID), aliceToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins can verify anyone.
	charlie := createTestUser(t, db, "charlie@example.com", models.RoleUser)
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/verify", charlie.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&stored, charlie.ID).Error)
	assert.True(t, stored.IsVerified)

	// Anonymous requests are rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/verify", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
