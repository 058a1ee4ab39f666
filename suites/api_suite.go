package suites

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testhive/app-test-harness/fixtures"
	"github.com/testhive/app-test-harness/framework/apptest"
	"github.com/testhive/app-test-harness/mockapp"
	"github.com/testhive/app-test-harness/resources"
)

func doAPITests(t *apptest.T, mgr *resources.Manager) {
	// One HTTP session for the whole run; tests only read and send requests
	// through it, so sharing is safe under sequential execution.
	client, err := mgr.APIClient(t, resources.ScopeSession)
	require.NoError(t, err)

	t.Run("status endpoint responds", func(t *apptest.T) {
		resp, err := client.Get("/status")
		require.NoError(t, err)
		var body map[string]string
		readJSON(t, resp, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("endpoint slashes are normalized", func(t *apptest.T) {
		assert.Equal(t, client.ResolveURL("status"), client.ResolveURL("/status"))
		assert.Equal(t, client.ResolveURL("api/users"), client.ResolveURL("/api/users"))
	})

	t.Run("user CRUD round trip", func(t *apptest.T) {
		user := sampleUser(t, mgr)

		resp, err := client.Post("/api/users", user)
		require.NoError(t, err)
		var created mockapp.User
		readJSON(t, resp, &created)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, user.Username, created.Username)

		userPath := fmt.Sprintf("/api/users/%d", created.ID)

		resp, err = client.Get(userPath)
		require.NoError(t, err)
		var fetched mockapp.User
		readJSON(t, resp, &fetched)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, created, fetched)

		fetched.Email = "updated@example.com"
		resp, err = client.Put(userPath, fetched)
		require.NoError(t, err)
		var updated mockapp.User
		readJSON(t, resp, &updated)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "updated@example.com", updated.Email)

		resp, err = client.Patch(userPath, map[string]interface{}{"active": false})
		require.NoError(t, err)
		var patched mockapp.User
		readJSON(t, resp, &patched)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, patched.Active)

		resp, err = client.Delete(userPath)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, err = client.Get(userPath)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-2xx responses are returned, not raised", func(t *apptest.T) {
		resp, err := client.Get("/api/users/999999")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("transient failures are retried", func(t *apptest.T) {
		if !mgr.Config().StartMockApp {
			t.SkipWithReason("requires the built-in mock application (--mock-app)")
		}
		// the mock app fails this endpoint exactly three times, which is the
		// retry budget; the fourth attempt must come back 200
		resp, err := client.Get("/flaky/3")
		require.NoError(t, err)
		var body map[string]interface{}
		readJSON(t, resp, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 4, body["attempts"])
	})
}

// sampleUser loads the canned user fixture if one is present in the data
// directory, falling back to a built-in record.
func sampleUser(t *apptest.T, mgr *resources.Manager) mockapp.User {
	var user mockapp.User
	err := fixtures.Load(mgr.Config().DataDir, "sample_user.json", &user)
	if err == nil {
		return user
	}
	var notFound fixtures.FixtureNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("cannot load sample_user.json: %s", err)
		t.FailNow()
	}
	t.Debug("no sample_user.json fixture; using built-in sample data")
	return mockapp.User{Username: "testuser", Email: "testuser@example.com", Active: true}
}

func readJSON(t *apptest.T, resp *http.Response, target interface{}) {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Errorf("cannot decode response body: %s", err)
		t.FailNow()
	}
}
