package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the session cookie handshake and a couple of task routes.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "tok", Path: "/", HttpOnly: true, MaxAge: 3600})
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ada","email":"ada@x.com"}`))
	})

	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "", Path: "/", MaxAge: -1})
		_, _ = w.Write([]byte(`{"message":"Logged out successfully"}`))
	})

	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("jwt"); err != nil || c.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authorized, no token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","name":"Ada","email":"ada@x.com"}`))
	})

	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "report", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.False(t, q.Has("limit"))
		_, _ = w.Write([]byte(`{"tasks":[{"id":"t1","user":"u1","title":"Write report","status":"todo"}],"page":2,"totalPages":2,"total":11}`))
	})

	mux.HandleFunc("POST /api/tasks", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Validation Error","fieldErrors":{"title":"Title is required"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SessionCookieRoundTrip(t *testing.T) {
	srv := fakeAPI(t)
	var unauthorized atomic.Int32
	c, err := apiclient.New(srv.URL, apiclient.WithOnUnauthorized(func() { unauthorized.Add(1) }))
	require.NoError(t, err)
	ctx := context.Background()

	u, err := c.Login(ctx, apiclient.LoginRequest{Email: "ada@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)

	require.NoError(t, c.Logout(ctx))

	_, err = c.Me(ctx)
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authorized, no token", apiErr.Message)
	assert.Equal(t, int32(1), unauthorized.Load())
}

func TestClient_BadLoginFiresCallback(t *testing.T) {
	srv := fakeAPI(t)
	fired := false
	c, err := apiclient.New(srv.URL, apiclient.WithOnUnauthorized(func() { fired = true }))
	require.NoError(t, err)

	_, err = c.Login(context.Background(), apiclient.LoginRequest{Email: "ada@x.com", Password: "nope"})

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.True(t, fired)
}

func TestClient_ListTasksEncodesParams(t *testing.T) {
	srv := fakeAPI(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	page, err := c.ListTasks(context.Background(), apiclient.ListParams{Search: "report", Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "Write report", page.Tasks[0].Title)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 11, page.Total)
}

func TestClient_FieldErrors(t *testing.T) {
	srv := fakeAPI(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateTask(context.Background(), apiclient.CreateTaskRequest{Title: ""})

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Title is required", apiErr.FieldErrors["title"])
}

func TestClient_NoCallbackIsFine(t *testing.T) {
	srv := fakeAPI(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.Error(t, err)
}

func TestUpdateTaskRequest_JSON(t *testing.T) {
	title := "x"
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		req  apiclient.UpdateTaskRequest
		want string
	}{
		{"only title", apiclient.UpdateTaskRequest{Title: &title}, `{"title":"x"}`},
		{"due date", apiclient.UpdateTaskRequest{DueDate: &due}, `{"dueDate":"2030-01-01T00:00:00Z"}`},
		{"clear", apiclient.UpdateTaskRequest{Title: &title, ClearDueDate: true}, `{"title":"x","dueDate":null}`},
		{"clear wins", apiclient.UpdateTaskRequest{DueDate: &due, ClearDueDate: true}, `{"dueDate":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}
