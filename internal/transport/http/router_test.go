package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/auth"
	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/repository"
	"github.com/ErlanBelekov/taskboard/internal/taskquery"
	httptransport "github.com/ErlanBelekov/taskboard/internal/transport/http"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/handler"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore backs both repositories with maps.
type memStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	tasks map[string]domain.Task
	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]domain.User{},
		tasks: map[string]domain.Task{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memUsers struct{ *memStore }

func (s memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = s.tick()
	created.UpdatedAt = created.CreatedAt
	s.users[created.ID] = created
	return &created, nil
}

func (s memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email && existing.ID != u.ID {
			return nil, domain.ErrDuplicateEmail
		}
	}
	updated := *u
	updated.UpdatedAt = s.tick()
	s.users[u.ID] = updated
	return &updated, nil
}

type memTasks struct{ *memStore }

func (s memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *t
	created.ID = uuid.NewString()
	created.CreatedAt = s.tick()
	created.UpdatedAt = created.CreatedAt
	s.tasks[created.ID] = created
	return &created, nil
}

func (s memTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (s memTasks) Update(_ context.Context, id string, p repository.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		t.DueDate = p.DueDate
	}
	t.UpdatedAt = s.tick()
	s.tasks[id] = t
	return &t, nil
}

func (s memTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// List supports owner, status and newest-first ordering, enough for routing tests.
func (s memTasks) List(_ context.Context, q taskquery.Query) (repository.TaskPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*domain.Task
	for _, t := range s.tasks {
		if t.UserID != q.OwnerID || (q.Status != "" && t.Status != q.Status) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, &t)
	}
	slices.SortFunc(matched, func(a, b *domain.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	return repository.TaskPage{Tasks: matched[start:end], Total: total}, nil
}

func (s memTasks) Stats(_ context.Context, ownerID string, now time.Time) (domain.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.TaskStats
	for _, t := range s.tasks {
		if t.UserID != ownerID {
			continue
		}
		st.Total++
		switch t.Status {
		case domain.TaskStatusTodo:
			st.Todo++
		case domain.TaskStatusInProgress:
			st.InProgress++
		case domain.TaskStatusDone:
			st.Done++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != domain.TaskStatusDone {
			st.Overdue++
		}
	}
	return st, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	users := memUsers{store}

	codec, err := auth.NewTokenCodec([]byte("router-test-secret-with-32-chars!"))
	if err != nil {
		t.Fatal(err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	h := httptransport.Handlers{
		Auth: handler.NewAuthHandler(usecase.NewAuthUsecase(users, hasher, codec), handler.CookiePolicyFor("local"), logger),
		User: handler.NewUserHandler(usecase.NewUserUsecase(users, hasher), logger),
		Task: handler.NewTaskHandler(usecase.NewTaskUsecase(memTasks{store}), logger),
	}
	opts := httptransport.Options{
		ClientOrigin: "http://localhost:3000",
		APILimit:     1000, APIWindow: time.Minute,
		AuthLimit: 1000, AuthWindow: time.Minute,
	}

	srv := httptest.NewServer(httptransport.NewRouter(logger, opts, h, codec, users))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, _ := cookiejar.New(nil)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRouter_AdaScenario(t *testing.T) {
	srv := newServer(t)
	ada := newClient(t, srv)
	bob := newClient(t, srv)

	status, body := ada.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.com","password":"secret1"}`)
	if status != http.StatusCreated || body["email"] != "ada@x.com" {
		t.Fatalf("register: %d %v", status, body)
	}

	status, body = ada.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.com","password":"secret1"}`)
	if status != http.StatusBadRequest || body["message"] != "User already exists" {
		t.Errorf("duplicate register: %d %v", status, body)
	}

	status, body = ada.do(http.MethodPost, "/api/tasks", `{"title":"Write report"}`)
	if status != http.StatusCreated || body["status"] != "todo" {
		t.Fatalf("create: %d %v", status, body)
	}
	taskID, _ := body["id"].(string)

	status, body = ada.do(http.MethodGet, "/api/tasks", "")
	if status != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("list: %d %v", status, body)
	}

	if status, _ = bob.do(http.MethodPost, "/api/auth/register", `{"name":"Bob","email":"bob@x.com","password":"secret2"}`); status != http.StatusCreated {
		t.Fatalf("bob register: %d", status)
	}

	status, body = bob.do(http.MethodGet, "/api/tasks/"+taskID, "")
	if status != http.StatusForbidden || body["message"] != "Not authorized to access this task" {
		t.Errorf("bob read: %d %v", status, body)
	}
	if status, _ = bob.do(http.MethodDelete, "/api/tasks/"+taskID, ""); status != http.StatusForbidden {
		t.Errorf("bob delete: %d, want 403", status)
	}
	if _, body = bob.do(http.MethodGet, "/api/tasks", ""); body["total"] != float64(0) {
		t.Errorf("bob sees ada's tasks: %v", body)
	}

	if status, _ = ada.do(http.MethodPut, "/api/tasks/"+taskID, `{"status":"done"}`); status != http.StatusOK {
		t.Errorf("ada update: %d", status)
	}
	if _, body = ada.do(http.MethodGet, "/api/tasks/stats", ""); body["done"] != float64(1) {
		t.Errorf("stats: %v", body)
	}
	if status, body = ada.do(http.MethodDelete, "/api/tasks/"+taskID, ""); status != http.StatusOK || body["message"] != "Task removed" {
		t.Errorf("ada delete: %d %v", status, body)
	}

	if status, _ = ada.do(http.MethodPost, "/api/auth/logout", ""); status != http.StatusOK {
		t.Errorf("logout: %d", status)
	}
	status, body = ada.do(http.MethodGet, "/api/users/me", "")
	if status != http.StatusUnauthorized || body["message"] != "Not authorized, no token" {
		t.Errorf("after logout: %d %v", status, body)
	}

	status, body = ada.do(http.MethodPost, "/api/auth/login", `{"email":"ada@x.com","password":"nope"}`)
	if status != http.StatusUnauthorized || body["message"] != "Invalid email or password" {
		t.Errorf("bad login: %d %v", status, body)
	}
	if status, _ = ada.do(http.MethodPost, "/api/auth/login", `{"email":"ada@x.com","password":"secret1"}`); status != http.StatusOK {
		t.Errorf("login: %d", status)
	}
	if status, body = ada.do(http.MethodGet, "/api/users/me", ""); status != http.StatusOK || body["name"] != "Ada" {
		t.Errorf("me: %d %v", status, body)
	}
}

func TestRouter_RegisterPasswordOverBcryptLimit_Returns400(t *testing.T) {
	c := newClient(t, newServer(t))

	body := `{"name":"Ada","email":"ada@x.com","password":"` + strings.Repeat("a", 73) + `"}`
	status, resp := c.do(http.MethodPost, "/api/auth/register", body)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %v", status, resp)
	}
	fe, _ := resp["fieldErrors"].(map[string]any)
	if fe["password"] != "Password can not be more than 72 bytes" {
		t.Errorf("fieldErrors = %v", resp["fieldErrors"])
	}

	// The same user with a 72-byte password is fine.
	body = `{"name":"Ada","email":"ada@x.com","password":"` + strings.Repeat("a", 72) + `"}`
	if status, resp = c.do(http.MethodPost, "/api/auth/register", body); status != http.StatusCreated {
		t.Errorf("72-byte register: %d %v", status, resp)
	}
}

func TestRouter_ListHugePage_ReturnsEmptyPage(t *testing.T) {
	c := newClient(t, newServer(t))
	if status, _ := c.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.com","password":"secret1"}`); status != http.StatusCreated {
		t.Fatalf("register: %d", status)
	}
	if status, _ := c.do(http.MethodPost, "/api/tasks", `{"title":"Write report"}`); status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}

	status, body := c.do(http.MethodGet, "/api/tasks?page=9223372036854775807&limit=10", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}
	if tasks, _ := body["tasks"].([]any); len(tasks) != 0 || body["total"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestRouter_UpdateNullDueDate_ClearsIt(t *testing.T) {
	c := newClient(t, newServer(t))
	if status, _ := c.do(http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@x.com","password":"secret1"}`); status != http.StatusCreated {
		t.Fatalf("register: %d", status)
	}
	status, body := c.do(http.MethodPost, "/api/tasks", `{"title":"Write report","dueDate":"2030-01-01T00:00:00Z"}`)
	if status != http.StatusCreated || body["dueDate"] == nil {
		t.Fatalf("create: %d %v", status, body)
	}
	taskID, _ := body["id"].(string)

	if _, body = c.do(http.MethodPut, "/api/tasks/"+taskID, `{"title":"Write the report"}`); body["dueDate"] == nil {
		t.Errorf("absent dueDate cleared it: %v", body)
	}
	status, body = c.do(http.MethodPut, "/api/tasks/"+taskID, `{"dueDate":null}`)
	if status != http.StatusOK || body["dueDate"] != nil {
		t.Errorf("null dueDate: %d %v", status, body)
	}
	if _, body = c.do(http.MethodGet, "/api/tasks/"+taskID, ""); body["dueDate"] != nil || body["title"] != "Write the report" {
		t.Errorf("after clear: %v", body)
	}
}

func TestRouter_NoRoute(t *testing.T) {
	c := newClient(t, newServer(t))

	status, body := c.do(http.MethodGet, "/api/nothing-here", "")
	if status != http.StatusNotFound || body["message"] != "Not Found - /api/nothing-here" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestRouter_Health(t *testing.T) {
	c := newClient(t, newServer(t))

	status, body := c.do(http.MethodGet, "/api/health", "")
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestRouter_CORSAllowsClientOriginWithCredentials(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}
