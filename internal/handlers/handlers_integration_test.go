package handlers_test

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/repositories"
	"taskboard/internal/services"
	"taskboard/views"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and the full
// route table from main. Each test gets its own named in-memory database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("SECRET_KEY", "test_session_secret")
	viper.AutomaticEnv()
	secret := viper.GetString("SECRET_KEY")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.BlogPost{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	taskRepo := repositories.NewGORMTaskRepository(db)

	authService := services.NewAuthService(userRepo, secret)
	taskService := services.NewTaskService(taskRepo, nil) // nil for AMQP client

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	pagesHandler := handlers.NewPagesHandler()

	app := fiber.New(fiber.Config{
		Views: views.Engine(),
	})

	pagesHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	taskHandler.RegisterRoutes(protected)

	return app
}

// testClient is a minimal browser: it carries cookies (session and flash)
// across requests against the in-process app.
type testClient struct {
	app     *fiber.App
	cookies map[string]string
}

func newTestClient(app *fiber.App) *testClient {
	return &testClient{
		app:     app,
		cookies: make(map[string]string),
	}
}

func (tc *testClient) do(t *testing.T, method, target string, form url.Values) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range tc.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := tc.app.Test(req, -1) // -1 for no timeout
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}

	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(tc.cookies, ck.Name)
		} else {
			tc.cookies[ck.Name] = ck.Value
		}
	}
	return resp
}

func (tc *testClient) get(t *testing.T, target string) *http.Response {
	return tc.do(t, http.MethodGet, target, nil)
}

func (tc *testClient) postForm(t *testing.T, target string, form url.Values) *http.Response {
	return tc.do(t, http.MethodPost, target, form)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(body)
}

// signup registers an account and leaves the client logged in.
func signup(t *testing.T, tc *testClient, username, email, password string) {
	t.Helper()
	resp := tc.postForm(t, "/signup", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tasks", resp.Header.Get("Location"))
	assert.NotEmpty(t, tc.cookies[middleware.SessionCookie], "signup should establish a session")
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestStaticPagesWithoutAuth(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)

	for path, marker := range map[string]string{
		"/about":   "About",
		"/privacy": "Privacy Policy",
		"/terms":   "Terms of Service",
	} {
		resp := tc.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, readBody(t, resp), marker, path)
	}
}

func TestHomeRedirects(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)

	resp := tc.get(t, "/")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	signup(t, tc, "alice", "a@x.com", "password1")

	resp = tc.get(t, "/")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tasks", resp.Header.Get("Location"))
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)

	for _, path := range []string{"/tasks", "/complete/1", "/toggle/1", "/edit/1", "/delete/1", "/logout"} {
		resp := tc.get(t, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestSignupDuplicateCredentials(t *testing.T) {
	app := setupApp(t)

	signup(t, newTestClient(app), "alice", "a@x.com", "password1")

	// Same username, fresh browser
	resp := newTestClient(app).postForm(t, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"other@x.com"},
		"password": {"password1"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Username or Email already taken.")

	// Same email
	resp = newTestClient(app).postForm(t, "/signup", url.Values{
		"username": {"bob"},
		"email":    {"a@x.com"},
		"password": {"password1"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Username or Email already taken.")
}

func TestSignupRejectsShortPassword(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)

	resp := tc.postForm(t, "/signup", url.Values{
		"username": {"alice"},
		"email":    {"a@x.com"},
		"password": {"short"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Password must be at least 8 characters long.")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := setupApp(t)
	signup(t, newTestClient(app), "alice", "a@x.com", "password1")

	wrongPass := newTestClient(app).postForm(t, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"wrongpassword"},
	})
	unknownEmail := newTestClient(app).postForm(t, "/login", url.Values{
		"email":    {"nobody@x.com"},
		"password": {"password1"},
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, readBody(t, wrongPass), readBody(t, unknownEmail))
}

func TestLoginAndLogout(t *testing.T) {
	app := setupApp(t)
	signup(t, newTestClient(app), "alice", "a@x.com", "password1")

	tc := newTestClient(app)
	resp := tc.postForm(t, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"password1"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tasks", resp.Header.Get("Location"))
	assert.NotEmpty(t, tc.cookies[middleware.SessionCookie])

	resp = tc.get(t, "/logout")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Empty(t, tc.cookies[middleware.SessionCookie], "logout should clear the session")

	// The session is gone: tasks are protected again
	resp = tc.get(t, "/tasks")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestTaskLifecycleEndToEnd(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)

	signup(t, tc, "alice", "a@x.com", "password1")

	today := time.Now().Format("2006-01-02")
	resp := tc.postForm(t, "/tasks", url.Values{
		"content":  {"buy milk"},
		"due_date": {today},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	// The new task shows in the today-filtered incomplete list
	resp = tc.get(t, "/tasks?filter=today")
	body := readBody(t, resp)
	assert.Contains(t, body, "buy milk")
	assert.Contains(t, body, "Showing tasks due today.")

	// Complete it
	resp = tc.get(t, "/complete/1")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	// It moved to the completed section
	resp = tc.get(t, "/tasks")
	body = readBody(t, resp)
	completedAt := strings.Index(body, "<h2>Completed</h2>")
	taskAt := strings.Index(body, "buy milk")
	assert.Greater(t, taskAt, completedAt, "completed task should render in the completed section")

	// And is no longer in any date filter
	resp = tc.get(t, "/tasks?filter=today")
	body = readBody(t, resp)
	taskAt = strings.Index(body, "buy milk")
	assert.Greater(t, taskAt, strings.Index(body, "<h2>Completed</h2>"))
}

func TestCreateTaskValidation(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)
	signup(t, tc, "alice", "a@x.com", "password1")

	// Empty content persists nothing
	resp := tc.postForm(t, "/tasks", url.Values{"content": {""}})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.get(t, "/tasks")
	body := readBody(t, resp)
	assert.Contains(t, body, "Task content cannot be empty!")
	assert.Contains(t, body, "Nothing here.")

	// Malformed due date persists nothing, with a different message
	resp = tc.postForm(t, "/tasks", url.Values{
		"content":  {"walk dog"},
		"due_date": {"31-12-2026"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.get(t, "/tasks")
	body = readBody(t, resp)
	assert.Contains(t, body, "Invalid due date format. Please use YYYY-MM-DD.")
	assert.Contains(t, body, "Nothing here.")
	assert.NotContains(t, body, "walk dog")
}

func TestEditTask(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)
	signup(t, tc, "alice", "a@x.com", "password1")

	resp := tc.postForm(t, "/tasks", url.Values{"content": {"original"}})
	resp.Body.Close()

	// The edit form renders the current content
	resp = tc.get(t, "/edit/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "original")

	// Malformed due date aborts the edit and returns to the edit form
	resp = tc.postForm(t, "/edit/1", url.Values{
		"content":  {"changed"},
		"due_date": {"not-a-date"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/edit/1", resp.Header.Get("Location"))

	resp = tc.get(t, "/tasks")
	assert.Contains(t, readBody(t, resp), "original")

	// A valid edit replaces content and due date
	resp = tc.postForm(t, "/edit/1", url.Values{
		"content":  {"changed"},
		"due_date": {"2030-01-02"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/tasks", resp.Header.Get("Location"))

	resp = tc.get(t, "/tasks")
	body := readBody(t, resp)
	assert.Contains(t, body, "changed")
	assert.Contains(t, body, "2030-01-02")
	assert.NotContains(t, body, "original")

	// Editing an unknown task is a 404
	resp = tc.postForm(t, "/edit/999", url.Values{"content": {"x"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)
	signup(t, tc, "alice", "a@x.com", "password1")

	resp := tc.postForm(t, "/tasks", url.Values{"content": {"flip me"}})
	resp.Body.Close()

	tc.get(t, "/toggle/1").Body.Close()
	tc.get(t, "/toggle/1").Body.Close()

	resp = tc.get(t, "/tasks")
	body := readBody(t, resp)
	completedAt := strings.Index(body, "<h2>Completed</h2>")
	taskAt := strings.Index(body, "flip me")
	assert.Less(t, taskAt, completedAt, "double-toggled task should be back in the incomplete section")
}

func TestDeleteTask(t *testing.T) {
	app := setupApp(t)
	tc := newTestClient(app)
	signup(t, tc, "alice", "a@x.com", "password1")

	resp := tc.get(t, "/delete/999")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = tc.postForm(t, "/tasks", url.Values{"content": {"doomed"}})
	resp.Body.Close()

	resp = tc.get(t, "/delete/1")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.get(t, "/tasks")
	assert.NotContains(t, readBody(t, resp), "doomed")
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	app := setupApp(t)

	alice := newTestClient(app)
	signup(t, alice, "alice", "a@x.com", "password1")
	resp := alice.postForm(t, "/tasks", url.Values{"content": {"alice's task"}})
	resp.Body.Close()

	bob := newTestClient(app)
	signup(t, bob, "bob", "b@x.com", "password1")

	for _, path := range []string{"/complete/1", "/toggle/1", "/edit/1", "/delete/1"} {
		resp := bob.get(t, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	// Alice's task is untouched and still hers alone
	resp = alice.get(t, "/tasks")
	assert.Contains(t, readBody(t, resp), "alice&#39;s task")

	resp = bob.get(t, "/tasks")
	assert.NotContains(t, readBody(t, resp), "alice")
}
