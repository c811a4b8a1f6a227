package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/internal/mockapi"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/persistence"
	"github.com/dfryer1193/codeleap/shared/apperror"
	"github.com/dfryer1193/codeleap/shared/codeleap"
	"github.com/dfryer1193/codeleap/shared/db/sqlite"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	server *Server
	hub    *Hub
	mock   *mockapi.Server
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	mock := mockapi.New()
	remote := httptest.NewServer(mock.Router())
	t.Cleanup(remote.Close)
	mock.SetBaseURL(remote.URL)

	client, err := codeleap.NewClient(codeleap.ClientConfig{BaseURL: remote.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: sqlite.MemoryPath})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)

	sessions := application.NewSessionService(persistence.NewSessionRepository(database.DB()))
	server := NewServer(sessions, application.NewPostService(client), hub)

	return &testEnv{
		router: NewRouter(server),
		server: server,
		hub:    hub,
		mock:   mock,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signIn(t *testing.T, username string) {
	t.Helper()
	if rec := e.do(t, http.MethodPost, "/session", api.SignInRequest{Username: username}); rec.Code != http.StatusOK {
		t.Fatalf("sign in status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) api.ListState {
	t.Helper()
	var st api.ListState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid state body %q: %v", rec.Body.String(), err)
	}
	return st
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperror.ErrorResponse {
	t.Helper()
	var resp apperror.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	if rec := env.do(t, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSession_Flow(t *testing.T) {
	env := setupEnv(t)

	var sess api.Session
	rec := env.do(t, http.MethodGet, "/session", nil)
	json.Unmarshal(rec.Body.Bytes(), &sess)
	if sess.Route != "sign-in" {
		t.Fatalf("route = %q, want sign-in", sess.Route)
	}

	if rec := env.do(t, http.MethodGet, "/posts", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /posts signed out status = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/session", api.SignInRequest{Username: "  alice  "})
	json.Unmarshal(rec.Body.Bytes(), &sess)
	if sess.Username != "alice" || sess.Route != "home" {
		t.Errorf("sign in = %+v, want trimmed alice at home", sess)
	}

	rec = env.do(t, http.MethodGet, "/session", nil)
	json.Unmarshal(rec.Body.Bytes(), &sess)
	if sess.Username != "alice" || sess.Route != "home" {
		t.Errorf("session = %+v, want alice at home", sess)
	}

	if rec := env.do(t, http.MethodDelete, "/session", nil); rec.Code != http.StatusOK {
		t.Fatalf("sign out status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/posts", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /posts after sign out status = %d, want 401", rec.Code)
	}
}

func TestSession_BlankUsername(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodPost, "/session", api.SignInRequest{Username: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec).Type; got != "validation" {
		t.Errorf("type = %q, want validation", got)
	}
}

func TestServer_Restore(t *testing.T) {
	env := setupEnv(t)
	env.mock.Seed(api.Post{Username: "alice", Title: "t", Content: "c"})
	env.signIn(t, "alice")

	// a fresh server over the same session store picks the user back up
	restored := NewServer(env.server.sessions, env.server.repo, env.hub)
	if err := restored.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	list, ok := restored.current()
	if !ok {
		t.Fatal("no active list after Restore()")
	}
	if st := list.State(); st.Username != "alice" || len(st.Posts) != 1 {
		t.Errorf("restored state = %+v", st)
	}
}

func TestGetPosts(t *testing.T) {
	env := setupEnv(t)
	env.mock.Seed(api.Post{Username: "alice", Title: "mine", Content: "a"})
	env.mock.Seed(api.Post{Username: "bob", Title: "theirs", Content: "b"})
	env.signIn(t, "alice")

	st := decodeState(t, env.do(t, http.MethodGet, "/posts", nil))

	if st.Count != 2 || len(st.Posts) != 2 {
		t.Fatalf("count = %d, posts = %d, want 2", st.Count, len(st.Posts))
	}
	if st.OwnPostCount != 1 {
		t.Errorf("own_post_count = %d, want 1", st.OwnPostCount)
	}
	for _, p := range st.Posts {
		if p.Owned != (p.Username == "alice") {
			t.Errorf("post %d owned = %v", p.ID, p.Owned)
		}
		if p.TimeAgo == "" {
			t.Errorf("post %d has no time_ago", p.ID)
		}
	}
}

func TestFilters(t *testing.T) {
	env := setupEnv(t)
	env.mock.Seed(api.Post{Username: "alice", Title: "mine", Content: "a"})
	env.mock.Seed(api.Post{Username: "bob", Title: "theirs", Content: "b"})
	env.signIn(t, "alice")

	st := decodeState(t, env.do(t, http.MethodPut, "/filter/author", api.AuthorFilterRequest{Author: "bob"}))
	if st.Filter.Kind != "author" || st.Filter.Author != "bob" || !st.MyPostsLocked {
		t.Errorf("after author filter: filter = %+v, locked = %v", st.Filter, st.MyPostsLocked)
	}
	if len(st.Posts) != 1 || st.Posts[0].Username != "bob" {
		t.Errorf("posts = %+v, want only bob's", st.Posts)
	}

	if rec := env.do(t, http.MethodPost, "/filter/mine", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("toggle while locked status = %d, want 400", rec.Code)
	}

	st = decodeState(t, env.do(t, http.MethodDelete, "/filter/author", nil))
	if st.Filter.Kind != "none" || st.Count != 2 {
		t.Errorf("after clearing author: filter = %+v, count = %d", st.Filter, st.Count)
	}

	st = decodeState(t, env.do(t, http.MethodPost, "/filter/mine", nil))
	if st.Filter.Kind != "mine" || len(st.Posts) != 1 || st.Posts[0].Username != "alice" {
		t.Errorf("after my posts: filter = %+v, posts = %+v", st.Filter, st.Posts)
	}

	st = decodeState(t, env.do(t, http.MethodDelete, "/filter/mine", nil))
	if st.Filter.Kind != "none" {
		t.Errorf("after clearing my posts: filter = %+v", st.Filter)
	}
}

func TestCreatePost(t *testing.T) {
	env := setupEnv(t)
	env.signIn(t, "alice")

	rec := env.do(t, http.MethodPost, "/posts", api.PostForm{Title: "hello", Content: "world"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	st := decodeState(t, rec)
	if len(st.Posts) != 1 || st.Posts[0].Title != "hello" || st.Posts[0].Username != "alice" {
		t.Errorf("posts = %+v", st.Posts)
	}
}

func TestCreatePost_Invalid(t *testing.T) {
	env := setupEnv(t)
	env.signIn(t, "alice")
	before := env.mock.CountRequests(http.MethodPost)

	rec := env.do(t, http.MethodPost, "/posts", api.PostForm{Title: " ", Content: "world"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := env.mock.CountRequests(http.MethodPost); got != before {
		t.Errorf("invalid form reached the API: %d POSTs", got-before)
	}
}

func TestCreatePost_RemoteFailure(t *testing.T) {
	env := setupEnv(t)
	env.signIn(t, "alice")
	env.mock.FailNext(http.MethodPost, 1)

	rec := env.do(t, http.MethodPost, "/posts", api.PostForm{Title: "hello", Content: "world"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != application.MsgCreateFailed {
		t.Errorf("error = %q, want %q", got, application.MsgCreateFailed)
	}
}

func TestEditDialog(t *testing.T) {
	env := setupEnv(t)
	p := env.mock.Seed(api.Post{Username: "alice", Title: "old", Content: "body"})
	env.signIn(t, "alice")

	if rec := env.do(t, http.MethodPut, "/dialogs/edit", api.PostForm{Title: "x", Content: "y"}); rec.Code != http.StatusBadRequest {
		t.Errorf("save without open dialog status = %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/dialogs/edit", api.DialogRequest{PostID: 999}); rec.Code != http.StatusNotFound {
		t.Errorf("open unknown post status = %d, want 404", rec.Code)
	}

	st := decodeState(t, env.do(t, http.MethodPost, "/dialogs/edit", api.DialogRequest{PostID: p.ID}))
	if !st.Edit.Open || st.Edit.PostID != p.ID || st.Edit.Title != "old" {
		t.Fatalf("edit dialog = %+v", st.Edit)
	}

	st = decodeState(t, env.do(t, http.MethodPut, "/dialogs/edit", api.PostForm{Title: "new", Content: "body"}))
	if st.Edit.Open {
		t.Error("edit dialog still open after save")
	}
	if st.Posts[0].Title != "new" {
		t.Errorf("title = %q, want new", st.Posts[0].Title)
	}
}

func TestEditDialog_RemoteFailureKeepsDialogOpen(t *testing.T) {
	env := setupEnv(t)
	p := env.mock.Seed(api.Post{Username: "alice", Title: "old", Content: "body"})
	env.signIn(t, "alice")
	env.do(t, http.MethodPost, "/dialogs/edit", api.DialogRequest{PostID: p.ID})
	env.mock.FailNext(http.MethodPatch, 1)

	rec := env.do(t, http.MethodPut, "/dialogs/edit", api.PostForm{Title: "new", Content: "body"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	st := decodeState(t, env.do(t, http.MethodGet, "/posts", nil))
	if !st.Edit.Open {
		t.Error("edit dialog closed after failed save")
	}
	if st.Error != application.MsgUpdateFailed {
		t.Errorf("error = %q, want %q", st.Error, application.MsgUpdateFailed)
	}

	st = decodeState(t, env.do(t, http.MethodDelete, "/dialogs/edit", nil))
	if st.Edit.Open {
		t.Error("edit dialog open after cancel")
	}
}

func TestDeleteDialog(t *testing.T) {
	env := setupEnv(t)
	p := env.mock.Seed(api.Post{Username: "alice", Title: "t", Content: "c"})
	env.signIn(t, "alice")

	if rec := env.do(t, http.MethodPost, "/dialogs/delete/confirm", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("confirm without dialog status = %d, want 400", rec.Code)
	}

	st := decodeState(t, env.do(t, http.MethodPost, "/dialogs/delete", api.DialogRequest{PostID: p.ID}))
	if !st.Delete.Open || st.Delete.PostID != p.ID {
		t.Fatalf("delete dialog = %+v", st.Delete)
	}

	st = decodeState(t, env.do(t, http.MethodPost, "/dialogs/delete/confirm", nil))
	if st.Delete.Open {
		t.Error("delete dialog still open")
	}
	if len(st.Posts) != 0 {
		t.Errorf("posts = %+v, want empty", st.Posts)
	}
}

func TestDeleteDialog_RemoteFailure(t *testing.T) {
	env := setupEnv(t)
	p := env.mock.Seed(api.Post{Username: "alice", Title: "t", Content: "c"})
	env.signIn(t, "alice")
	env.do(t, http.MethodPost, "/dialogs/delete", api.DialogRequest{PostID: p.ID})
	env.mock.FailNext(http.MethodDelete, 1)

	rec := env.do(t, http.MethodPost, "/dialogs/delete/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	st := decodeState(t, rec)
	if st.Delete.Open {
		t.Error("delete dialog still open after failure")
	}
	if st.Error != application.MsgDeleteFailed {
		t.Errorf("error = %q, want %q", st.Error, application.MsgDeleteFailed)
	}
	if len(st.Posts) != 1 {
		t.Errorf("posts = %d, want the stale list of 1", len(st.Posts))
	}
}

func TestRefresh(t *testing.T) {
	env := setupEnv(t)
	env.signIn(t, "alice")
	env.mock.Seed(api.Post{Username: "bob", Title: "late", Content: "c"})

	st := decodeState(t, env.do(t, http.MethodPost, "/posts/refresh", nil))
	if len(st.Posts) != 1 {
		t.Errorf("posts = %d after refresh, want 1", len(st.Posts))
	}
}
