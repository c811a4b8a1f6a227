package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/codeleap/api"
	"github.com/dfryer1193/codeleap/internal/mockapi"
	"github.com/urfave/cli/v2"
)

type cliEnv struct {
	mock *mockapi.Server
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()

	mock := mockapi.New()
	remote := httptest.NewServer(mock.Router())
	t.Cleanup(remote.Close)
	mock.SetBaseURL(remote.URL)

	// every run opens and closes the store, so it lives in a file
	t.Setenv("CODELEAP_API_URL", remote.URL+"/")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("LOG_LEVEL", "error")

	return &cliEnv{mock: mock}
}

// run executes one command line and returns what it printed.
func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cliApp := newCLI(&app{})
	cliApp.Writer = &out
	cliApp.ErrWriter = &out
	cliApp.ExitErrHandler = func(*cli.Context, error) {}

	err := cliApp.Run(append([]string{"codeleap"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	env := setupCLI(t)
	env.mock.Seed(api.Post{Username: "bob", Title: "bobs post", Content: "hi"})

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr string
	}{
		{
			name:    "Whoami before sign in",
			args:    []string{"whoami"},
			wantErr: "not signed in",
		},
		{
			name:    "List before sign in",
			args:    []string{"list"},
			wantErr: "not signed in",
		},
		{
			name:    "Blank sign in",
			args:    []string{"signin", "   "},
			wantErr: "username cannot be empty",
		},
		{
			name: "Sign in trims the username",
			args: []string{"signin", "  alice "},
			want: []string{"Signed in as alice\n"},
		},
		{
			name: "Whoami",
			args: []string{"whoami"},
			want: []string{"alice (signed in", "seconds ago"},
		},
		{
			name:    "Author and mine conflict",
			args:    []string{"list", "--author", "bob", "--mine"},
			wantErr: "--author and --mine cannot be combined",
		},
		{
			name:    "Create with blank title",
			args:    []string{"create", "--title", " ", "--content", "body"},
			wantErr: "title cannot be empty",
		},
		{
			name: "Create",
			args: []string{"create", "--title", "alices post", "--content", "hello"},
			want: []string{"Post created! (#2)"},
		},
		{
			name: "List all",
			args: []string{"list"},
			want: []string{"@alice (you)", "@bob", "alices post", "bobs post", "Showing 2 of 2 posts"},
		},
		{
			name:    "List mine",
			args:    []string{"list", "--mine"},
			want:    []string{"alices post", "(1 yours)"},
			notWant: []string{"@bob"},
		},
		{
			name:    "List by author",
			args:    []string{"list", "--author", "bob"},
			want:    []string{"bobs post"},
			notWant: []string{"alices post"},
		},
		{
			name:    "Edit someone else's post",
			args:    []string{"edit", "--title", "mine now", "--content", "x", "1"},
			wantErr: "post #1 is not one of your posts",
		},
		{
			name: "Edit own post",
			args: []string{"edit", "--title", "renamed", "--content", "new body", "2"},
			want: []string{"Post #2 updated"},
		},
		{
			name:    "Delete with a bad id",
			args:    []string{"delete", "abc"},
			wantErr: `invalid post id "abc"`,
		},
		{
			name:    "Delete someone else's post",
			args:    []string{"delete", "1"},
			wantErr: "post #1 is not one of your posts",
		},
		{
			name: "Delete own post",
			args: []string{"delete", "2"},
			want: []string{"Post #2 deleted"},
		},
		{
			name: "Sign out",
			args: []string{"signout"},
			want: []string{"Signed out"},
		},
		{
			name:    "Whoami after sign out",
			args:    []string{"whoami"},
			wantErr: "not signed in",
		},
	}

	// steps share one session store and one remote, in order
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(tt.args...)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output contains %q:\n%s", notWant, out)
				}
			}
		})
	}

	post, ok := env.mock.Post(1)
	if !ok || post.Title != "bobs post" {
		t.Errorf("bob's post = %+v, %v, want untouched", post, ok)
	}
	if _, ok := env.mock.Post(2); ok {
		t.Error("alice's post still exists after delete")
	}
	if got := env.mock.CountRequests("PATCH"); got != 1 {
		t.Errorf("PATCH requests = %d, want 1", got)
	}
}
