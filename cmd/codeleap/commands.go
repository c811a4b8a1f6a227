package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dfryer1193/codeleap/internal/rest"
	"github.com/dfryer1193/codeleap/internal/tui"
	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 5 * time.Second

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "signin",
			Usage:     "remember a username on this machine",
			ArgsUsage: "<username>",
			Action:    a.signIn,
		},
		{
			Name:   "signout",
			Usage:  "forget the stored username",
			Action: a.signOut,
		},
		{
			Name:   "whoami",
			Usage:  "show the signed-in username",
			Action: a.whoami,
		},
		{
			Name:  "list",
			Usage: "list posts, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "only posts by this author"},
				&cli.BoolFlag{Name: "mine", Aliases: []string{"m"}, Usage: "only your own posts"},
			},
			Action: a.list,
		},
		{
			Name:  "create",
			Usage: "publish a post",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
				&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Required: true},
			},
			Action: a.create,
		},
		{
			Name:      "edit",
			Usage:     "change the title and content of one of your posts",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
				&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Required: true},
			},
			Action: a.edit,
		},
		{
			Name:      "delete",
			Usage:     "delete one of your posts",
			ArgsUsage: "<id>",
			Action:    a.delete,
		},
		{
			Name:   "tui",
			Usage:  "open the terminal interface",
			Action: a.runTUI,
		},
		{
			Name:   "serve",
			Usage:  "serve the local REST API and event stream",
			Action: a.serve,
		},
	}
}

func (a *app) signIn(c *cli.Context) error {
	username, err := a.sessions.SignIn(c.Context, c.Args().First())
	if errors.Is(err, domain.ErrEmptyUsername) {
		return cli.Exit("username cannot be empty", 1)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Signed in as %s\n", username)
	return nil
}

func (a *app) signOut(c *cli.Context) error {
	if err := a.sessions.SignOut(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Signed out")
	return nil
}

func (a *app) whoami(c *cli.Context) error {
	username, ok, err := a.sessions.CurrentUser(c.Context)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit("not signed in", 1)
	}

	signedIn, found, err := a.session.SignedInAt(c.Context)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(c.App.Writer, "%s (signed in %s)\n", username, domain.TimeAgo(signedIn, time.Now()))
		return nil
	}
	fmt.Fprintln(c.App.Writer, username)
	return nil
}

func (a *app) list(c *cli.Context) error {
	author, mine := c.String("author"), c.Bool("mine")
	if author != "" && mine {
		return cli.Exit("--author and --mine cannot be combined", 1)
	}

	list, err := a.postList(c.Context)
	if err != nil {
		return err
	}

	switch {
	case author != "":
		list.SetAuthorFilter(c.Context, author)
	case mine:
		list.ToggleFilterByUser(c.Context)
	default:
		list.Fetch(c.Context)
	}

	st := list.State()
	if st.Error != "" {
		return cli.Exit(st.Error, 1)
	}

	printPosts(c, st)
	return nil
}

func (a *app) create(c *cli.Context) error {
	title, content := c.String("title"), c.String("content")
	if err := (domain.PostInput{Title: title, Content: content}).Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	list, err := a.postList(c.Context)
	if err != nil {
		return err
	}

	var created int
	unsubscribe := list.Subscribe(func(evt application.Event) {
		if evt.Kind == application.EventPostCreated {
			created = evt.PostID
		}
	})
	defer unsubscribe()

	if err := list.Create(c.Context, title, content); err != nil {
		return cli.Exit(application.MsgCreateFailed, 1)
	}

	fmt.Fprintf(c.App.Writer, "Post created! (#%d)\n", created)
	return nil
}

func (a *app) edit(c *cli.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	title, content := c.String("title"), c.String("content")
	if err := (domain.PostChanges{Title: title, Content: content}).Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	list, err := a.ownPosts(c.Context)
	if err != nil {
		return err
	}
	if !list.Edit(id) {
		return cli.Exit(fmt.Sprintf("post #%d is not one of your posts", id), 1)
	}

	if err := list.SaveEdit(c.Context, title, content, id); err != nil {
		return cli.Exit(application.MsgUpdateFailed, 1)
	}

	fmt.Fprintf(c.App.Writer, "Post #%d updated\n", id)
	return nil
}

func (a *app) delete(c *cli.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	list, err := a.ownPosts(c.Context)
	if err != nil {
		return err
	}
	if !ownsPost(list.State(), id) {
		return cli.Exit(fmt.Sprintf("post #%d is not one of your posts", id), 1)
	}

	deleted := false
	unsubscribe := list.Subscribe(func(evt application.Event) {
		if evt.Kind == application.EventPostDeleted {
			deleted = true
		}
	})
	defer unsubscribe()

	list.RequestDelete(id)
	list.ConfirmDelete(c.Context, id)
	if !deleted {
		return cli.Exit(application.MsgDeleteFailed, 1)
	}

	fmt.Fprintf(c.App.Writer, "Post #%d deleted\n", id)
	return nil
}

// ownPosts returns a controller already showing the user's own posts.
func (a *app) ownPosts(ctx context.Context) (*application.PostList, error) {
	list, err := a.postList(ctx)
	if err != nil {
		return nil, err
	}

	list.ToggleFilterByUser(ctx)
	if msg := list.State().Error; msg != "" {
		return nil, cli.Exit(msg, 1)
	}
	return list, nil
}

func (a *app) runTUI(c *cli.Context) error {
	closeLog, err := a.logToFile()
	if err != nil {
		return err
	}
	defer closeLog()

	model := tui.New(c.Context, a.sessions, a.posts)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
	return err
}

func (a *app) serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)

	hub := rest.NewHub()
	go hub.Run(ctx)

	server := rest.NewServer(a.sessions, a.posts, hub)
	if err := server.Restore(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Port),
		Handler: rest.NewRouter(server),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func postID(c *cli.Context) (int, error) {
	raw := c.Args().First()
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid post id %q", raw), 1)
	}
	return id, nil
}

func ownsPost(st application.PostListState, id int) bool {
	for _, p := range st.Posts {
		if p.ID == id && p.OwnedBy(st.Username) {
			return true
		}
	}
	return false
}
