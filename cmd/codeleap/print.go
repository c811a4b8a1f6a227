package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dfryer1193/codeleap/network/application"
	"github.com/dfryer1193/codeleap/network/domain"
	"github.com/urfave/cli/v2"
)

func printPosts(c *cli.Context, st application.PostListState) {
	if len(st.Posts) == 0 {
		fmt.Fprintln(c.App.Writer, "No posts yet.")
		return
	}

	now := time.Now()
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tAGE\tTITLE")
	for _, p := range st.Posts {
		author := "@" + p.Username
		if p.OwnedBy(st.Username) {
			author += " (you)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, author, domain.TimeAgo(p.CreatedAt(), now), p.Title)
	}
	w.Flush()

	fmt.Fprintf(c.App.Writer, "\nShowing %d of %d posts", len(st.Posts), st.Count)
	if st.Filter.IsMine() {
		fmt.Fprintf(c.App.Writer, " (%d yours)", st.OwnPostCount)
	}
	fmt.Fprintln(c.App.Writer)
}
