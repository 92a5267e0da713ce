// Command cli is a terminal front end for the users/posts API.
//
//	cli users list
//	cli users create -name "Alice"
//	cli users update -id 1 -name "Alice B"
//	cli users delete -id 1
//	cli posts list
//	cli posts create -title "Hello" -content "First post body" -user 1
//	cli posts update -id 1 -title "Hello" -content "Edited post body" -user 1
//	cli posts delete -id 1
//
// Every successful change prints the collection as refetched from the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"

	"userposts/internal/apiclient"
	"userposts/internal/config"
	"userposts/internal/models"
	"userposts/internal/store"
	"userposts/internal/swr"
	"userposts/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var validationErr *validation.Error
		if errors.As(err, &validationErr) {
			printFieldErrors(os.Stderr, validationErr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: cli <users|posts> <list|create|update|delete> [flags]")
	}

	cfg := config.LoadConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	client := apiclient.New(cfg.APIURL, apiclient.WithLogger(logger))
	opts := swr.DefaultOptions()
	// one-shot process: a background retry would land after exit
	opts.ErrorRetryCount = 0
	opts.Logger = logger
	cache := swr.New(opts)
	defer cache.Close()
	validate := validation.New()

	switch args[0] {
	case "users":
		return runUsers(ctx, store.NewUsers(cache, client, validate, logger), args[1], args[2:], out)
	case "posts":
		return runPosts(ctx, store.NewPosts(cache, client, validate, logger), args[1], args[2:], out)
	default:
		return fmt.Errorf("unknown collection %q", args[0])
	}
}

func runUsers(ctx context.Context, users *store.Users, action string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("users "+action, flag.ContinueOnError)
	id := fs.Int64("id", 0, "user id")
	name := fs.String("name", "", "user name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	switch action {
	case "list":
		_, err = users.List(ctx)
	case "create":
		err = users.Create(ctx, models.ClientUserInput{Name: *name})
	case "update":
		err = users.Update(ctx, *id, models.ClientUserInput{Name: *name})
	case "delete":
		err = users.Delete(ctx, *id)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	snapshot := users.Snapshot()
	if snapshot.Err != nil {
		return snapshot.Err
	}
	printUsers(out, snapshot.Data)
	return nil
}

func runPosts(ctx context.Context, posts *store.Posts, action string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("posts "+action, flag.ContinueOnError)
	id := fs.Int64("id", 0, "post id")
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post content")
	userID := fs.Int64("user", 0, "owning user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := models.ClientPostInput{Title: *title, Content: *content, UserID: *userID}

	var err error
	switch action {
	case "list":
		_, err = posts.List(ctx)
	case "create":
		err = posts.Create(ctx, input)
	case "update":
		err = posts.Update(ctx, *id, input)
	case "delete":
		err = posts.Delete(ctx, *id)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	snapshot := posts.Snapshot()
	if snapshot.Err != nil {
		return snapshot.Err
	}
	printPosts(out, snapshot.Data)
	return nil
}

// printFieldErrors writes one "field: message" line per field, by field name.
func printFieldErrors(out io.Writer, err *validation.Error) {
	fields := lo.Keys(err.Fields)
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(out, "%s: %s\n", field, err.Fields[field])
	}
}

func printUsers(out io.Writer, users []models.User) {
	sorted := append([]models.User(nil), users...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, u := range sorted {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, u.CreatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}

func printPosts(out io.Writer, posts []models.Post) {
	sorted := append([]models.Post(nil), posts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tTITLE\tCONTENT\tCREATED")
	for _, p := range sorted {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", p.ID, p.UserID, p.Title, lo.Ellipsis(p.Content, 40), p.CreatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}
