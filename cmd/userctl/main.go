package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"psjudge_frontend/internal/common/security"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/domain/repository"
	"psjudge_frontend/internal/platform/config"
	"psjudge_frontend/internal/platform/database"

	"github.com/google/uuid"
)

// userctl is the operator's side door: there is no registration or contest
// management in the web UI, so accounts, contests and assignments are
// provisioned from the command line against the same database.

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	config.Load()
	database.Connect()
	defer database.Close()

	repos := repository.NewPgBundle(database.DB)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = database.Migrate(database.DB)
	case "create-user":
		err = createUser(ctx, repos, os.Args[2:])
	case "create-contest":
		err = createContest(ctx, repos, os.Args[2:])
	case "create-assignment":
		err = createAssignment(ctx, repos, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("ERROR: %s failed: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: userctl <migrate|create-user|create-contest|create-assignment> [flags]")
}

func createUser(ctx context.Context, repos *repository.Bundle, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "plaintext password, hashed before storage")
	roles := fs.String("roles", "student", "comma-separated roles (admin, judge, student)")
	contestID := fs.Int("contest", 0, "contest to enroll the user in (0 = none)")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("username and password are required")
	}
	roleSet, err := model.ParseRoleSet(*roles)
	if err != nil {
		return err
	}
	hashed, err := security.HashPassword(*password)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:        *username,
		HashedPassword:  hashed,
		Roles:           roleSet,
		ActiveContestID: *contestID,
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		return err
	}
	if *contestID != 0 {
		if err := repos.Contests.AddContestMember(ctx, *contestID, user.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Created user %q (id %d, roles %s)\n", user.Username, user.ID, strings.Join(user.Roles.Strings(), ","))
	return nil
}

func createContest(ctx context.Context, repos *repository.Bundle, args []string) error {
	fs := flag.NewFlagSet("create-contest", flag.ExitOnError)
	title := fs.String("title", "", "contest title")
	start := fs.String("start", "", "start time, RFC 3339")
	end := fs.String("end", "", "end time, RFC 3339")
	fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("title is required")
	}
	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("bad -start: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, *end)
	if err != nil {
		return fmt.Errorf("bad -end: %w", err)
	}

	contest := &model.Contest{Title: *title, StartTime: startTime, EndTime: endTime}
	if err := repos.Contests.CreateContest(ctx, contest); err != nil {
		return err
	}
	fmt.Printf("Created contest %q (id %d)\n", contest.Title, contest.ID)
	return nil
}

func createAssignment(ctx context.Context, repos *repository.Bundle, args []string) error {
	fs := flag.NewFlagSet("create-assignment", flag.ExitOnError)
	contestID := fs.Int("contest", 0, "owning contest id")
	title := fs.String("title", "", "assignment title")
	articlePath := fs.String("article", "", "path to the Markdown article")
	id := fs.String("uuid", "", "builder-side assignment id (generated when empty)")
	fs.Parse(args)

	if *contestID == 0 || *title == "" {
		return fmt.Errorf("contest and title are required")
	}
	article, err := os.ReadFile(*articlePath)
	if err != nil {
		return fmt.Errorf("read article: %w", err)
	}
	assignmentUUID := *id
	if assignmentUUID == "" {
		assignmentUUID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	assignment := &model.Assignment{
		ContestID: *contestID,
		UUID:      assignmentUUID,
		Title:     *title,
		Article:   string(article),
	}
	if err := repos.Contests.CreateAssignment(ctx, assignment); err != nil {
		return err
	}
	fmt.Printf("Created assignment %q (id %d, uuid %s)\n", assignment.Title, assignment.ID, assignment.UUID)
	return nil
}
