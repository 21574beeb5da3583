package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	onboarding "github.com/goliatone/go-onboarding"
	milestonescmd "github.com/goliatone/go-onboarding/internal/commands/milestones"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/di"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/resolver"
)

var moduleBuilder = func(cfg onboarding.Config) (*onboarding.Module, error) {
	return onboarding.New(cfg)
}

const usage = `usage: onboarding <command> [flags]

commands:
  migrate     create tables and indexes
  serve       run the HTTP API
  catalog     list milestones, optionally for one content path
  create      register a creator
  dashboard   print a creator's progress
  submit      submit a milestone as the creator
  complete    complete a milestone as an admin
  revise      request a revision
  path        change a creator's content path
  restart     archive the current project and start a new one
  pause       pause a milestone
  resume      resume a paused milestone
  relock      lock a milestone again
  optional    override whether a milestone counts as bonus work`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("onboarding: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	name, rest := args[0], args[1:]
	switch name {
	case "migrate":
		return runMigrate(ctx, rest, out)
	case "serve":
		return runServe(ctx, rest, out)
	case "catalog":
		return runCatalog(ctx, rest, out)
	case "create":
		return runCreate(ctx, rest, out)
	case "dashboard":
		return runDashboard(ctx, rest, out)
	case "submit":
		return runSubmit(ctx, rest, out)
	case "complete":
		return runComplete(ctx, rest, out)
	case "revise":
		return runRevise(ctx, rest, out)
	case "path":
		return runPath(ctx, rest, out)
	case "restart":
		return runRestart(ctx, rest, out)
	case "pause", "resume", "relock":
		return runAdminAction(ctx, name, rest, out)
	case "optional":
		return runOptional(ctx, rest, out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", name, usage)
	}
}

// storageFlags binds the flags shared by every command that touches storage.
type storageFlags struct {
	dsn     *string
	dialect *string
	catalog *string
}

func bindStorageFlags(fs *flag.FlagSet) storageFlags {
	return storageFlags{
		dsn:     fs.String("dsn", "", "Database DSN (switches storage to bun)"),
		dialect: fs.String("dialect", "", "Database dialect: sqlite or postgres"),
		catalog: fs.String("catalog", "", "Path to a catalog YAML document"),
	}
}

func (f storageFlags) config() (onboarding.Config, error) {
	cfg := onboarding.DefaultConfig()
	if err := onboarding.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if dsn := strings.TrimSpace(*f.dsn); dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = dsn
	}
	if dialect := strings.TrimSpace(*f.dialect); dialect != "" {
		cfg.Storage.Dialect = dialect
	}
	if path := strings.TrimSpace(*f.catalog); path != "" {
		cfg.Catalog.Path = path
	}
	return cfg, nil
}

func (f storageFlags) build(ctx context.Context) (*onboarding.Module, func(), error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, err
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap module: %w", err)
	}
	if db := module.Container().BunDB(); db != nil {
		if err := di.EnsureSchema(ctx, db); err != nil {
			_ = module.Close(ctx)
			return nil, nil, err
		}
	}
	closer := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = module.Close(closeCtx)
	}
	return module, closer, nil
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := storage.config()
	if err != nil {
		return err
	}
	if cfg.Storage.Provider != "bun" {
		return errors.New("migrate requires -dsn or ONBOARDING_STORAGE_DSN")
	}
	_, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()
	fmt.Fprintln(out, "schema ready")
	return nil
}

func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	addr := fs.String("addr", "", "Listen address (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	subs := module.Container().RegisterCommands()
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	mux := http.NewServeMux()
	if err := module.API().Register(mux); err != nil {
		return err
	}
	listen := strings.TrimSpace(*addr)
	if listen == "" {
		listen = module.Container().Config.HTTP.Addr
	}
	server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	fmt.Fprintf(out, "listening on %s\n", listen)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func runCatalog(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	path := fs.String("path", "", "Content path filter: blog, download, course, unset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	cat := module.Catalog()
	milestones := cat.Milestones()
	if strings.TrimSpace(*path) != "" {
		parsed, err := domain.ParseContentPath(*path)
		if err != nil {
			return err
		}
		if milestones, err = resolver.Resolve(cat, parsed); err != nil {
			return err
		}
	}
	for _, milestone := range milestones {
		fmt.Fprintf(out, "%-14s %-32s %s\n", milestone.PhaseID, milestone.ID, milestone.Title)
	}
	return nil
}

func runCreate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	email := fs.String("email", "", "Creator email")
	name := fs.String("name", "", "Creator display name")
	path := fs.String("path", "", "Initial content path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	creator, err := module.Creators().Create(ctx, creators.CreateCreatorInput{
		Email:       *email,
		Name:        *name,
		ContentPath: *path,
	})
	if err != nil {
		return err
	}
	if err := module.Commands().Materialize.Execute(ctx, milestonescmd.MaterializeMilestonesCommand{CreatorID: creator.ID}); err != nil {
		return err
	}
	return writeJSON(out, creator)
}

func runDashboard(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	dashboard, err := module.Dashboards().GetDashboard(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(out, dashboard)
}

func runSubmit(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	milestone := fs.String("milestone", "", "Milestone ID")
	kind := fs.String("kind", string(domain.SubmissionConfirmation), "confirmation or review_submission")
	payload := fs.String("payload", "", "JSON object stored with the submission")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	data, err := parsePayload(*payload)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().Submit, milestonescmd.SubmitMilestoneCommand{
		CreatorID:   id,
		MilestoneID: *milestone,
		Kind:        *kind,
		Payload:     data,
	})
}

func runComplete(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	milestone := fs.String("milestone", "", "Milestone ID")
	admin := fs.String("admin", "", "Admin email")
	note := fs.String("note", "", "Admin note")
	payload := fs.String("payload", "", "JSON object stored with the completion")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	data, err := parsePayload(*payload)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().AdminComplete, milestonescmd.AdminCompleteMilestoneCommand{
		CreatorID:   id,
		MilestoneID: *milestone,
		AdminEmail:  *admin,
		Note:        *note,
		Payload:     data,
	})
}

func runRevise(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("revise", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	milestone := fs.String("milestone", "", "Milestone ID")
	by := fs.String("by", "", "Admin requesting the revision")
	note := fs.String("note", "", "Revision note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().Revision, milestonescmd.RequestRevisionCommand{
		CreatorID:   id,
		MilestoneID: *milestone,
		Note:        *note,
		RequestedBy: *by,
	})
}

func runPath(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("path", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	path := fs.String("path", "", "New content path")
	by := fs.String("by", "", "Who changed the path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().ChangePath, milestonescmd.ChangeContentPathCommand{
		CreatorID: id,
		Path:      *path,
		ChangedBy: *by,
	})
}

func runRestart(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("restart", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	actor := fs.String("actor", "", "Who restarted the project")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().Restart, milestonescmd.RestartProjectCommand{
		CreatorID: id,
		Actor:     *actor,
	})
}

func runAdminAction(ctx context.Context, name string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	milestone := fs.String("milestone", "", "Milestone ID")
	actor := fs.String("actor", "", "Admin performing the action")
	reason := fs.String("reason", "", "Pause reason")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	handlers := module.Commands()
	switch name {
	case "pause":
		return execute(ctx, out, handlers.Pause, milestonescmd.PauseMilestoneCommand{
			CreatorID: id, MilestoneID: *milestone, Actor: *actor, Reason: *reason,
		})
	case "resume":
		return execute(ctx, out, handlers.Resume, milestonescmd.ResumeMilestoneCommand{
			CreatorID: id, MilestoneID: *milestone, Actor: *actor,
		})
	default:
		return execute(ctx, out, handlers.Relock, milestonescmd.RelockMilestoneCommand{
			CreatorID: id, MilestoneID: *milestone, Actor: *actor,
		})
	}
}

func runOptional(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("optional", flag.ContinueOnError)
	storage := bindStorageFlags(fs)
	creator := fs.String("creator", "", "Creator ID")
	milestone := fs.String("milestone", "", "Milestone ID")
	actor := fs.String("actor", "", "Admin performing the override")
	set := fs.String("set", "", "true, false, or clear to restore the catalog default")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseCreator(*creator)
	if err != nil {
		return err
	}
	var optional *bool
	if value := strings.TrimSpace(*set); value != "clear" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("-set must be true, false or clear: %w", err)
		}
		optional = &parsed
	}
	module, closer, err := storage.build(ctx)
	if err != nil {
		return err
	}
	defer closer()

	return execute(ctx, out, module.Commands().SetOptional, milestonescmd.SetOptionalCommand{
		CreatorID: id, MilestoneID: *milestone, Optional: optional, Actor: *actor,
	})
}

func execute[T command.Message](ctx context.Context, out io.Writer, handler *milestonescmd.Handler[T], msg T) error {
	if err := handler.Execute(ctx, msg); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func parseCreator(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("-creator is required")
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse creator: %w", err)
	}
	return id, nil
}

func parsePayload(value string) (map[string]any, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return payload, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
