// Command portalctl drives the portal auth flow from a terminal and manages
// administrator roles.
//
//	portalctl login [-method password|phone-otp|email-otp] [config flags]
//	portalctl register [-method phone|email] [config flags]
//	portalctl grant-admin [config flags] <user-id>
//	portalctl revoke-admin [config flags] <user-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/config"
	"github.com/goliatone/go-portal/hosted"
	"github.com/goliatone/go-portal/logging"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const usage = `usage: portalctl <command> [flags]

commands:
  login         sign in with password, phone code or email code
  register      create an account with a phone or email code
  grant-admin   give a user the admin role
  revoke-admin  remove the admin role from a user
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "portalctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}
	command, args := args[0], args[1:]
	switch command {
	case "login", "register", "grant-admin", "revoke-admin":
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	method, args, err := methodFlag(command, args)
	if err != nil {
		return err
	}

	var rest []string
	cfg, err := config.LoadWith(config.LoadOptions{Args: args, Rest: &rest})
	if err != nil {
		return err
	}

	lgr, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer lgr.Sync()

	switch command {
	case "login", "register":
		purpose := portal.PurposeLogin
		if command == "register" {
			purpose = portal.PurposeRegister
		}
		client := hosted.New(hosted.Config{
			BaseURL:    cfg.Hosted.BaseURL,
			APIKey:     cfg.Hosted.AnonKey,
			ServiceKey: cfg.Hosted.ServiceKey,
			Logger:     lgr.Named("hosted"),
			Debug:      cfg.Hosted.Debug,
		})

		opts := []portal.FlowOption{
			portal.WithFlowConfig(cfg),
			portal.WithFlowLogger(lgr.Named("flow")),
		}
		var roles portal.RoleLookup
		if cfg.Hosted.ServiceKey != "" {
			// phone lookups need the row store, email lookups the admin API
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			opts = append(opts, portal.WithExistenceChecker(
				portal.NewAccountDirectory(portal.NewProfilesRepository(db), client, cfg.GetPhoneRegion()),
			))
			roles = portal.NewRolesRepository(db)
		}

		sc := portal.NewSessionContext(client, roles, portal.WithSessionLogger(lgr.Named("session")))
		if err := sc.Init(ctx); err != nil {
			return err
		}
		defer sc.Dispose()
		opts = append(opts, portal.WithSessionReceiver(sc))

		con := newConsole(stdin, stdout)
		session, err := drive(ctx, portal.NewFlow(client, opts...), purpose, portal.Method(method), con)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "signed in as %s (%s)\n", session.Identity.DisplayName(), session.Identity.ID)
		fmt.Fprintf(stdout, "access token expires %s\n", session.ExpiresAt.Format("2006-01-02 15:04:05"))
		if sc.IsAdministrator() {
			fmt.Fprintln(stdout, "role: admin")
		}
		return nil

	case "grant-admin", "revoke-admin":
		if len(rest) != 1 {
			return fmt.Errorf("%s needs exactly one user id", command)
		}
		id, err := uuid.Parse(strings.TrimSpace(rest[0]))
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", rest[0], err)
		}
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		roles := portal.NewRolesRepository(db)
		if command == "grant-admin" {
			err = roles.Grant(ctx, id, portal.RoleAdmin)
		} else {
			err = roles.Revoke(ctx, id, portal.RoleAdmin)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %s done\n", id, command)
		return nil
	}
	return nil
}

// methodFlag peels -method off args so the rest can go to the config loader.
func methodFlag(command string, args []string) (string, []string, error) {
	if command != "login" && command != "register" {
		return "", args, nil
	}
	var method string
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-method" || arg == "--method":
			if i+1 >= len(args) {
				return "", nil, errors.New("-method needs a value")
			}
			method = args[i+1]
			i++
		case strings.HasPrefix(arg, "-method=") || strings.HasPrefix(arg, "--method="):
			method = arg[strings.IndexByte(arg, '=')+1:]
		default:
			rest = append(rest, arg)
		}
	}
	return method, rest, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	return portal.OpenDatabase(ctx, portal.DatabaseOptions{
		Driver:  cfg.Database.Driver,
		DSN:     cfg.Database.DSN,
		Migrate: cfg.Database.Migrate,
	})
}
