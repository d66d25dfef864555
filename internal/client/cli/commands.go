package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/enigma/internal/api"
	"github.com/dmitrijs2005/enigma/internal/common"
)

const usage = `Commands:
  user create <username> [password] [email]
  user delete <username>
  user list
  perm add <username> <site> <permission>
  perm remove <username> <site> <permission>
  perm check <username> <site> <permission>
  session list <username>
  session sweep
  backup`

var errUsage = errors.New("invalid usage")

// Execute runs a single command given as words.
func (a *App) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	case "user":
		return a.userCommand(ctx, args[1:])
	case "perm":
		return a.permCommand(ctx, args[1:])
	case "session":
		return a.sessionCommand(ctx, args[1:])
	case "backup":
		return a.backup(ctx)
	}

	fmt.Fprintln(a.out, usage)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func (a *App) userCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: user create|delete|list", errUsage)
	}

	switch {
	case args[0] == "create" && len(args) >= 2 && len(args) <= 4:
		return a.createUser(ctx, args[1:])
	case args[0] == "delete" && len(args) == 2:
		if err := a.client.DeleteUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s deleted\n", args[1])
		return nil
	case args[0] == "list" && len(args) == 1:
		return a.listUsers(ctx)
	}
	return fmt.Errorf("%w: user create <username> [password] [email] | delete <username> | list", errUsage)
}

func (a *App) createUser(ctx context.Context, args []string) error {
	username := args[0]

	var password string
	if len(args) >= 2 {
		password = args[1]
	} else {
		pw, err := GetNewPassword(a.out)
		if err != nil {
			return err
		}
		password = string(pw)
		common.WipeByteArray(pw)
	}

	var email *string
	if len(args) == 3 {
		email = &args[2]
	}

	u, err := a.client.CreateUser(ctx, username, password, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s created with id %d\n", u.Username, u.ID)
	return nil
}

func formatPermissions(perms []api.Permission) string {
	parts := make([]string, 0, len(perms))
	for _, p := range perms {
		parts = append(parts, p.Site+":"+p.Permission)
	}
	return strings.Join(parts, ",")
}

func (a *App) listUsers(ctx context.Context) error {
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "  #%4d | %30s | %s\n", u.ID, u.Username, formatPermissions(u.Permissions))
	}
	return nil
}

func (a *App) permCommand(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: perm add|remove|check <username> <site> <permission>", errUsage)
	}
	username, site, perm := args[1], args[2], args[3]

	switch args[0] {
	case "add":
		if err := a.client.AddPermission(ctx, username, site, perm); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Granted %s:%s to %s\n", site, perm, username)
		return nil
	case "remove":
		if err := a.client.RemovePermission(ctx, username, site, perm); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Revoked %s:%s from %s\n", site, perm, username)
		return nil
	case "check":
		ok, err := a.client.HasPermission(ctx, username, site, perm)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, ok)
		return nil
	}
	return fmt.Errorf("%w: perm add|remove|check <username> <site> <permission>", errUsage)
}

func (a *App) sessionCommand(ctx context.Context, args []string) error {
	switch {
	case len(args) == 2 && args[0] == "list":
		sessions, err := a.client.ListSessions(ctx, args[1])
		if err != nil {
			return err
		}
		for _, s := range sessions {
			state := "active"
			if s.Expired {
				state = "expired"
			}
			lastUsed := "never"
			if s.LastUsedAt != nil {
				lastUsed = s.LastUsedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(a.out, "  %s... | created %s | expires %s | last used %s | %s\n",
				shortToken(s.SessionToken),
				s.CreatedAt.Format("2006-01-02 15:04:05"),
				s.ExpiryDate.Format("2006-01-02 15:04:05"),
				lastUsed, state)
		}
		return nil
	case len(args) == 1 && args[0] == "sweep":
		n, err := a.client.SweepSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %d expired sessions\n", n)
		return nil
	}
	return fmt.Errorf("%w: session list <username> | sweep", errUsage)
}

// shortToken keeps listings readable without printing usable tokens.
func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}

func (a *App) backup(ctx context.Context) error {
	res, err := a.client.ExportDirectory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d users to s3://%s/%s\n", res.Users, res.Bucket, res.Key)
	return nil
}
