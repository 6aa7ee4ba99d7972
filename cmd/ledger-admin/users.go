package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/stewardly/ledger-api/internal/adapters/passwordauth"
	"github.com/stewardly/ledger-api/internal/data"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
	"github.com/stewardly/ledger-api/internal/service"
)

func runListUsers(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("list-users")
	roleFlag := fs.String("role", "", "filter by role (pending, member, treasurer, admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, cleanup, err := openDB(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	profiles := data.NewProfileRepo(db)

	var list []domainauth.Profile
	if *roleFlag != "" {
		role, ok := domainauth.ParseRole(*roleFlag)
		if !ok {
			return fmt.Errorf("invalid role %q", *roleFlag)
		}
		list, err = profiles.ListByRole(cmdCtx.Ctx, role)
	} else {
		list, err = profiles.ListActive(cmdCtx.Ctx)
	}
	if err != nil {
		return err
	}

	return printProfiles(list)
}

func printProfiles(list []domainauth.Profile) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tEMAIL\tNAME\tROLE\tCREATED\n"); err != nil {
		return err
	}
	for _, p := range list {
		name := p.FirstName
		if p.LastName != "" {
			name += " " + p.LastName
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Email, name, p.Role, p.CreatedAt.Format("2006-01-02")); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runApprove(cmdCtx *commandContext, args []string) error {
	return transitionPending(cmdCtx, args, "approve", func(profiles *data.ProfileRepo, id string) error {
		_, err := profiles.Merge(cmdCtx.Ctx, id, domainauth.RolePatch(domainauth.RoleMember))
		return err
	})
}

func runDeny(cmdCtx *commandContext, args []string) error {
	return transitionPending(cmdCtx, args, "deny", func(profiles *data.ProfileRepo, id string) error {
		return profiles.Delete(cmdCtx.Ctx, id)
	})
}

// transitionPending runs an action that is only valid on a pending profile.
func transitionPending(cmdCtx *commandContext, args []string, name string, action func(*data.ProfileRepo, string) error) error {
	fs := newFlagSet(name)
	id := fs.String("id", "", "profile ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	db, cleanup, err := openDB(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	profiles := data.NewProfileRepo(db)
	profile, err := profiles.Get(cmdCtx.Ctx, *id)
	if err != nil {
		return err
	}
	if profile.Role != domainauth.RolePending {
		return fmt.Errorf("profile %s has role %s, expected pending", *id, profile.Role)
	}

	if err := action(profiles, *id); err != nil {
		return err
	}
	cmdCtx.Logger.Info("pending profile "+name+"d", "id", *id, "email", profile.Email)
	return nil
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("set-role")
	id := fs.String("id", "", "profile ID")
	roleFlag := fs.String("role", "", "new role (member, treasurer, admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	role, ok := domainauth.ParseRole(*roleFlag)
	if !ok || role == domainauth.RolePending {
		return fmt.Errorf("invalid role %q", *roleFlag)
	}

	db, cleanup, err := openDB(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	profiles := data.NewProfileRepo(db)
	profile, err := profiles.Merge(cmdCtx.Ctx, *id, domainauth.RolePatch(role))
	if err != nil {
		return err
	}

	cmdCtx.Logger.Info("role changed", "id", profile.ID, "email", profile.Email, "role", profile.Role)
	return nil
}

func runSeed(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("seed")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	db, cleanup, err := openDB(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	fields := ports.SignUpFields{FirstName: *first, LastName: *last}

	source := passwordauth.NewProvider(data.NewIdentityRepo(db), cmdCtx.Logger)
	identity, err := source.SignUp(cmdCtx.Ctx, *email, *password, fields)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	// Resolving bootstraps the profile; the configured admin email comes
	// out with the admin role.
	resolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles:   data.NewProfileRepo(db),
		AdminEmail: cmdCtx.Config.Auth.AdminEmail,
		Logger:     cmdCtx.Logger,
	})
	role, err := resolver.ResolveNew(cmdCtx.Ctx, identity, fields)
	if err != nil {
		return fmt.Errorf("bootstrap profile: %w", err)
	}

	cmdCtx.Logger.Info("account seeded", "id", identity.ID, "email", identity.Email, "role", role)
	return nil
}
