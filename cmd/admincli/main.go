package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/client/guard"
	"github.com/morlov/merchant-admin/internal/client/resources"
	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/config"
	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/rules"
)

const usage = `usage: admincli <command> [flags]

commands:
  login      -email -password   authenticate and persist the session
  logout                        revoke the session and clear local state
  whoami                        show the current identity and permissions
  dashboard                     role-aware summary
  users                         list users (super_admin only)
  merchants                     list merchants (scoped by role)
`

// View allowlists mirror the admin UI routes. Exact membership, no
// hierarchy.
var (
	usersAllowlist     = []enums.Role{enums.RoleSuperAdmin}
	merchantsAllowlist = []enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin, enums.RoleMerchant}
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	statePath := cfg.Client.StatePath
	if statePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		statePath = filepath.Join(home, ".merchant-admin", "state.json")
	}

	store := session.NewStore(session.NewFileStorage(statePath))
	if err := store.Initialize(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	gw := gateway.New(gateway.Config{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.Timeout,
	}, store, nil)
	gw.OnRedirect(func(reason gateway.RedirectReason) {
		if reason == gateway.ReasonSessionExpired {
			fmt.Fprintln(os.Stderr, "session expired, run `admincli login`")
		} else {
			fmt.Fprintln(os.Stderr, "not logged in, run `admincli login`")
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		return cmdLogin(ctx, gw, store, args[1:])
	case "logout":
		return resources.NewAuthClient(gw, store).Logout(ctx)
	case "whoami":
		return cmdWhoami(store)
	case "dashboard":
		return cmdDashboard(ctx, gw, store)
	case "users":
		return cmdUsers(ctx, gw, store)
	case "merchants":
		return cmdMerchants(ctx, gw, store)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdLogin(ctx context.Context, gw *gateway.Gateway, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("both -email and -password are required")
	}

	identity, err := resources.NewAuthClient(gw, store).Login(ctx, *email, *password)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return errors.New("invalid email or password")
		}
		return err
	}

	fmt.Printf("logged in as %s (%s)\n", identity.Email, identity.Role)
	return nil
}

func cmdWhoami(store *session.Store) error {
	identity, ok := store.Identity()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}

	perms := rules.PermissionsFor(identity.Role)
	fmt.Printf("%s <%s> role=%s\n", identity.Name, identity.Email, identity.Role)
	fmt.Printf("  manage users:     %v\n", perms.ViewUsers)
	fmt.Printf("  manage merchants: %v\n", perms.ViewMerchants)
	fmt.Printf("  all merchants:    %v\n", perms.ViewAllMerchants)
	return nil
}

func cmdDashboard(ctx context.Context, gw *gateway.Gateway, store *session.Store) error {
	if !allowView(store, nil) {
		return nil
	}

	summary, err := resources.NewDashboardClient(gw).Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("users: %d\nmerchants: %d\nactive merchants: %d\nnew merchants (30d): %d\n",
		summary.TotalUsers, summary.TotalMerchants, summary.ActiveMerchants, summary.NewMerchants30Days)
	return nil
}

func cmdUsers(ctx context.Context, gw *gateway.Gateway, store *session.Store) error {
	if !allowView(store, usersAllowlist) {
		return nil
	}

	users, err := resources.NewUsersClient(gw).List(ctx, 1, 50)
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Printf("%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
	}
	return nil
}

func cmdMerchants(ctx context.Context, gw *gateway.Gateway, store *session.Store) error {
	if !allowView(store, merchantsAllowlist) {
		return nil
	}

	merchants, err := resources.NewMerchantsClient(gw).List(ctx, 1, 50)
	if err != nil {
		return err
	}
	for _, merchant := range merchants {
		fmt.Printf("%d\t%s\t%s\t%s\n", merchant.ID, merchant.Name, merchant.ContactEmail, merchant.Status)
	}
	return nil
}

// allowView applies the route guard the way the UI shell would: login
// redirect for anonymous sessions, default-view redirect for roles outside
// the allowlist.
func allowView(store *session.Store, allowlist []enums.Role) bool {
	switch guard.Decide(store, allowlist) {
	case guard.OutcomeAllow:
		return true
	case guard.OutcomeRedirectLogin:
		fmt.Fprintln(os.Stderr, "not logged in, run `admincli login`")
	case guard.OutcomeRedirectDefault:
		fmt.Fprintln(os.Stderr, "your role does not have access to this view, try `admincli dashboard`")
	case guard.OutcomeLoading:
		fmt.Fprintln(os.Stderr, "session state unavailable")
	}
	return false
}
