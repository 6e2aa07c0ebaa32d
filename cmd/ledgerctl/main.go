// Command ledgerctl is the operator tool for seeding groups and inspecting ledgers.
//
// Usage:
//
//	ledgerctl group-create -name "Goa Trip" -type TRIP -member rahul:Rahul -member amit:Amit
//	ledgerctl member-add -group <id> -id sneha -name Sneha
//	ledgerctl token -user rahul
//	ledgerctl balances -group <id> -as rahul
//
// Storage and secrets come from the same environment as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/backend"
	"github.com/mmynk/splitledger/pkg/logging"
	"github.com/mmynk/splitledger/pkg/money"
)

var errUsage = errors.New("usage: ledgerctl <group-create|member-add|token|balances> [flags]")

func main() {
	cfg := config.Load()
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "group-create":
		return groupCreate(ctx, cfg, rest, out)
	case "member-add":
		return memberAdd(ctx, cfg, rest, out)
	case "token":
		return token(cfg, rest, out)
	case "balances":
		return balances(ctx, cfg, rest, out)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func withStore(ctx context.Context, cfg *config.Config, fn func(storage.Store) error) error {
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// parseMember accepts "id" or "id:Display Name".
func parseMember(s string) (models.Member, error) {
	id, name, _ := strings.Cut(s, ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Member{}, fmt.Errorf("invalid member %q", s)
	}
	return models.Member{ID: id, DisplayName: strings.TrimSpace(name)}, nil
}

func groupCreate(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("group-create", flag.ContinueOnError)
	name := fs.String("name", "", "group name")
	typ := fs.String("type", string(models.GroupTypeOther), "TRIP, HOME, COUPLE or OTHER")
	var members []models.Member
	fs.Func("member", "member as id[:Display Name], repeatable", func(s string) error {
		m, err := parseMember(s)
		if err != nil {
			return err
		}
		members = append(members, m)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("group-create: -name is required")
	}

	group := &models.Group{
		Name:    *name,
		Type:    models.NormalizeGroupType(strings.ToUpper(*typ)),
		Members: members,
	}
	return withStore(ctx, cfg, func(store storage.Store) error {
		if err := store.CreateGroup(ctx, group); err != nil {
			return err
		}
		fmt.Fprintln(out, group.ID)
		return nil
	})
}

func memberAdd(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("member-add", flag.ContinueOnError)
	groupID := fs.String("group", "", "group ID")
	id := fs.String("id", "", "member ID")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *groupID == "" || *id == "" {
		return errors.New("member-add: -group and -id are required")
	}

	return withStore(ctx, cfg, func(store storage.Store) error {
		member := models.Member{ID: *id, DisplayName: *name, JoinedAt: time.Now().Unix()}
		if err := store.AddMember(ctx, *groupID, member); err != nil {
			return err
		}
		fmt.Fprintf(out, "added %s to %s\n", *id, *groupID)
		return nil
	})
}

func token(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "member ID to issue the token for")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("token: -user is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("token: JWT_SECRET is not set")
	}

	signed, err := auth.NewJWTManager(cfg.JWTSecret, *ttl).Generate(*user)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, signed)
	return nil
}

func balances(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("balances", flag.ContinueOnError)
	groupID := fs.String("group", "", "group ID")
	as := fs.String("as", "", "member to read the group as")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *groupID == "" || *as == "" {
		return errors.New("balances: -group and -as are required")
	}

	currency := money.Currency{Exponent: cfg.CurrencyExponent, Symbol: cfg.CurrencySymbol}
	return withStore(ctx, cfg, func(store storage.Store) error {
		view, err := ledger.New(store).GetGroup(ctx, models.Principal{UserID: *as}, *groupID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s (%s), version %d\n\n", view.Group.Name, view.Group.Type, view.Version)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MEMBER\tBALANCE")
		for _, b := range view.Balances.Sorted() {
			fmt.Fprintf(tw, "%s\t%s\n", view.Group.DisplayName(b.MemberID), currency.Format(b.NetAmount))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if len(view.Debts) == 0 {
			fmt.Fprintln(out, "\nAll settled up.")
			return nil
		}
		fmt.Fprintln(out, "\nTo settle:")
		for _, d := range view.Debts {
			fmt.Fprintf(out, "  %s pays %s %s\n",
				view.Group.DisplayName(d.From), view.Group.DisplayName(d.To), currency.Format(d.Amount))
		}
		return nil
	})
}
