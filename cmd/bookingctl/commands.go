package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

const usage = `usage: bookingctl <command> [flags]

Requires STORE_BACKEND=redis or mysql; the signed-in user is kept in the store.

commands:
  signup       -name -email -password [-role user|admin]
  login        -email -password
  whoami
  logout
  stats                                   (admin)
  users                                   (admin)
  promote      -id [-role admin|user]     (admin)
  delete-user  -id                        (admin)
  calendar     [-year] [-month]           (own bookings; -all for admins)
  reset-form                              (admin)
`

var errAdminOnly = errors.New("this command needs a signed-in admin")

// errVolatileStore rejects the memory backend: the session pointer and
// every account would vanish when the command exits.
var errVolatileStore = errors.New(`bookingctl needs a persistent store: set STORE_BACKEND=redis or STORE_BACKEND=mysql`)

func checkBackend(cfg config.Config) error {
	switch cfg.StoreBackend {
	case "redis", "mysql":
		return nil
	}
	return errVolatileStore
}

type cli struct {
	auth     *service.AuthService
	bookings *service.BookingService
	calendar *service.Calendar
	forms    *repository.FormConfigRepo
	out      io.Writer
	now      func() time.Time
}

func newCLI(store *kvstore.Store, cfg config.Config, out io.Writer) *cli {
	log := logrus.StandardLogger()
	return &cli{
		auth: service.NewAuthService(store, service.AuthConfig{
			AdminEmail: cfg.AdminEmail,
			BcryptCost: cfg.BcryptCost,
			Location:   cfg.Location(),
		}, log),
		bookings: service.NewBookingService(store, nil, log),
		calendar: service.NewCalendar(store, cfg.Location()),
		forms:    repository.NewFormConfigRepo(store),
		out:      out,
		now:      time.Now,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return errors.New("no command given")
	}
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(c.out)

	switch cmd {
	case "signup":
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password")
		role := fs.String("role", "", "user or admin (default depends on email)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *email == "" || *password == "" {
			return errors.New("signup needs -email and -password")
		}
		u, err := c.auth.CreateUser(ctx, *name, *email, *password, model.Role(*role))
		if err != nil {
			return err
		}
		if err := c.auth.SetCurrentUser(ctx, u.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created %s (%s) and signed in\n", u.Email, u.Role)
		return nil

	case "login":
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		u, err := c.auth.Authenticate(ctx, *email, *password)
		if err != nil {
			return err
		}
		if err := c.auth.SetCurrentUser(ctx, u.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "signed in as %s (%s)\n", u.Email, u.Role)
		return nil

	case "whoami":
		u, ok, err := c.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.out, "not signed in")
			return nil
		}
		fmt.Fprintf(c.out, "%s <%s> %s id=%s\n", u.Name, u.Email, u.Role, u.ID)
		return nil

	case "logout":
		if err := c.auth.SignOut(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "signed out")
		return nil

	case "stats":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		bs, err := c.bookings.Stats(ctx)
		if err != nil {
			return err
		}
		us, err := c.auth.UserStats(ctx)
		if err != nil {
			return err
		}
		return c.printJSON(map[string]any{"bookings": bs, "users": us})

	case "users":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		users, err := c.auth.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.DateOnly))
		}
		return tw.Flush()

	case "promote":
		id := fs.String("id", "", "user id")
		role := fs.String("role", string(model.RoleAdmin), "new role")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		u, err := c.auth.UpdateRole(ctx, *id, model.Role(*role))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s is now %s\n", u.Email, u.Role)
		return nil

	case "delete-user":
		id := fs.String("id", "", "user id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		found, err := c.auth.DeleteUser(ctx, *id)
		if err != nil {
			return err
		}
		if !found {
			return repository.ErrUserNotFound
		}
		fmt.Fprintf(c.out, "deleted user %s and their bookings\n", *id)
		return nil

	case "calendar":
		now := c.now()
		year := fs.Int("year", now.Year(), "year")
		month := fs.Int("month", int(now.Month()), "month, 1-12")
		all := fs.Bool("all", false, "every booking (admins only)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *month < 1 || *month > 12 {
			return fmt.Errorf("invalid -month %d: want 1-12", *month)
		}
		u, ok, err := c.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("not signed in")
		}
		cal := c.calendar.ForUser(u.ID)
		if *all {
			if !u.IsAdmin() {
				return errAdminOnly
			}
			cal = c.calendar
		}
		view, err := cal.MonthView(ctx, *year, time.Month(*month))
		if err != nil {
			return err
		}
		c.printMonth(view)
		return nil

	case "reset-form":
		if err := c.requireAdmin(ctx); err != nil {
			return err
		}
		if _, err := c.forms.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "form configuration reset to defaults")
		return nil

	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	fmt.Fprint(c.out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) requireAdmin(ctx context.Context) error {
	u, ok, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if !ok || !u.IsAdmin() {
		return errAdminOnly
	}
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMonth draws a Sunday-first grid with booked days starred, then
// lists the bookings.
func (c *cli) printMonth(v service.MonthView) {
	fmt.Fprintf(c.out, "%s %d\n", v.Month, v.Year)
	fmt.Fprintln(c.out, " Su  Mo  Tu  We  Th  Fr  Sa")
	var b strings.Builder
	col := 0
	for ; col < v.LeadingBlanks; col++ {
		b.WriteString("    ")
	}
	for _, d := range v.Days {
		mark := " "
		if len(d.Bookings) > 0 {
			mark = "*"
		}
		fmt.Fprintf(&b, "%3d%s", d.Day, mark)
		if col++; col%7 == 0 {
			b.WriteString("\n")
		}
	}
	if col%7 != 0 {
		b.WriteString("\n")
	}
	fmt.Fprint(c.out, b.String())
	for _, d := range v.Days {
		for _, bk := range d.Bookings {
			fmt.Fprintf(c.out, "%02d  %s  %s  %s\n", d.Day, bk.Status.OrPending(), bk.PropertyType, bk.Email)
		}
	}
}
