package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/courses"
	"github.com/jrsteele09/go-campus/internal/utils"
	"github.com/jrsteele09/go-campus/newsletter"
	"github.com/jrsteele09/go-campus/session"
	"github.com/jrsteele09/go-campus/validation"
)

var (
	errLoginRequired = errors.New("login required")
	errUsage         = errors.New("usage")
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":        {"login -email <email> -password <password>", runLogin},
	"logout":       {"logout", runLogout},
	"register":     {"register -name <name> -email <email> [-phone <phone>] -password <pw> -confirm <pw>", runRegister},
	"whoami":       {"whoami", runWhoami},
	"profile":      {"profile -name <name>", runProfile},
	"courses":      {"courses [-search s] [-university u] [-level l] [-min n] [-max n]", runCourses},
	"course":       {"course <id>", runCourse},
	"universities": {"universities", runUniversities},
	"enroll":       {"enroll <id>", runEnroll},
	"progress":     {"progress <id> <0-100>", runProgress},
	"dashboard":    {"dashboard", runDashboard},
	"subscribe":    {"subscribe -email <email> [-updates] [-promotions] [-newsletters] [-off]", runSubscribe},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: campus [-api url] [-store sqlite|file|memory] <command> [flags]")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// sessionError prefers the message the session recorded for the user.
func sessionError(a *app, err error) error {
	if msg := a.session.Snapshot().Error; msg != "" && !errors.Is(err, session.ErrSuperseded) {
		return errors.New(msg)
	}
	return err
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	a.nav.Navigate("/login")
	if snap := a.session.Init(ctx); snap.Authenticated() {
		fmt.Fprintf(a.out, "Already signed in as %s\n", snap.User.Email)
		return nil
	}
	if err := a.session.Login(ctx, *email, *password); err != nil {
		return sessionError(a, err)
	}
	fmt.Fprintln(a.out, successStyle.Render("Welcome, "+displayName(a.session.Snapshot().User)))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	a.session.Init(ctx)
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var form validation.Registration
	fs.StringVar(&form.Name, "name", "", "")
	fs.StringVar(&form.Email, "email", "", "")
	fs.StringVar(&form.Phone, "phone", "", "")
	fs.StringVar(&form.Password, "password", "", "")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	a.nav.Navigate("/register")
	a.session.Init(ctx)
	if err := a.session.Register(ctx, form); err != nil {
		return sessionError(a, err)
	}
	fmt.Fprintln(a.out, successStyle.Render("Account created. Welcome, "+displayName(a.session.Snapshot().User)))
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	return a.protected(ctx, "/profile", func(_ context.Context, snap session.Snapshot) error {
		fmt.Fprintf(a.out, "%s <%s>\n", displayName(snap.User), snap.User.Email)
		if snap.User.Phone != "" {
			fmt.Fprintf(a.out, "phone: %s\n", snap.User.Phone)
		}
		return nil
	})
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("profile")
	name := fs.String("name", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return a.protected(ctx, "/profile", func(ctx context.Context, _ session.Snapshot) error {
		if err := a.session.UpdateProfile(ctx, *name); err != nil {
			return sessionError(a, err)
		}
		fmt.Fprintln(a.out, successStyle.Render("Profile updated"))
		return nil
	})
}

func runCourses(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("courses")
	var f courses.Filters
	fs.StringVar(&f.Search, "search", "", "")
	fs.StringVar(&f.University, "university", "", "")
	fs.StringVar(&f.Level, "level", "", "")
	minPrice := fs.String("min", "", "")
	maxPrice := fs.String("max", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	for _, p := range []struct {
		raw string
		dst **float64
	}{{*minPrice, &f.MinPrice}, {*maxPrice, &f.MaxPrice}} {
		if p.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(p.raw, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", p.raw)
		}
		*p.dst = utils.Ptr(v)
	}
	a.nav.Navigate("/courses")
	list, err := a.backend.ListCourses(ctx, f)
	if err != nil {
		return err
	}
	renderCourses(a.out, list)
	return nil
}

func singleArg(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage
	}
	return args[0], nil
}

func runCourse(ctx context.Context, a *app, args []string) error {
	id, err := singleArg(args)
	if err != nil {
		return err
	}
	a.nav.Navigate("/courses/" + id)
	c, err := a.backend.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	renderCourse(a.out, c)
	return nil
}

func runUniversities(ctx context.Context, a *app, _ []string) error {
	a.nav.Navigate("/universities")
	list, err := a.backend.ListUniversities(ctx)
	if err != nil {
		return err
	}
	renderUniversities(a.out, list)
	return nil
}

func runEnroll(ctx context.Context, a *app, args []string) error {
	id, err := singleArg(args)
	if err != nil {
		return err
	}
	return a.protected(ctx, "/courses/"+id, func(ctx context.Context, _ session.Snapshot) error {
		e, err := a.backend.Enroll(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, successStyle.Render("Enrolled in "+e.Course.Title))
		return nil
	})
}

func runProgress(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	pct, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	return a.protected(ctx, "/courses/"+args[0]+"/learn", func(ctx context.Context, _ session.Snapshot) error {
		e, err := a.backend.UpdateProgress(ctx, args[0], pct)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s\n", e.Course.Title, progressBar(e.Progress))
		return nil
	})
}

func runDashboard(ctx context.Context, a *app, _ []string) error {
	return a.protected(ctx, "/dashboard", func(ctx context.Context, snap session.Snapshot) error {
		enrolled, err := a.backend.EnrolledCourses(ctx)
		if err != nil {
			return err
		}
		renderDashboard(a.out, displayName(snap.User), enrolled)
		return nil
	})
}

func runSubscribe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("subscribe")
	email := fs.String("email", "", "")
	off := fs.Bool("off", false, "")
	var prefs newsletter.Preferences
	fs.BoolVar(&prefs.CourseUpdates, "updates", false, "")
	fs.BoolVar(&prefs.Promotions, "promotions", false, "")
	fs.BoolVar(&prefs.Newsletters, "newsletters", false, "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := validation.Email(*email); err != nil {
		return err
	}
	a.nav.Navigate("/newsletter")

	if *off {
		if err := a.backend.Unsubscribe(ctx, *email); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Unsubscribed "+*email)
		return nil
	}

	req := api.NewsletterSubscription{Email: *email}
	if prefs != (newsletter.Preferences{}) {
		req.Preferences = &prefs
	}
	sub, err := a.backend.Subscribe(ctx, req)
	if err != nil {
		return err
	}
	renderSubscription(a.out, sub)
	return nil
}

func displayName(u *api.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
