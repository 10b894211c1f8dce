package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/uptpik/pikweb/core/session"
	backendsvc "github.com/uptpik/pikweb/services/backend"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	mgr *session.Manager
	api *backendsvc.Client
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL                - log in; the password will be prompted")
	fmt.Fprintln(cli.out, "  whoami                            - show the current session")
	fmt.Fprintln(cli.out, "  events [-search TEXT] [-semester SEM] - list marketplace events")
	fmt.Fprintln(cli.out, "  logout                            - end the current session")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "login":
		loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
		email := loginCmd.String("email", "", "The account email. The password will be prompted next.")
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *email, string(pwd))

	case "whoami":
		return cli.whoami(ctx)

	case "events":
		eventsCmd := flag.NewFlagSet("events", flag.ExitOnError)
		search := eventsCmd.String("search", "", "Filter events by free text.")
		semester := eventsCmd.String("semester", "", "Filter events by semester.")
		if err := eventsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.events(ctx, *search, *semester)

	case "logout":
		cli.mgr.Initialize(ctx)
		cli.mgr.Logout(ctx)
		fmt.Fprintln(cli.out, "Logged out.")
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	creds := session.Credentials{Email: email, Password: pwd}
	if err := creds.Validate(); err != nil {
		return err
	}

	res := cli.mgr.Login(ctx, creds)
	if !res.OK {
		return errors.New(res.Err)
	}
	fmt.Fprintf(cli.out, "Logged in as %s <%s> (%s)\n", res.User.Nama, res.User.Email, res.User.Role)
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	cli.mgr.Initialize(ctx)
	st := cli.mgr.State()
	if !st.IsAuthenticated {
		fmt.Fprintln(cli.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(cli.out, "%s <%s> (%s)\n", st.User.Nama, st.User.Email, st.User.Role)
	return nil
}

func (cli *commandLine) events(ctx context.Context, search, semester string) error {
	cli.mgr.Initialize(ctx)
	st := cli.mgr.State()
	if !st.IsAuthenticated {
		return errors.New("not logged in")
	}

	events, _, err := cli.api.WithToken(st.Token).Events(ctx, backendsvc.EventFilters{Search: search, Semester: semester})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(cli.out, "No events found.")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintf(cli.out, "%s  %s (%s %s) - %s\n",
			ev.ID, ev.Nama, ev.Semester, ev.TahunAjaran, ev.TanggalPelaksanaan.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
