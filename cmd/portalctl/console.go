package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-portal"
	"golang.org/x/term"
)

type console struct {
	in  *bufio.Reader
	out io.Writer
	// secret reads a line without echo.
	secret func() (string, error)
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: bufio.NewReader(in), out: out}
	c.secret = c.line
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		c.secret = func() (string, error) {
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			return string(raw), err
		}
	}
	return c
}

func (c *console) line() (string, error) {
	s, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (c *console) ask(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.line()
}

func (c *console) askSecret(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.secret()
}

func (c *console) report(attempt *portal.AuthAttempt) {
	if n := attempt.Notice(); n != "" {
		fmt.Fprintln(c.out, n)
	}
	errs := attempt.Errors()
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %s: %s\n", k, errs[k])
	}
}

// countdown prints the remaining cooldown on one line until it reaches zero.
func (c *console) countdown(ctx context.Context, attempt *portal.AuthAttempt) {
	for remaining := range attempt.Countdown(ctx) {
		if remaining == 0 {
			fmt.Fprint(c.out, "\rresend available        \n")
			return
		}
		fmt.Fprintf(c.out, "\rresend in %2ds", remaining)
	}
	fmt.Fprintln(c.out)
}

// drive walks one attempt to completion. An empty method asks for one.
func drive(ctx context.Context, flow *portal.Flow, purpose portal.FlowPurpose, method portal.Method, con *console) (*portal.Session, error) {
	attempt, err := flow.Begin(purpose)
	if err != nil {
		return nil, err
	}

	if method == "" {
		if method, err = chooseMethod(flow.Methods(purpose), con); err != nil {
			return nil, err
		}
	}
	if err := attempt.Choose(ctx, method); err != nil {
		return nil, err
	}

	for !attempt.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch attempt.Step() {
		case portal.StepInput:
			creds, err := readCredentials(purpose, method, con)
			if err != nil {
				return nil, err
			}
			if err := attempt.Submit(ctx, creds); err != nil {
				con.report(attempt)
				if portal.IsTransportError(err) {
					return nil, err
				}
			}

		case portal.StepOTP:
			fmt.Fprintf(con.out, "code sent to %s\n", attempt.Destination())
			answer, err := con.ask("code (r to resend, b to go back)")
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "r":
				if !attempt.CanResend() {
					con.countdown(ctx, attempt)
				}
				if err := attempt.Resend(ctx); err != nil {
					con.report(attempt)
				}
			case "b":
				if err := attempt.Back(ctx); err != nil {
					return nil, err
				}
			default:
				if err := attempt.SubmitCode(ctx, answer); err != nil {
					con.report(attempt)
				}
			}

		default:
			return nil, fmt.Errorf("unexpected step %s", attempt.Step())
		}
	}

	return attempt.Session(), nil
}

func chooseMethod(methods []portal.Method, con *console) (portal.Method, error) {
	for i, m := range methods {
		fmt.Fprintf(con.out, "  %d) %s\n", i+1, m)
	}
	for {
		answer, err := con.ask("method")
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(methods) {
			return methods[n-1], nil
		}
		for _, m := range methods {
			if string(m) == answer {
				return m, nil
			}
		}
		fmt.Fprintln(con.out, "pick one of the listed methods")
	}
}

func readCredentials(purpose portal.FlowPurpose, method portal.Method, con *console) (portal.Credentials, error) {
	var creds portal.Credentials
	var err error

	if purpose == portal.PurposeRegister {
		if creds.Username, err = con.ask("username"); err != nil {
			return creds, err
		}
	}
	if creds.Destination, err = con.ask(string(method.Contact())); err != nil {
		return creds, err
	}
	if method == portal.MethodPassword {
		if creds.Password, err = con.askSecret("password"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}
