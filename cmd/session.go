package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/rm-hull/inventory-console/internal/notify"
)

func Login(ctx context.Context, opts Options, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.gateway.Login(ctx, username, password)
}

func Logout(opts Options) error {
	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.gateway.Logout()
}

func Status(w io.Writer, opts Options) error {
	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	state := sess.gateway.State()
	switch {
	case state.AccessToken != "":
		_, err = fmt.Fprintf(w, "Logged in to %s\n", sess.cfg.BaseURL)
	case state.RefreshToken != "":
		_, err = fmt.Fprintf(w, "Session for %s will be refreshed on next use\n", sess.cfg.BaseURL)
	default:
		_, err = fmt.Fprintln(w, "Not logged in")
	}
	return err
}
