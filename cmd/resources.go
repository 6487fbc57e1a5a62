package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/rm-hull/inventory-console/internal/inventory"
	"github.com/rm-hull/inventory-console/internal/notify"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func collection(sess *session, kind string) (inventory.Collection, error) {
	k, ok := inventory.ParseKind(kind)
	if !ok {
		return nil, errors.Wrapf(inventory.ErrUnknownKind, "%q (expected one of %v)", kind, inventory.Kinds)
	}
	return sess.client.Collection(k)
}

func List(ctx context.Context, w io.Writer, opts Options, kind string, query inventory.Query) error {
	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	coll, err := collection(sess, kind)
	if err != nil {
		return err
	}
	page, err := coll.Page(ctx, query)
	if err != nil {
		return err
	}
	return writeJSON(w, page)
}

func Get(ctx context.Context, w io.Writer, opts Options, kind, id string) error {
	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	coll, err := collection(sess, kind)
	if err != nil {
		return err
	}
	item, err := coll.Fetch(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(w, item)
}

func Delete(ctx context.Context, opts Options, kind, id string) error {
	sess, err := bootstrap(opts, notify.NewLogSink())
	if err != nil {
		return err
	}
	defer sess.Close()

	coll, err := collection(sess, kind)
	if err != nil {
		return err
	}
	return coll.Delete(ctx, id)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
