package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/wire"
)

var actorName string

// BindActorFlag adds the persistent --as flag. The default comes from
// AUDITPLUS_ACTOR so scripted sessions do not repeat it.
func BindActorFlag(root *cobra.Command, defaultActor string) {
	root.PersistentFlags().StringVar(&actorName, "as", defaultActor, "Username to act as (env AUDITPLUS_ACTOR)")
}

// actorContext resolves the acting user and returns a context carrying it.
// The local CLI trusts the operator, so no password is asked.
func actorContext() (context.Context, error) {
	ctx := context.Background()
	if actorName == "" {
		return nil, errors.New("no acting user: pass --as <username> or set AUDITPLUS_ACTOR")
	}
	user, err := wire.UserService().LookupActor(ctx, actorName)
	if err != nil {
		return nil, fmt.Errorf("cannot act as %q: %w", actorName, err)
	}
	return ctxutil.WithActor(ctx, ctxutil.Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}), nil
}

// runAs wraps a command body so it runs with the resolved actor.
func runAs(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return fn(ctx, cmd, args)
	}
}

// readInput reads a file argument, or stdin when the argument is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
