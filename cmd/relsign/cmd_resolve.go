package main

import (
	"context"
	"io"
	"os"

	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/output"
	"github.com/TBD54566975/relsign/internal/signing"
)

type resolveCmd struct {
	Format  output.Format `short:"f" help:"Output format: env, properties, gradle or json." default:"env" enum:"env,properties,gradle,json"`
	Require bool          `help:"Fail if no signing identity is available instead of continuing unsigned."`
}

func (r *resolveCmd) Help() string {
	return `
Prints the resolved identity to stdout. When the properties file is missing a
warning is logged and nothing is printed, so the build can fall back to an
unsigned or debug-signed release; pass --require to fail instead.

  eval "$(relsign resolve)"
  ./gradlew assembleRelease $(relsign resolve -f gradle)
`
}

func (r *resolveCmd) Run(ctx context.Context, resolver *signing.Resolver, mode signing.Mode, w io.Writer) error {
	res, err := resolver.Resolve(ctx, mode)
	if err != nil {
		return err
	}
	identity, ok := res.Identity.Get()
	if !ok {
		if r.Require {
			_, err := res.Require()
			return err
		}
		log.FromContext(ctx).Infof("No signing identity available, continuing without release signing")
		return nil
	}
	return output.Write(w, r.Format, identity, isTerminal(w))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}
