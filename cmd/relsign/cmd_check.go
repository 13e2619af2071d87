package main

import (
	"context"
	"fmt"
	"io"

	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/signing"
)

type checkCmd struct{}

func (c *checkCmd) Run(ctx context.Context, resolver *signing.Resolver, mode signing.Mode, w io.Writer) error {
	res, err := resolver.Resolve(ctx, mode)
	if err != nil {
		return err
	}
	identity, err := res.Require()
	if err != nil {
		return err
	}
	if err := identity.Verify(); err != nil {
		return err
	}
	format, err := signing.DetectKeystoreFormat(identity.KeystorePath)
	if err != nil {
		return err
	}
	if format == signing.UnknownKeystore {
		log.FromContext(ctx).Warnf("%s is not a recognised JKS, JCEKS or PKCS12 keystore", identity.KeystorePath)
	}
	_, err = fmt.Fprintf(w, "ok: %s format=%s\n", identity, format)
	return err
}
