package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TBD54566975/relsign/internal/keyproperties"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/projectconfig"
	"github.com/TBD54566975/relsign/internal/signing"
)

type writePropertiesCmd struct {
	Output        string `arg:"" optional:"" type:"path" help:"File to write, defaulting to the configured properties file." placeholder:"FILE"`
	StoreFile     string `required:"" help:"Keystore path, relative to the project root." placeholder:"FILE"`
	KeyAlias      string `required:"" help:"Alias of the signing key." placeholder:"ALIAS"`
	StorePassword string `help:"Keystore password, prompted for if not set." env:"RELSIGN_STORE_PASSWORD"`
	KeyPassword   string `help:"Key password, prompted for if not set. Defaults to the store password when read from a pipe." env:"RELSIGN_KEY_PASSWORD"`
	Force         bool   `help:"Overwrite an existing file."`
}

func (c *writePropertiesCmd) Help() string {
	return `
Passwords are read from a password prompt if stdin is a terminal, otherwise
one per line from stdin. Values may be secret references such as
op://vault/item/password which are dereferenced by "resolve --references".
`
}

func (c *writePropertiesCmd) Run(ctx context.Context, config projectconfig.Config, w io.Writer) error {
	path := c.Output
	if path == "" {
		mode, err := config.SigningMode()
		if err != nil {
			return err
		}
		pm, ok := mode.(signing.PropertiesMode)
		if !ok {
			return fmt.Errorf("no output file given and the project is configured for %s mode", mode)
		}
		path = pm.Path
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}

	prompt := newPrompter(os.Stdin, os.Stderr)
	if c.StorePassword == "" {
		secret, err := prompt.secret("Store password")
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no store password given")
		} else if err != nil {
			return err
		}
		c.StorePassword = secret
	}
	if c.KeyPassword == "" {
		secret, err := prompt.secret("Key password")
		switch {
		case errors.Is(err, io.EOF):
			c.KeyPassword = c.StorePassword
		case err != nil:
			return err
		default:
			c.KeyPassword = secret
		}
	}

	err := keyproperties.Write(path, map[string]string{
		keyproperties.StoreFile:     c.StoreFile,
		keyproperties.StorePassword: c.StorePassword,
		keyproperties.KeyAlias:      c.KeyAlias,
		keyproperties.KeyPassword:   c.KeyPassword,
	})
	if err != nil {
		return err
	}
	log.FromContext(ctx).Debugf("Wrote signing properties for alias %s", c.KeyAlias)
	_, err = fmt.Fprintf(w, "Wrote %s\n", path)
	return err
}
