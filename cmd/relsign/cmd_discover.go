package main

import (
	"fmt"
	"io"

	"github.com/TBD54566975/relsign/internal/discover"
)

type discoverCmd struct {
	Dir string `arg:"" optional:"" type:"existingdir" default:"." help:"Directory to search."`
}

func (d *discoverCmd) Run(w io.Writer) error {
	candidates, err := discover.Find(d.Dir)
	if err != nil {
		return err
	}
	for _, path := range candidates.PropertiesFiles {
		fmt.Fprintf(w, "properties %s\n", path)
	}
	for _, path := range candidates.Keystores {
		fmt.Fprintf(w, "keystore   %s\n", path)
	}
	return nil
}
