package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TBD54566975/relsign/internal/discover"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/projectconfig"
	"github.com/TBD54566975/relsign/internal/signing"
)

type initCmd struct {
	Force bool   `help:"Overwrite an existing configuration file."`
	Dir   string `arg:"" optional:"" type:"existingdir" default:"." help:"Project root to search for keystores and key.properties files."`
}

func (i *initCmd) Run(ctx context.Context, config projectconfig.Config, w io.Writer) error {
	logger := log.FromContext(ctx)
	if _, err := os.Stat(config.Path); err == nil && !i.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", config.Path)
	}
	root, err := filepath.Abs(i.Dir)
	if err != nil {
		return err
	}
	candidates, err := discover.Find(root)
	if err != nil {
		return err
	}

	created := projectconfig.Config{Path: config.Path, Mode: projectconfig.ModeProperties}
	relRoot, err := filepath.Rel(created.Root(), root)
	if err != nil {
		return err
	}
	if relRoot != "." {
		created.ProjectRoot = relRoot
	}
	switch {
	case len(candidates.PropertiesFiles) > 0:
		created.Properties.Path = filepath.Join(relRoot, candidates.PropertiesFiles[0])
		logger.Infof("Using properties file %s", created.Properties.Path)
	case len(candidates.Keystores) > 0:
		created.Mode = projectconfig.ModeEnvironment
		created.Environment.Preset = projectconfig.DefaultPreset
		created.Environment.Keystore = candidates.Keystores[0]
		logger.Infof("No key.properties found, using keystore %s with %s", candidates.Keystores[0], signing.AndroidVariables.StorePassword)
	default:
		created.Properties.Path = signing.DefaultPropertiesPath
		logger.Warnf("No keystore or key.properties found under %s", root)
	}

	if err := projectconfig.Save(created); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Wrote %s\n", created.Path)
	return err
}
