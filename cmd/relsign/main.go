package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	"github.com/alecthomas/types/optional"
	kongcompletion "github.com/jotaen/kong-completion"

	"github.com/TBD54566975/relsign"
	"github.com/TBD54566975/relsign/internal/log"
	"github.com/TBD54566975/relsign/internal/projectconfig"
	"github.com/TBD54566975/relsign/internal/secretref"
	"github.com/TBD54566975/relsign/internal/signing"
)

type CLI struct {
	Version    kong.VersionFlag `help:"Show version."`
	LogConfig  log.Config       `embed:"" prefix:"log-" group:"Logging:"`
	ConfigFlag string           `name:"config" short:"C" help:"Path to relsign project configuration file." env:"RELSIGN_CONFIG" placeholder:"FILE"`
	Resolution resolutionFlags  `embed:"" group:"Resolution:"`

	Resolve         resolveCmd                `cmd:"" help:"Resolve the release signing identity and print it."`
	Check           checkCmd                  `cmd:"" help:"Resolve the signing identity and verify that it can be used."`
	Init            initCmd                   `cmd:"" help:"Create a relsign-project.toml file."`
	WriteProperties writePropertiesCmd        `cmd:"" help:"Write a key.properties file."`
	Discover        discoverCmd               `cmd:"" help:"List keystores and key.properties files in a project."`
	Keychain        keychainCmd               `cmd:"" help:"Manage signing secrets in the system keychain."`
	Completion      kongcompletion.Completion `cmd:"" help:"Outputs shell code for initialising tab completions."`
}

// resolutionFlags override the project configuration.
type resolutionFlags struct {
	Mode        string `help:"Resolution mode, \"properties\" or \"environment\". Environment mode uses the android preset unless variables are configured." placeholder:"MODE"`
	Properties  string `help:"Path to the key.properties file." type:"path" placeholder:"FILE"`
	ProjectRoot string `help:"Directory that relative keystore paths are resolved against." type:"path" placeholder:"DIR"`
	EnvPreset   string `help:"Environment variable preset, \"android\" or \"legacy\". Implies --mode=environment." placeholder:"PRESET"`
	Keystore    string `help:"Keystore used by environment mode when no keystore variable is set." type:"path" placeholder:"FILE"`

	References         bool   `help:"Dereference secret references (env://, inline://, keychain://, op://, asm://) in credential values."`
	OPVault            string `name:"opvault" help:"Default 1Password vault for op:// references." placeholder:"VAULT"`
	ASMRegion          string `name:"asm-region" help:"AWS region for asm:// references." env:"AWS_REGION" placeholder:"REGION"`
	ASMEndpoint        string `name:"asm-endpoint" help:"AWS Secrets Manager endpoint override." placeholder:"URL"`
	ASMAccessKeyID     string `name:"asm-access-key-id" help:"AWS access key for asm:// references, otherwise the default credential chain is used." env:"RELSIGN_ASM_ACCESS_KEY_ID"`
	ASMSecretAccessKey string `name:"asm-secret-access-key" help:"AWS secret key for asm:// references." env:"RELSIGN_ASM_SECRET_ACCESS_KEY"`
}

func (r resolutionFlags) apply(config *projectconfig.Config) {
	if r.EnvPreset != "" {
		config.Mode = projectconfig.ModeEnvironment
		config.Environment.Preset = r.EnvPreset
	}
	if r.Mode != "" {
		config.Mode = r.Mode
	}
	if r.Properties != "" {
		config.Properties.Path = r.Properties
	}
	if r.ProjectRoot != "" {
		config.ProjectRoot = r.ProjectRoot
	}
	if r.Keystore != "" {
		config.Environment.Keystore = r.Keystore
	}
	if r.References {
		config.References.Enabled = true
	}
	if r.OPVault != "" {
		config.References.OPVault = r.OPVault
	}
	if r.ASMRegion != "" {
		config.References.ASMRegion = r.ASMRegion
	}
	if r.ASMEndpoint != "" {
		config.References.ASMEndpoint = r.ASMEndpoint
	}
}

// newResolver builds a resolver for the configuration.
func (r resolutionFlags) newResolver(config projectconfig.Config) *signing.Resolver {
	if !config.References.Enabled {
		return signing.NewResolver()
	}
	asm := &secretref.ASMProvider{
		AccessKeyID:     r.ASMAccessKeyID,
		SecretAccessKey: r.ASMSecretAccessKey,
		Region:          config.References.ASMRegion,
		Endpoint:        optional.Zero(config.References.ASMEndpoint),
	}
	registry := secretref.New(
		secretref.EnvarProvider{},
		secretref.InlineProvider{},
		secretref.KeychainProvider{},
		secretref.OnePasswordProvider{Vault: config.References.OPVault},
		asm,
	)
	return signing.NewResolver(signing.WithReferences(registry))
}

var cli CLI

func main() {
	app := createKongApplication(&cli)
	kongcompletion.Register(app)
	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.Configure(os.Stderr, cli.LogConfig)
	ctx = log.ContextWithLogger(ctx, logger)

	config, err := loadConfig(ctx, cli.ConfigFlag)
	kctx.FatalIfErrorf(err)
	cli.Resolution.apply(&config)

	kctx.Bind(config)
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(os.Stdout, (*io.Writer)(nil))
	err = kctx.BindToProvider(func() (signing.Mode, error) {
		return config.SigningMode()
	})
	kctx.FatalIfErrorf(err)
	err = kctx.BindToProvider(func() (*signing.Resolver, error) {
		return cli.Resolution.newResolver(config), nil
	})
	kctx.FatalIfErrorf(err)

	err = kctx.Run(ctx)
	kctx.FatalIfErrorf(err)
}

func createKongApplication(cli any) *kong.Kong {
	return kong.Must(cli,
		kong.Description(`relsign - resolve Android release signing credentials`),
		kong.Configuration(kongtoml.Loader, "~/.relsign.toml"),
		kong.ShortUsageOnError(),
		kong.HelpOptions{Compact: true, WrapUpperBound: 80},
		kong.Vars{
			"version": relsign.Version,
			"os":      runtime.GOOS,
			"arch":    runtime.GOARCH,
		},
	)
}

// loadConfig loads the project configuration. A missing file yields an empty
// configuration rooted at the working directory, or at the requested path.
func loadConfig(ctx context.Context, path string) (projectconfig.Config, error) {
	logger := log.FromContext(ctx)
	if path == "" {
		found, ok := projectconfig.DefaultConfigPath().Get()
		if !ok {
			cwd, err := os.Getwd()
			if err != nil {
				return projectconfig.Config{}, err
			}
			logger.Debugf("No %s found, using defaults", projectconfig.FileName)
			return projectconfig.Config{Path: filepath.Join(cwd, projectconfig.FileName)}, nil
		}
		path = found
	}
	config, err := projectconfig.Load(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return projectconfig.Config{}, err
		}
		logger.Debugf("%s does not exist, using defaults", absPath)
		return projectconfig.Config{Path: absPath}, nil
	}
	return config, err
}
