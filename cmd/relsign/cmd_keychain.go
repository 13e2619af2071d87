package main

import (
	"fmt"
	"io"
	"os"

	"github.com/TBD54566975/relsign/internal/secretref"
)

type keychainCmd struct {
	Set keychainSetCmd `cmd:"" help:"Store a secret in the system keychain and print its reference."`
}

type keychainSetCmd struct {
	Service string `default:"relsign" help:"Keychain service name."`
	Account string `arg:"" help:"Keychain account, e.g. store-password."`
}

func (k *keychainSetCmd) Run(w io.Writer) error {
	secret, err := newPrompter(os.Stdin, os.Stderr).secret("Secret")
	if err != nil {
		return err
	}
	ref, err := secretref.KeychainProvider{}.Store(k.Service, k.Account, secret)
	if err != nil {
		return fmt.Errorf("failed to store secret in keychain: %w", err)
	}
	_, err = fmt.Fprintln(w, ref.String())
	return err
}
