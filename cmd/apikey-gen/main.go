package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"write-space.backend/pkg/crypto"
)

type credentials struct {
	Key     string
	Hash    string
	Preview string
}

var (
	generateKeyFn = crypto.GenerateApiKey
	fatalfFn      = log.Fatalf
)

func validateKey(key string) error {
	if !strings.HasPrefix(key, crypto.ApiKeyPrefix) {
		return fmt.Errorf("invalid key: must start with %q", crypto.ApiKeyPrefix)
	}
	return nil
}

// buildCredentials hashes key, or a freshly generated secret when key is empty
func buildCredentials(key string) (credentials, error) {
	if key == "" {
		generated, err := generateKeyFn()
		if err != nil {
			return credentials{}, fmt.Errorf("failed to generate api key: %w", err)
		}
		key = generated
	} else if err := validateKey(key); err != nil {
		return credentials{}, err
	}

	return credentials{
		Key:     key,
		Hash:    crypto.HashApiKey(key),
		Preview: crypto.PreviewApiKey(key),
	}, nil
}

func printCredentials(out io.Writer, c credentials, generated bool) {
	if generated {
		_, _ = fmt.Fprintln(out, "Generated API key")
		_, _ = fmt.Fprintf(out, "API_KEY=%s\n", c.Key)
	}
	_, _ = fmt.Fprintf(out, "KEY_HASH=%s\n", c.Hash)
	_, _ = fmt.Fprintf(out, "KEY_PREVIEW=%s\n", c.Preview)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("apikey-gen", flag.ContinueOnError)
	keyFlag := fs.String("key", "", "hash an existing secret instead of generating one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	creds, err := buildCredentials(*keyFlag)
	if err != nil {
		return err
	}
	printCredentials(out, creds, *keyFlag == "")
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fatalfFn("apikey-gen: %v", err)
	}
}
