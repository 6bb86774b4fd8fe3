package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/spounge-ai/brainstormity/internal/infra/auth"
	"github.com/spounge-ai/brainstormity/internal/validation"
)

const (
	exitOK    = 0
	exitUsage = 2
	exitError = 1
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	client := fs.StringP("client", "n", "frontend", "Client name the key is issued to")
	prefix := fs.StringP("prefix", "p", "bst_prod_", "Token prefix")
	count := fs.IntP("count", "c", 1, "Number of keys to generate")
	asYAML := fs.Bool("yaml", false, "Print a seed file snippet instead of plain keys")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: keygen [options]

Description:
  Generate API keys offline. Plain output prints one key per line;
  --yaml prints a registry.seed_file document the server loads at startup.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  keygen                                  One key for "frontend"
  keygen --client mobile --count 3        Three keys for "mobile"
  keygen --client mobile --yaml > keys.yaml

`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	if *count < 1 {
		fmt.Fprintln(stderr, "Error: --count must be at least 1")
		return exitUsage
	}

	v, err := validation.NewRequestValidator(0)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if err := v.ValidateClientLabel(*client); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	entries := make([]auth.SeedEntry, 0, *count)
	for i := 0; i < *count; i++ {
		token, err := auth.GenerateToken(*prefix)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		entries = append(entries, auth.SeedEntry{ClientName: *client, Token: token})
	}

	if *asYAML {
		data, err := auth.MarshalSeedFile(entries)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		_, _ = stdout.Write(data)
		return exitOK
	}

	for _, e := range entries {
		fmt.Fprintf(stdout, "Generated API Key: %s\n", e.Token)
	}
	fmt.Fprintf(stderr, "Add the key(s) to registry.seed_file under client %q, or issue keys at runtime via POST /admin/generate-api-key\n", *client)
	return exitOK
}
