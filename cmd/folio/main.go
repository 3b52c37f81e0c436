// folio runs the portfolio API and its maintenance commands.
//
//	folio [serve]          run the HTTP server (default)
//	folio check-profiles   list accounts with plaintext profile data
//	folio encrypt-profiles move plaintext profile data into encrypted columns
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/folio/internal/folio/app"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var configDir, env string

	flagSet := pflag.NewFlagSet("folio", pflag.ContinueOnError)
	flagSet.StringVar(&configDir, "config", ".", "directory holding <env>.yaml")
	flagSet.StringVar(&env, "env", os.Getenv("ENV"), "environment name, selects <env>.yaml (default: dev)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	command := "serve"
	if args := flagSet.Args(); len(args) > 0 {
		command = args[0]
		if len(args) > 1 {
			return fmt.Errorf("unexpected argument: %s", args[1])
		}
	}

	cfg, err := app.LoadConfig(configDir, env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	switch command {
	case "serve":
		return application.Run()
	case "check-profiles":
		defer application.Close()
		return checkProfiles(context.Background(), application)
	case "encrypt-profiles":
		defer application.Close()
		return encryptProfiles(context.Background(), application)
	default:
		_ = application.Close()
		return fmt.Errorf("unknown command %q", command)
	}
}

func checkProfiles(ctx context.Context, application *app.Application) error {
	report, err := application.Profiles().CheckLegacy(ctx)
	if err != nil {
		return err
	}
	if len(report.Accounts) == 0 {
		fmt.Println("No plaintext profile data found.")
		return nil
	}

	fmt.Printf("%d account(s) hold plaintext profile data:\n", len(report.Accounts))
	for _, a := range report.Accounts {
		fmt.Printf("  %s (%s) bio=%t publicEmail=%t\n", a.Username, a.AccountID, a.HasBio, a.HasPublicEmail)
	}
	fmt.Println("Run `folio encrypt-profiles` to encrypt them.")
	return nil
}

func encryptProfiles(ctx context.Context, application *app.Application) error {
	res, err := application.Profiles().EncryptLegacy(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Encrypted %d field(s), discarded %d stale plaintext value(s), %d account(s) failed.\n",
		res.Encrypted, res.Discarded, res.Failed)
	if res.Failed > 0 {
		return fmt.Errorf("%d account(s) could not be migrated", res.Failed)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `folio - developer portfolio API.

Usage:
  folio [flags] [serve|check-profiles|encrypt-profiles]

Configuration is read from <config>/<env>.yaml when present, then from the
environment (FOLIO_ prefixed keys, e.g. FOLIO_JWT__ACCESSSECRET, and the
flat names JWT_SECRET, JWT_REFRESH_SECRET, ENCRYPTION_KEY, ADMIN_EMAILS, PORT).

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
