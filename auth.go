package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatbuf/config"
)

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API keys",
	}

	auth.AddCommand(&cobra.Command{
		Use:   "set <service> <api-key>",
		Short: "Store the API key for a service (openai, openrouter, anthropic)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(cfg *config.Config, store *config.CredentialStore) error {
				if err := store.Set(args[0], strings.TrimSpace(args[1])); err != nil {
					return err
				}
				if err := store.Save(cfg.DataDir()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s (%s)\n", args[0], store.GetMethod())
				return nil
			})
		},
	})

	auth.AddCommand(&cobra.Command{
		Use:   "delete <service>",
		Short: "Remove the stored API key for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(cfg *config.Config, store *config.CredentialStore) error {
				if err := store.Delete(args[0]); err != nil {
					return err
				}
				if err := store.Save(cfg.DataDir()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed API key for %s\n", args[0])
				return nil
			})
		},
	})

	auth.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List services with a stored or exported API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(cfg *config.Config, store *config.CredentialStore) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Storage: %s\n", store.GetMethod())

				services := store.Services()
				if len(services) == 0 {
					fmt.Fprintln(out, "No stored keys")
				}
				for _, service := range services {
					fmt.Fprintf(out, "  %-12s %s\n", service, maskKey(store.Get(service)))
				}
				for _, service := range []string{"openai", "openrouter", "anthropic"} {
					env := config.EnvVarForService(service)
					if os.Getenv(env) != "" {
						fmt.Fprintf(out, "  %-12s set by %s (takes precedence)\n", service, env)
					}
				}
				return nil
			})
		},
	})

	return auth
}

// withStore loads the config and refuses to touch a credential store that
// could not be read, so a save never overwrites keys it failed to decrypt.
func withStore(fn func(*config.Config, *config.CredentialStore) error) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	store := cfg.CredentialStore
	if err := store.Load(cfg.DataDir()); err != nil {
		return fmt.Errorf("failed to read stored credentials: %w", err)
	}
	return fn(cfg, store)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}
