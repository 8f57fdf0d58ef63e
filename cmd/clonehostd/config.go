package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/clonehost/clonehost/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			return nil
		},
	}
}

// configTemplate keeps the generated file human-editable, with the
// optional sections present but commented out.
const configTemplate = `bind: %s
base_url: %s
master_token: "%s"

database:
  path: %s

# telegram:
#   timeout: 30s

# reporter:
#   schedule: "0 * * * *"

# telemetry:
#   otlp_endpoint: http://localhost:4318
`

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				}
			}

			var (
				bind        = "127.0.0.1:8080"
				baseURL     string
				masterToken string
				dbPath      = "clonehost.db"
			)

			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Master bot token").
					Description("Create a bot with @BotFather and paste its token.").
					EchoMode(huh.EchoModePassword).
					Validate(requireNonEmpty("master token")).
					Value(&masterToken),
				huh.NewInput().
					Title("Public base URL").
					Description("HTTPS origin Telegram can reach, e.g. https://bots.example.com").
					Validate(requireNonEmpty("base URL")).
					Value(&baseURL),
				huh.NewInput().
					Title("Listen address").
					Value(&bind),
				huh.NewInput().
					Title("Database path").
					Value(&dbPath),
			))
			if err := form.Run(); err != nil {
				return err
			}

			cfg := &config.Config{
				Bind:        bind,
				BaseURL:     baseURL,
				MasterToken: masterToken,
			}
			cfg.Database.Path = dbPath
			cfg.Defaults()
			if err := config.Validate(cfg); err != nil {
				return err
			}

			content := fmt.Sprintf(configTemplate, bind, baseURL, masterToken, dbPath)
			if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "clonehost.yaml", "Output path")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func requireNonEmpty(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
