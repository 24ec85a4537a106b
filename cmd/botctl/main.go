// botctl — operator CLI for the translation bot: seeds defaults, exports and
// imports the bot configuration as YAML, and edits the word blocklist without
// going through chat.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/onnwee/lingua-bot/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Operator CLI for the translation bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSeedCmd(),
		newConfigCmd(),
		newBlockCmd(),
		newUnblockCmd(),
	)
	return root
}

// connect opens the database the same way the bot does, honoring .env.
func connect() (*sql.DB, context.Context, context.CancelFunc, error) {
	_ = godotenv.Load(".env")
	database, err := db.Connect()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	return database, ctx, cancel, nil
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run migrations and seed default configuration and templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, ctx, cancel, err := connect()
			if err != nil {
				return err
			}
			defer cancel()
			defer func() { _ = database.Close() }()

			if err := db.Migrate(ctx, database); err != nil {
				return err
			}
			if err := db.EnsureSeeded(ctx, database); err != nil {
				return err
			}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				cfg := db.DefaultBotConfig()
				if err := yaml.Unmarshal(raw, cfg); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
				if err := db.SaveBotConfig(ctx, database, cfg); err != nil {
					return err
				}
				fmt.Printf("applied configuration from %s\n", file)
				return nil
			}
			fmt.Println("seeded defaults")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML configuration to apply over the defaults")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or import the bot configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Print the stored configuration as YAML",
			RunE: func(cmd *cobra.Command, args []string) error {
				database, ctx, cancel, err := connect()
				if err != nil {
					return err
				}
				defer cancel()
				defer func() { _ = database.Close() }()

				cfg, err := db.LoadBotConfig(ctx, database)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Replace the stored configuration from a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				var cfg db.BotConfig
				if err := yaml.Unmarshal(raw, &cfg); err != nil {
					return fmt.Errorf("parse %s: %w", args[0], err)
				}
				database, ctx, cancel, err := connect()
				if err != nil {
					return err
				}
				defer cancel()
				defer func() { _ = database.Close() }()

				if err := db.SaveBotConfig(ctx, database, &cfg); err != nil {
					return err
				}
				fmt.Printf("imported configuration from %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <word>",
		Short: "Add a word to the translation blocklist",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return toggleWord(args[0], true) },
	}
}

func newUnblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <word>",
		Short: "Remove a word from the translation blocklist",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return toggleWord(args[0], false) },
	}
}

func toggleWord(word string, block bool) error {
	database, ctx, cancel, err := connect()
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = database.Close() }()

	cfg, err := db.LoadBotConfig(ctx, database)
	if err != nil {
		return err
	}
	word = strings.ToLower(strings.TrimSpace(word))
	var changed bool
	if block {
		changed = cfg.BlockWord(word)
	} else {
		changed = cfg.UnblockWord(word)
	}
	if !changed {
		fmt.Println("no change")
		return nil
	}
	if err := db.SaveBotConfig(ctx, database, cfg); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
