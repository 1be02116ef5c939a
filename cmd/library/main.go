package main

import (
	"fmt"
	stdLog "log"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/Astemirdum/library-circulation/library/app"
	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Print("no .env file, using process environment")
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool
	loadConfig := func() (*config.Config, error) {
		opts := []config.Option{config.WithWriteTimeout(time.Minute)}
		if debug {
			opts = append(opts, config.WithLogLevel(zapcore.DebugLevel))
		}
		return config.NewConfig(opts...)
	}

	root := &cobra.Command{
		Use:          "library",
		Short:        "Library circulation service",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return app.Run(cfg)
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|status|version]",
			Short:     "Run schema migrations",
			Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"up", "down", "status", "version"},
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				command := "up"
				if len(args) == 1 {
					command = args[0]
				}
				return app.Migrate(cfg, command)
			},
		},
		&cobra.Command{
			Use:   "search-sync",
			Short: "Apply book events from Kafka to the search index",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return app.RunSearchSync(cfg)
			},
		},
		userCmd(loadConfig),
	)
	return root
}

func userCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var username, role string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			id, err := app.AddUser(cfg, username, password, auth.Role(role))
			if err != nil {
				return err
			}
			cmd.Printf("created %s user %q (id %d)\n", role, username, id)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "login name")
	add.Flags().StringVar(&role, "role", string(auth.RoleLibrarian), "admin or librarian")
	_ = add.MarkFlagRequired("username")

	user := &cobra.Command{Use: "user", Short: "Manage staff accounts"}
	user.AddCommand(add)
	return user
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	cmd.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
