package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/authgate/auth/password"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/version"
)

type rootFlags struct {
	configFile string
	envFile    string
}

func (f *rootFlags) loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	return opts
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "authgate",
		Short: "Token-issuing authentication gateway",
		Long: `authgate registers users, verifies credentials and issues signed,
time-limited access tokens. Running it without a subcommand starts the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags.loaderOptions())
		},
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config.yml (default: search standard locations)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to a .env file (default: search standard locations)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), flags.loaderOptions())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				info := version.Get()
				fmt.Fprintf(cmd.OutOrStdout(), "authgate %s (%s)\n", info, info.GoVersion)
			},
		},
		newHashPasswordCmd(flags),
	)
	return root
}

// newHashPasswordCmd hashes a password read from stdin with the configured
// algorithm, for seeding stores by hand.
func newHashPasswordCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.loaderOptions()...)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			plain, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := password.NewHasher(cfg.Auth.Password).Hash(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
