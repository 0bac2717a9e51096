// Package cli implements the cpctl command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-cpapi"
	"github.com/lexfrei/go-cpapi/observability"
)

// shutdownTimeout bounds the discard and logout made on exit.
const shutdownTimeout = 30 * time.Second

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// options holds global flags and the resolved configuration shared by all
// subcommands.
type options struct {
	configFile string
	server     string
	user       string
	password   string
	insecure   bool
	jsonOutput bool
	verbose    bool

	cfg Config
}

// NewRootCmd builds the cpctl command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "cpctl [command] [flags]",
		Short: "cpctl - a command line client for firewall management servers",
		Long: `cpctl talks to a Check Point style management API over HTTPS.

Every command opens its own session, and discards unpublished changes and
logs out on exit unless it publishes them itself.

Examples:
  # Publish changes made in other sessions of this user
  cpctl publish

  # Verify and install every policy package
  cpctl install-policy

  # Remove unused objects, showing what would go first
  cpctl delete-unused --dry-run

  # Call any API method
  cpctl call show-hosts --set limit=10`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: o.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "Path to configuration file to override default")
	flags.StringVarP(&o.server, "server", "s", "", "Management server host[:port]")
	flags.StringVarP(&o.user, "user", "u", "", "Administrator name")
	flags.StringVarP(&o.password, "password", "p", "", "Administrator password")
	flags.BoolVar(&o.insecure, "insecure", true, "Skip server certificate verification")
	flags.BoolVarP(&o.jsonOutput, "json", "j", false, "Output in JSON format")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log API traffic to stderr")

	cmd.AddCommand(
		newPublishCmd(o),
		newTaskCmd(o),
		newInstallPolicyCmd(o),
		newDeleteUnusedCmd(o),
		newCallCmd(o),
		newVersionCmd(o),
	)

	return cmd
}

// Execute runs cpctl and returns the process exit code.
func Execute(ctx context.Context) int {
	return run(ctx, NewRootCmd())
}

// run executes cmd and reports a failure on the command's own writers.
func run(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	jsonOutput, _ := cmd.PersistentFlags().GetBool("json")
	if jsonOutput {
		_ = newPrinter(cmd.OutOrStdout(), true).printJSON(map[string]string{"error": err.Error()})
	} else {
		errorLabel.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	return 1
}

// load resolves the configuration: defaults, then the config file, then
// .env and CPCTL_* variables, then flags.
func (o *options) load(cmd *cobra.Command, _ []string) error {
	file, optional := o.configFile, false
	if file == "" {
		var err error
		if file, err = DefaultConfigPath(); err != nil {
			return err
		}
		optional = true
	}

	cfg, err := LoadConfig(file, optional)
	if err != nil {
		return err
	}

	_ = godotenv.Load() // no error if .env doesn't exist
	cfg.ApplyEnv(os.LookupEnv)

	if o.server != "" {
		cfg.Server = o.server
	}
	if o.user != "" {
		cfg.User = o.user
	}
	if o.password != "" {
		cfg.Password = o.password
	}
	if cmd.Flags().Changed("insecure") {
		cfg.InsecureSkipVerify = o.insecure
	}

	o.cfg = cfg

	return nil
}

// connect creates a client and logs in. The caller must Shutdown the client.
func (o *options) connect(cmd *cobra.Command) (*cpapi.Client, error) {
	client, err := cpapi.NewWithConfig(o.cfg.ClientConfig(o.logger(cmd.ErrOrStderr())))
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	description := o.cfg.SessionDescription
	if description == "" {
		description = sessionDescription()
	}

	if err := client.Login(cmd.Context(), description); err != nil {
		shutdown(cmd, client)
		return nil, err
	}

	return client, nil
}

// shutdown discards and logs out even when the command context was canceled.
func shutdown(cmd *cobra.Command, client *cpapi.Client) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
	defer cancel()

	client.Shutdown(ctx)
}

//nolint:ireturn // Returns the observability interface the client expects
func (o *options) logger(w io.Writer) observability.Logger {
	level := zerolog.WarnLevel
	if o.verbose {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().
		Logger()

	return observability.NewZerologLogger(zl)
}

func (o *options) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), o.jsonOutput)
}

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cpctl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.jsonOutput {
				return o.printer(cmd).printJSON(map[string]string{"version": version})
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cpctl %s\n", version)
			return errors.Wrap(err, "failed to write output")
		},
	}
}
