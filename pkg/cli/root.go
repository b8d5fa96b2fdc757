package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the stubdb command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "stubdb",
		Short: "stubdb serves canned HTTP responses backed by pipe-delimited datasets",
		Long: `stubdb matches each request against an ordered list of mappings and answers
with a templated response. Response bodies can pull rows from datasets,
values captured from the request, and dynamic markers such as {{uuid}}.

Configuration comes from defaults, a YAML config file, STUBDB_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Config file path (env STUBDB_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(
		newServeCommand(g),
		newValidateCommand(g),
		newLookupCommand(g),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and exits with status 1 on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
