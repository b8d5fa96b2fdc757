package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/stubdb/pkg/config"
	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/resolver"
)

func newValidateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, mappings and datasets without serving",
		Long: `Load the configuration, compile every mapping and read every dataset,
then report what was found. Nothing is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg).Err(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}

			set, err := cfg.LoadMappings()
			if err != nil {
				return err
			}
			res, err := resolver.New(set)
			if err != nil {
				return err
			}

			store, err := dbset.Load(cmd.Context(), cfg.Resolve(cfg.DBSets), dbset.WithPattern(cfg.DBSetPattern))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d mappings\n", res.Len())
			for _, t := range store.Tables() {
				fmt.Fprintf(out, "dataset %s: %d rows (%s)\n", t.Name(), t.Len(), t.File())
			}
			fmt.Fprintln(out, "configuration is valid")
			return nil
		},
	}
}
