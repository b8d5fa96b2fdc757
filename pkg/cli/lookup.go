package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/stubdb/pkg/dbset"
)

// ErrNotFound is returned by lookup when the dataset, row or field is missing.
var ErrNotFound = errors.New("not found")

func newLookupCommand(g *globalFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "lookup <dataset> <key> [field]",
		Short: "Print a dataset row or one of its fields",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dbsets") {
				cfg.DBSets = dir
			}

			store, err := dbset.Load(cmd.Context(), cfg.Resolve(cfg.DBSets), dbset.WithPattern(cfg.DBSetPattern))
			if err != nil {
				return err
			}

			name, key := args[0], args[1]
			out := cmd.OutOrStdout()
			if len(args) == 3 {
				v, ok := store.Lookup(name, key, args[2])
				if !ok {
					return fmt.Errorf("%w: %s:%s:%s", ErrNotFound, name, key, args[2])
				}
				fmt.Fprintln(out, v)
				return nil
			}

			t, ok := store.Table(name)
			if !ok {
				return fmt.Errorf("%w: dataset %s", ErrNotFound, name)
			}
			row, ok := t.Row(key)
			if !ok {
				return fmt.Errorf("%w: %s:%s", ErrNotFound, name, key)
			}
			data, err := yaml.Marshal(row)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dbsets", "d", "", "Dataset directory")
	return cmd
}
