package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Construct every configured formatter and report errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := loadConfig(cmd)
			if err != nil {
				a.log.Error().Err(err).Msg("cannot load configuration")
				return err
			}

			names := loader.Names()
			if len(names) == 0 {
				err := errors.New("no formatters defined")
				a.log.Error().Err(err).Send()
				return err
			}
			_, err = loader.Formatters()
			for _, e := range multierr.Errors(err) {
				a.log.Error().Err(e).Msg("invalid formatter")
			}
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintf(a.out, "ok %s\n", name)
			}
			a.log.Debug().Int("formatters", len(names)).Msg("configuration valid")
			return nil
		},
	}
}
