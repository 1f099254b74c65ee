package cmd

import (
	"github.com/spf13/cobra"

	"golang-papertrade/internal/delivery/console"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		appDep, err := NewAppDependency(cmd.Context())
		if err != nil {
			return err
		}
		defer appDep.Close()

		console.New(cmd.OutOrStdout()).PrintStrategies(appDep.service.Strategies.List())
		return nil
	},
}
