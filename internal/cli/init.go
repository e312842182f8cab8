package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and create the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		err := viper.SafeWriteConfigAs(cfgFilePath)
		var exists viper.ConfigFileAlreadyExistsError
		switch {
		case errors.As(err, &exists):
			fmt.Fprintf(out, "config file %s already exists\n", cfgFilePath)
		case err != nil:
			return fmt.Errorf("write config: %w", err)
		default:
			fmt.Fprintf(out, "wrote config file %s\n", cfgFilePath)
		}

		svc, err := CreateServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()
		fmt.Fprintf(out, "database ready in %s\n", svc.Config.DB.Path)
		return nil
	},
}
