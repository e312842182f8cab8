package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/onemodel/ordinal/pkg/idwrap"
)

var (
	entityOutput  string
	entityRestore bool
)

func init() {
	rootCmd.AddCommand(entityCmd)
	entityCmd.AddCommand(entityAddCmd, entityArchiveCmd, entityListCmd)
	entityArchiveCmd.Flags().BoolVar(&entityRestore, "restore", false, "unarchive instead")
	entityListCmd.Flags().StringVarP(&entityOutput, "output", "o", FormatTable, "output format: table, json or yaml")
}

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage entities",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var entityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		id := idwrap.NewNow()
		if err := svc.Writer.CreateEntity(ctx, id, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var entityArchiveCmd = &cobra.Command{
	Use:   "archive <entity>",
	Short: "Hide an entity from every group it is in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		id, err := resolveEntity(ctx, svc, args[0])
		if err != nil {
			return err
		}
		return svc.Writer.SetEntityArchived(ctx, id, !entityRestore)
	},
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		entities, err := svc.Reader.ListEntities(ctx)
		if err != nil {
			return err
		}
		type row struct {
			ID       idwrap.IDWrap `json:"id" yaml:"id"`
			Name     string        `json:"name" yaml:"name"`
			Archived bool          `json:"archived" yaml:"archived"`
		}
		out := make([]row, len(entities))
		rows := make([]table.Row, len(entities))
		for i, e := range entities {
			out[i] = row{ID: e.ID, Name: e.Name, Archived: e.Archived}
			rows[i] = table.Row{e.ID, e.Name, yesNo(e.Archived)}
		}
		return render(cmd.OutOrStdout(), entityOutput, out, table.Row{"ID", "Name", "Archived"}, rows)
	},
}
