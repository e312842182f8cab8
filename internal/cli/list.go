package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listOutput string
	listAll    bool
)

func init() {
	rootCmd.AddCommand(listCmd, renumberCmd)
	listCmd.Flags().StringVarP(&listOutput, "output", "o", FormatTable, "output format: table, json or yaml")
	listCmd.Flags().BoolVar(&listAll, "all", false, "include archived members")
}

var listCmd = &cobra.Command{
	Use:   "list <container>",
	Short: "List the members of a container in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		ref, err := resolveContainer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		listed, err := svc.Reader.List(ctx, ref, listAll)
		if err != nil {
			return err
		}
		rows := make([]table.Row, len(listed))
		for i, l := range listed {
			rows[i] = table.Row{itoa(i), l.Label, l.Form, l.Key, yesNo(l.Archived), l.ID}
		}
		header := table.Row{"#", "Label", "Form", "Key", "Archived", "ID"}
		return render(cmd.OutOrStdout(), listOutput, listed, header, rows)
	},
}

var renumberCmd = &cobra.Command{
	Use:   "renumber <container>",
	Short: "Respace the sort keys of a container evenly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		ref, err := resolveContainer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		return svc.Placement.Renumber(ctx, ref)
	},
}
