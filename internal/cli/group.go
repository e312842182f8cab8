package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/service/splacement"
)

var (
	groupOutput     string
	groupEntryAfter string
)

func init() {
	rootCmd.AddCommand(groupCmd, groupEntryCmd)
	groupCmd.AddCommand(groupAddCmd, groupListCmd)
	groupListCmd.Flags().StringVarP(&groupOutput, "output", "o", FormatTable, "output format: table, json or yaml")

	groupEntryCmd.AddCommand(groupEntryAddCmd)
	groupEntryAddCmd.Flags().StringVar(&groupEntryAfter, "after", "", "place the new entry right after this entity instead of at the end")
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		id := idwrap.NewNow()
		if err := svc.Writer.CreateGroup(ctx, id, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		groups, err := svc.Reader.ListGroups(ctx)
		if err != nil {
			return err
		}
		type row struct {
			ID   idwrap.IDWrap `json:"id" yaml:"id"`
			Name string        `json:"name" yaml:"name"`
		}
		out := make([]row, len(groups))
		rows := make([]table.Row, len(groups))
		for i, g := range groups {
			out[i] = row{ID: g.ID, Name: g.Name}
			rows[i] = table.Row{g.ID, g.Name}
		}
		return render(cmd.OutOrStdout(), groupOutput, out, table.Row{"ID", "Name"}, rows)
	},
}

var groupEntryCmd = &cobra.Command{
	Use:   "group-entry",
	Short: "Manage the entries of a group",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var groupEntryAddCmd = &cobra.Command{
	Use:   "add <group> <entity>",
	Short: "Add an entity to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		groupID, err := resolveGroup(ctx, svc, args[0])
		if err != nil {
			return err
		}
		entityID, err := resolveEntity(ctx, svc, args[1])
		if err != nil {
			return err
		}
		req := splacement.InsertRequest{
			Container: mcontainer.Ref{Kind: mcontainer.KindGroupEntries, ID: groupID},
			Member:    mcontainer.Member{ID: entityID},
		}
		if groupEntryAfter != "" {
			after, err := resolveMember(ctx, svc, req.Container, groupEntryAfter)
			if err != nil {
				return err
			}
			req.After = &after.Member
		}

		key, err := svc.Placement.Insert(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added at %d\n", key)
		return nil
	},
}
