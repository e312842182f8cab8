package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/service/splacement"
)

var (
	attrForm  string
	attrAfter string
)

func init() {
	rootCmd.AddCommand(attrCmd)
	attrCmd.AddCommand(attrAddCmd)
	attrAddCmd.Flags().StringVar(&attrForm, "form", mcontainer.FormText.String(), "attribute form, e.g. text, quantity, date, relation-to-group")
	attrAddCmd.Flags().StringVar(&attrAfter, "after", "", "place the new attribute right after this one instead of at the end")
}

var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Manage the attributes of an entity",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var attrAddCmd = &cobra.Command{
	Use:   "add <entity> <label>",
	Short: "Add an attribute to an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		form, err := mcontainer.ParseForm(attrForm)
		if err != nil {
			return err
		}
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		entityID, err := resolveEntity(ctx, svc, args[0])
		if err != nil {
			return err
		}
		req := splacement.InsertRequest{
			Container: mcontainer.Ref{Kind: mcontainer.KindEntityAttributes, ID: entityID},
			Member:    mcontainer.Member{ID: idwrap.NewNow(), Form: form},
			Label:     args[1],
		}
		if attrAfter != "" {
			after, err := resolveMember(ctx, svc, req.Container, attrAfter)
			if err != nil {
				return err
			}
			req.After = &after.Member
		}

		key, err := svc.Placement.Insert(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s added at %d\n", req.Member.ID, key)
		return nil
	},
}
