package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/service/splacement"
)

var (
	moveBack        bool
	moveBy          string
	moveWindowStart int
	moveWindowSize  int
	moveRow         int
	moveKeepWindow  bool
)

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().BoolVar(&moveBack, "back", false, "move toward the start of the list")
	moveCmd.Flags().StringVar(&moveBy, "by", "1", "places to move: a count, farther or farthest")
	moveCmd.Flags().IntVar(&moveWindowStart, "window-start", 0, "index of the first row currently shown")
	moveCmd.Flags().IntVar(&moveWindowSize, "window-size", 0, "rows shown at once (default view.window_size)")
	moveCmd.Flags().IntVar(&moveRow, "row", 0, "row of the member within the window")
	moveCmd.Flags().BoolVar(&moveKeepWindow, "keep-window", false, "leave the window where it is")
}

var moveCmd = &cobra.Command{
	Use:   "move <container> <member>",
	Short: "Move a member up or down its list",
	Long: `Move a member of a container a number of visible places forward (the
default) or back. The container is group:<name> or entity:<name>. The new
window start is printed so a caller can keep the member in view.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := CreateServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		distance, err := svc.Config.distance(moveBy)
		if err != nil {
			return err
		}
		windowSize := moveWindowSize
		if windowSize == 0 {
			windowSize = svc.Config.View.WindowSize
		}

		ref, err := resolveContainer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		member, err := resolveMember(ctx, svc, ref, args[1])
		if err != nil {
			return err
		}

		res, err := svc.Placement.Move(ctx, splacement.MoveRequest{
			Container: ref,
			MoveRequest: placement.MoveRequest{
				Moving:        member.Member,
				Reference:     &member.Member,
				Distance:      distance,
				Forward:       !moveBack,
				Viewport:      placement.Viewport{Start: moveWindowStart, Size: windowSize},
				RelativeIndex: moveRow,
				KeepWindow:    moveKeepWindow,
			},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !res.Moved {
			fmt.Fprintf(out, "%s has nowhere to move\n", member.Label)
			return nil
		}
		fmt.Fprintf(out, "moved %s %d places to %d, window starts at %d\n",
			member.Label, res.ActualDistance, res.NewKey, res.WindowStart)
		if res.Renumbered {
			fmt.Fprintln(out, "list was renumbered to make room")
		}
		return nil
	},
}
