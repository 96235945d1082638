package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/wire"
)

// ReallocCmd returns the realloc command
func ReallocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realloc",
		Short: "Reallocation history",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the latest reallocation of each chassis still in production",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			sortCol, _ := cmd.Flags().GetString("sort")
			desc, _ := cmd.Flags().GetBool("desc")

			svc, err := openDashboard(NewContext())
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.DashboardAdapter(svc).Reallocations(primary.ReallocationQuery{
				Search:     search,
				SortColumn: sortCol,
				Descending: desc,
			})
			return err
		},
	}
	list.Flags().StringP("search", "s", "", "Search customer, model, dealers, issue and chassis")
	list.Flags().String("sort", "", "Sort column (chassis, customer, model, originalDealer, reallocatedTo, regentProduction, issue, submitTime)")
	list.Flags().Bool("desc", false, "Sort descending")

	cmd.AddCommand(list)
	return cmd
}
