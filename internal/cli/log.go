package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/wire"
)

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the audit trail of operator writes",
	}

	list := &cobra.Command{
		Use:   "list [entity-id]",
		Short: "Show recent audit entries (default 50)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entityType, _ := cmd.Flags().GetString("type")
			actorID, _ := cmd.Flags().GetString("actor")
			action, _ := cmd.Flags().GetString("action")
			if limit <= 0 {
				limit = 50
			}

			filters := primary.LogFilters{
				EntityType: entityType,
				ActorID:    actorID,
				Action:     action,
				Limit:      limit,
			}
			if len(args) > 0 {
				filters.EntityID = args[0]
			}

			_, err := wire.LogAdapter().List(NewContext(), filters)
			return err
		},
	}
	list.Flags().IntP("limit", "n", 50, "Maximum entries")
	list.Flags().String("type", "", "Entity type (dispatch, stocksheet, dispatchError)")
	list.Flags().String("actor", "", "Actor id")
	list.Flags().String("action", "", "create, update or delete")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than --days (default 30)",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = 30
			}
			_, err := wire.LogAdapter().Prune(NewContext(), days)
			return err
		},
	}
	prune.Flags().Int("days", 30, "Age threshold in days")

	cmd.AddCommand(list, prune)
	return cmd
}
