package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/db"
	"github.com/example/dealerops/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the dealerops database and config",
		Long: `Initialize .dealerops/ under the base directory (default: home):
writes config.json when missing and creates the database schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")
			dir := wire.BaseDir()

			if _, err := os.Stat(config.Path(dir)); errors.Is(err, os.ErrNotExist) {
				if err := config.SaveConfig(dir, config.Default()); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", config.Path(dir))
			}

			database := wire.Database()
			path, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			fmt.Printf("✓ Database ready at %s\n", path)

			if seed {
				if err := db.SeedFixtures(database); err != nil {
					return fmt.Errorf("failed to seed fixtures: %w", err)
				}
				fmt.Println("✓ Development fixtures loaded")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  dealerops import export.json")
			fmt.Println("  dealerops dispatch list")
			return nil
		},
	}
	cmd.Flags().Bool("seed", false, "Load development fixtures")
	return cmd
}
