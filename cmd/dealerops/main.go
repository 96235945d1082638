package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/cli"
	"github.com/example/dealerops/internal/version"
	"github.com/example/dealerops/internal/wire"
)

func main() {
	var dir, actor string

	rootCmd := &cobra.Command{
		Use:     "dealerops",
		Short:   "dealerops - dealer dispatch operations console",
		Version: version.String(),
		Long: `dealerops classifies vehicles awaiting dispatch against their reallocation
history, lets operators hold, comment and schedule pickups, and keeps the
manually curated stock sheet.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.ApplyBaseDir(dir)
			cli.DetectAndStoreActor(actor)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Base directory holding .dealerops/ (default: home)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Operator id recorded on writes (default: $USER)")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.DispatchCmd())
	rootCmd.AddCommand(cli.ReallocCmd())
	rootCmd.AddCommand(cli.StockCmd())
	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.EmailCmd())

	err := rootCmd.Execute()
	wire.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
