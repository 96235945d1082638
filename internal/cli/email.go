package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/wire"
)

// EmailCmd returns the email command
func EmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Mismatch report email settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test report to check the EmailJS credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := wire.Notifier()
			if n == nil {
				return fmt.Errorf("emailjs is not configured: set service_id, template_id and public_key in config.json")
			}
			if err := n.SendTestEmail(NewContext()); err != nil {
				return err
			}
			fmt.Println("✓ Test email sent")
			return nil
		},
	})
	return cmd
}
