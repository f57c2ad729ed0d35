package main

import (
	"os"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/spf13/cobra"
)

// BootstrapCmd creates the first super admin.
func BootstrapCmd() *cobra.Command {
	var (
		token string
		req   tasksdk.BootstrapRequest
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first super admin",
		Long:  "Create the first super admin of an empty deployment. The server must be started with BOOTSTRAP_TOKEN set to the same value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			resp, err := tasksdk.NewClient(baseURL).Bootstrap(ctx, token, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", os.Getenv("BOOTSTRAP_TOKEN"), "Bootstrap token (defaults to BOOTSTRAP_TOKEN)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Super admin email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Super admin password (required)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "Super", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "Admin", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
