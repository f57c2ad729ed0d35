package main

import (
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/spf13/cobra"
)

// RegisterOrgCmd registers an organization with its first admin.
func RegisterOrgCmd() *cobra.Command {
	var req tasksdk.RegisterOrganizationRequest

	cmd := &cobra.Command{
		Use:   "register-org",
		Short: "Register an organization and its admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			_, resp, err := tasksdk.NewClient(baseURL).RegisterOrganization(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&req.OrganizationName, "name", "", "Organization name (required)")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "Organization slug (derived from the name when empty)")
	cmd.Flags().StringVar(&req.Type, "type", "company", "Organization type")
	cmd.Flags().StringVar(&req.AdminEmail, "admin-email", "", "Admin email (required)")
	cmd.Flags().StringVar(&req.AdminPassword, "admin-password", "", "Admin password (required)")
	cmd.Flags().StringVar(&req.AdminFirstName, "admin-first-name", "Org", "Admin first name")
	cmd.Flags().StringVar(&req.AdminLastName, "admin-last-name", "Admin", "Admin last name")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("admin-email")
	_ = cmd.MarkFlagRequired("admin-password")

	return cmd
}
