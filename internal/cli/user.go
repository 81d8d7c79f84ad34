package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and roles",
		Long:  "Create, list and manage users. Users are deactivated, never deleted.",
	}

	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userShowCmd())
	cmd.AddCommand(userUpdateCmd())
	cmd.AddCommand(userRoleCmd())
	cmd.AddCommand(userPasswdCmd())
	cmd.AddCommand(userToggleCmd("deactivate", "Deactivate a user", func(ctx context.Context, id string) error {
		return wire.UserService().DeactivateUser(ctx, id)
	}))
	cmd.AddCommand(userToggleCmd("activate", "Reactivate a user", func(ctx context.Context, id string) error {
		return wire.UserService().ActivateUser(ctx, id)
	}))
	return cmd
}

func userListCmd() *cobra.Command {
	var role string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			users, err := wire.UserService().ListUsers(ctx, primary.UserFilters{Role: role, IncludeInactive: all})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Println("No users found")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tACTIVE\tNAME")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\n", u.ID, u.Username, u.Role, u.IsActive, u.FullName)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&role, "role", "", "Filter by role")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive users")
	return cmd
}

func userCreateCmd() *cobra.Command {
	var req primary.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a user",
		Long: `Create a user with one of the roles auditor, supervisor, auditor_campo, auditado.

Examples:
  auditplus user create mgonzalez --name "María González" --role supervisor --password s3cret!`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.Username = args[0]
			user, err := wire.UserService().CreateUser(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Printf("✓ Created user %s: %s (%s)\n", user.ID, user.Username, user.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Role, "role", "", "Role (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (required)")
	return cmd
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show user details",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			u, err := wire.UserService().GetUser(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}
			fmt.Printf("\nUser:     %s (%s)\n", u.Username, u.ID)
			fmt.Printf("Name:     %s\n", u.FullName)
			if u.Email != "" {
				fmt.Printf("Email:    %s\n", u.Email)
			}
			fmt.Printf("Role:     %s\n", u.Role)
			fmt.Printf("Active:   %v\n", u.IsActive)
			fmt.Printf("Created:  %s\n\n", u.CreatedAt)
			return nil
		}),
	}
}

func userUpdateCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "update [user-id]",
		Short: "Update a user's name and email",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			err := wire.UserService().UpdateProfile(ctx, primary.UpdateProfileRequest{
				UserID:   args[0],
				FullName: name,
				Email:    email,
			})
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			fmt.Printf("✓ User %s updated\n", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func userRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role [user-id] [role]",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.UserService().ChangeRole(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to change role: %w", err)
			}
			fmt.Printf("✓ User %s is now %s\n", args[0], args[1])
			return nil
		}),
	}
}

func userPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd [user-id] [new-password]",
		Short: "Reset a user's password",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.UserService().ResetPassword(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to reset password: %w", err)
			}
			fmt.Printf("✓ Password of %s reset\n", args[0])
			return nil
		}),
	}
}

func userToggleCmd(use, short string, op func(ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [user-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := op(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to %s user: %w", use, err)
			}
			fmt.Printf("✓ User %s %sd\n", args[0], use)
			return nil
		}),
	}
}
