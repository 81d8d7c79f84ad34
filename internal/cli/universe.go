package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// UniverseCmd returns the universe command
func UniverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Manage the auditable universe",
		Long:  `Create and maintain universe projects, their section tree and working papers.`,
	}

	cmd.AddCommand(universeListCmd())
	cmd.AddCommand(universeShowCmd())
	cmd.AddCommand(universeCreateCmd())
	cmd.AddCommand(universeUpdateCmd())
	cmd.AddCommand(universeImportCmd())
	cmd.AddCommand(universeSectionCmd())
	cmd.AddCommand(universeSubsectionCmd())
	cmd.AddCommand(universeAttachCmd())
	cmd.AddCommand(universeDeleteCmd())
	return cmd
}

func universeListCmd() *cobra.Command {
	var filters primary.UniverseFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List universe projects",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.UniverseAdapter().List(ctx, filters)
		}),
	}
	cmd.Flags().StringVar(&filters.AuditType, "type", "", "Filter by audit type")
	cmd.Flags().StringVar(&filters.Process, "process", "", "Filter by process")
	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "Search code and name")
	return cmd
}

func universeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show a project with its section tree",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.UniverseAdapter().Show(ctx, args[0])
		}),
	}
}

func projectFlags(cmd *cobra.Command, req *primary.CreateProjectRequest) {
	cmd.Flags().StringVar(&req.Name, "name", "", "Project name (required)")
	cmd.Flags().StringVar(&req.Objective, "objective", "", "Audit objective")
	cmd.Flags().StringVar(&req.AuditType, "type", "", "Audit type (catalog tipo_auditoria)")
	cmd.Flags().StringVar(&req.Process, "process", "", "Process (catalog proceso)")
	cmd.Flags().StringVar(&req.PlannedStart, "start", "", "Planned start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.PlannedEnd, "end", "", "Planned end date (YYYY-MM-DD)")
}

func universeCreateCmd() *cobra.Command {
	var req primary.CreateProjectRequest

	cmd := &cobra.Command{
		Use:   "create [code]",
		Short: "Create a universe project",
		Long: `Create a universe project without sections.

Examples:
  auditplus universe create AUD-01 --name "Compras" --type "Auditoría Operativa" --process Compras`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.Code = args[0]
			return wire.UniverseAdapter().Create(ctx, req)
		}),
	}
	projectFlags(cmd, &req)
	return cmd
}

func universeUpdateCmd() *cobra.Command {
	var req primary.CreateProjectRequest

	cmd := &cobra.Command{
		Use:   "update [project-id] [code]",
		Short: "Overwrite a project's fields",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.Code = args[1]
			err := wire.Services().Universe.UpdateProject(ctx, primary.UpdateProjectRequest{
				ProjectID:            args[0],
				CreateProjectRequest: req,
			})
			if err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
			fmt.Printf("✓ Project %s updated\n", args[0])
			return nil
		}),
	}
	projectFlags(cmd, &req)
	return cmd
}

func universeImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.yaml|-]",
		Short: "Create a project and its tree from a YAML template",
		Long: `Create a project with its sections and subsections from a YAML template.

Template:
  code: AUD-07
  name: Tesorería
  process: Tesorería
  sections:
    - code: S1
      name: Planificación
      subsections:
        - {code: S1.1, name: Alcance}`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			template, err := readInput(args[0])
			if err != nil {
				return err
			}
			return wire.UniverseAdapter().Import(ctx, template)
		}),
	}
}

func nodeFlags(cmd *cobra.Command, req *primary.AddNodeRequest) {
	cmd.Flags().StringVar(&req.Code, "code", "", "Code (required)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Name (required)")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Description")
	cmd.Flags().IntVar(&req.Order, "order", 0, "Position (default: append)")
}

func universeSectionCmd() *cobra.Command {
	var req primary.AddNodeRequest

	cmd := &cobra.Command{
		Use:   "section",
		Short: "Add or delete sections",
	}
	add := &cobra.Command{
		Use:   "add [project-id]",
		Short: "Add a section to a project",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.ParentID = args[0]
			return wire.UniverseAdapter().AddSection(ctx, req)
		}),
	}
	nodeFlags(add, &req)
	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [section-id]",
		Short: "Delete a section and its subsections",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.Services().Universe.DeleteSection(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted section %s\n", args[0])
			return nil
		}),
	})
	return cmd
}

func universeSubsectionCmd() *cobra.Command {
	var req primary.AddNodeRequest

	cmd := &cobra.Command{
		Use:   "subsection",
		Short: "Add or delete subsections",
	}
	add := &cobra.Command{
		Use:   "add [section-id]",
		Short: "Add a subsection to a section",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.ParentID = args[0]
			return wire.UniverseAdapter().AddSubsection(ctx, req)
		}),
	}
	nodeFlags(add, &req)
	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [subsection-id]",
		Short: "Delete a subsection",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.Services().Universe.DeleteSubsection(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted subsection %s\n", args[0])
			return nil
		}),
	})
	return cmd
}

func universeAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [project-id] [file]",
		Short: "Attach a working paper to a project",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req, err := attachmentFromFile(args[1])
			if err != nil {
				return err
			}
			req.ParentID = args[0]
			return wire.UniverseAdapter().Attach(ctx, *req)
		}),
	}
}

func universeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [project-id]",
		Short: "Delete a project with its tree, attachments and evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.UniverseAdapter().Delete(ctx, args[0])
		}),
	}
}

// attachmentFromFile reads a local file into an upload request. The content
// type is left to the service, which sniffs it.
func attachmentFromFile(path string) (*primary.AddAttachmentRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &primary.AddAttachmentRequest{
		Filename: filepath.Base(path),
		Data:     data,
	}, nil
}
