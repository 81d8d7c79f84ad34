package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// FindingCmd returns the finding command
func FindingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finding",
		Short: "Raise and follow up audit findings",
		Long: `Raise findings during fieldwork and follow them through assignment,
response and acceptance.

Lifecycle: Sin Asignar → Asignado → Respuesta Recibida → Aceptada.
Assigned findings past their commitment date become Vencida.`,
	}

	cmd.AddCommand(findingListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "List findings awaiting my response",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Mine(ctx)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [finding-id]",
		Short: "Show a finding",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Show(ctx, args[0])
		}),
	})
	cmd.AddCommand(findingCountsCmd())
	cmd.AddCommand(findingCreateCmd())
	cmd.AddCommand(findingEditCmd())
	cmd.AddCommand(findingAssignCmd("assign", "Assign an unassigned finding", func(ctx context.Context, req primary.AssignFindingRequest) error {
		return wire.Services().Findings.Assign(ctx, req)
	}))
	cmd.AddCommand(findingAssignCmd("reassign", "Change responsible user or commitment date", func(ctx context.Context, req primary.AssignFindingRequest) error {
		return wire.Services().Findings.Reassign(ctx, req)
	}))
	cmd.AddCommand(findingRespondCmd())
	cmd.AddCommand(findingActionCmd("accept", "Accept the response and close the finding", func(ctx context.Context, id string) error {
		return wire.Services().Findings.Accept(ctx, id)
	}))
	cmd.AddCommand(findingActionCmd("reject", "Reject the response", func(ctx context.Context, id string) error {
		return wire.Services().Findings.Reject(ctx, id)
	}))
	cmd.AddCommand(findingActionCmd("delete", "Delete a finding and its attachments", func(ctx context.Context, id string) error {
		return wire.Services().Findings.DeleteFinding(ctx, id)
	}))
	cmd.AddCommand(findingAttachCmd())
	return cmd
}

func findingFilterFlags(cmd *cobra.Command, f *primary.FindingFilters) {
	cmd.Flags().StringVar(&f.PlanID, "plan", "", "Filter by plan")
	cmd.Flags().StringVar(&f.PlanProjectID, "project", "", "Filter by plan project")
	cmd.Flags().StringVar(&f.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&f.RiskLevel, "risk", "", "Filter by risk level")
	cmd.Flags().StringVar(&f.ResponsibleID, "responsible", "", "Filter by responsible user ID")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "Search code and condition")
}

func findingListCmd() *cobra.Command {
	var filters primary.FindingFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List findings",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().List(ctx, filters)
		}),
	}
	findingFilterFlags(cmd, &filters)
	return cmd
}

func findingCountsCmd() *cobra.Command {
	var filters primary.FindingFilters

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count findings by status",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Counts(ctx, filters)
		}),
	}
	findingFilterFlags(cmd, &filters)
	return cmd
}

type findingContent struct {
	condition, criterion, cause, effect, recommendation, area string
	probability, impact                                      int
}

func (c *findingContent) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.condition, "condition", "", "What was found (required)")
	cmd.Flags().StringVar(&c.criterion, "criterion", "", "The rule or standard")
	cmd.Flags().StringVar(&c.cause, "cause", "", "Root cause")
	cmd.Flags().StringVar(&c.effect, "effect", "", "Consequence")
	cmd.Flags().StringVar(&c.recommendation, "recommendation", "", "Recommended action")
	cmd.Flags().StringVar(&c.area, "area", "", "Responsible area (catalog area)")
	cmd.Flags().IntVarP(&c.probability, "probability", "p", 0, "Probability (1-5)")
	cmd.Flags().IntVarP(&c.impact, "impact", "i", 0, "Impact (1-5)")
}

func findingCreateCmd() *cobra.Command {
	var content findingContent
	var planID, projectID, subsectionID string

	cmd := &cobra.Command{
		Use:   "create [code]",
		Short: "Raise a finding on a plan subsection",
		Long: `Raise a finding on a subsection of an in-progress plan project.
The risk level is derived from probability × impact.

Example:
  auditplus finding create H-01 --plan PLAN-001 --project PPRJ-001 --subsection PSUB-003 \
    --condition "Órdenes sin aprobación" -p 4 -i 3 --area Compras`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Create(ctx, primary.CreateFindingRequest{
				Code:             args[0],
				PlanID:           planID,
				PlanProjectID:    projectID,
				PlanSubsectionID: subsectionID,
				Condition:        content.condition,
				Criterion:        content.criterion,
				Cause:            content.cause,
				Effect:           content.effect,
				Recommendation:   content.recommendation,
				Probability:      content.probability,
				Impact:           content.impact,
				Area:             content.area,
			})
		}),
	}
	content.bind(cmd)
	cmd.Flags().StringVar(&planID, "plan", "", "Plan ID (required)")
	cmd.Flags().StringVar(&projectID, "project", "", "Plan project ID (required)")
	cmd.Flags().StringVar(&subsectionID, "subsection", "", "Plan subsection ID (required)")
	return cmd
}

func findingEditCmd() *cobra.Command {
	var content findingContent

	cmd := &cobra.Command{
		Use:   "edit [finding-id]",
		Short: "Replace a finding's content",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			err := wire.Services().Findings.EditFinding(ctx, primary.EditFindingRequest{
				FindingID:      args[0],
				Condition:      content.condition,
				Criterion:      content.criterion,
				Cause:          content.cause,
				Effect:         content.effect,
				Recommendation: content.recommendation,
				Probability:    content.probability,
				Impact:         content.impact,
				Area:           content.area,
			})
			if err != nil {
				return fmt.Errorf("failed to edit finding: %w", err)
			}
			fmt.Printf("✓ Finding %s updated\n", args[0])
			return nil
		}),
	}
	content.bind(cmd)
	return cmd
}

func findingAssignCmd(use, short string, op func(ctx context.Context, req primary.AssignFindingRequest) error) *cobra.Command {
	var commitment string

	cmd := &cobra.Command{
		Use:   use + " [finding-id] [user-id]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			err := op(ctx, primary.AssignFindingRequest{
				FindingID:      args[0],
				ResponsibleID:  args[1],
				CommitmentDate: commitment,
			})
			if err != nil {
				return fmt.Errorf("failed to %s finding: %w", use, err)
			}
			fmt.Printf("✓ Finding %s assigned to %s (commitment %s)\n", args[0], args[1], commitment)
			return nil
		}),
	}
	cmd.Flags().StringVar(&commitment, "commitment", "", "Commitment date (YYYY-MM-DD, required)")
	return cmd
}

func findingRespondCmd() *cobra.Command {
	var evidence string

	cmd := &cobra.Command{
		Use:   "respond [finding-id] [response]",
		Short: "Answer a finding assigned to me",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req := primary.RespondRequest{FindingID: args[0], Response: args[1]}
			if evidence != "" {
				att, err := attachmentFromFile(evidence)
				if err != nil {
					return err
				}
				att.ParentID = args[0]
				req.Evidence = att
			}
			if err := wire.Services().Findings.Respond(ctx, req); err != nil {
				return fmt.Errorf("failed to respond: %w", err)
			}
			fmt.Printf("✓ Response recorded for %s\n", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&evidence, "evidence", "", "File to attach as evidence")
	return cmd
}

func findingActionCmd(use, short string, op func(ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [finding-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := op(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to %s finding: %w", use, err)
			}
			fmt.Printf("✓ Finding %s: %s done\n", args[0], use)
			return nil
		}),
	}
}

func findingAttachCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "attach [finding-id] [file]",
		Short: "Attach evidence to a finding",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req, err := attachmentFromFile(args[1])
			if err != nil {
				return err
			}
			req.ParentID = args[0]
			req.Kind = kind
			att, err := wire.Services().Findings.AddAttachment(ctx, *req)
			if err != nil {
				return fmt.Errorf("failed to attach file: %w", err)
			}
			fmt.Printf("✓ Attached %s to %s as %s\n", att.Filename, args[0], att.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", "", "finding (default) or response")
	return cmd
}
