package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/calloway/matterwatch/internal/cli"
	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/calloway/matterwatch/internal/service"
	"github.com/spf13/cobra"
)

func mattersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matters",
		Short: "Manage tracked legal matters",
	}

	cmd.AddCommand(mattersListCmd())
	cmd.AddCommand(mattersAddCmd())
	cmd.AddCommand(mattersCloseCmd())

	return cmd
}

func mattersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked matters",
		RunE:  runMattersList,
	}

	cmd.Flags().String("status", "", "filter by status (open, closed)")
	cmd.Flags().String("category", "", "filter by practice area category")
	cmd.Flags().Int("limit", 0, "maximum number of matters to show")

	return cmd
}

func runMattersList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	filter := service.MatterFilter{}
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
		status := model.MatterStatus(statusFlag)
		if status != model.MatterStatusOpen && status != model.MatterStatusClosed {
			return fmt.Errorf("invalid status %q: must be open or closed", statusFlag)
		}
		filter.Status = &status
	}
	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	matters, err := store.GetMatters(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list matters: %w", err)
	}

	fmt.Print(cli.RenderMattersTable(matters))
	return nil
}

func mattersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <matter-id>",
		Short: "Add or update a matter",
		Args:  cobra.ExactArgs(1),
		RunE:  runMattersAdd,
	}

	cmd.Flags().String("name", "", "matter name (required)")
	cmd.Flags().String("category", "other", "practice area category")
	cmd.Flags().Float64("budget", 0, "allocated budget (omit for no budget)")
	cmd.Flags().String("opened", "", "opening date, YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runMattersAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	categoryFlag, _ := cmd.Flags().GetString("category")
	openedFlag, _ := cmd.Flags().GetString("opened")

	category, err := resolveCategory(categoryFlag)
	if err != nil {
		return err
	}

	openedAt := time.Now()
	if openedFlag != "" {
		parsed, err := time.Parse("2006-01-02", openedFlag)
		if err != nil {
			return fmt.Errorf("invalid opened date %q: %w", openedFlag, err)
		}
		openedAt = parsed
	}

	matter := &model.Matter{
		ID:       args[0],
		Name:     name,
		Category: category,
		Status:   model.MatterStatusOpen,
		OpenedAt: openedAt,
	}
	if cmd.Flags().Changed("budget") {
		budget, _ := cmd.Flags().GetFloat64("budget")
		if budget <= 0 {
			return fmt.Errorf("budget must be positive")
		}
		matter.Budget = &budget
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveMatter(ctx, matter); err != nil {
		return fmt.Errorf("failed to save matter: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Saved matter %s", matter.ID)))
	return nil
}

// resolveCategory validates a category flag against the closed category
// table. "other" is accepted explicitly; anything else unknown is rejected
// rather than silently coerced.
func resolveCategory(flag string) (string, error) {
	profile := features.LookupCategory(flag)
	if profile.ID == features.CategoryOtherID && !strings.EqualFold(strings.TrimSpace(flag), "other") {
		return "", fmt.Errorf("unknown category %q: valid categories are %s, or other",
			flag, strings.Join(features.CategoryNames(), ", "))
	}
	return profile.Name, nil
}

func mattersCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <matter-id>",
		Short: "Close a matter",
		Args:  cobra.ExactArgs(1),
		RunE:  runMattersClose,
	}

	cmd.Flags().String("date", "", "closing date, YYYY-MM-DD (default: today)")

	return cmd
}

func runMattersClose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	closedAt := time.Now()
	if dateFlag, _ := cmd.Flags().GetString("date"); dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", dateFlag)
		if err != nil {
			return fmt.Errorf("invalid closing date %q: %w", dateFlag, err)
		}
		closedAt = parsed
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateMatterStatus(ctx, args[0], model.MatterStatusClosed, &closedAt); err != nil {
		return fmt.Errorf("failed to close matter: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Closed matter %s", args[0])))
	return nil
}
