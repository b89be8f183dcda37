package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

var (
	jelliesRegion regionFlags
	jelliesTag    string
)

var jelliesCmd = &cobra.Command{
	Use:   "jellies",
	Short: "Browse stored jellies",
	Long:  `List, inspect and delete the jellies stored by previous loads.`,
}

var jelliesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jellies",
	Long: `Lists stored jellies ordered by start time.
Pass --lat-delta and --lng-delta to list only the jellies inside a region,
or --tag to list only the jellies carrying a tag.`,
	Args: cobra.NoArgs,
	RunE: runJelliesList,
}

var jelliesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a stored jelly",
	Args:  cobra.ExactArgs(1),
	RunE:  runJelliesShow,
}

var jelliesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored jelly and its images",
	Args:  cobra.ExactArgs(1),
	RunE:  runJelliesDelete,
}

func init() {
	jelliesRegion.register(jelliesListCmd)
	jelliesListCmd.Flags().StringVar(&jelliesTag, "tag", "", "only list jellies carrying this tag")
	jelliesCmd.AddCommand(jelliesListCmd)
	jelliesCmd.AddCommand(jelliesShowCmd)
	jelliesCmd.AddCommand(jelliesDeleteCmd)
	rootCmd.AddCommand(jelliesCmd)
}

func runJelliesList(cmd *cobra.Command, _ []string) error {
	if jellyService == nil {
		return errors.New("jelly service not configured")
	}
	if jelliesRegion.set() && jelliesTag != "" {
		return errors.New("--tag cannot be combined with a region")
	}

	ctx := context.Background()
	var (
		jellies []domain.Jelly
		err     error
	)
	switch {
	case jelliesRegion.set():
		jellies, err = jellyService.ListInRegion(ctx, jelliesRegion.region())
	case jelliesTag != "":
		jellies, err = jellyService.ListByTag(ctx, jelliesTag)
	default:
		jellies, err = jellyService.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list jellies: %w", err)
	}

	if len(jellies) == 0 {
		cmd.Println("No jellies found.")
		return nil
	}

	for i := range jellies {
		j := &jellies[i]
		cmd.Printf("%s %s  %s\n", j.Emoji, j.Title, j.ID)
		cmd.Printf("    %s  (%.5f, %.5f)", j.StartTime.Local().Format(time.DateTime), j.Latitude, j.Longitude)
		if len(j.Tags) > 0 {
			cmd.Printf("  [%s]", strings.Join(j.Tags, ", "))
		}
		cmd.Println()
	}
	cmd.Printf("\n%d jellies\n", len(jellies))
	return nil
}

func runJelliesShow(cmd *cobra.Command, args []string) error {
	if jellyService == nil {
		return errors.New("jelly service not configured")
	}

	jelly, err := jellyService.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("jelly not found: %s", args[0])
		}
		return fmt.Errorf("failed to get jelly: %w", err)
	}

	cmd.Printf("%s %s\n", jelly.Emoji, jelly.Title)
	cmd.Println(strings.Repeat("=", len(jelly.Title)+3))
	cmd.Printf("ID:          %s\n", jelly.ID)
	cmd.Printf("Creator:     %s\n", jelly.CreatorName)
	cmd.Printf("Starts:      %s\n", jelly.StartTime.Local().Format(time.DateTime))
	cmd.Printf("Ends:        %s\n", jelly.EndTime.Local().Format(time.DateTime))
	cmd.Printf("Location:    %.5f, %.5f\n", jelly.Latitude, jelly.Longitude)
	cmd.Printf("Tags:        %s\n", strings.Join(jelly.Tags, ", "))
	cmd.Printf("Images:      %s (%d)\n", jelly.ReferencePath, len(jelly.Images))
	for _, img := range jelly.Images {
		cmd.Printf("  - %s (%d bytes)\n", img.Path, img.Size())
	}
	if jelly.Description != "" {
		cmd.Println()
		cmd.Println(jelly.Description)
	}
	return nil
}

func runJelliesDelete(cmd *cobra.Command, args []string) error {
	if jellyService == nil {
		return errors.New("jelly service not configured")
	}

	if err := jellyService.Delete(context.Background(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("jelly not found: %s", args[0])
		}
		return fmt.Errorf("failed to delete jelly: %w", err)
	}
	cmd.Printf("Deleted jelly %s\n", args[0])
	return nil
}
