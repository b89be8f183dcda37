package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tagsRegion  regionFlags
	tagsEnable  []string
	tagsDisable []string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show the tags seen by the last load",
	Long: `Shows each tag seen during the last load in this process with its flag.
Pass a region to load it first. --enable and --disable set a tag's flag.`,
	Example: `  jelly tags --lat 34.0 --lng -118.2 --lat-delta 0.5 --lng-delta 0.5 --enable music`,
	Args:    cobra.NoArgs,
	RunE:    runTags,
}

func init() {
	tagsRegion.register(tagsCmd)
	tagsCmd.Flags().StringSliceVar(&tagsEnable, "enable", nil, "tags whose flag is turned on")
	tagsCmd.Flags().StringSliceVar(&tagsDisable, "disable", nil, "tags whose flag is turned off")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, _ []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}

	if tagsRegion.set() {
		if regionLoader == nil {
			return errors.New("region loader not configured")
		}
		if _, err := regionLoader.Load(commandContext(cmd), tagsRegion.region()); err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
	}

	for _, tag := range tagsEnable {
		if err := tagService.SetFlag(tag, true); err != nil {
			return fmt.Errorf("failed to enable %q: %w", tag, err)
		}
	}
	for _, tag := range tagsDisable {
		if err := tagService.SetFlag(tag, false); err != nil {
			return fmt.Errorf("failed to disable %q: %w", tag, err)
		}
	}

	unique := tagService.Unique()
	if len(unique) == 0 {
		cmd.Println("No tags loaded. Pass a region or run 'jelly load' first.")
		return nil
	}

	counts := make(map[string]int, len(unique))
	for _, tag := range tagService.Snapshot() {
		counts[tag]++
	}
	flags := tagService.Flags()

	cmd.Println("Tags:")
	for _, tag := range unique {
		mark := "on"
		if !flags[tag] {
			mark = "off"
		}
		cmd.Printf("  %-20s %3d  %s\n", tag, counts[tag], mark)
	}
	return nil
}
