package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
)

var (
	loadRegion      regionFlags
	loadTimeout     time.Duration
	loadMetricsFile string
	loadJSON        bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the jellies inside a map region",
	Long: `Queries the geo index for every jelly inside the region, fetches and
validates each document, stores valid jellies and attaches their images.

Invalid documents and failed lookups are skipped and counted in the summary.`,
	Example: `  jelly load --lat 34.0 --lng -118.2 --lat-delta 0.5 --lng-delta 0.5`,
	Args:    cobra.NoArgs,
	RunE:    runLoad,
}

func init() {
	loadRegion.register(loadCmd)
	loadCmd.Flags().DurationVar(&loadTimeout, "timeout", 0, "abort the load after this long (0 waits forever)")
	loadCmd.Flags().StringVar(&loadMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	if regionLoader == nil {
		return errors.New("region loader not configured: set firestore.project_id with 'jelly settings set'")
	}
	if !loadRegion.set() {
		return errors.New("--lat-delta and --lng-delta are required")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()
	if loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, loadTimeout)
		defer cancel()
	}

	region := loadRegion.region()
	if !loadJSON {
		cmd.Printf("Loading jellies in %s...\n", region)
	}

	summary, err := loadWithProgress(ctx, cmd, regionLoader, region)

	if loadMetricsFile != "" {
		if metricsWriter == nil {
			return errors.New("metrics not configured")
		}
		if werr := metricsWriter.WriteTextfile(loadMetricsFile); werr != nil {
			return werr
		}
	}

	if err != nil {
		if summary != nil && !loadJSON {
			printSummary(cmd, summary)
		}
		return fmt.Errorf("load failed: %w", err)
	}

	if loadJSON {
		return outputLoadJSON(cmd, summary)
	}
	printSummary(cmd, summary)
	printTags(cmd)
	return nil
}

// loadWithProgress runs the load while printing progress updates.
func loadWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	loader driving.RegionLoader,
	region domain.Region,
) (*driving.RunSummary, error) {
	type result struct {
		summary *driving.RunSummary
		err     error
	}
	resultCh := make(chan result, 1)
	go func() {
		summary, err := loader.Load(ctx, region)
		resultCh <- result{summary: summary, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPersisted := 0
	for {
		select {
		case r := <-resultCh:
			if lastPersisted > 0 && !loadJSON {
				cmd.Println()
			}
			return r.summary, r.err
		case <-ticker.C:
			status := loader.Status()
			if status.RecordsPersisted > lastPersisted && !loadJSON {
				cmd.Printf("\r%s... %d keys, %d jellies", status.Phase, status.KeysCollected, status.RecordsPersisted)
				lastPersisted = status.RecordsPersisted
			}
		}
	}
}

func printSummary(cmd *cobra.Command, s *driving.RunSummary) {
	cmd.Printf("Run %d finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	cmd.Printf("  Keys:       %d (%d duplicates skipped)\n", s.KeysCollected, s.DuplicateKeys)
	cmd.Printf("  Documents:  %d fetched, %d lookups failed\n", s.RecordsFetched, s.FetchErrors)
	cmd.Printf("  Jellies:    %d stored, %d rejected\n", s.RecordsPersisted, s.ValidationErrors)
	cmd.Printf("  Images:     %d attached, %d failed\n", s.ImagesDownloaded, s.ImageErrors)
}

func printTags(cmd *cobra.Command) {
	if tagService == nil {
		return
	}
	tags := tagService.Unique()
	if len(tags) == 0 {
		return
	}
	cmd.Printf("  Tags:       %s\n", strings.Join(tags, ", "))
}

func outputLoadJSON(cmd *cobra.Command, s *driving.RunSummary) error {
	out := struct {
		*driving.RunSummary
		Tags []string `json:"tags"`
	}{RunSummary: s, Tags: []string{}}
	if tagService != nil {
		out.Tags = tagService.Unique()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// commandContext returns the command's context, or Background when run
// outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
