// Package cli provides the cobra commands of the jelly binary.
//
// Commands talk to the core through driving ports held in package-level
// variables. The composition root fills them with SetServices; commands
// report "not configured" for any service left nil.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// version is set at build time via -ldflags or SetVersion.
var version = "dev"

var verbose bool

// MetricsWriter exports pipeline metrics to a file.
type MetricsWriter interface {
	WriteTextfile(path string) error
}

var (
	regionLoader    driving.RegionLoader
	tagService      driving.TagService
	jellyService    driving.JellyService
	settingsService driving.SettingsService
	metricsWriter   MetricsWriter
)

// Services holds the driving ports used by commands.
type Services struct {
	RegionLoader driving.RegionLoader
	Tags         driving.TagService
	Jellies      driving.JellyService
	Settings     driving.SettingsService
	Metrics      MetricsWriter
}

var rootCmd = &cobra.Command{
	Use:   "jelly",
	Short: "Load geotagged jellies for a map region",
	Long: `Jelly discovers the jellies inside a map region through a geo index,
fetches and validates their documents, downloads their images and stores
them locally for rendering.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices installs the services used by commands.
func SetServices(s Services) {
	regionLoader = s.RegionLoader
	tagService = s.Tags
	jellyService = s.Jellies
	settingsService = s.Settings
	metricsWriter = s.Metrics
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
