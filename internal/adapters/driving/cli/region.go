package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// regionFlags binds the viewport flags shared by several commands.
type regionFlags struct {
	lat      float64
	lng      float64
	latDelta float64
	lngDelta float64
}

func (f *regionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude of the region centre")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude of the region centre")
	cmd.Flags().Float64Var(&f.latDelta, "lat-delta", 0, "north-south span in degrees")
	cmd.Flags().Float64Var(&f.lngDelta, "lng-delta", 0, "east-west span in degrees")
}

// set reports whether a span was given.
func (f *regionFlags) set() bool {
	return f.latDelta != 0 || f.lngDelta != 0
}

func (f *regionFlags) region() domain.Region {
	return domain.NewRegion(f.lat, f.lng, f.latDelta, f.lngDelta)
}
