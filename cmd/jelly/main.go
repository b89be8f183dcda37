// Command jelly loads the jellies inside a map region and stores them locally.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/blobstore/minio"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/config/env"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/firestore"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/notify"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/notify/nats"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/jelly-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/services"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version string

func main() {
	os.Exit(run())
}

// run wires the adapters and executes the root command. Cobra reports
// command errors itself; setup errors are printed here.
func run() int {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fail("opening config: %v", err)
	}
	settingsService := services.NewSettingsService(configStore, env.Overlay)

	settings, err := settingsService.Get()
	if err != nil {
		return fail("loading settings: %v", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fail("opening jelly store: %v", err)
	}
	defer store.Close()

	metrics, err := prometheus.NewPipelineMetrics(nil)
	if err != nil {
		return fail("registering metrics: %v", err)
	}

	var sinks notify.Multi
	if settings.NATS.IsConfigured() {
		natsNotifier, err := nats.Connect(settings.NATS)
		if err != nil {
			logger.Warn("NATS notifications disabled: %v", err)
		} else {
			sinks = append(sinks, natsNotifier)
		}
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Warn("closing notifiers: %v", err)
		}
	}()

	tags := services.NewTagRegistry()
	svc := cli.Services{
		Tags:     tags,
		Jellies:  services.NewJellyService(store),
		Settings: settingsService,
		Metrics:  metrics,
	}

	if err := settingsService.Validate(); err != nil {
		logger.Debug("region loading unavailable: %v", err)
	} else {
		ctx := context.Background()
		client, err := firestore.NewClient(ctx, settings.Firestore)
		if err != nil {
			return fail("connecting to firestore: %v", err)
		}
		defer client.Close()

		coordinator := services.NewPipelineCoordinator(services.PipelineDeps{
			Collector: services.NewGeoKeyCollector(
				firestore.NewGeoIndex(client, settings.Firestore.GeoCollection), metrics),
			Fetcher: services.NewRecordFetcher(
				firestore.NewDocumentStore(client, settings.Firestore.Collection),
				services.FetcherOptions{
					Rate:    settings.Pipeline.FetchRate,
					Retries: settings.Pipeline.FetchRetries,
				}),
			Images:         newImageResolver(settings, metrics),
			Store:          store,
			Tags:           tags,
			Notifier:       sinks.Notifier(),
			Metrics:        metrics,
			MaxConcurrency: settings.Pipeline.MaxConcurrency,
		})
		defer coordinator.Cancel()
		svc.RegionLoader = coordinator
	}

	cli.SetServices(svc)
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return 1
}

// newImageResolver returns nil when blob storage is not configured; records
// are then stored without images.
func newImageResolver(settings *domain.AppSettings, metrics *prometheus.PipelineMetrics) *services.ImageResolver {
	blobs, err := minio.New(settings.Storage)
	if err != nil {
		logger.Debug("image download disabled: %v", err)
		return nil
	}
	return services.NewImageResolver(blobs, metrics, services.ImageResolverOptions{
		MaxBytes: settings.Pipeline.ImageMaxBytes,
		CacheTTL: settings.Pipeline.ImageCacheTTL,
	})
}
