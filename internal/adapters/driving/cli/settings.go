package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the Firestore project, blob storage, NATS and
pipeline tuning.

Settings are stored in ~/.jelly/config.toml. Environment variables such as
JELLY_FIRESTORE_PROJECT override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:     "set [key] [value]",
	Short:   "Set a single setting",
	Example: `  jelly settings set firestore.project_id my-project`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the supported setting keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Firestore]")
	cmd.Printf("  Project: %s\n", orNotSet(settings.Firestore.ProjectID))
	cmd.Printf("  Credentials: %s\n", orDefault(settings.Firestore.CredentialsFile, "(application default)"))
	cmd.Printf("  Collection: %s\n", settings.Firestore.Collection)
	cmd.Printf("  Geo Collection: %s\n", settings.Firestore.GeoCollection)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Endpoint: %s\n", orNotSet(settings.Storage.Endpoint))
	cmd.Printf("  Bucket: %s\n", orNotSet(settings.Storage.Bucket))
	if settings.Storage.AccessKey != "" {
		cmd.Printf("  Access Key: %s\n", maskSecret(settings.Storage.AccessKey))
	} else {
		cmd.Printf("  Access Key: (not set)\n")
	}
	if settings.Storage.SecretKey != "" {
		cmd.Printf("  Secret Key: %s\n", maskSecret(settings.Storage.SecretKey))
	} else {
		cmd.Printf("  Secret Key: (not set)\n")
	}
	cmd.Printf("  SSL: %t\n", settings.Storage.UseSSL)
	status := "configured"
	if !settings.Storage.IsConfigured() {
		status = "not configured (images are skipped)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[NATS]")
	cmd.Printf("  URL: %s\n", orDefault(settings.NATS.URL, "(disabled)"))
	cmd.Printf("  Subject Prefix: %s\n", settings.NATS.SubjectPrefix)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Max Concurrency: %s\n", orUnlimited(settings.Pipeline.MaxConcurrency))
	if settings.Pipeline.FetchRate > 0 {
		cmd.Printf("  Fetch Rate: %g/s\n", settings.Pipeline.FetchRate)
	} else {
		cmd.Printf("  Fetch Rate: unlimited\n")
	}
	cmd.Printf("  Fetch Retries: %d\n", settings.Pipeline.FetchRetries)
	cmd.Printf("  Image Max Bytes: %d\n", settings.Pipeline.ImageMaxBytes)
	cmd.Printf("  Image Cache TTL: %s\n", settings.Pipeline.ImageCacheTTL)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'jelly settings set firestore.project_id <project>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// maskSecret shows only the ends of a credential.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orNotSet(s string) string {
	return orDefault(s, "(not set)")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orUnlimited(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
