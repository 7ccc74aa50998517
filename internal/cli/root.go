package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
	dataDir    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envData := os.Getenv("DATA_DIR")

	cmd := &cobra.Command{
		Use:   "notables-quiz",
		Short: "Endless guess-the-notable-person quiz served over WebSocket",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&dataDir, "data", envData, "directory with index.json and country files")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &dataDir))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
