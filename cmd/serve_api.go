package cmd

import (
	"github.com/fadliRafidan/smart-lock-api/pkg/cmd/server"
	"github.com/spf13/cobra"
)

// serveAPICmd represents the serve api command
var serveAPICmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the device state HTTP API",
	Long: `Serve the device state HTTP API.

When NATS_URL is set, accepted transitions are published to NATS and the
same operations are answered over NATS request/reply.`,
	Run: server.RunServeAPI(c),
}

func init() {
	serveCmd.AddCommand(serveAPICmd)
}
