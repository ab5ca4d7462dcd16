package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// deviceCmd represents the device command
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Provision and inspect devices",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	},
}

var deviceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new device at version 0",
	Run:   cmdHandler.Device.CreateDevice,
}

var deviceGetCmd = &cobra.Command{
	Use:   "get <device-id>",
	Short: "Show the committed status of a device",
	Run:   cmdHandler.Device.GetDevice,
}

func init() {
	deviceCreateCmd.Flags().String("id", "", "Device id, generated when empty")
	deviceCreateCmd.Flags().String("name", "", "Device name")
	deviceCreateCmd.Flags().String("type", "door_lock", "Device type")
	deviceCreateCmd.Flags().String("status", "locked", "Initial status")

	deviceGetCmd.Flags().Bool("logs", false, "Also print the status history")

	deviceCmd.AddCommand(deviceCreateCmd)
	deviceCmd.AddCommand(deviceGetCmd)
	RootCmd.AddCommand(deviceCmd)
}
