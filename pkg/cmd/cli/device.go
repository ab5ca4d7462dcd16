package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fadliRafidan/smart-lock-api/config"
	"github.com/fadliRafidan/smart-lock-api/pkg/api/resource"
	"github.com/fadliRafidan/smart-lock-api/pkg/cmd/server"
	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type DeviceHandler struct {
	c *config.Config
}

func newDeviceHandler(c *config.Config) *DeviceHandler {
	return &DeviceHandler{c: c}
}

func (h *DeviceHandler) withCoordinator(fn func(co *devicestate.Coordinator) error) {
	if h.c.Storage == config.StorageMemory {
		log.Error("device commands need a persistent storage")
		os.Exit(2)
	}

	store, closeStore, err := server.OpenStore(h.c)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer closeStore()

	if err := fn(devicestate.NewCoordinator(store, nil, h.c.UnitOfWorkTimeout)); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// CreateDevice provisions a device at version 0
func (h *DeviceHandler) CreateDevice(cmd *cobra.Command, args []string) {
	r := &resource.ProvisionDeviceResource{}
	r.ID, _ = cmd.Flags().GetString("id")
	r.Name, _ = cmd.Flags().GetString("name")
	r.Type, _ = cmd.Flags().GetString("type")
	r.Status, _ = cmd.Flags().GetString("status")

	m, err := resource.ValidateDevice(r)
	if err != nil {
		fmt.Println(err)
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	}

	h.withCoordinator(func(co *devicestate.Coordinator) error {
		if err := co.Provision(context.Background(), m); err != nil {
			return err
		}
		return printJSON(resource.NewDevice(m))
	})
}

// GetDevice prints the committed state and history of a device
func (h *DeviceHandler) GetDevice(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	}

	h.withCoordinator(func(co *devicestate.Coordinator) error {
		ctx := context.Background()

		m, err := co.GetStatus(ctx, args[0])
		if err != nil {
			return err
		}
		if err := printJSON(resource.NewDevice(m)); err != nil {
			return err
		}

		if withLogs, _ := cmd.Flags().GetBool("logs"); !withLogs {
			return nil
		}

		entries, err := co.History(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(resource.NewAuditEntryList(entries))
	})
}
