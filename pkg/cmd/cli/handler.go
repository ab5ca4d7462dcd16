package cli

import "github.com/fadliRafidan/smart-lock-api/config"

type Handler struct {
	Migration *MigrateHandler
	Device    *DeviceHandler
}

func NewHandler(c *config.Config) *Handler {
	return &Handler{
		Migration: newMigrateHandler(c),
		Device:    newDeviceHandler(c),
	}
}
