package cli

import (
	"fmt"
	"os"

	"github.com/fadliRafidan/smart-lock-api/config"
	"github.com/fadliRafidan/smart-lock-api/db"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	colorable "github.com/mattn/go-colorable"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type MigrateHandler struct {
	c *config.Config
}

func newMigrateHandler(c *config.Config) *MigrateHandler {
	return &MigrateHandler{c: c}
}

// getDatabaseURL prefers the positional argument over the configured URL
func getDatabaseURL(args []string, position int, fallback string) string {
	if len(args) > position && args[position] != "" {
		return args[position]
	}
	return fallback
}

func (h *MigrateHandler) MigrateSQL(cmd *cobra.Command, args []string) {
	url := getDatabaseURL(args, 0, h.c.DatabaseURL)
	if url == "" {
		fmt.Println(cmd.UsageString())
		os.Exit(2) // Return missing keyword or command
	}

	direction := migrate.Up
	if down, _ := cmd.Flags().GetBool("down"); down {
		direction = migrate.Down
	}

	log.SetLevel(log.DebugLevel)
	log.SetFormatter(&log.TextFormatter{
		ForceColors: true,
	})
	log.SetOutput(colorable.NewColorableStdout())

	log.Info("Applying SQL migration...")

	// Connect to PostgreSQL database
	conn, err := sqlx.Open("postgres", url)
	if err != nil {
		log.Errorf("An error occurred while connecting to SQL: %s", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Check the database connection
	if err := conn.Ping(); err != nil {
		log.Errorf("An error occurred while connecting to SQL: %s", err)
		os.Exit(1)
	}

	n, err := migrate.Exec(conn.DB, "postgres", db.Migrations(), direction)
	if err != nil {
		log.Errorf("An error occurred while running the migrations: %s", err)
		os.Exit(1)
	}
	log.Infof("Migration successful! Applied a total of %d migrations.", n)
}
