// Command seed loads device records from a JSON file into the registry.
// Existing devices (matched by serial number) are left alone, so the command
// is safe to run repeatedly for local development.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"devinventory/internal/config"
	"devinventory/internal/db"
	"devinventory/internal/logging"
	"devinventory/internal/model"
	"devinventory/internal/repository"
)

// SeedDevice represents one device entry in the seed file.
type SeedDevice struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer"`
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	path := "devices.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read seed file failed", "path", path, "error", err)
		os.Exit(1)
	}

	var entries []SeedDevice
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Error("parse seed file failed", "path", path, "error", err)
		os.Exit(1)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		slog.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(&model.Device{}); err != nil {
		slog.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	repo := repository.NewDeviceRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for _, entry := range entries {
		if entry.Name == "" {
			slog.Warn("skipping entry without name", "serial_number", entry.SerialNumber)
			skipped++
			continue
		}

		if entry.SerialNumber != "" {
			if _, err := repo.FindBySerialNumber(ctx, entry.SerialNumber); err == nil {
				skipped++
				continue
			} else if err != gorm.ErrRecordNotFound {
				slog.Error("lookup failed", "serial_number", entry.SerialNumber, "error", err)
				os.Exit(1)
			}
		}

		device := &model.Device{
			Name:         entry.Name,
			Description:  entry.Description,
			SerialNumber: entry.SerialNumber,
			Manufacturer: entry.Manufacturer,
		}
		if err := repo.Create(ctx, device); err != nil {
			slog.Error("create device failed", "name", entry.Name, "error", err)
			os.Exit(1)
		}
		created++
	}

	slog.Info("seed finished", "created", created, "skipped", skipped)
}
