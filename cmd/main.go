/*
 * This file is part of Voxlate (https://github.com/voxlate/voxlate-hub).
 * Copyright (C) 2026 Voxlate Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlate/voxlate-hub/internal/config"
	"github.com/voxlate/voxlate-hub/internal/logging"
	"github.com/voxlate/voxlate-hub/internal/server"
)

func main() {
	// Initialize structured logging
	if err := logging.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.LogError(err, "Invalid configuration")
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		logging.LogError(err, "Failed to create server")
		log.Fatalf("Failed to create server: %v", err)
	}

	logging.Sugar.Infow("🚀 voxlate-hub starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"engine_url", cfg.Engine.URL,
		"db_path", cfg.Server.DBPath,
	)

	// Shut down cleanly on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Sugar.Infow("Received shutdown signal", "signal", sig.String())
		if err := srv.Stop(); err != nil {
			logging.LogError(err, "Graceful shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		logging.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
