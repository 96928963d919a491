/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"wheelstudio/internal/config"
	"wheelstudio/internal/crash"
	"wheelstudio/internal/kvstore"
	applog "wheelstudio/internal/log"
	"wheelstudio/internal/overlay"
	"wheelstudio/internal/ui"
	"wheelstudio/internal/version"
)

func usage() {
	fmt.Println("Wheel Studio — wheel board companion")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wheelstudio version|-v|--version   Show version")
	fmt.Println("  wheelstudio ui                     Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  wheelstudio snapshot               Print the persisted overlay snapshot")
	fmt.Println("  wheelstudio reset                  Delete the persisted overlay snapshot")
}

// storeDir resolves the directory holding the overlay store, honoring the
// config file and WS_STORE_PATH.
func storeDir(cfg config.AppConfig) (string, error) {
	if cfg.Board.StorePath != "" {
		return cfg.Board.StorePath, nil
	}
	return config.DataDir()
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover("", nil) }()

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Wheel Studio — wheel board companion")
			fmt.Println(version.String())
			return
		case "ui":
			dir, err := storeDir(cfg)
			if err != nil {
				l.Error("resolving data dir failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := ui.Run(dir); err != nil {
				l.Error("UI failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "snapshot":
			dir, err := storeDir(cfg)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			store, err := kvstore.OpenSQLite(dir)
			if err != nil {
				l.Error("open store failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer func() {
				if err := store.Close(); err != nil {
					l.Warn("closing store failed", slog.Any("err", err))
				}
			}()
			v, ok, err := store.Get(overlay.SnapshotKey)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if !ok {
				fmt.Println("No overlay snapshot stored.")
				return
			}
			fmt.Println(v)
			return
		case "reset":
			dir, err := storeDir(cfg)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			store, err := kvstore.OpenSQLite(dir)
			if err != nil {
				l.Error("open store failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer func() {
				if err := store.Close(); err != nil {
					l.Warn("closing store failed", slog.Any("err", err))
				}
			}()
			if err := store.Delete(overlay.SnapshotKey); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			l.Info("overlay snapshot cleared", slog.String("dir", dir))
			fmt.Println("Overlay snapshot cleared.")
			return
		}
	}
	usage()
}
