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

// voxlate-cli translates audio files against a Voxlate hub, or directly
// against the inference engine in embedded mode.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxlate/voxlate-hub/internal/client"
	"github.com/voxlate/voxlate-hub/internal/config"
	"github.com/voxlate/voxlate-hub/internal/logging"
	"github.com/voxlate/voxlate-hub/internal/model"
	"github.com/voxlate/voxlate-hub/internal/pipeline"
	"github.com/voxlate/voxlate-hub/internal/server"
)

var (
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "voxlate-cli",
	Short: "Speech-to-speech translation client",
	Long: `voxlate-cli translates spoken audio from one language to another.

By default it talks to a running Voxlate hub. With --embedded it runs the
translation pipeline in-process against the inference engine directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeWithConfig(logging.LogConfig{
			Level:  "warn",
			Format: "console",
		})
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a WAV file",
	RunE:  runTranslate,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the hub's supported language codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(serverURL, timeout)
		if err != nil {
			return err
		}

		langs, err := c.Languages(cmd.Context())
		if err != nil {
			return err
		}

		for _, code := range langs {
			fmt.Println(code)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check hub health and model readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(serverURL, timeout)
		if err != nil {
			return err
		}

		health, err := c.Health(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("status: %s\nmodel_loaded: %t\nnats: %t\n",
			health.Status, health.ModelLoaded, health.NATS)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Voxlate hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		go func() {
			<-cmd.Context().Done()
			_ = srv.Stop()
		}()

		return srv.Start()
	},
}

var (
	inputPath  string
	outputPath string
	srcLang    string
	tgtLang    string
	embedded   bool
)

func runTranslate(cmd *cobra.Command, args []string) error {
	wav, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	var translated []byte
	if embedded {
		translated, err = translateEmbedded(cmd.Context(), wav)
	} else {
		translated, err = translateRemote(cmd.Context(), wav)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, translated, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(translated), outputPath)
	return nil
}

// translateRemote sends the file to a running hub
func translateRemote(ctx context.Context, wav []byte) ([]byte, error) {
	c, err := client.New(serverURL, timeout)
	if err != nil {
		return nil, err
	}
	return c.Translate(ctx, wav, srcLang, tgtLang)
}

// translateEmbedded runs the pipeline in-process against the engine
// configured via ENGINE_URL, bypassing the hub entirely.
func translateEmbedded(ctx context.Context, wav []byte) ([]byte, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	holder := model.NewHolder(func() (model.Translator, error) {
		return model.NewSeamlessClient(cfg.Engine)
	}, cfg.Engine.SerializeInference)
	defer func() { _ = holder.Close() }()

	result, err := pipeline.New(holder).Run(ctx, wav, srcLang, tgtLang)
	if err != nil {
		return nil, err
	}
	return result.WAV, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8600", "Voxlate hub URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "request timeout")

	translateCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input WAV file")
	translateCmd.Flags().StringVarP(&outputPath, "output", "o", "translated.wav", "output WAV file")
	translateCmd.Flags().StringVar(&srcLang, "from", "", "source language code")
	translateCmd.Flags().StringVar(&tgtLang, "to", "", "target language code")
	translateCmd.Flags().BoolVar(&embedded, "embedded", false, "run the pipeline in-process against ENGINE_URL")
	_ = translateCmd.MarkFlagRequired("input")
	_ = translateCmd.MarkFlagRequired("from")
	_ = translateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
