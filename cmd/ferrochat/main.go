// Package main provides the ferrochat command-line chat client.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ferro-labs/ferrochat"
	"github.com/ferro-labs/ferrochat/internal/logging"
	"github.com/ferro-labs/ferrochat/internal/requestlog"
	"github.com/ferro-labs/ferrochat/storage"
)

func main() {
	root, a := newRootCmd()
	err := root.Execute()
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// app is the state shared by subcommands once the client is built.
type app struct {
	configPath string
	cfg        ferrochat.Config
	client     *ferrochat.Client
	reqlog     *requestlog.SQLWriter
}

// newRootCmd builds the command tree. The returned app must be closed after
// Execute, whether or not the command succeeded.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:               "ferrochat",
		Short:             "ferrochat - chat with OpenAI-compatible LLM providers",
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.open()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("FERROCHAT_CONFIG"),
		"config file (JSON, YAML or TOML); defaults to $FERROCHAT_CONFIG")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newProvidersCmd(a),
		newModelsCmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
		newRequestsCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// open loads the config file and builds the client.
func (a *app) open() error {
	if a.configPath != "" {
		cfg, err := ferrochat.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = *cfg
	} else {
		a.cfg = defaultConfig()
	}
	logging.Setup(a.cfg.Log.Level, a.cfg.Log.Format)

	client, err := ferrochat.New(a.cfg)
	if err != nil {
		return err
	}
	a.client = client

	if a.cfg.RequestLog.DSN != "" || a.cfg.RequestLog.Driver != "" {
		w, err := requestlog.Open(a.cfg.RequestLog.Driver, a.cfg.RequestLog.DSN)
		if err != nil {
			return fmt.Errorf("opening request log: %w", err)
		}
		a.reqlog = w
		client.AddHook(ferrochat.EventHookFunc(requestlog.Hook(w)))
	}
	return nil
}

// close waits for pending event hooks, then releases storage and the
// request log.
func (a *app) close() error {
	var firstErr error
	if a.client != nil {
		firstErr = a.client.Close()
		a.client = nil
	}
	if a.reqlog != nil {
		if err := a.reqlog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.reqlog = nil
	}
	return firstErr
}

// defaultConfig persists to a bbolt file under the user config directory,
// falling back to memory when no such directory exists.
func defaultConfig() ferrochat.Config {
	cfg := ferrochat.Config{Storage: ferrochat.StorageConfig{Backend: storage.BackendMemory}}
	dir, err := os.UserConfigDir()
	if err != nil {
		return cfg
	}
	dir = filepath.Join(dir, "ferrochat")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return cfg
	}
	cfg.Storage = ferrochat.StorageConfig{Backend: storage.BackendBolt, DSN: filepath.Join(dir, "ferrochat.db")}
	return cfg
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
