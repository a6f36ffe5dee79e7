package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/occlusion/internal/cli"
	"github.com/aretw0/occlusion/internal/logging"
	"github.com/spf13/cobra"
)

// logger is configured from the persistent flags before any command runs.
var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "occlusion",
	Short: "Animated-occlusion trials for statistical learning experiments",
	Long: `Occlusion presents image sequences that slide behind a central occluder,
records one result per trial and serves headless simulations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")

		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		if jsonLogs {
			logger = logging.NewJSON(os.Stderr, level)
		} else {
			logger = logging.New(level)
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// addStoreFlags registers the result store flags on cmd.
func addStoreFlags(cmd *cobra.Command, defaultKind string) {
	cmd.Flags().String("store", defaultKind, "Result store (memory, file, redis)")
	cmd.Flags().String("dir", "", "Directory of the file store (default .occlusion/results)")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	cmd.Flags().Duration("redis-ttl", 0, "Expire Redis sessions after this long (0 keeps them)")
	cmd.Flags().StringSlice("mask", nil, "Regexp of metadata keys masked before storage (repeatable)")
}

// storeOptions reads the store flags. Records are encrypted when OCCLUSION_ENCRYPTION_KEY
// holds a base64 AES-256 key; OCCLUSION_FALLBACK_KEYS lists older keys, comma separated.
func storeOptions(cmd *cobra.Command) (cli.StoreOptions, error) {
	kind, _ := cmd.Flags().GetString("store")
	dir, _ := cmd.Flags().GetString("dir")
	addr, _ := cmd.Flags().GetString("redis-addr")
	ttl, _ := cmd.Flags().GetDuration("redis-ttl")
	mask, _ := cmd.Flags().GetStringSlice("mask")

	opts := cli.StoreOptions{Kind: kind, Dir: dir, RedisAddr: addr, RedisTTL: ttl, Mask: mask}

	if v := os.Getenv("OCCLUSION_ENCRYPTION_KEY"); v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return opts, fmt.Errorf("OCCLUSION_ENCRYPTION_KEY: %w", err)
		}
		opts.EncryptionKey = key
	}
	if v := os.Getenv("OCCLUSION_FALLBACK_KEYS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(part))
			if err != nil {
				return opts, fmt.Errorf("OCCLUSION_FALLBACK_KEYS: %w", err)
			}
			opts.FallbackKeys = append(opts.FallbackKeys, key)
		}
	}
	return opts, nil
}
