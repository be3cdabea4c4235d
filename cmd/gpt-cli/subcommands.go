package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"gpt-cli/internal/completion"
	"gpt-cli/internal/config"
	"gpt-cli/internal/session"
)

func newConfigCmd(f *cliFlags) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or write it with --write",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			if write {
				if err := config.Save(cfg.Source, cfg); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Source)
				return nil
			}
			shown := cfg
			shown.APIKey = maskKey(cfg.APIKey)
			data, err := toml.Marshal(shown)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.Source, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Write the effective configuration to the config file")
	return cmd
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-7) + key[len(key)-4:]
}

func newSessionsCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved conversations, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			store := session.NewStore(cfg.MessageDir(), true)
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range keys {
				msgs, err := store.Load(key)
				if err != nil {
					fmt.Fprintf(out, "%s\t(unreadable)\n", key)
					continue
				}
				fmt.Fprintf(out, "%s\t%d messages\t%s\n", key, len(msgs), firstLine(msgs[0].Content, 60))
			}
			return nil
		},
	}
}

func firstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > max {
		s = string(r[:max]) + "..."
	}
	return s
}

func newPingCmd(f *cliFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the API endpoint accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			base := cfg.BaseURL
			if base == "" {
				base = completion.DefaultBaseURL
			}
			if err := completion.CheckReachable(ctx, base); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", completion.NormalizeBaseURL(base))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connection timeout")
	return cmd
}
