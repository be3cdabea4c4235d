package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gpt-cli/internal/config"
)

// cliFlags are the flags shared by the chat command and its subcommands.
type cliFlags struct {
	cfgPath     string
	overrides   []string
	model       string
	topP        float64
	temperature float64
	maxTokens   int64
	key         string
	save        bool
	baseDir     string
	baseURL     string
	stylesheet  string
	style       string
}

func bindFlags(fs *pflag.FlagSet, f *cliFlags) {
	fs.StringVar(&f.cfgPath, "config", "", "Path to config file (default ~/.gpt-cli/config.toml)")
	fs.StringArrayVarP(&f.overrides, "config-override", "c", nil, "Override config value key=value (repeatable)")
	fs.StringVarP(&f.model, "model", "m", config.DefaultModel, "The model to use")
	fs.Float64VarP(&f.topP, "top-p", "p", config.DefaultTopP, "The top-p to use; cannot be used alongside --temperature")
	fs.Float64VarP(&f.temperature, "temperature", "t", 0, "The temperature to use")
	fs.Int64VarP(&f.maxTokens, "max-tokens", "n", config.DefaultMaxTokens, "Maximum number of response tokens to generate per response")
	fs.StringVarP(&f.key, "key", "k", "", "Your OpenAI API key; can also be provided via OPENAI_API_KEY")
	fs.BoolVarP(&f.save, "save", "s", true, "Save the messages to disk or not")
	fs.StringVarP(&f.baseDir, "base-dir", "b", "", "The base directory to save messages and logs to")
	fs.StringVar(&f.baseURL, "base-url", "", "Override the API base URL (a trailing /v1 is ok)")
	fs.StringVar(&f.stylesheet, "stylesheet", "", "CSS file with highlight class rules")
	fs.StringVar(&f.style, "style", config.DefaultStyle, "Chroma style used when no stylesheet is given")
}

// resolveConfig layers defaults, the config file, the environment, -c
// overrides and finally the flags the user actually set.
func resolveConfig(fs *pflag.FlagSet, f *cliFlags) (config.Config, error) {
	cfg, err := config.Load(f.cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg, err = config.ApplyKVOverrides(cfg, f.overrides)
	if err != nil {
		return cfg, err
	}

	changed := fs.Changed
	if changed("model") {
		cfg.Model = strings.TrimSpace(f.model)
	}
	if changed("top-p") {
		cfg.TopP = f.topP
		cfg.Temperature = nil
	}
	if changed("temperature") {
		t := f.temperature
		cfg.Temperature = &t
	}
	if changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if changed("key") {
		cfg.APIKey = strings.TrimSpace(f.key)
	}
	if changed("save") {
		cfg.Save = f.save
	}
	if changed("base-dir") {
		cfg.BaseDir = f.baseDir
	}
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("stylesheet") {
		cfg.Stylesheet = f.stylesheet
	}
	if changed("style") {
		cfg.Style = f.style
	}
	return cfg, nil
}

func newRootCmd(f *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpt-cli [latest|<key>]",
		Short: "Chat with an OpenAI compatible model in the terminal",
		Long: `gpt-cli streams chat completions and renders the replies as markdown with
syntax highlighted code. Conversations are saved under <base-dir>/messages and
can be resumed by key, or with "latest" for the most recent one.`,
		Example:       "  gpt-cli -s -m gpt-4 -t 1 -n 100\n  gpt-cli latest",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindFlags(cmd.PersistentFlags(), f)
	cmd.MarkFlagsMutuallyExclusive("top-p", "temperature")
	return cmd
}
