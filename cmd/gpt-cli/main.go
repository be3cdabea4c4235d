package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"gpt-cli/internal/agent"
	"gpt-cli/internal/completion"
	"gpt-cli/internal/config"
	"gpt-cli/internal/highlight"
	"gpt-cli/internal/history"
	"gpt-cli/internal/logger"
	"gpt-cli/internal/markdown"
	"gpt-cli/internal/render"
	"gpt-cli/internal/repl"
	"gpt-cli/internal/session"
)

var log = logger.Named("main")

// exitError carries a process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	logger.Configure()
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := buildCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func buildCommand(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}
	root := newRootCmd(f)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags(), f)
		if err != nil {
			return &exitError{code: 1, err: err}
		}
		from := ""
		if len(args) == 1 {
			from = args[0]
		}
		if code := runChat(cmd.Context(), cfg, from); code != 0 {
			return &exitError{code: code}
		}
		return nil
	}
	root.AddCommand(newConfigCmd(f), newSessionsCmd(f), newPingCmd(f))
	return root
}

// setupLogs sends the main and LLM logs to files under the base dir. Logs
// never go to the terminal the chat is drawn on.
func setupLogs(baseDir string) func() {
	var closers []io.Closer
	if c, _, err := logger.SetupFile(logger.Path(baseDir, logger.LogFileName)); err != nil {
		logger.Root().SetOutput(io.Discard)
	} else {
		closers = append(closers, c)
	}
	if entry, c, _, err := logger.SetupComponentFile("llm", logger.Path(baseDir, logger.LLMLogFileName)); err != nil {
		log.Warnf("failed to initialize llm log: %v", err)
		logger.SetGlobalLLMLogger(logger.NoopLLMLogger{})
	} else {
		logger.SetGlobalLLMLogger(logger.NewLLMLogger(entry.Logger))
		closers = append(closers, c)
	}
	return func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" || !render.IsTerminal(os.Stdout) {
		return termenv.Ascii
	}
	return termenv.TrueColor
}

func loadStylesheet(cfg config.Config) highlight.Resolver {
	var (
		sheet *highlight.Stylesheet
		err   error
	)
	if cfg.Stylesheet != "" {
		sheet, err = highlight.LoadStylesheet(cfg.Stylesheet)
	} else {
		sheet, err = highlight.ChromaStylesheet(cfg.Style)
	}
	if err != nil {
		log.Warnf("code will not be styled: %v", err)
		return nil
	}
	log.Infof("loaded %d highlight rules", sheet.Len())
	return sheet
}

func runChat(ctx context.Context, cfg config.Config, from string) int {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	closeLogs := setupLogs(cfg.BaseDir)
	defer closeLogs()
	log.Infof("starting: model=%s base_dir=%s save=%t", cfg.Model, cfg.BaseDir, cfg.Save)

	store := session.NewStore(cfg.MessageDir(), cfg.Save)
	var (
		key  string
		msgs []agent.Message
	)
	if from != "" {
		resolved, err := store.Resolve(from)
		if err == nil {
			msgs, err = store.Load(resolved)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		key = resolved
	}

	client, err := completion.New(completion.Options{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	profile := colorProfile()
	columns := func() int { return render.Columns(os.Stdout) }
	md := markdown.New(markdown.Options{
		Bridge:  highlight.NewBridge(loadStylesheet(cfg), profile),
		Profile: profile,
	})
	renderer := render.NewRenderer(render.Options{Writer: os.Stdout, Formatter: md, Columns: columns})

	hist := history.New(cfg.HistoryPath())
	recent, err := hist.Recent(history.DefaultLimit)
	if err != nil {
		log.Warnf("load prompt history: %v", err)
	}
	input := repl.NewLineReader(recent)

	sess := repl.New(repl.Options{
		Out:       os.Stdout,
		Err:       os.Stderr,
		Source:    client,
		Renderer:  renderer,
		Store:     store,
		Input:     input,
		History:   hist,
		Styles:    repl.NewStyles(os.Stdout, profile),
		Columns:   columns,
		Interval:  time.Duration(cfg.RenderIntervalMS) * time.Millisecond,
		Model:     cfg.Model,
		MaxTokens: int(cfg.MaxTokens),
		Sampling:  completion.SamplingFor(cfg.Temperature, cfg.TopP),
		Key:       key,
		Messages:  msgs,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		log.Infof("received %s, saving and exiting", sig)
		_ = input.Close()
		os.Exit(sess.Shutdown())
	}()

	if len(msgs) > 0 {
		if err := sess.Replay(); err != nil {
			log.Warnf("replay: %v", err)
		}
	} else {
		fmt.Fprintln(os.Stdout)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return sess.Run(ctx)
}
