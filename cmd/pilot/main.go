// Package main provides the pilot browsing agent. It drives a real browser
// with a chat model: the model proposes a plan, the operator accepts it,
// and the session runs until the model answers or the operator quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/pilot/pkg/agent"
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/executor/cli"
	"github.com/entrhq/pilot/pkg/llm/openai"
	"github.com/entrhq/pilot/pkg/logging"
)

const version = "0.1.0"

// Flags holds the command line. Flags that were set override the config file.
type Flags struct {
	ConfigPath   string
	APIKey       string
	BaseURL      string
	Model        string
	Driver       string
	Headful      bool
	Autopilot    bool
	OneShot      bool
	ContextLimit int
	MaxSteps     int
	Functions    string
	Workspace    string
	DumpPath     string
	ShowResults  bool
	Plain        bool
	ShowVersion  bool

	set map[string]bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("Pilot v%s\n", version)
		return
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags, strings.Join(flag.Args(), " ")); err != nil {
		stop()
		log.Fatalf("Application error: %v", err)
	}
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&f.APIKey, "api-key", "", "OpenAI API key (default: the variable named by api_key_env)")
	flag.StringVar(&f.BaseURL, "base-url", "", "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&f.Model, "model", config.DefaultModel, "Chat model to use")
	flag.StringVar(&f.Driver, "driver", string(config.DriverPlaywright), "Browser driver: playwright or chromedp")
	flag.BoolVar(&f.Headful, "headful", false, "Show the browser window")
	flag.BoolVar(&f.Autopilot, "autopilot", false, "Accept plans automatically and talk to a supervising process")
	flag.BoolVar(&f.OneShot, "one-shot", false, "End the session after the first answer")
	flag.IntVar(&f.ContextLimit, "context-limit", config.DefaultContextLimit, "Characters of page content sent per step")
	flag.IntVar(&f.MaxSteps, "max-steps", 0, "Stop after this many steps (0 means no limit)")
	flag.StringVar(&f.Functions, "functions", "", "Comma-separated actions to offer the model (default: all)")
	flag.StringVar(&f.Workspace, "workspace", "", "Directory read_file and take_screenshot may use")
	flag.StringVar(&f.DumpPath, "dump", "", "Write the conversation history to this JSON file after every step")
	flag.BoolVar(&f.ShowResults, "show-results", false, "Print the result of every action")
	flag.BoolVar(&f.Plain, "plain", false, "Disable colored output")
	flag.BoolVar(&f.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Pilot - a browsing agent\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pilot [options] [task]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pilot \"find the pricing of example.com\"\n")
		fmt.Fprintf(os.Stderr, "  pilot -headful -driver chromedp\n")
		fmt.Fprintf(os.Stderr, "  pilot -config pilot.yaml -autopilot \"summarize the go.dev blog\"\n")
	}

	flag.Parse()

	f.set = make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(f *Flags) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	if f.set["base-url"] {
		cfg.BaseURL = f.BaseURL
	}
	if f.set["model"] {
		cfg.Model = f.Model
	}
	if f.set["driver"] {
		cfg.Driver = config.Driver(f.Driver)
	}
	if f.set["headful"] {
		cfg.Headless = !f.Headful
	}
	if f.set["autopilot"] {
		cfg.Autopilot = f.Autopilot
	}
	if f.set["one-shot"] {
		cfg.OneShot = f.OneShot
	}
	if f.set["context-limit"] {
		cfg.ContextLimit = f.ContextLimit
	}
	if f.set["max-steps"] {
		cfg.MaxSteps = f.MaxSteps
	}
	if f.set["functions"] {
		cfg.Functions = splitList(f.Functions)
	}
	if f.set["workspace"] {
		cfg.Files.Workspace = f.Workspace
	}
	if f.set["dump"] {
		cfg.Debug.DumpPath = f.DumpPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, cfg *config.Config, f *Flags, task string) error {
	apiKey := f.APIKey
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}
	clientOpts := []openai.ClientOption{openai.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.NewClient(apiKey, clientOpts...)
	if err != nil {
		return err
	}

	page, err := launch(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Printf("Warning: failed to close browser: %v", err)
		}
	}()

	prompter := approval.NewTerminal(os.Stdin, os.Stdout, 0)
	renderer := cli.NewRenderer(os.Stdout,
		cli.WithAutopilot(cfg.Autopilot),
		cli.WithShowResults(f.ShowResults),
		cli.WithPlain(f.Plain),
	)

	session, err := agent.NewSession(cfg, page, client, prompter,
		agent.WithSessionEmitter(renderer.Handle),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if strings.TrimSpace(task) == "" {
		task, err = prompter.Prompt(ctx, "Enter a task: ")
		if err != nil {
			return fmt.Errorf("failed to read task: %w", err)
		}
		if approval.IsQuit(task) {
			return nil
		}
	}

	err = session.Run(ctx, task)
	if ctx.Err() != nil {
		fmt.Println("\n\nShutting down gracefully...")
		return nil
	}
	return err
}

func launch(ctx context.Context, cfg *config.Config) (browser.Page, error) {
	driverLog, err := logging.NewLogger("browser")
	if err != nil {
		driverLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}

	opts := browser.Options{
		Logger:            driverLog.Writer(),
		Headless:          cfg.Headless,
		Width:             cfg.Viewport.Width,
		Height:            cfg.Viewport.Height,
		NavigationTimeout: cfg.NavigationTimeout,
	}
	if cfg.Files.Workspace != "" {
		opts.DownloadDir = cfg.Files.Workspace
	}

	if cfg.Driver == config.DriverChromedp {
		return browser.LaunchChromedp(ctx, opts)
	}
	return browser.Launch(ctx, opts)
}
