package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/cardsmith/internal/card"
	"github.com/hpungsan/cardsmith/internal/config"
	"github.com/hpungsan/cardsmith/internal/errors"
	"github.com/hpungsan/cardsmith/internal/llm"
	"github.com/hpungsan/cardsmith/internal/mcp"
	"github.com/hpungsan/cardsmith/internal/prompts"
	"github.com/hpungsan/cardsmith/internal/session"
	"github.com/hpungsan/cardsmith/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "cardsmith",
		Usage:   "Generate SVG cards from a prompt",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				EnvVars: []string{"CARDSMITH_CONFIG"},
				Usage:   "Path to the TOML config file",
			},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			// stderr only: stdout carries SVG output and the MCP stdio stream.
			slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			mcpCmd(),
			stylesCmd(),
			generateCmd(),
		},
	}
	app.ErrWriter = os.Stderr
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// startup is what every generating command needs after startup checks pass.
type startup struct {
	cfg *config.Config
	gen llm.Generator
}

// loadRuntime reads the config and builds the generation client. Any failure
// here stops the command before a surface starts.
func loadRuntime(c *cli.Context) (*startup, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	gen, err := llm.New(llm.Settings{
		Provider: cfg.API.Provider,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.API.BaseURL,
		Model:    cfg.API.Model,
	})
	if err != nil {
		return nil, errors.NewConfigMalformed(path, err)
	}
	slog.Debug("config loaded", "path", path, "provider", cfg.API.Provider, "model", cfg.API.Model)
	return &startup{cfg: cfg, gen: gen}, nil
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", EnvVars: []string{"CARDSMITH_BIND"}, Usage: "Listen address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, EnvVars: []string{"CARDSMITH_PORT"}, Usage: "Listen port (default from config, 8501)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return outputError(err)
			}

			bind, port := rt.cfg.Server.Bind, rt.cfg.Server.Port
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port out of range: %d", port)))
			}

			logger := slog.Default()
			store := session.NewStore(session.WithLogger(logger))
			srv := web.NewServer(web.Deps{
				Store:     store,
				Catalog:   prompts.Default(),
				Generator: rt.gen,
				Logger:    logger,
				Version:   Version,
			}, bind, port)

			err = web.Run(srv, logger)
			store.Wait()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the card tools over MCP stdio",
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return outputError(err)
			}
			if err := mcp.Run(mcp.Deps{
				Catalog:   prompts.Default(),
				Generator: rt.gen,
				Logger:    slog.Default(),
				Version:   Version,
			}); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// styleOutput is one entry of the styles command output.
type styleOutput struct {
	Name        string `json:"name"`
	PromptChars int    `json:"prompt_chars"`
	Prompt      string `json:"prompt,omitempty"`
}

// stylesCmd creates the styles command.
func stylesCmd() *cli.Command {
	return &cli.Command{
		Name:  "styles",
		Usage: "List the preset card styles",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "prompts", Usage: "Include the full system prompts"},
		},
		Action: func(c *cli.Context) error {
			catalog := prompts.Default()
			out := make([]styleOutput, 0)
			for _, name := range catalog.Styles() {
				p, err := catalog.Prompt(name)
				if err != nil {
					return outputError(err)
				}
				entry := styleOutput{Name: name, PromptChars: len([]rune(p))}
				if c.Bool("prompts") {
					entry.Prompt = p
				}
				out = append(out, entry)
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// generateOutput is printed by generate when the card goes to a file.
type generateOutput struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	Style         string `json:"style"`
	DisplayHeight int    `json:"display_height"`
	Path          string `json:"path"`
}

// generateCmd creates the generate command.
func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate one card (reads the card content from --input or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "style", Aliases: []string{"s"}, Usage: "Preset style name (default: first style)"},
			&cli.StringFlag{Name: "custom-prompt", Usage: "Custom system prompt, used instead of --style"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Card content"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the SVG here instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return outputError(err)
			}

			userInput := c.String("input")
			if userInput == "" && stdinHasData() {
				if userInput, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}
			if userInput == "" {
				return outputError(errors.NewInvalidRequest("card content is required (--input or stdin)"))
			}

			catalog := prompts.Default()
			sel := prompts.Selection{Mode: prompts.ModePreset, Style: c.String("style")}
			if c.IsSet("custom-prompt") {
				sel = prompts.Selection{Mode: prompts.ModeCustom, Custom: c.String("custom-prompt")}
			} else if sel.Style == "" {
				sel.Style = catalog.Styles()[0]
			}
			systemPrompt, err := catalog.Resolve(sel)
			if err != nil {
				return outputError(err)
			}

			sess := session.New("cli", session.WithLogger(slog.Default()))
			rec, err := sess.Generate(c.Context, rt.gen, prompts.StyleLabel(sel), systemPrompt, userInput)
			if err != nil {
				return outputError(err)
			}

			out := c.String("out")
			if out == "" {
				_, err := io.WriteString(c.App.Writer, rec.Markup)
				return err
			}
			if err := os.WriteFile(out, []byte(rec.Markup), 0o644); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(c.App.Writer, generateOutput{
				ID:            rec.ID,
				Timestamp:     rec.Timestamp,
				Style:         rec.Style,
				DisplayHeight: card.DisplayHeight(rec.Markup),
				Path:          out,
			})
		},
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var cErr *errors.CardError
	if stderrors.As(err, &cErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
