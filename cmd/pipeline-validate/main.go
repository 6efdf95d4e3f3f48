// Command pipeline-validate parses and statically validates a pipeline
// DSL document and, on success, can emit the equivalent
// github.com/buildkite/go-pipeline document as YAML or JSON. It is
// modeled on the agent's own cmd/agent/agent.go entrypoint, modernized to
// the generic newCommand[T] wrapper clicommand uses throughout.
package main

import (
	"fmt"
	"os"

	"github.com/buildkite/pipeline-validator/cliconfig"
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/dsl"
	"github.com/buildkite/pipeline-validator/internal/emit"
	"github.com/buildkite/pipeline-validator/internal/pipelinedef"
	"github.com/buildkite/pipeline-validator/internal/semantic"
	"github.com/buildkite/pipeline-validator/internal/shelllint"
	"github.com/buildkite/pipeline-validator/logger"
	"github.com/buildkite/pipeline-validator/version"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

// defaultPipelinePaths mirrors pipeline_upload.go's own default-location
// search, adapted to this DSL's own file extension.
var defaultPipelinePaths = []string{
	"pipeline.bkdsl",
	".buildkite/pipeline.bkdsl",
	"buildkite/pipeline.bkdsl",
}

// GlobalConfig mirrors clicommand's GlobalConfig: the shared logging
// flags every subcommand embeds.
type GlobalConfig struct {
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "Enable debug mode"},
		cli.StringFlag{Name: "log-level", Value: "notice", Usage: "debug, info, notice, warn, error, or fatal"},
		cli.BoolFlag{Name: "no-color", Usage: "Don't show colors in logging"},
	}
}

// ValidateConfig is the config struct for the `validate` subcommand.
type ValidateConfig struct {
	GlobalConfig
	FilePaths []string `cli:"arg:*"`
}

// EmitConfig is the config struct for the `emit` subcommand.
type EmitConfig struct {
	GlobalConfig
	FilePaths []string `cli:"arg:*"`
	Format    string   `cli:"format"`
}

type configType interface {
	ValidateConfig | EmitConfig
}

// newCommand mirrors clicommand.newCommand[T]: it loads cfg from CLI
// flags and environment, builds a logger from the resulting config, and
// calls f. Unlike the agent's config structs, these have no config-file
// defaults or API token to load, so the loader is used purely for its
// CLI-flag-to-struct binding.
func newCommand[T configType](f func(c *cli.Context, cfg T, l logger.Logger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := new(T)
		loader := cliconfig.Loader{CLI: c, Config: cfg}

		warnings, err := loader.Load()
		if err != nil {
			return err
		}

		l := createLogger(cfg)
		for _, warning := range warnings {
			l.Warn("%s", warning)
		}

		return f(c, *cfg, l)
	}
}

func createLogger(cfg any) logger.Logger {
	printer := logger.NewTextPrinter(os.Stderr)
	if noColor, err := reflections.GetField(cfg, "NoColor"); err == nil {
		if nc, ok := noColor.(bool); ok && nc {
			printer.Colors = false
		}
	}

	l := logger.NewConsoleLogger(printer, os.Exit)
	l.SetLevel(logger.NOTICE)

	if levelStr, err := reflections.GetField(cfg, "LogLevel"); err == nil {
		if s, ok := levelStr.(string); ok && s != "" {
			if level, err := logger.LevelFromString(s); err == nil {
				l.SetLevel(level)
			}
		}
	}

	if debug, err := reflections.GetField(cfg, "Debug"); err == nil {
		if d, ok := debug.(bool); ok && d {
			l.SetLevel(logger.DEBUG)
		}
	}

	return l
}

// resolveFile picks the single source document to operate on: an
// explicit path argument, or the first of defaultPipelinePaths that
// exists.
func resolveFile(paths []string) (string, error) {
	if len(paths) > 1 {
		return "", fmt.Errorf("pipeline-validate operates on a single document; got %d paths", len(paths))
	}
	if len(paths) == 1 {
		return paths[0], nil
	}
	for _, p := range defaultPipelinePaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no pipeline document given, and none of %v exist", defaultPipelinePaths)
}

// parseAndCheck runs the full validation pipeline over file: DSL parse,
// then the cross-cutting semantic checks (§4.4). It returns the parsed
// document even when diags is non-empty, so callers that want partial
// results (e.g. for debugging) can still inspect it.
func parseAndCheck(file string) (*diagnosticResult, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	pd, diags := dsl.Parse(file, string(src), &shelllint.DefaultLinter{})
	if pd == nil {
		return &diagnosticResult{diags: diags}, nil
	}

	diags.Merge(semantic.Check(pd))
	return &diagnosticResult{pd: pd, diags: diags}, nil
}

type diagnosticResult struct {
	pd    *pipelinedef.PipelineDef
	diags *diagnostic.Diagnostics
}

func main() {
	app := cli.NewApp()
	app.Name = "pipeline-validate"
	app.Version = version.Version()
	app.Usage = "validate and emit Buildkite pipeline DSL documents"

	app.Commands = []cli.Command{
		{
			Name:  "validate",
			Usage: "parse and semantically validate a pipeline document, reporting any diagnostics",
			Flags: globalFlags(),
			Action: newCommand(func(c *cli.Context, cfg ValidateConfig, l logger.Logger) error {
				file, err := resolveFile(cfg.FilePaths)
				if err != nil {
					return err
				}

				result, err := parseAndCheck(file)
				if err != nil {
					return err
				}

				if result.diags.Len() > 0 {
					for _, d := range result.diags.Items() {
						fmt.Fprintln(c.App.ErrWriter, d.Error())
					}
					return cli.NewExitError("", 1)
				}

				l.Notice("%s is valid", file)
				return nil
			}),
		},
		{
			Name:  "emit",
			Usage: "validate a pipeline document and emit the equivalent go-pipeline document",
			Flags: append(globalFlags(), cli.StringFlag{
				Name:  "format",
				Value: "yaml",
				Usage: "output format: yaml or json",
			}),
			Action: newCommand(func(c *cli.Context, cfg EmitConfig, l logger.Logger) error {
				file, err := resolveFile(cfg.FilePaths)
				if err != nil {
					return err
				}

				result, err := parseAndCheck(file)
				if err != nil {
					return err
				}
				if result.diags.Len() > 0 {
					for _, d := range result.diags.Items() {
						fmt.Fprintln(c.App.ErrWriter, d.Error())
					}
					return cli.NewExitError("", 1)
				}

				format := emit.FormatYAML
				if cfg.Format == "json" {
					format = emit.FormatJSON
				}

				out, err := emit.Serialize(emit.Pipeline(result.pd), format)
				if err != nil {
					return err
				}
				_, err = c.App.Writer.Write(out)
				return err
			}),
		},
	}

	app.Action = func(c *cli.Context) error {
		return cli.ShowAppHelp(c)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
