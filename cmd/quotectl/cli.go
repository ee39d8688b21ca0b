package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	mcpadapter "github.com/kirillkom/quote-assistant/internal/adapters/mcp"
	"github.com/kirillkom/quote-assistant/internal/bootstrap"
	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/classifier"
	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
	"github.com/kirillkom/quote-assistant/internal/core/usecase"
	"github.com/kirillkom/quote-assistant/internal/golden"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/policyfile"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/ratesheet"
	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/quote-assistant/internal/observability/logging"
)

var out io.Writer = os.Stdout

func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "quotectl",
		Usage:   "Price renovation jobs locally without the API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Value: "offline", EnvVars: []string{"LLM_PROVIDER"}, Usage: "Interpreter: offline|ollama|gemini"},
			&cli.StringFlag{Name: "policy", EnvVars: []string{"PRICING_POLICY_FILE"}, Usage: "Pricing policy YAML (defaults built in)"},
			&cli.StringFlag{Name: "rates", Usage: "Rate sheet workbook (.xlsx)"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "Log level for stderr output"},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logging.New(logging.Options{Service: "quotectl", Version: Version, Level: c.String("log-level"), Output: os.Stderr}))
			return nil
		},
		Commands: []*cli.Command{
			generateCmd(),
			classifyCmd(),
			goldenCmd(),
			mcpCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a quote from a job description (argument or stdin)",
		ArgsUsage: "[description]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "local", Usage: "User id used for rate lookups"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Municipality for regional pricing"},
			&cli.StringFlag{Name: "previous", Usage: "JSON file with the quote being revised"},
			&cli.StringFlag{Name: "xlsx", Usage: "Also write the quote as a workbook to this path"},
		},
		Action: func(c *cli.Context) error {
			description, err := descriptionArg(c)
			if err != nil {
				return err
			}

			p, err := newPipeline(c)
			if err != nil {
				return err
			}

			req := domain.GenerateQuoteRequest{
				Description: description,
				UserID:      c.String("user"),
				Location:    c.String("location"),
				Mode:        domain.ModeDraft,
			}
			if path := c.String("previous"); path != "" {
				prev, err := readQuote(path)
				if err != nil {
					return err
				}
				req.PreviousQuote = prev
			}

			result, err := p.quotes.GenerateQuote(c.Context, req)
			if err != nil {
				return err
			}
			if path := c.String("xlsx"); path != "" && result.Quote != nil {
				data, err := ratesheet.ExportQuote(*result.Quote)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
			}
			return outputJSON(result)
		},
	}
}

func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify work for ROT, RUT or no deduction",
		ArgsUsage: "[description]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "work-type", Aliases: []string{"w"}, Usage: "Registered job type"},
		},
		Action: func(c *cli.Context) error {
			description, err := descriptionArg(c)
			if err != nil {
				return err
			}
			p, err := newPipeline(c)
			if err != nil {
				return err
			}
			return outputJSON(p.classifier.Classify(c.Context, description, c.String("work-type"), nil))
		},
	}
}

func goldenCmd() *cli.Command {
	return &cli.Command{
		Name:  "golden",
		Usage: "Replay golden cases and report price-band regressions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "internal/golden/testdata/cases.yaml", Usage: "Golden cases YAML"},
		},
		Action: func(c *cli.Context) error {
			cases, err := golden.LoadCases(c.String("file"))
			if err != nil {
				return err
			}
			p, err := newPipeline(c)
			if err != nil {
				return err
			}

			outcomes := golden.Run(c.Context, p.quotes, cases)
			for _, o := range outcomes {
				status := "PASS"
				if !o.Passed() {
					status = "FAIL"
				}
				fmt.Fprintf(out, "%s  %-36s %-14s %10.0f kr\n", status, o.Case, o.Type, o.Total)
				for _, f := range o.Failures {
					fmt.Fprintf(out, "      %s\n", f)
				}
			}
			passed, failed := golden.Summarize(outcomes)
			fmt.Fprintf(out, "%d passed, %d failed\n", passed, failed)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d golden case(s) failed", failed), 1)
			}
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the quote tools over MCP stdio",
		Action: func(c *cli.Context) error {
			p, err := newPipeline(c)
			if err != nil {
				return err
			}
			return mcpadapter.Run(p.quotes, p.classifier, p.registry, Version)
		},
	}
}

type pipeline struct {
	registry   *jobs.Registry
	classifier ports.DeductionClassifier
	quotes     ports.QuoteGenerator
}

// newPipeline wires the quote pipeline without any database or broker. Rates
// come from the optional workbook; everything else falls back to defaults.
func newPipeline(c *cli.Context) (*pipeline, error) {
	cfg := config.Load()
	cfg.LLMProvider = c.String("provider")

	registry := jobs.NewRegistry()
	generator, reasoner, err := bootstrap.NewLanguageModel(c.Context, cfg, registry, resilience.NewExecutor(resilience.LanguageModelConfig()))
	if err != nil {
		return nil, err
	}

	policies, err := policyfile.Load(c.String("policy"))
	if err != nil {
		return nil, err
	}

	var rates ports.RateStore
	if path := c.String("rates"); path != "" {
		sheet, err := ratesheet.Open(path)
		if err != nil {
			return nil, err
		}
		rates = sheet
	}

	deductions := classifier.New(reasoner)
	quotes := usecase.NewGenerateQuoteUseCase(
		usecase.NewInterpretUseCase(generator, registry, cfg.LLMTimeout),
		registry,
		deductions,
		policies,
		rates,
		nil,
		nil,
		nil,
		domain.PipelineLimits{MaxDescriptionLength: cfg.MaxDescriptionLength},
	)
	return &pipeline{registry: registry, classifier: deductions, quotes: quotes}, nil
}

func descriptionArg(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdinHasData() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
	}
	return "", errors.New("description is required as an argument or on stdin")
}

func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func readQuote(path string) (*domain.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read previous quote: %w", err)
	}
	var q domain.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode previous quote: %w", err)
	}
	return &q, nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
