package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/config"
	"github.com/alecf/manimator/internal/output"
	"github.com/alecf/manimator/internal/pricing"
	"github.com/alecf/manimator/internal/prompt"
	"github.com/alecf/manimator/internal/spinner"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <step text...>",
		Short: "Generate one animation and print its path",
		Long: `Generate an animation for a lesson step without running the server.
The video lands in the same cache the server uses.

Example:
  manimator render --topic math "the area of a circle is pi r squared"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRender,
	}

	cmd.Flags().String("topic", animation.DefaultTopic, "lesson topic")
	cmd.Flags().Int("step", 1, "step number")
	cmd.Flags().Bool("no-cache", false, "render again even if a cached video exists")
	cmd.Flags().BoolP("json", "j", false, "JSON output with metadata")
	cmd.Flags().BoolP("tokens", "t", false, "show token usage and costs")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	stepNumber, _ := cmd.Flags().GetInt("step")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	req := animation.Request{
		StepText:   strings.Join(args, " "),
		StepNumber: stepNumber,
		Topic:      topic,
		Refresh:    noCache,
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Topic: %s\n", req.Topic)
		fmt.Fprintf(os.Stderr, "Step: %s\n", req.StepText)
		fmt.Fprintf(os.Stderr, "Using %s %s\n", cfg.Model.Provider, cfg.Model.Model)
		countTokens(os.Stderr, prompt.Build(req.StepText, req.Topic))
	}

	if debug {
		builder := prompt.NewBuilder(req.StepText, req.Topic, cfg.Renderer.Scene)
		userPrompt := builder.UserPrompt()
		fmt.Fprintf(os.Stderr, "\n=== DEBUG: System Prompt ===\n%s\n", builder.SystemPrompt())
		fmt.Fprintf(os.Stderr, "\n=== DEBUG: User Prompt (first 500 chars) ===\n%s\n", truncate(userPrompt, 500))
		fmt.Fprintf(os.Stderr, "\n=== DEBUG: User Prompt length: %d chars ===\n\n", len(userPrompt))
	}

	result, err := executeGeneration(cmd.Context(), cfg, req, !quiet && !verbose && !debug)
	if err != nil {
		return err
	}

	return outputResult(cmd, result)
}

// executeGeneration runs one request through the pipeline with a progress spinner
func executeGeneration(ctx context.Context, cfg *config.Config, req animation.Request, showProgress bool) (*animation.Result, error) {
	// Keep logs out of the way of the spinner unless asked for
	level := cfg.LogLevel
	if !verbose && !debug {
		level = "warn"
	}
	logger := newLogger(level, "console")
	defer logger.Sync()

	var spin *spinner.Spinner
	var observer animation.Observer
	if showProgress {
		spin = spinner.New(stageMessage(animation.StageReceived, cfg.Model.Model))
		observer = func(stage animation.Stage) {
			spin.Update(stageMessage(stage, cfg.Model.Model))
		}
	}

	p, err := newPipeline(ctx, cfg, logger, observer)
	if err != nil {
		return nil, err
	}

	if spin != nil {
		spin.Start()
		defer spin.Stop()
	}

	result, err := p.service.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("animation failed (%s): %w", animation.KindOf(err), err)
	}
	return result, nil
}

// stageMessage is the spinner text shown while a stage runs
func stageMessage(stage animation.Stage, model string) string {
	switch stage {
	case animation.StageCacheCheck, animation.StageCacheHit:
		return "Checking cache..."
	case animation.StageCacheMiss, animation.StagePrompting, animation.StageModelCall:
		return fmt.Sprintf("Writing scene with %s...", model)
	case animation.StageExtracting:
		return "Extracting scene code..."
	case animation.StageRendering:
		return "Rendering with manim..."
	case animation.StageLocating:
		return "Saving video..."
	case animation.StageRespond:
		return "Done"
	case animation.StageFailed:
		return "Failed"
	default:
		return "Starting..."
	}
}

func outputResult(cmd *cobra.Command, result *animation.Result) error {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	tokensFlag, _ := cmd.Flags().GetBool("tokens")
	out := cmd.OutOrStdout()

	pricingDB := pricing.GetDatabase()

	if jsonFlag {
		var cost *float64
		if resp := result.Model; resp != nil {
			cost = pricingDB.EstimateCost(resp.Model, resp.TokensInput, resp.TokensOutput)
		}
		jsonOutput, err := output.FormatJSON(result, cost)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, jsonOutput)
		return nil
	}

	fmt.Fprintln(out, output.FormatPlain(result))

	// Show token usage if requested
	if tokensFlag {
		fmt.Fprintln(out)
		if resp := result.Model; resp != nil {
			modelPricing := pricingDB.GetPricing(resp.Model)
			fmt.Fprintln(out, pricing.FormatTokenUsage(resp.TokensInput, resp.TokensOutput, modelPricing, pricingDB.LastUpdated))
		} else {
			fmt.Fprintln(out, "Token usage: none (served from cache)")
		}
	}

	return nil
}
