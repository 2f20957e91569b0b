package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/agent-runner/pkg/capture"
	"github.com/devicelab-dev/agent-runner/pkg/config"
	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/driver/appium"
	"github.com/devicelab-dev/agent-runner/pkg/driver/webdriver"
	"github.com/devicelab-dev/agent-runner/pkg/executor"
	"github.com/devicelab-dev/agent-runner/pkg/jsengine"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
	"github.com/devicelab-dev/agent-runner/pkg/oracle"
	"github.com/devicelab-dev/agent-runner/pkg/report"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run agent tasks against a device or browser",
	ArgsUsage: "<prompt-file> <task-file> <config-file>",
	Description: `Run every task from the task file. Each task gets its own run folder
under the reports directory with the full step-by-step record: outcome
JSON, page source dumps, and screenshots.

Examples:
  # Android via a local Appium server
  agent-runner run prompt.txt tasks.json android.yaml

  # Web via a local Selenium server
  agent-runner run prompt.txt tasks.json web.yaml --webdriver-url http://localhost:4444

  # Remote model service
  agent-runner run prompt.txt tasks.json config.yaml --oracle-url http://ollama.internal:11434`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "appium-url",
			Usage:   "Appium server URL (for mobile platforms)",
			Value:   "http://127.0.0.1:4723",
			EnvVars: []string{"APPIUM_URL"},
		},
		&cli.StringFlag{
			Name:    "webdriver-url",
			Usage:   "WebDriver server URL (for web platform)",
			Value:   "http://127.0.0.1:4444",
			EnvVars: []string{"WEBDRIVER_URL"},
		},
		&cli.StringFlag{
			Name:    "oracle-url",
			Usage:   "Model service URL (Ollama-compatible)",
			Value:   "http://127.0.0.1:11434",
			EnvVars: []string{"ORACLE_URL"},
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Model name",
			Value:   oracle.DefaultModel,
			EnvVars: []string{"ORACLE_MODEL"},
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: <home>/reports)",
		},
		&cli.IntFlag{
			Name:  "max-steps",
			Usage: "Maximum steps per task",
			Value: executor.DefaultMaxSteps,
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Environment variables for task expressions (KEY=VALUE)",
		},
	},
	Action: runTasks,
}

// timeRound trims duration noise in console output.
const timeRound = 100 * time.Millisecond

func runTasks(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: agent-runner run <prompt-file> <task-file> <config-file>")
	}
	if c.Bool("no-ansi") {
		colorsEnabled = false
	}

	promptData, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to read prompt file: %w", err)
	}

	tasks, err := config.LoadTasks(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	platformCfg, err := config.LoadPlatform(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("failed to load platform config: %w", err)
	}

	outputDir := c.String("output")
	if outputDir == "" {
		outputDir = config.GetReportsDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := logger.Init(filepath.Join(outputDir, "agent-runner.log")); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	logger.Info("=== Agent run started ===")
	logger.Info("Output directory: %s", outputDir)
	logger.Info("Platform: %s", platformCfg.Platform)
	logger.Info("Tasks: %d", len(tasks))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n%sSetup%s\n", color(colorBold), color(colorReset))
	fmt.Println(strings.Repeat("─", 40))

	session, webExec, mobileExec, err := createSession(c, platformCfg)
	if err != nil {
		logger.Error("Failed to create session: %v", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()
	printSetupSuccess(fmt.Sprintf("Session created (%s)", platformCfg.Platform))
	printSetupSuccess(fmt.Sprintf("Report directory: %s", outputDir))

	engine := jsengine.New()
	engine.SetPlatform(platformCfg.Platform)
	engine.SetEnv(platformCfg.Env)
	engine.SetEnv(parseEnvVars(c.StringSlice("env")))

	model := oracle.NewClient(oracle.Config{
		ServerURL:  c.String("oracle-url"),
		Model:      c.String("model"),
		BasePrompt: string(promptData),
	})

	fmt.Printf("\n%sExecution%s\n", color(colorBold), color(colorReset))
	fmt.Println(strings.Repeat("─", 40))

	passed, failed, skipped := 0, 0, 0
	for i, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		if task.Skip {
			fmt.Printf("\n  %s[%d/%d]%s %s %s(skipped)%s\n",
				color(colorCyan), i+1, len(tasks), color(colorReset),
				task.Task, color(colorGray), color(colorReset))
			logger.Info("Skipping task: %s", task.Task)
			skipped++
			continue
		}

		result, err := runOneTask(ctx, c, task, i, len(tasks), platformCfg, session, webExec, mobileExec, engine, model, outputDir)
		if err != nil {
			fmt.Printf("    %s✗%s %v\n", color(colorRed), color(colorReset), err)
			logger.Error("Task %s failed: %v", task.Task, err)
			failed++
			continue
		}

		if runPassed(result) {
			passed++
		} else {
			failed++
		}
	}

	printRunSummary(passed, failed, skipped)

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func runOneTask(ctx context.Context, c *cli.Context, task config.Task, index, total int,
	platformCfg *config.Platform, session core.Session, webExec, mobileExec core.Executor,
	engine *jsengine.Engine, model *oracle.Client, outputDir string) (*executor.RunResult, error) {

	fmt.Printf("\n  %s[%d/%d]%s %s%s%s\n",
		color(colorCyan), index+1, total, color(colorReset),
		color(colorBold), task.Task, color(colorReset))
	fmt.Println(strings.Repeat("─", 60))

	details, err := engine.ExpandVariables(task.Details)
	if err != nil {
		return nil, fmt.Errorf("expand task details: %w", err)
	}

	writer, err := report.NewRunWriter(outputDir, task.Task)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteTask(task); err != nil {
		logger.Warn("failed to record task definition: %v", err)
	}
	if err := writer.WriteConfig(platformCfg); err != nil {
		logger.Warn("failed to record platform config: %v", err)
	}

	logger.Info("Task %s: run %s", task.Task, writer.RunID())

	runner := executor.NewRunner(executor.RunnerConfig{
		Session:        session,
		WebExecutor:    webExec,
		MobileExecutor: mobileExec,
		Oracle:         model,
		Capturer:       capture.NewFileCapturer(session, writer.Dir()),
		Recorder:       writer,
		MaxSteps:       c.Int("max-steps"),
		OnStepComplete: onStepComplete,
	})

	result := runner.Run(ctx, details)

	summary := report.Summary{
		Task:        task.Task,
		Platform:    string(result.Platform),
		Termination: string(result.Termination),
		Steps:       len(result.Steps),
		DurationMs:  result.Duration.Milliseconds(),
	}
	if err := writer.WriteSummary(summary); err != nil {
		logger.Warn("failed to record run summary: %v", err)
	}

	printTaskResult(task.Task, result)
	return result, nil
}

// runPassed reports whether a run ended with the model declaring the task
// done. Everything else, including a clean terminal error action, counts
// as a failure for the exit code.
func runPassed(result *executor.RunResult) bool {
	if result.Termination != executor.TerminatedByAction {
		return false
	}
	last := result.Steps[len(result.Steps)-1]
	return last.Outcome.Action.Kind == core.KindFinish
}

// createSession connects to the automation backend named by the platform
// config and returns the session together with the executor for its side.
func createSession(c *cli.Context, cfg *config.Platform) (core.Session, core.Executor, core.Executor, error) {
	switch strings.ToLower(cfg.Platform) {
	case "web":
		d, err := webdriver.NewDriver(c.String("webdriver-url"), cfg.Capabilities)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.URL != "" {
			if err := d.NavigateTo(cfg.URL); err != nil {
				d.Close()
				return nil, nil, nil, fmt.Errorf("navigate to %s: %w", cfg.URL, err)
			}
		}
		return d, d, nil, nil
	case "android", "ios":
		d, err := appium.NewDriver(c.String("appium-url"), cfg.Capabilities)
		if err != nil {
			return nil, nil, nil, err
		}
		return d, nil, d, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported platform: %q", cfg.Platform)
	}
}

func onStepComplete(index int, outcome *core.Outcome) {
	desc := string(outcome.Action.Kind)
	switch {
	case outcome.Action.XPath != "":
		desc += " " + outcome.Action.XPath
	case outcome.Action.CSS != "":
		desc += " " + outcome.Action.CSS
	case outcome.Action.Bounds != "":
		desc += " " + outcome.Action.Bounds
	}

	if outcome.Result == core.ResultSuccess {
		fmt.Printf("    %s✓%s step %d: %s\n", color(colorGreen), color(colorReset), index, desc)
	} else {
		fmt.Printf("    %s✗%s step %d: %s\n", color(colorRed), color(colorReset), index, desc)
		fmt.Printf("      %s╰─%s %s\n", color(colorGray), color(colorReset), outcome.Result)
	}
}

func printTaskResult(name string, result *executor.RunResult) {
	if runPassed(result) {
		fmt.Printf("  %s✓ %s%s (%d steps, %s)\n",
			color(colorGreen), color(colorReset), name, len(result.Steps), result.Duration.Round(timeRound))
	} else {
		fmt.Printf("  %s✗ %s%s (%d steps, %s, %s)\n",
			color(colorRed), color(colorReset), name, len(result.Steps), result.Duration.Round(timeRound), result.Termination)
	}
}

func printRunSummary(passed, failed, skipped int) {
	fmt.Println()
	fmt.Println(strings.Repeat("═", 40))
	if passed > 0 {
		fmt.Printf("  %s%d tasks passed%s\n", color(colorGreen), passed, color(colorReset))
	}
	if failed > 0 {
		fmt.Printf("  %s%d tasks failed%s\n", color(colorRed), failed, color(colorReset))
	}
	if skipped > 0 {
		fmt.Printf("  %s%d tasks skipped%s\n", color(colorCyan), skipped, color(colorReset))
	}
	fmt.Println(strings.Repeat("═", 40))
}

func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
