// Package launcher picks a pipeline and starts the terminal front-end for it
// as a separate process.
package launcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/dmitrijs2005/agentdesk/internal/client/cli"
	"github.com/dmitrijs2005/agentdesk/internal/client/config"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
)

// Test seams around process creation.
var (
	newCommand    = exec.Command
	runAttached   = func(cmd *exec.Cmd) error { return cmd.Run() }
	startDetached = func(cmd *exec.Cmd) error {
		if err := cmd.Start(); err != nil {
			return err
		}
		return cmd.Process.Release()
	}
)

var pipelineTitles = map[string]string{
	config.PipelineEmail:    "email drafting",
	config.PipelinePlanner:  "task planner",
	config.PipelineResearch: "web research",
}

type Launcher struct {
	cfg    *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func New(cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: logger.With("module", "launcher"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Choose returns the pipeline given with -p, or asks for one.
func (l *Launcher) Choose() (string, error) {
	if l.cfg.Pipeline != "" {
		if err := config.ValidatePipeline(l.cfg.Pipeline); err != nil {
			return "", err
		}
		return l.cfg.Pipeline, nil
	}

	fmt.Fprintln(l.out, "Available pipelines:")
	for _, p := range config.Pipelines {
		fmt.Fprintf(l.out, "  %-9s %s\n", p, pipelineTitles[p])
	}
	return cli.GetChoice(l.reader, "Select a pipeline to run:", config.Pipelines, l.out)
}

// Command builds the CLI invocation for pipeline. args are forwarded after
// the launcher's own flags have been removed.
func (l *Launcher) Command(pipeline string, args []string) *exec.Cmd {
	argv := append([]string{"-p", pipeline}, config.LauncherArgs(args)...)
	return newCommand(l.cfg.CLIBinary, argv...)
}

// Launch starts the CLI for pipeline. Attached, it shares the terminal and
// Launch returns when the CLI exits. Detached, output is discarded and
// Launch returns as soon as the process is started.
func (l *Launcher) Launch(ctx context.Context, pipeline string, args []string) error {
	cmd := l.Command(pipeline, args)

	if l.cfg.Detached {
		// nil stdio is connected to the null device
		cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
		if err := startDetached(cmd); err != nil {
			return fmt.Errorf("starting %s: %w", l.cfg.CLIBinary, err)
		}
		l.logger.Info(ctx, "cli started in background", "pipeline", pipeline)
		fmt.Fprintf(l.out, "%s pipeline launched in background.\n", pipeline)
		return nil
	}

	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	l.logger.Debug(ctx, "starting cli", "pipeline", pipeline, "args", cmd.Args)
	if err := runAttached(cmd); err != nil {
		return fmt.Errorf("running %s: %w", l.cfg.CLIBinary, err)
	}
	return nil
}

// Run chooses a pipeline and launches it.
func (l *Launcher) Run(ctx context.Context, args []string) error {
	pipeline, err := l.Choose()
	if err != nil {
		return err
	}
	return l.Launch(ctx, pipeline, args)
}
