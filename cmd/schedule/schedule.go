// Package schedule implements the command that repeats a pass on a cron schedule.
package schedule

import (
	"context"
	"fmt"

	"github.com/paulbousquet/fomcscrape/cmd/common"
	"github.com/paulbousquet/fomcscrape/internal/api"
	"github.com/paulbousquet/fomcscrape/internal/bootstrap"
	"github.com/paulbousquet/fomcscrape/internal/config"
	"github.com/paulbousquet/fomcscrape/internal/scheduler"
	"github.com/spf13/cobra"
)

var bindings = common.Bindings{
	"schedule.mode":   "mode",
	"schedule.cron":   "cron",
	"schedule.listen": "listen",
}

// Command returns the schedule command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the manifest or download pass on a cron schedule",
		Long: `Keep running and repeat a manifest or download pass whenever the cron
expression fires. A pass still running when the next one is due is not
started twice. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: runSchedule,
	}

	cmd.Flags().String("mode", "", "pass to run: manifest or download")
	cmd.Flags().String("cron", "", `cron expression, e.g. "0 6 * * 1"`)
	cmd.Flags().Bool("run-now", false, "run a pass immediately instead of waiting for the first tick")
	cmd.Flags().String("listen", "", `serve /health and /metrics on this address, e.g. ":9090"`)

	return cmd
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps(cmd, bindings)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	// Progress bars would interleave with the scheduler's log lines.
	deps.Runtime.Config.App.Progress = false

	job, err := Job(deps.Runtime, deps.Config.Schedule.Mode)
	if err != nil {
		return err
	}

	var opts []scheduler.Option
	if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
		opts = append(opts, scheduler.WithRunOnStart())
	}

	s, err := scheduler.New(deps.Config.Schedule.Cron, job, deps.Logger, opts...)
	if err != nil {
		return err
	}
	return Serve(cmd.Context(), s, deps)
}

// Serve runs the scheduler and, when schedule.listen is set, the health and
// metrics server beside it. Either one failing stops both.
func Serve(ctx context.Context, s *scheduler.Scheduler, deps *common.CommandDeps) error {
	listen := deps.Config.Schedule.Listen
	if listen == "" {
		return s.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	router := api.NewRouter(deps.Logger, deps.Runtime.Metrics, s)
	srv := api.NewServer(listen, router, deps.Logger)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe(ctx)
		cancel()
		serverErr <- err
	}()

	runErr := s.Run(ctx)
	cancel()
	if err := <-serverErr; err != nil {
		return err
	}
	return runErr
}

// Job returns the pass run on every tick for mode.
func Job(rt *bootstrap.Runtime, mode string) (scheduler.Job, error) {
	switch mode {
	case config.ModeManifest:
		return func(ctx context.Context) error {
			_, err := rt.RunManifest(ctx)
			return err
		}, nil
	case config.ModeDownload:
		return func(ctx context.Context) error {
			_, err := rt.RunDownload(ctx, "")
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown schedule mode %q", mode)
	}
}
