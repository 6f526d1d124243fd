package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	"github.com/hlecates/artifact-ijcar26-luna/internal/service"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
	"github.com/hlecates/artifact-ijcar26-luna/pkg/logging"
	"github.com/hlecates/artifact-ijcar26-luna/pkg/snowflake"
)

// resourceFlags are the per-task resource limits shared by submit and run.
type resourceFlags struct {
	Partition string `short:"p" default:"cpu-q" help:"Cluster partition to submit to."`
	Time      int    `short:"t" default:"300" help:"Per-task time limit in seconds."`
	Wall      bool   `help:"Limit wall-clock time instead of CPU time."`
	Mem       int    `default:"4000" help:"Per-task memory limit in MB."`
	CPUs      int    `name:"cpus" default:"2" help:"CPUs per task."`
	GPUs      int    `name:"gpus" default:"0" help:"GPUs per task; on a GPU partition 0 still reserves one."`
}

func (f resourceFlags) params() model.ResourceParams {
	return model.ResourceParams{
		Partition:        f.Partition,
		TimeLimitSeconds: f.Time,
		UseWallTime:      f.Wall,
		MemoryLimitMB:    f.Mem,
		NumCPUs:          f.CPUs,
		NumGPUs:          f.GPUs,
	}
}

// commandFlags select what each task invokes.
type commandFlags struct {
	Solver    string   `type:"path" help:"Solver binary to invoke per task."`
	Framework string   `type:"path" help:"Verification framework checkout to drive instead of a solver."`
	Runtime   string   `help:"Interpreter for the framework entry script (default from config)."`
	Args      []string `arg:"" optional:"" passthrough:"" help:"Extra arguments appended to every task command."`
}

func (f commandFlags) options() job.CommandOptions {
	return job.CommandOptions{
		SolverPath:   f.Solver,
		FrameworkDir: f.Framework,
		Runtime:      f.Runtime,
		ExtraArgs:    f.Args,
	}
}

// SubmitCmd submits the selected benchmark sets as scheduler array jobs.
type SubmitCmd struct {
	Sets          string `short:"b" required:"" help:"Benchmark selector: set names, ordinals, a..b ranges or * wildcards, space separated (quote the list)."`
	WorkDir       string `short:"w" default:"." help:"Directory receiving one working directory per set."`
	JobName       string `help:"Scheduler job name (default: the set name)."`
	MultiArg      bool   `help:"Pass every line field to the solver instead of a model/property pair."`
	Exclude       string `help:"Nodes the scheduler must avoid (sbatch --exclude list)."`
	MailUser      string `help:"Address notified when a job ends or fails."`
	DryRun        bool   `help:"Write the job scripts but do not call sbatch."`
	resourceFlags `embed:""`
	commandFlags  `embed:""`
}

func (c *SubmitCmd) Run(ctx context.Context, cfg *viper.Viper) error {
	results, err := service.Submit(ctx, cfg, service.SubmitParams{
		Selector:  c.Sets,
		Resources: c.params(),
		Command:   c.options(),
		WorkDir:   c.WorkDir,
		JobName:   c.JobName,
		MultiArg:  c.MultiArg,
		Options: model.SubmitOptions{
			ExcludeNodes: c.Exclude,
			MailUser:     c.MailUser,
		},
		DryRun: c.DryRun,
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		if c.DryRun {
			fmt.Printf("%s: script written, not submitted\n", r.Set)
			continue
		}
		fmt.Printf("%s: batch job %d\n", r.Set, r.JobID)
	}
	return nil
}

// RunCmd executes the selected benchmark sets on this host.
type RunCmd struct {
	Sets          string `short:"b" required:"" help:"Benchmark selector, same syntax as submit."`
	WorkDir       string `short:"w" default:"." help:"Directory receiving one working directory per set."`
	MultiArg      bool   `help:"Pass every line field to the solver instead of a model/property pair."`
	Task          int    `help:"Run a single 1-based task of each set instead of all tasks."`
	resourceFlags `embed:""`
	commandFlags  `embed:""`
}

func (c *RunCmd) Run(ctx context.Context, cfg *viper.Viper) error {
	failed, err := service.RunLocal(ctx, cfg, service.RunParams{
		Selector:  c.Sets,
		Resources: c.params(),
		Command:   c.options(),
		WorkDir:   c.WorkDir,
		MultiArg:  c.MultiArg,
		TaskIndex: c.Task,
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		fmt.Printf("done, %d task(s) failed; see the %s reports\n", failed, constants.ReportFileName)
	} else {
		fmt.Println("done, all tasks finished")
	}
	return nil
}

// ResultsCmd compiles finished working directories into CSV files.
type ResultsCmd struct {
	WorkDir string   `short:"w" default:"." help:"Directory holding the finished working directories."`
	Out     string   `short:"o" help:"Directory receiving the CSV files (default: the work dir)."`
	Sets    []string `arg:"" optional:"" help:"Set names to compile (default: every run found)."`
}

func (c *ResultsCmd) Run(ctx context.Context, cfg *viper.Viper) error {
	if err := service.CompileResults(c.WorkDir, c.Out, c.Sets); err != nil {
		return err
	}

	outDir := c.Out
	if outDir == "" {
		outDir = c.WorkDir
	}
	fmt.Printf("wrote %s and %s under %s\n", constants.ResultsFileName, constants.SummaryFileName, outDir)
	return nil
}

// SyncCmd downloads benchmark sets from the object store.
type SyncCmd struct{}

func (c *SyncCmd) Run(ctx context.Context, cfg *viper.Viper) error {
	fetched, err := service.SyncBenchmarks(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("fetched %d file(s) into %s\n", fetched, conf.GetBenchmarksConfig(cfg).Dir)
	return nil
}

// CLI is the lunabench command tree.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Path to the YAML config file."`
	Verbose bool   `short:"v" help:"Enable debug logging."`

	Submit  SubmitCmd  `cmd:"" help:"Submit benchmark sets as scheduler array jobs."`
	Run     RunCmd     `cmd:"" help:"Execute benchmark sets on this host."`
	Results ResultsCmd `cmd:"" help:"Compile finished runs into CSV files."`
	Sync    SyncCmd    `cmd:"" help:"Download benchmark sets from the object store."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("lunabench"),
		kong.Description("Submit verification benchmark sets as cluster array jobs, run them locally, and compile their results."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	// 1. load config
	cfg, err := conf.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed, err:%v\n", err)
		os.Exit(1)
	}
	if cli.Verbose {
		cfg.Set("log.level", constants.LogLevelDebug)
	}

	// 2. init the logger
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed, err:%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 3. init the submission ID generator
	snowflake.MustInit(cfg)

	// 4. dispatch the selected subcommand
	if err := kctx.Run(cfg); err != nil {
		zap.L().Error("command failed",
			zap.Int("code", int(errs.GetErrorCode(err))),
			zap.Error(err),
		)
		logger.Sync()
		os.Exit(1)
	}
}
