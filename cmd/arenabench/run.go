package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/arenakit"
)

var (
	runPolicy   string
	runCapacity int
	runWorkload string
	runParallel int
	runBacking  string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVarP(&runPolicy, "policy", "p", "stack", "Allocation policy (see 'arenabench policies')")
	cmd.Flags().IntVarP(&runCapacity, "capacity", "c", arenakit.DefaultCapacity, "Arena capacity in int32 elements")
	cmd.Flags().StringVarP(&runWorkload, "workload", "w", "all", "Workload: right-brackets, wrong-brackets, reuse or all")
	cmd.Flags().IntVar(&runParallel, "parallel", 1, "Replay each workload from this many goroutines at once")
	cmd.Flags().StringVar(&runBacking, "backing", "heap", "Arena backing: heap or mmap")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Replay workloads and report maximum arena usage",
		Long: `The run command replays container workloads against one allocator,
resetting it between workloads, and reports the maximum arena usage.

Single-threaded policies are wrapped in a mutex when --parallel exceeds one.

Example:
  arenabench run --policy stack
  arenabench run --policy linear-mt --workload reuse --parallel 8
  arenabench run --policy freelist --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun()
		},
	}
}

type runResult struct {
	Workload    string `json:"workload"`
	MaxUsage    int    `json:"max_usage_bytes"`
	BuriedFrees int    `json:"buried_frees,omitempty"`
	Fallbacks   int64  `json:"fallbacks,omitempty"`
	Error       string `json:"error,omitempty"`
}

type runReport struct {
	Policy        string      `json:"policy"`
	CapacityBytes int         `json:"capacity_bytes"`
	Parallel      int         `json:"parallel"`
	Results       []runResult `json:"results"`
}

func runRun() error {
	policy, err := arenakit.ParsePolicy(runPolicy)
	if err != nil {
		return err
	}
	selected := workloads
	if runWorkload != "all" {
		w, err := findWorkload(runWorkload)
		if err != nil {
			return err
		}
		selected = []workload{w}
	}
	backing := arenakit.BackingHeap
	switch runBacking {
	case "heap":
	case "mmap":
		backing = arenakit.BackingMmap
	default:
		return fmt.Errorf("unknown backing %q", runBacking)
	}

	report, err := benchmark(policy, runCapacity, backing, max(runParallel, 1), selected)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(report)
	}
	printVerbose("policy %s, %d arena bytes, %d goroutine(s)\n", report.Policy, report.CapacityBytes, report.Parallel)
	for _, r := range report.Results {
		if r.Error != "" {
			printInfo("%-15s error: %s\n", r.Workload, r.Error)
			continue
		}
		printInfo("%-15s max usage %d bytes", r.Workload, r.MaxUsage)
		if r.BuriedFrees > 0 {
			printInfo(", %d buried frees", r.BuriedFrees)
		}
		if r.Fallbacks > 0 {
			printInfo(", %d heap fallbacks", r.Fallbacks)
		}
		printInfo("\n")
	}
	return nil
}

func benchmark(policy arenakit.Policy, capacity int, backing arenakit.Backing, parallel int, selected []workload) (report runReport, err error) {
	a, err := arenakit.New[int32](policy,
		arenakit.WithCapacity(capacity),
		arenakit.WithBacking(backing),
		arenakit.WithName("arenabench"),
	)
	if err != nil {
		return runReport{}, err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release arena: %w", cerr)
		}
	}()

	if parallel > 1 && !policy.Concurrent() {
		a = arenakit.Synchronized(a)
	}

	report = runReport{
		Policy:        policy.String(),
		CapacityBytes: a.Stats().CapacityBytes,
		Parallel:      parallel,
	}
	for _, w := range selected {
		printVerbose("replaying %s: %s\n", w.Name, w.Desc)
		report.Results = append(report.Results, replayWorkload(a, w, parallel))
	}
	return report, nil
}

func replayWorkload(a arenakit.Allocator[int32], w workload, parallel int) runResult {
	before := a.Stats().Fallbacks
	replays := make([]*replay, parallel)

	var g errgroup.Group
	for i := range replays {
		replays[i] = &replay{alloc: a}
		g.Go(func() error {
			return w.run(replays[i])
		})
	}
	err := g.Wait()

	res := runResult{
		Workload:  w.Name,
		MaxUsage:  a.MaxUsage(),
		Fallbacks: a.Stats().Fallbacks - before,
	}
	for _, r := range replays {
		res.BuriedFrees += r.buried
	}
	if err != nil {
		res.Error = err.Error()
	}

	a.Reset()
	return res
}
