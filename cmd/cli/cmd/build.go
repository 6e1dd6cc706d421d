package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ballalg/ballalg/internal/balltree/distributed"
	"github.com/ballalg/ballalg/internal/balltree/node"
	"github.com/ballalg/ballalg/internal/balltree/pointgen"
	"github.com/ballalg/ballalg/internal/balltree/psrs"
	"github.com/ballalg/ballalg/internal/balltree/sharedmem"
	"github.com/ballalg/ballalg/internal/balltree/team"
	"github.com/ballalg/ballalg/pkg/config"
	"github.com/ballalg/ballalg/pkg/telemetry"
	"github.com/ballalg/ballalg/pkg/writer"
)

var (
	buildProcs   int
	buildThreads int
	buildConfig  string
)

var buildCmd = &cobra.Command{
	Use:   "build <n_dims> <n_points> <seed>",
	Short: "Build a ball tree over a synthetic d-dimensional point set",
	Long: `build generates n_points synthetic points in n_dims dimensions from
seed, then constructs a ball tree over them: a distributed recursive phase
across --procs simulated ranks, followed by a shared-memory fork/join
phase with --threads tasks once a rank is left alone with its partition.
The tree is written to stdout in the node-dump format of §6; a single
timing line is written to stderr.`,
	Args: cobra.ExactArgs(3),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().IntVarP(&buildProcs, "procs", "p", 1, "simulated distributed team size P")
	buildCmd.Flags().IntVarP(&buildThreads, "threads", "t", runtime.GOMAXPROCS(0), "shared-memory task pool size T")
	buildCmd.Flags().StringVar(&buildConfig, "config", "", "optional viper config file")
	rootCmd.AddCommand(buildCmd)
}

// buildArgs holds the three positional build arguments once parsed and
// validated.
type buildArgs struct {
	nDims   int
	nPoints int
	seed    int64
}

// parseBuildArgs implements the validation half of the CLI contract of §6:
// exitCode is 2 if n_dims is not an integer >= 2, 3 if n_points is not an
// integer >= 1, 1 if seed is not a parseable integer, and 0 on success.
func parseBuildArgs(args []string) (buildArgs, int, string) {
	nDims, err := strconv.Atoi(args[0])
	if err != nil || nDims < 2 {
		return buildArgs{}, 2, "usage error: n_dims must be an integer >= 2"
	}

	nPoints, err := strconv.Atoi(args[1])
	if err != nil || nPoints < 1 {
		return buildArgs{}, 3, "usage error: n_points must be an integer >= 1"
	}

	seed, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return buildArgs{}, 1, "usage error: seed must be an integer"
	}

	return buildArgs{nDims: nDims, nPoints: nPoints, seed: seed}, 0, ""
}

// clampProcs applies §6's rule that a reduced communicator excludes idle
// ranks outright when requested exceeds the number of points available to
// shard across them.
func clampProcs(requested, nPoints int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > nPoints {
		requested = nPoints
	}
	return requested
}

// runBuild implements the CLI contract of §6: exit 1 on argument count
// mismatch (handled by cobra.ExactArgs before RunE runs), exit 2 if
// n_dims < 2, exit 3 if n_points < 1.
func runBuild(cmd *cobra.Command, args []string) error {
	parsed, exitCode, msg := parseBuildArgs(args)
	if exitCode != 0 {
		fmt.Println(msg)
		os.Exit(exitCode)
	}
	nDims, nPoints, seed := parsed.nDims, parsed.nPoints, parsed.seed

	cfg, err := config.Load(buildConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		GetLogger().Warn("telemetry init failed: %v", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			GetLogger().Warn("telemetry shutdown failed: %v", err)
		}
	}()

	sharedmem.ConfigurePools(cfg.Build.ProjectionPoolInitialCap)
	distributed.ConfigurePools(cfg.Build.ProjectionPoolInitialCap)
	psrs.ConfigureSampling(cfg.Build.PSRSSampleFactor)

	// §6: if n_points < P, the reduced communicator excludes the idle
	// ranks outright rather than carrying them through every collective
	// only to have them hold zero points.
	procs := clampProcs(buildProcs, nPoints)

	tracer := otel.Tracer("ballalg/build")
	ctx, span := tracer.Start(ctx, "build")
	span.SetAttributes(
		attribute.Int("ballalg.n_dims", nDims),
		attribute.Int("ballalg.n_points", nPoints),
		attribute.Int("ballalg.procs", procs),
		attribute.Int("ballalg.threads", buildThreads),
	)
	defer span.End()

	start := time.Now()

	points := pointgen.GenerateParallelBuffered(nDims, nPoints, seed, buildThreads, cfg.Build.PoolBufferSize)

	sinks := make([]*node.Sink, procs)
	views := team.New(procs)

	var wg sync.WaitGroup
	errs := make([]error, procs)
	for i := 0; i < procs; i++ {
		sinks[i] = node.NewSink(2*nPoints - 1)
		shard := pointgen.Shard(points, i, procs)
		sm := sharedmem.New(sinks[i], buildThreads, seed)

		wg.Add(1)
		go func(i int, v *team.Team, shard [][]float64) {
			defer wg.Done()
			errs[i] = distributed.Build(ctx, v, shard, nPoints, 0, sinks[i], sm)
		}(i, views[i], shard)
	}
	wg.Wait()

	for _, buildErr := range errs {
		if buildErr != nil {
			return buildErr
		}
	}

	elapsed := time.Since(start)

	lw := writer.NewLineWriter(os.Stdout)
	if err := lw.WriteHeader(nDims, 2*nPoints-1); err != nil {
		return err
	}
	// Ring token-pass degenerates to a plain in-order loop here: all P
	// simulated ranks already ran to completion in this one process, so
	// dumping sinks[0..P) in order reproduces exactly what a real token
	// pass from rank 0 to rank P-1 would have produced.
	for _, sink := range sinks {
		for _, n := range sink.Nodes() {
			if err := lw.WriteLine(formatNodeLine(n)); err != nil {
				return err
			}
		}
	}
	if err := lw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%f\n", elapsed.Seconds())
	return nil
}

// formatNodeLine renders one node per §6's fixed text format: id, left_id,
// right_id, radius, then the center's coordinates, with -1 sentinels for a
// leaf's children.
func formatNodeLine(n *node.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d %f", n.ID, n.LeftID, n.RightID, n.Radius)
	for _, c := range n.Center {
		fmt.Fprintf(&b, " %f", c)
	}
	b.WriteString(" \n")
	return b.String()
}
