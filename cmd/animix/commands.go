package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/phanxgames/animix"
	"github.com/phanxgames/animix/internal/scenario"
	"github.com/spf13/cobra"
)

// sampleOptions holds the flags of the sample command.
type sampleOptions struct {
	rate  float64
	track string
}

// newRootCmd builds the command tree. Each call gets fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "animix",
		Short:         "Inspect, sample and play keyframe animation clips",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <clip file>",
		Short: "Print a clip's id, name, duration and tracks",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	var sample sampleOptions
	sampleCmd := &cobra.Command{
		Use:   "sample <clip file>",
		Short: "Print track values sampled at a fixed rate over the clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, args, sample)
		},
	}
	sampleCmd.Flags().Float64Var(&sample.rate, "rate", 10, "samples per second")
	sampleCmd.Flags().StringVar(&sample.track, "track", "", "only sample the track with this path")

	var debug bool
	runCmd := &cobra.Command{
		Use:   "run <scenario file>",
		Short: "Play a YAML scenario and print the watched properties per tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, args, debug)
		},
	}
	runCmd.Flags().BoolVar(&debug, "debug", false, "log per-tick mixer stats to stderr")

	rootCmd.AddCommand(inspectCmd, sampleCmd, runCmd)
	return rootCmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	clip, err := scenario.ReadClip(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:       %s\n", clip.ID())
	fmt.Fprintf(out, "name:     %s\n", clip.Name())
	fmt.Fprintf(out, "duration: %.4f\n", clip.Duration())
	fmt.Fprintf(out, "tracks:   %d\n", len(clip.Tracks()))
	for _, t := range clip.Tracks() {
		fmt.Fprintf(out, "  %-24s stride=%d keys=%d %s [%.4f, %.4f]\n",
			t.Path(), t.Stride(), t.Len(), t.Interpolation(), t.StartTime(), t.EndTime())
	}
	if err := clip.Validate(); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	return nil
}

func runSample(cmd *cobra.Command, args []string, opts sampleOptions) error {
	if opts.rate <= 0 || math.IsNaN(opts.rate) || math.IsInf(opts.rate, 0) {
		return fmt.Errorf("--rate must be positive, got %v", opts.rate)
	}
	clip, err := scenario.ReadClip(args[0])
	if err != nil {
		return err
	}

	tracks := clip.Tracks()
	if opts.track != "" {
		t := clip.Track(opts.track)
		if t == nil {
			return fmt.Errorf("clip %q has no track %q", clip.Name(), opts.track)
		}
		tracks = []*animix.Track{t}
	}

	out := cmd.OutOrStdout()
	n := int(math.Floor(clip.Duration()*opts.rate + 1e-9))
	for _, t := range tracks {
		fmt.Fprintf(out, "%s\n", t.Path())
		buf := make([]float64, t.Stride())
		for i := 0; i <= n; i++ {
			at := float64(i) / opts.rate
			fmt.Fprintf(out, "  %8.4f  %s\n", at, formatValues(t.SampleInto(buf, at)))
		}
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string, debug bool) error {
	r, err := scenario.LoadFile(args[0])
	if err != nil {
		return err
	}
	r.Mixer().SetDebugMode(debug)
	return r.Run(cmd.OutOrStdout())
}

func formatValues(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.4f", x)
	}
	return strings.Join(parts, " ")
}
