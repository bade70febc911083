package main

import (
	"fmt"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     "Time dictionary loading and matching",
		ArgsUsage: "SEQUENCE...",
		Flags: []cli.Flag{
			wordsFlag,
			normalizeFlag,
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Usage:   "Matches per sequence",
				Value:   1000,
			},
		},
		Action: benchAction,
	}
}

func benchAction(c *cli.Context) error {
	seqs := c.Args().Slice()
	if len(seqs) == 0 {
		return fmt.Errorf("bench: at least one sequence is required")
	}
	iterations := c.Int("iterations")
	if iterations <= 0 {
		return fmt.Errorf("bench: --iterations must be positive")
	}
	logger := newLogger(c.App.ErrWriter, configFrom(c))

	start := time.Now()
	dict, err := loadDictionary(c, logger)
	if err != nil {
		return err
	}
	loadTime := time.Since(start)
	stats := dict.Stats()

	w := c.App.Writer
	fmt.Fprintf(w, "loaded %d words (%d states, %d transitions) in %v\n",
		stats.Words, stats.States, stats.Transitions, loadTime)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fmt.Fprintf(w, "memory: heap %s, sys %s\n", formatBytes(ms.HeapAlloc), formatBytes(ms.Sys))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQUENCE\tMATCHES\tPER QUERY")
	for _, seq := range seqs {
		var n int
		start := time.Now()
		for i := 0; i < iterations; i++ {
			n = len(dict.ContainedWords(seq))
		}
		per := time.Since(start) / time.Duration(iterations)
		fmt.Fprintf(tw, "%s\t%d\t%v\n", seq, n, per)
	}
	return tw.Flush()
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
