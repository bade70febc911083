package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// matchResult is one line of `fastdict match --json` output.
type matchResult struct {
	Sequence string   `json:"sequence"`
	Words    []string `json:"words"`
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Aliases:   []string{"m"},
		Usage:     "Print the dictionary words contained in each sequence",
		ArgsUsage: "SEQUENCE...",
		Flags: []cli.Flag{
			wordsFlag,
			normalizeFlag,
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: matchAction,
	}
}

func matchAction(c *cli.Context) error {
	seqs := c.Args().Slice()
	if len(seqs) == 0 {
		return fmt.Errorf("match: at least one sequence is required")
	}
	logger := newLogger(c.App.ErrWriter, configFrom(c))
	dict, err := loadDictionary(c, logger)
	if err != nil {
		return err
	}

	results := make([]matchResult, len(seqs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, seq := range seqs {
		g.Go(func() error {
			results[i] = matchResult{Sequence: seq, Words: dict.ContainedWords(seq)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s: %s\n", r.Sequence, strings.Join(r.Words, " "))
	}
	return nil
}
