package main

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli/v2"

	"FastDict/internal/dictionary"
	"FastDict/internal/storage"
)

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Write the automaton state table of a word list",
		Flags: []cli.Flag{
			wordsFlag,
			normalizeFlag,
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write to file instead of stdout",
			},
		},
		Action: dumpAction,
	}
}

func dumpAction(c *cli.Context) error {
	logger := newLogger(c.App.ErrWriter, configFrom(c))
	dict, err := loadDictionary(c, logger)
	if err != nil {
		return err
	}

	data, err := renderDump(dict)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	fp, err := storage.WriteFileVerified(out, data)
	if err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	logger.Info("dump written",
		"path", out,
		"bytes", len(data),
		"dump_fingerprint", fp,
		"words_fingerprint", dict.Fingerprint(),
	)
	return nil
}

// renderDump prefixes the state table with the word count and fingerprint.
func renderDump(dict *dictionary.Dictionary) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %d words, %s, normalize=%s\n", dict.Len(), dict.Fingerprint(), dict.Normalizer().Name())
	if err := dict.Dump(&buf); err != nil {
		return nil, fmt.Errorf("failed to render dump: %w", err)
	}
	return buf.Bytes(), nil
}
