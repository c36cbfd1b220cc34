// Command qbimport converts raw exam text or spreadsheets into topic
// payloads.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/p-n-ai/quizbank/internal/importer"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	format   string
	to       string
	in       string
	out      string
	prefix   string
	category string
	sheet    string
	outdir   string
	splits   []importer.Range
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("qbimport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.format, "format", "text", "Input format: text or xlsx")
	fs.StringVar(&o.to, "to", "json", "Output format: json or xlsx")
	fs.StringVar(&o.in, "in", "", "Path to the input file")
	fs.StringVar(&o.out, "out", "", "Path to the output file (defaults to stdout for json)")
	fs.StringVar(&o.prefix, "prefix", "", "Question id prefix for text input")
	fs.StringVar(&o.category, "category", "", "Category for text input")
	fs.StringVar(&o.sheet, "sheet", "", "Worksheet to read (defaults to the first sheet)")
	fs.StringVar(&o.outdir, "outdir", "", "Directory for per-topic files written by -split")
	fs.Func("split", "Write questions start-end to <outdir>/<topicID> with the given category: start-end=topicID:category (repeatable)", func(v string) error {
		r, err := importer.ParseRange(v)
		if err != nil {
			return err
		}
		o.splits = append(o.splits, r)
		return nil
	})
	fs.BoolVar(&o.verbose, "verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.in == "" {
		return o, errors.New("input file required (-in)")
	}
	if o.format != "text" && o.format != "xlsx" {
		return o, fmt.Errorf("unknown input format %q", o.format)
	}
	if o.to != "json" && o.to != "xlsx" {
		return o, fmt.Errorf("unknown output format %q", o.to)
	}
	if len(o.splits) > 0 {
		if o.outdir == "" {
			return o, errors.New("-split requires -outdir")
		}
		if o.out != "" {
			return o, errors.New("-split writes to -outdir, not -out")
		}
		return o, nil
	}
	if o.to == "xlsx" && o.out == "" {
		return o, errors.New("xlsx output requires -out")
	}
	return o, nil
}

func run(args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	f, err := os.Open(o.in)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}
	defer f.Close()

	var items []importer.Item
	switch o.format {
	case "text":
		items, err = importer.ParseText(f, importer.TextOptions{IDPrefix: o.prefix, Category: o.category})
	case "xlsx":
		items, err = importer.ReadXLSX(f, o.sheet)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", o.in, err)
	}
	if o.verbose {
		fmt.Fprintf(stderr, "Parsed %d questions from %s\n", len(items), o.in)
	}

	if len(o.splits) > 0 {
		return writeSplit(o, items, stderr)
	}

	data, err := render(items, o.to)
	if err != nil {
		return err
	}
	if o.out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(o.out, data, 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if o.verbose {
		fmt.Fprintf(stderr, "Wrote %s\n", o.out)
	}
	return nil
}

// writeSplit writes one payload per range to <outdir>/<topicID>.<ext>.
func writeSplit(o options, items []importer.Item, stderr io.Writer) error {
	topics, err := importer.Split(items, o.splits)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.outdir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, topic := range topics {
		data, err := render(topic.Items, o.to)
		if err != nil {
			return fmt.Errorf("topic %s: %w", topic.TopicID, err)
		}
		path := filepath.Join(o.outdir, topic.TopicID+"."+o.to)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if o.verbose {
			fmt.Fprintf(stderr, "Wrote %d questions to %s\n", len(topic.Items), path)
		}
	}
	return nil
}

func render(items []importer.Item, to string) ([]byte, error) {
	var buf bytes.Buffer
	switch to {
	case "json":
		data, err := importer.Encode(items)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case "xlsx":
		if err := importer.WriteXLSX(&buf, items); err != nil {
			return nil, fmt.Errorf("writing spreadsheet: %w", err)
		}
	}
	return buf.Bytes(), nil
}
