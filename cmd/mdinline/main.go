// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// mdinline renders the inline content of Markdown paragraphs.
//
// Input is split into paragraphs at blank lines.
// Each paragraph is parsed as inline content only:
// block structure such as headings and lists is not recognized.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/pflag"
	"zombiezen.com/go/mdinline"
	"zombiezen.com/go/mdinline/extension/footnote"
	"zombiezen.com/go/mdinline/extension/strikethrough"
	"zombiezen.com/go/mdinline/format"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	outputFormat  string
	width         int
	softBreak     string
	strikethrough bool
	gfmFilter     bool
	ignoreRaw     bool
	references    []string
	footnotes     []string
	outPath       string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cfg config
	flags := pflag.NewFlagSet("mdinline", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&cfg.outputFormat, "format", "f", "html", "Output format: html|markdown|text")
	flags.IntVarP(&cfg.width, "width", "w", 0, "Wrap text output at this width (0 disables wrapping)")
	flags.StringVar(&cfg.softBreak, "soft-break", "preserve", "HTML soft line breaks: preserve|space|harden")
	flags.BoolVar(&cfg.strikethrough, "strikethrough", false, "Enable ~strikethrough~")
	flags.BoolVar(&cfg.gfmFilter, "gfm-filter", false, "Escape raw HTML tags disallowed by GitHub Flavored Markdown")
	flags.BoolVar(&cfg.ignoreRaw, "ignore-raw", false, "Omit raw HTML from HTML output")
	flags.StringArrayVarP(&cfg.references, "ref", "r", nil, "Link reference definition as label=destination[ title] (repeatable)")
	flags.StringArrayVar(&cfg.footnotes, "footnote", nil, "Footnote label to resolve [^label] references (repeatable)")
	flags.StringVarP(&cfg.outPath, "output", "o", "", "Output file instead of stdout")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mdinline [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	p, r, err := cfg.build()
	if err != nil {
		fmt.Fprintf(stderr, "mdinline: %v\n", err)
		return 2
	}
	input, err := readInputs(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "mdinline: %v\n", err)
		return 1
	}

	out := stdout
	var outFile io.Closer
	if cfg.outPath != "" {
		f, err := os.Create(cfg.outPath)
		if err != nil {
			fmt.Fprintf(stderr, "mdinline: open output: %v\n", err)
			return 1
		}
		out, outFile = f, f
	}
	bw := bufio.NewWriter(out)
	if err := cfg.render(bw, p, r, input); err != nil {
		if outFile != nil {
			_ = outFile.Close()
		}
		fmt.Fprintf(stderr, "mdinline: %v\n", err)
		return 1
	}
	if err := finishOutput(bw, outFile); err != nil {
		fmt.Fprintf(stderr, "mdinline: write output: %v\n", err)
		return 1
	}
	return 0
}

// finishOutput flushes bw and closes c, if not nil.
// It returns the first error encountered.
func finishOutput(bw *bufio.Writer, c io.Closer) error {
	err := bw.Flush()
	if c != nil {
		if closeErr := c.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// build returns the parser and renderer that cfg describes.
func (cfg *config) build() (*mdinline.InlineParser, *mdinline.HTMLRenderer, error) {
	switch cfg.outputFormat {
	case "html", "markdown", "text":
	default:
		return nil, nil, fmt.Errorf("unknown format %q", cfg.outputFormat)
	}

	r := new(mdinline.HTMLRenderer)
	switch cfg.softBreak {
	case "preserve":
		r.SoftBreakBehavior = mdinline.SoftBreakPreserve
	case "space":
		r.SoftBreakBehavior = mdinline.SoftBreakSpace
	case "harden":
		r.SoftBreakBehavior = mdinline.SoftBreakHarden
	default:
		return nil, nil, fmt.Errorf("invalid --soft-break %q", cfg.softBreak)
	}
	r.IgnoreRaw = cfg.ignoreRaw
	if cfg.gfmFilter {
		r.FilterTag = mdinline.FilterTagGFM
	}

	opts := new(mdinline.Options)
	if len(cfg.references) > 0 {
		refs := make(mdinline.ReferenceMap)
		for _, arg := range cfg.references {
			label, def, err := parseReference(arg)
			if err != nil {
				return nil, nil, err
			}
			refs.Define(label, def)
		}
		opts.References = refs
	}
	if cfg.strikethrough {
		strikethrough.Extend(opts)
		strikethrough.ExtendRenderer(r)
	}
	if len(cfg.footnotes) > 0 {
		defs := make(footnote.Definitions)
		for _, label := range cfg.footnotes {
			defs.Define(label)
		}
		footnote.Extend(opts, defs)
		footnote.ExtendRenderer(r, new(footnote.Numbering))
	}
	p, err := mdinline.NewInlineParser(opts)
	if err != nil {
		return nil, nil, err
	}
	return p, r, nil
}

// parseReference parses a --ref argument.
func parseReference(arg string) (label string, def mdinline.LinkDefinition, err error) {
	label, rest, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(label) == "" {
		return "", mdinline.LinkDefinition{}, fmt.Errorf("invalid --ref %q: want label=destination", arg)
	}
	dest, title, hasTitle := strings.Cut(strings.TrimSpace(rest), " ")
	def = mdinline.LinkDefinition{
		Destination:  dest,
		Title:        strings.TrimSpace(title),
		TitlePresent: hasTitle,
	}
	return label, def, nil
}

func (cfg *config) render(w io.Writer, p *mdinline.InlineParser, r *mdinline.HTMLRenderer, input string) error {
	for i, text := range paragraphs(input) {
		para := mdinline.NewNode(mdinline.ParagraphKind)
		p.Parse(mdinline.ParagraphLines(text), para)
		switch cfg.outputFormat {
		case "html":
			if err := r.Render(w, para); err != nil {
				return err
			}
		case "markdown":
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := format.Inline(w, para); err != nil {
				return fmt.Errorf("format markdown: %w", err)
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		case "text":
			s := mdinline.TextContent(para)
			if cfg.width > 0 {
				s = wordwrap.String(s, cfg.width)
			}
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// paragraphs splits input at blank lines,
// trimming trailing whitespace from each paragraph.
func paragraphs(input string) []string {
	var result []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			result = append(result, strings.TrimRight(strings.Join(current, "\n"), " \t"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return result
}

// readInputs concatenates the named files,
// or reads stdin if there are none.
func readInputs(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	buf := new(bytes.Buffer)
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		buf.Write(b)
		if len(b) > 0 && b[len(b)-1] != '\n' {
			buf.WriteByte('\n')
		}
		// Separate files so their last and first paragraphs don't merge.
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
