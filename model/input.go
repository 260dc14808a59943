// Package model turns an input file into a fully built grid: script block
// expansion, command validation, parameter and geometry processing.
package model

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emwave/emwave/luamodule"
	"github.com/emwave/emwave/output"
)

const (
	luaBlockStart = "#lua:"
	luaBlockEnd   = "#end_lua:"

	// Optimiser directives live in their own block, read by the taguchi
	// package. The model builder skips them.
	TaguchiBlockStart = "#taguchi:"
	TaguchiBlockEnd   = "#end_taguchi:"
)

// ProcessInputFile reads an input file and returns its command lines with
// every `#lua` block executed and replaced by the lines it printed. Lines
// not starting with # are treated as comments and dropped.
func ProcessInputFile(path string, ns *luamodule.Namespace) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %s", path, err)
	}
	defer in.Close()

	var processed []string
	var block []string
	inBlock := false
	inTaguchi := false
	lineNo := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, TaguchiBlockStart):
			if inTaguchi {
				return nil, fmt.Errorf("%s:%d: nested %s block", path, lineNo, TaguchiBlockStart)
			}
			inTaguchi = true

		case strings.HasPrefix(line, TaguchiBlockEnd):
			if !inTaguchi {
				return nil, fmt.Errorf("%s:%d: %s without matching %s", path, lineNo, TaguchiBlockEnd, TaguchiBlockStart)
			}
			inTaguchi = false

		case inTaguchi:

		case strings.HasPrefix(line, luaBlockStart):
			if inBlock {
				return nil, fmt.Errorf("%s:%d: nested %s block", path, lineNo, luaBlockStart)
			}
			inBlock = true
			block = block[:0]

		case strings.HasPrefix(line, luaBlockEnd):
			if !inBlock {
				return nil, fmt.Errorf("%s:%d: %s without matching %s", path, lineNo, luaBlockEnd, luaBlockStart)
			}
			inBlock = false

			lines, err := luamodule.RunBlock(strings.Join(block, "\n"), ns)
			if err != nil {
				return nil, fmt.Errorf("%s: %s", path, err)
			}
			for _, l := range lines {
				l = strings.TrimSpace(l)
				if strings.HasPrefix(l, "#") {
					processed = append(processed, l)
				}
			}

		case inBlock:
			block = append(block, scanner.Text())

		case strings.HasPrefix(line, "#"):
			processed = append(processed, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %s", path, err)
	}
	if inBlock {
		return nil, fmt.Errorf("%s: unterminated %s block", path, luaBlockStart)
	}
	if inTaguchi {
		return nil, fmt.Errorf("%s: unterminated %s block", path, TaguchiBlockStart)
	}

	return processed, nil
}

// WriteProcessed writes the expanded command lines next to the input file,
// tagged with the model run when there are several.
func WriteProcessed(inputFile string, run, totalRuns int, lines []string) (string, error) {
	stem := strings.TrimSuffix(inputFile, filepath.Ext(inputFile))
	path := output.RunFileName(stem+"_processed", run, totalRuns, ".in")

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create processed input file %s: %s", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write processed input file %s: %s", path, err)
	}

	return path, nil
}
