// Package dumputil provides shared output helpers for rptdump debug tool.
// It operates on loaded report definitions and layout results and produces
// definition dumps, event streams, render trees and SQLite snapshots.
package dumputil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rptcore/process"
	"rptcore/report"
	"rptcore/utils/debug"
)

// DumpDefinitionTxt writes parsed report definition to <stem>-definition.txt.
func DumpDefinitionTxt(rep *report.Report, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-definition.txt", []byte(rep.String()), overwrite)
}

// DumpEventsTxt writes flattened event stream to <stem>-events.txt.
func DumpEventsTxt(rep *report.Report, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-events.txt", []byte(EventsText(rep.Events())), overwrite)
}

// EventsText renders events one per line indented by cursor depth.
func EventsText(events []report.Event) string {
	tw := debug.NewTreeWriter()
	for i, ev := range events {
		line := fmt.Sprintf("%04d %s %q group %d", i, ev.Kind, ev.Cursor.Label, ev.Cursor.GroupIndex)
		tw.Tagged(ev.Cursor.Depth, line,
			debug.Tag(ev.Cursor.Crosstab, "crosstab"),
			debug.Tag(ev.Title != "", fmt.Sprintf("title %q", ev.Title)))
	}
	return tw.String()
}

// DumpLayoutTxt writes render tree and break list of a single target to
// <stem>-<target>-layout.txt.
func DumpLayoutTxt(res *process.Result, inPath, outDir string, overwrite bool) error {
	data := res.Tree.Dump() + "\n" + res.Breaks.String()
	return WriteOutput(inPath, outDir, "-"+SanitizeFileComponent(res.Target)+"-layout.txt", []byte(data), overwrite)
}

// WriteOutput writes data to <stem><suffix> in either the input file's directory or outDir.
func WriteOutput(inPath, outDir, suffix string, data []byte, overwrite bool) error {
	outPath, err := OutputPath(inPath, outDir, suffix, overwrite)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

// OutputPath returns <stem><suffix> location for inPath and checks it could
// be written.
func OutputPath(inPath, outDir, suffix string, overwrite bool) (string, error) {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(inPath)
	if outDir != "" {
		dir = outDir
	}
	outPath := filepath.Join(dir, stem+suffix)

	if _, err := os.Stat(outPath); err == nil {
		if !overwrite {
			return "", fmt.Errorf("output file already exists: %s (use -overwrite)", outPath)
		}
		if err := os.Remove(outPath); err != nil {
			return "", err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	return outPath, nil
}

// SanitizeFileComponent cleans a string for use in a filename.
func SanitizeFileComponent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
