// rptdump loads report definition, lays it out for configured targets and
// dumps intermediate structures for troubleshooting: parsed definition, the
// flattened event stream, render trees with break lists and a SQLite snapshot
// of all targets suitable for ad hoc queries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"rptcore/cmd/debug/internal/dumputil"
	"rptcore/config"
	"rptcore/layout"
	"rptcore/process"
	"rptcore/report"
)

func main() {
	all := flag.Bool("all", false, "enable all dump flags (-definition, -events, -layout, -sqlite)")
	definition := flag.Bool("definition", false, "dump parsed report definition into <file>-definition.txt")
	events := flag.Bool("events", false, "dump flattened event stream into <file>-events.txt")
	layoutTree := flag.Bool("layout", false, "dump render tree and breaks of every target into <file>-<target>-layout.txt")
	writeSqlite := flag.Bool("sqlite", false, "write pages, breaks and boxes of all targets to <file>.sqlite")
	configFile := flag.String("config", "", "load targets and layout settings from configuration `FILE`")
	targets := flag.String("targets", "", "comma separated list of target names to lay out, all configured by default")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rptdump [-all] [-definition] [-events] [-layout] [-sqlite] [-config FILE] [-targets a,b] [-overwrite] <report.xml> [outdir]\n\n")
		fmt.Fprintf(os.Stderr, "Dumps report definition and layout internals.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	if *all {
		*definition = true
		*events = true
		*layoutTree = true
		*writeSqlite = true
	}

	if !*definition && !*events && !*layoutTree && !*writeSqlite {
		flag.Usage()
		os.Exit(2)
	}

	defer func(startedAt time.Time) {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", time.Since(startedAt))
	}(time.Now())

	inPath := flag.Arg(0)
	outDir := ""
	if flag.NArg() == 2 {
		outDir = flag.Arg(1)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	rep, err := report.LoadFile(inPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", inPath, err)
		os.Exit(1)
	}

	if *definition {
		if err := dumputil.DumpDefinitionTxt(rep, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump definition: %v\n", err)
			os.Exit(1)
		}
	}

	if *events {
		if err := dumputil.DumpEventsTxt(rep, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump events: %v\n", err)
			os.Exit(1)
		}
	}

	if !*layoutTree && !*writeSqlite {
		return
	}

	results, err := layOut(rep, *configFile, *targets, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layout: %v\n", err)
		os.Exit(1)
	}
	for _, res := range results {
		fmt.Printf("%s: %d page(s), content height %s\n", res.Target, len(res.Pages()), layout.FormatLength(res.Height))
	}

	if *layoutTree {
		for _, res := range results {
			if err := dumputil.DumpLayoutTxt(res, inPath, outDir, *overwrite); err != nil {
				fmt.Fprintf(os.Stderr, "dump layout: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if *writeSqlite {
		if err := dumputil.WriteSQLite(results, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "write sqlite: %v\n", err)
			os.Exit(1)
		}
	}
}

// layOut runs pagination for requested targets using the same configuration
// main program would use.
func layOut(rep *report.Report, configFile, names string, log *zap.Logger) ([]*process.Result, error) {
	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return nil, err
	}

	var wanted []string
	if names != "" {
		wanted = strings.Split(names, ",")
	}
	var targets []process.Target
	for _, t := range cfg.Layout.Targets {
		if len(wanted) > 0 && !contains(wanted, t.Name) {
			continue
		}
		targets = append(targets, process.Target{Name: t.Name, PageHeight: t.PageHeightMicro()})
	}

	opts := process.Options{
		DetailMode:      cfg.Crosstab.DetailMode,
		HeaderRowHeight: layout.FromPoints(cfg.Layout.HeaderRowHeight),
	}
	return process.RunTargets(context.Background(), rep, targets, runtime.NumCPU(), opts, log)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}
	return false
}
