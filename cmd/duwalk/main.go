package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/mietkow/duwalk/internal/agg"
	"github.com/mietkow/duwalk/internal/config"
	"github.com/mietkow/duwalk/internal/ops"
	"github.com/mietkow/duwalk/internal/remote"
	"github.com/mietkow/duwalk/internal/tree"
	"github.com/mietkow/duwalk/internal/ui"
	"github.com/mietkow/duwalk/internal/ui/style"
	"github.com/mietkow/duwalk/internal/util"
	"github.com/mietkow/duwalk/internal/walk"
)

var version = "dev"

const clearLine = "\r\033[2K"

// scanTarget is the resolved scan destination: local roots, or one remote
// target reached over SSH.
type scanTarget struct {
	Remote bool
	Target remote.Target
	Roots  []string
}

func main() {
	cfg, cfgErr := config.Load(config.DefaultPath())

	pflag.CommandLine.SortFlags = false
	summarize := pflag.BoolP("summarize", "s", false, "print flat per-root totals instead of opening the viewer")
	noTotal := pflag.Bool("no-total", false, "omit the total line when summarizing multiple roots")
	noSort := pflag.Bool("no-sort", false, "keep summarized roots in argument order")
	stats := pflag.Bool("stats", false, "print scan statistics to stderr")
	threads := pflag.IntP("threads", "t", cfg.Threads, "enumeration threads (0 = one per CPU)")
	formatName := pflag.StringP("format", "f", cmp.Or(cfg.Format, "metric"), "byte format: metric|binary|bytes|GB|GiB|MB|MiB")
	apparent := pflag.BoolP("apparent-size", "A", cfg.ApparentSize, "sum logical file sizes instead of disk allocation")
	countLinks := pflag.BoolP("count-hard-links", "l", cfg.CountHardLinks, "count every hard link instead of only the first one seen")
	stayOnFs := pflag.BoolP("stay-on-filesystem", "x", cfg.StayOnFilesystem, "do not descend into directories on other filesystems")
	ignoreDirs := pflag.StringSliceP("ignore-dirs", "i", cfg.IgnoreDirs, "directory to skip entirely (repeatable)")
	sortByName := pflag.Bool("sort-by-name", cfg.SortByName, "enumerate each directory alphabetically")
	exportPath := pflag.String("export", "", "scan and write ncdu-compatible JSON ('-' for stdout), then exit")
	importPath := pflag.String("import", "", "browse a previously exported scan instead of scanning")
	sshBatch := pflag.Bool("ssh-batch", false, "never prompt for SSH passwords or unknown host keys")
	sshTimeout := pflag.Int("ssh-timeout", 15, "SSH connect timeout in seconds")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Usage = usage
	pflag.Parse()

	if *showVersion {
		fmt.Printf("duwalk %s\n", version)
		return
	}
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", cfgErr)
	}

	format, err := util.ParseByteFormat(*formatName)
	if err != nil {
		fatalf("%v", err)
	}
	if *threads < 0 {
		fatalf("--threads must be >= 0")
	}
	if *sshTimeout < 0 {
		fatalf("--ssh-timeout must be >= 0")
	}

	opts := walk.Options{
		Threads:          *threads,
		Format:           format,
		CountHardLinks:   *countLinks,
		ApparentSize:     *apparent,
		CrossFilesystems: !*stayOnFs,
		IgnoreDirs:       walk.NewIgnoreSet(*ignoreDirs),
	}
	if *sortByName {
		opts.Sorting = walk.SortAlphabetical
	}

	if *importPath != "" {
		if pflag.NArg() > 0 {
			fatalf("--import cannot be used with scan targets")
		}
		if *summarize {
			fatalf("--import cannot be combined with --summarize")
		}
		if *exportPath != "" {
			trav, err := ops.ImportJSON(*importPath)
			if err != nil {
				fatalf("import %s: %v", *importPath, err)
			}
			if err := ops.ExportJSON(trav, *exportPath, version); err != nil {
				fatalf("export %s: %v", *exportPath, err)
			}
			if *exportPath != "-" {
				fmt.Printf("Exported to %s\n", *exportPath)
			}
			return
		}
		app := ui.NewAppFromImport(*importPath, format)
		app.Version = version
		runTUI(app)
		return
	}

	target, err := resolveScanTarget(pflag.Args())
	if err != nil {
		fatalf("%v", err)
	}
	if !target.Remote && !*summarize {
		// Fail before the alt screen comes up. The aggregate path instead
		// records a per-root error and keeps going.
		for _, root := range target.Roots {
			if _, err := os.Stat(root); err != nil {
				fatalf("%v", err)
			}
		}
	}

	walker, closeWalker, err := buildWalker(target, opts, *sshBatch, time.Duration(*sshTimeout)*time.Second)
	if err != nil {
		fatalf("%v", err)
	}

	switch {
	case *summarize:
		code := runSummarize(walker, opts, target.Roots, !*noSort, !*noTotal, *stats)
		closeWalker()
		os.Exit(code)
	case *exportPath != "":
		code := runHeadlessExport(walker, opts, target.Roots, *exportPath, *stats)
		closeWalker()
		os.Exit(code)
	default:
		app := ui.NewApp(walker, opts, target.Roots)
		app.Version = version
		runTUI(app)
		closeWalker()
	}
}

func usage() {
	fmt.Fprint(os.Stderr, heredoc.Doc(`
		duwalk - disk usage analyzer

		Usage:
		  duwalk [flags] [path...]
		  duwalk [flags] user@host[:port][:path]

		Scans the given paths (default: the current directory) and opens an
		interactive viewer; -s prints flat totals instead. A remote target
		scans over SSH. When an argument names an existing local path it is
		always read as one, even if it looks like a remote target.

		Examples:
		  duwalk /var /home                browse two trees side by side
		  duwalk -s -A .                   flat apparent-size total
		  duwalk --export scan.json.gz /   headless scan into compressed JSON
		  duwalk --import scan.json.gz     browse an exported scan offline
		  duwalk deploy@10.0.0.5:/srv      browse a remote tree over SSH

		Flags:
	`))
	pflag.PrintDefaults()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func runTUI(app *ui.App) {
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatalf("%v", err)
	}
	if err := app.FatalError(); err != nil {
		fatalf("%v", err)
	}
}

// resolveScanTarget decides between local roots and a remote target. An
// existing local path wins over a remote reading of the same argument, so
// a directory literally named alice@server is still scannable.
func resolveScanTarget(args []string) (scanTarget, error) {
	if len(args) == 0 {
		return scanTarget{Roots: []string{"."}}, nil
	}
	for _, arg := range args {
		if !remote.IsTarget(arg) || pathExists(arg) {
			continue
		}
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("remote target %s must be the only path argument", arg)
		}
		t, err := remote.ParseTarget(arg)
		if err != nil {
			return scanTarget{}, err
		}
		return scanTarget{Remote: true, Target: t, Roots: []string{t.Path}}, nil
	}
	return scanTarget{Roots: args}, nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// buildWalker returns the walker every mode scans through, plus a cleanup
// for the SSH session backing a remote one.
func buildWalker(target scanTarget, opts walk.Options, sshBatch bool, sshTimeout time.Duration) (walk.Walker, func(), error) {
	if !target.Remote {
		return walk.NewLocalWalker(opts), func() {}, nil
	}
	rw, err := remote.Connect(context.Background(), remote.Config{
		Target:    target.Target,
		BatchMode: sshBatch,
		Timeout:   sshTimeout,
	}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", target.Target.Addr(), err)
	}
	return rw, func() { rw.Close() }, nil
}

func runSummarize(walker walk.Walker, opts walk.Options, roots []string, sortBySize, showTotal, dumpStats bool) int {
	var progress io.Writer
	if isTTY(os.Stderr) {
		progress = os.Stderr
	}

	result, stats, records := agg.Aggregate(progress, walker, opts, sortBySize, roots)
	if progress != nil {
		fmt.Fprint(os.Stderr, clearLine)
	}

	printRecords(os.Stdout, opts.Format, result, records, showTotal)
	if dumpStats {
		printStatistics(os.Stderr, opts.Format, stats)
	}
	if result.NumErrors > 0 {
		fmt.Fprintf(os.Stderr, "duwalk: %d read errors\n", result.NumErrors)
	}
	return result.ExitCode()
}

// printRecords writes one right-aligned size and path per root, then a
// grand total once more than one root was scanned.
func printRecords(out io.Writer, format util.ByteFormat, result agg.WalkResult, records []agg.RootRecord, showTotal bool) {
	theme := style.DefaultTheme()
	styled := isTTY(os.Stdout)
	width := format.Width()

	line := func(bytes uint64, label string, bold bool) {
		size := fmt.Sprintf("%*s", width, format.Format(bytes))
		if styled {
			size = theme.SizeText.Bold(bold).Render(size)
		}
		fmt.Fprintf(out, "%s  %s\n", size, label)
	}
	for _, r := range records {
		line(r.Bytes, r.Path, false)
	}
	if showTotal && len(records) > 1 {
		line(result.TotalBytes, "total", true)
	}
}

func printStatistics(out io.Writer, format util.ByteFormat, stats agg.Statistics) {
	fmt.Fprintf(out, "Entries traversed: %s\n", humanize.Comma(int64(stats.EntriesTraversed)))
	fmt.Fprintf(out, "Smallest file: %s\n", format.Format(stats.SmallestFileInBytes))
	fmt.Fprintf(out, "Largest file: %s\n", format.Format(stats.LargestFileInBytes))
}

func runHeadlessExport(walker walk.Walker, opts walk.Options, roots []string, exportPath string, dumpStats bool) int {
	quiet := exportPath == "-"
	if !quiet {
		fmt.Printf("Scanning %s...\n", strings.Join(roots, ", "))
	}
	showProgress := !quiet && isTTY(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var cancelled atomic.Bool
	go func() {
		<-ctx.Done()
		cancelled.Store(true)
	}()

	trav := tree.BuildTree(walker, opts, roots, func(t *tree.Traversal) bool {
		if showProgress {
			fmt.Fprintf(os.Stderr, "\rEnumerating %s entries", humanize.Comma(int64(t.EntriesTraversed)))
		}
		return cancelled.Load()
	})
	if showProgress {
		fmt.Fprint(os.Stderr, clearLine)
	}
	if trav == nil {
		fmt.Fprintln(os.Stderr, "Scan cancelled")
		return 1
	}

	if err := ops.ExportJSON(trav, exportPath, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: export %s: %v\n", exportPath, err)
		return 1
	}
	if !quiet {
		fmt.Printf("Exported to %s\n", exportPath)
	}
	if dumpStats {
		printTreeStats(os.Stderr, opts.Format, trav)
	}
	return 0
}

// printTreeStats reports the traversal totals and a per-category breakdown
// of the scanned files.
func printTreeStats(out io.Writer, format util.ByteFormat, trav *tree.Traversal) {
	fmt.Fprintf(out, "Traversed %s entries in %.1fs (%d read errors)\n",
		humanize.Comma(int64(trav.EntriesTraversed)), trav.Elapsed.Seconds(), trav.IOErrors)
	for _, cs := range tree.CategoryStats(trav.Tree, trav.Root) {
		fmt.Fprintf(out, "  %-12s %8s files  %*s\n",
			tree.CategoryName(cs.Category), humanize.Comma(int64(cs.Count)), format.Width(), format.Format(cs.Bytes))
	}
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
