package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/karlhorky/outliner/internal/outline"
	"github.com/karlhorky/outliner/internal/pipeline"
	"github.com/karlhorky/outliner/internal/render"
)

var CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	TopLevel    int    `help:"Heading level treated as the outline root" default:"2"`
	Policy      string `help:"Attachment policy for skipped levels" default:"nearest" enum:"nearest,strict"`
	MaxLevel    int    `help:"Deepest heading level to keep" default:"6"`
	NoNormalize bool   `help:"Keep source heading levels instead of shifting them to the top level"`

	Extract struct {
		Format string   `short:"f" help:"Output format" default:"json" enum:"json,flat,markdown,html"`
		Paths  []string `arg:"" name:"path" help:"Documents to outline" type:"existingfile"`
	} `cmd:"" help:"Print document outlines to stdout"`

	Insert struct {
		Write bool     `short:"w" help:"Rewrite files in place" xor:"mode"`
		Check bool     `help:"Exit non-zero when a TOC is stale, without writing" xor:"mode"`
		Files []string `arg:"" name:"file" help:"Markdown files with toc markers" type:"existingfile"`
	} `cmd:"" help:"Regenerate the TOC between <!-- toc --> markers"`

	Watch struct {
		Debounce time.Duration `help:"Quiet period before re-running insert" default:"500ms"`
		Paths    []string      `arg:"" name:"path" help:"Markdown files or directories to watch" type:"path"`
	} `cmd:"" help:"Rewrite TOCs whenever watched Markdown files change"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("outline"),
		kong.Description("Extract and maintain document outlines."),
		kong.UsageOnError(),
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	opts := pipeline.Options{
		TopLevel:  CLI.TopLevel,
		Policy:    outline.Policy(CLI.Policy),
		Normalize: !CLI.NoNormalize,
		MaxLevel:  CLI.MaxLevel,
	}

	var err error
	switch ctx.Command() {
	case "extract <path>":
		err = runExtract(opts)
	case "insert <file>":
		err = runInsert(opts)
	case "watch <path>":
		err = runWatch(opts)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runExtract(opts pipeline.Options) error {
	paths := CLI.Extract.Paths
	results := make([]pipeline.DocResult, 0, len(paths))
	failed := 0

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			slog.Error("read failed", "file", p, "error", err)
			failed++
			continue
		}

		res := pipeline.ExtractOutline(opts, filepath.Base(p), data)
		if res.Error != "" {
			slog.Error("extraction failed", "file", p, "error", res.Error)
			failed++
			continue
		}
		if res.Skipped {
			slog.Info("toc disabled via frontmatter", "file", p)
			continue
		}

		switch CLI.Extract.Format {
		case "markdown":
			printRendered(p, render.Markdown(res.Outline), len(paths) > 1)
		case "html":
			printRendered(p, render.HTML(res.Outline), len(paths) > 1)
		default:
			results = append(results, res)
		}
	}

	switch CLI.Extract.Format {
	case "json":
		for i := range results {
			results[i].Entries = nil
		}
		if err := printJSON(results); err != nil {
			return err
		}
	case "flat":
		for i := range results {
			results[i].Outline = nil
		}
		if err := printJSON(results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(paths))
	}
	return nil
}

func runInsert(opts pipeline.Options) error {
	var stale []string
	failed := 0

	for _, p := range CLI.Insert.Files {
		updated, changed, err := regenTOC(p, opts)
		switch {
		case err != nil:
			slog.Error("toc update failed", "file", p, "error", err)
			failed++
		case updated == nil:
			slog.Info("toc disabled via frontmatter", "file", p)
		case CLI.Insert.Check:
			if changed {
				stale = append(stale, p)
			}
		case CLI.Insert.Write:
			if !changed {
				slog.Debug("toc already current", "file", p)
				break
			}
			if err := os.WriteFile(p, updated, 0o644); err != nil {
				slog.Error("write failed", "file", p, "error", err)
				failed++
				break
			}
			slog.Info("toc updated", "file", p)
		default:
			os.Stdout.Write(updated)
		}
	}

	for _, p := range stale {
		fmt.Printf("stale: %s\n", p)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	if len(stale) > 0 {
		return fmt.Errorf("%d file(s) have a stale toc", len(stale))
	}
	return nil
}

func runWatch(opts pipeline.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range CLI.Watch.Paths {
		if err := addWatchPath(watcher, p, files, dirs); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("watching for changes", "paths", len(CLI.Watch.Paths), "debounce", CLI.Watch.Debounce)

	// Debounce per file: each event resets that file's timer.
	timers := make(map[string]*time.Timer)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if !files[abs] && !dirs[filepath.Dir(abs)] {
				continue
			}
			if !isMarkdownFile(abs) {
				continue
			}
			if t, ok := timers[abs]; ok {
				t.Stop()
			}
			path := abs
			timers[abs] = time.AfterFunc(CLI.Watch.Debounce, func() {
				insertAndWrite(path, opts)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// insertAndWrite regenerates one file's TOC and rewrites the file when it
// changed. Files without markers or with toc disabled are skipped, so a
// rewrite triggered by our own write settles after one pass.
func insertAndWrite(path string, opts pipeline.Options) {
	updated, changed, err := regenTOC(path, opts)
	switch {
	case errors.Is(err, render.ErrNoMarkers):
		slog.Debug("no toc markers, skipping", "file", path)
	case err != nil:
		slog.Error("toc update failed", "file", path, "error", err)
	case updated == nil:
		slog.Debug("toc disabled via frontmatter", "file", path)
	case !changed:
		slog.Debug("toc already current", "file", path)
	default:
		if err := os.WriteFile(path, updated, 0o644); err != nil {
			slog.Error("write failed", "file", path, "error", err)
			return
		}
		slog.Info("toc updated", "file", path)
	}
}

// regenTOC builds the outline for a Markdown file and splices it between the
// toc markers. A nil updated slice with a nil error means the document opted
// out via frontmatter.
func regenTOC(path string, opts pipeline.Options) (updated []byte, changed bool, err error) {
	if !isMarkdownFile(path) {
		return nil, false, fmt.Errorf("not a markdown file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	res := pipeline.ExtractOutline(opts, filepath.Base(path), data)
	if res.Error != "" {
		return nil, false, fmt.Errorf("%s", res.Error)
	}
	if res.Skipped {
		return nil, false, nil
	}

	toc := render.Markdown(res.Outline)
	return render.InsertTOC(data, toc)
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

// addWatchPath registers a file or directory tree with the watcher. Explicit
// files are tracked by absolute path; directories (and their subdirectories)
// trigger for any Markdown file inside them.
func addWatchPath(watcher *fsnotify.Watcher, root string, files, dirs map[string]bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		files[abs] = true
		return watcher.Add(filepath.Dir(abs))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		dirs[abs] = true
		return watcher.Add(path)
	})
}

func printRendered(path, rendered string, banner bool) {
	if banner {
		fmt.Printf("<!-- %s -->\n", path)
	}
	fmt.Print(rendered)
	if banner {
		fmt.Println()
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
