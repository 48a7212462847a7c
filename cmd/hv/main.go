package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/config"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/debug"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/state"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/ui"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/version"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/watcher"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	noWatch := flag.Bool("no-watch", false, "Do not watch the file for on-disk changes")
	resetState := flag.Bool("reset-state", false, "Discard saved expand/collapse state for this file")
	robotDump := flag.Bool("robot-dump", false, "Print the full tree as indented text and exit (for scripts and AI agents)")
	configPath := flag.String("config", "", "Config file path (default: ~/.config/hv/config.yaml)")
	flag.Parse()

	if *help {
		fmt.Println("Usage: hv [options] <file.h5>")
		fmt.Println("\nAn interactive terminal browser for HDF5 and NeXus files.")
		fmt.Println("\nKeys: j/k move, l expand, h collapse, enter toggle, L/H expand/collapse all,")
		fmt.Println("      / search, y copy path, i detail pane, g/G top/bottom, q quit.")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("hv %s\n", version.Version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: hv [options] <file.h5>")
		os.Exit(2)
	}
	// Absolutize once: the path doubles as the view-state key, which must not
	// depend on the directory hv was started from.
	path := absolutePath(flag.Arg(0))

	reader, err := hdf.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hv: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	if *robotDump {
		dumpTree(os.Stdout, reader)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "hv: stdout is not a terminal (use --robot-dump for plain output)")
		os.Exit(1)
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hv: %v\n", err)
		os.Exit(1)
	}

	// View-state persistence is best-effort: a read-only home directory
	// just means expand state does not survive restarts.
	var store *state.Store
	if s, err := state.Open(config.StateDir()); err == nil {
		store = s
		defer store.Close()
		if *resetState {
			_ = store.Reset(path)
		}
	} else {
		debug.Log("view-state store unavailable: %v", err)
	}

	m := ui.NewModel(reader, cfg, store)
	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if !*noWatch {
		if w, err := watcher.New(path, watcher.DefaultDebounce); err == nil {
			g.Go(func() error { return w.Run(ctx) })
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-w.Changes():
						p.Send(ui.FileChangedMsg{})
					}
				}
			})
		} else {
			debug.Log("file watcher unavailable: %v", err)
		}
	}

	_, runErr := p.Run()
	cancel()
	_ = g.Wait()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "hv: %v\n", runErr)
		os.Exit(1)
	}
}

// absolutePath resolves a CLI path for opening and persistence. Falls back to
// the raw argument if the working directory is gone.
func absolutePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// dumpTree walks the whole hierarchy depth-first and prints one indented
// line per node. Unreadable groups are reported inline and skipped, the
// same recovery the TUI applies.
func dumpTree(w io.Writer, reader hdf.Reader) {
	info := reader.Info()
	fmt.Fprintf(w, "%s\n", info.Name)

	var walk func(id model.NodeID, depth int)
	walk = func(id model.NodeID, depth int) {
		kids, err := reader.Children(id)
		if err != nil {
			fmt.Fprintf(w, "%*s! %s: %v\n", depth*2, "", id.Name(), err)
			return
		}
		for _, c := range kids {
			childID := id.Child(c.Name)
			switch c.Kind {
			case model.KindGroup:
				fmt.Fprintf(w, "%*s%s/\n", depth*2, "", c.Name)
				walk(childID, depth+1)
			case model.KindDataset:
				if meta, err := reader.Metadata(childID); err == nil {
					fmt.Fprintf(w, "%*s%s %s %s\n", depth*2, "", c.Name, meta.ShapeString(), meta.DType)
				} else {
					fmt.Fprintf(w, "%*s%s (unreadable: %v)\n", depth*2, "", c.Name, err)
				}
			}
		}
	}
	walk(model.RootID, 1)
}
