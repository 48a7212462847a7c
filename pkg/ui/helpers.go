package ui

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/hdf"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/Dicklesworthstone/hdf5_viewer/pkg/tree"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// truncate shortens s to maxWidth display cells, appending an ellipsis when
// anything was cut. Uses go-runewidth so wide characters count correctly.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// formatSize renders a byte count in binary units (KiB, MiB, ...), matching
// how scientific-data tooling reports dataset sizes.
func formatSize(n uint64) string {
	return humanize.IBytes(n)
}

// rowSummary builds the muted annotation drawn after a node name: dataset
// shape and dtype when the metadata happens to be cached, child count for
// loaded groups. It never triggers a fetch; rendering must stay pure.
func rowSummary(st *tree.TreeState, row tree.Row) string {
	node := st.Node(row.ID)
	if node == nil {
		return ""
	}
	switch row.Kind {
	case model.KindDataset:
		if node.Meta != nil {
			return fmt.Sprintf("%s %s", node.Meta.ShapeString(), node.Meta.DType)
		}
		return ""
	case model.KindGroup:
		if row.Loaded {
			return fmt.Sprintf("(%d)", len(node.Children))
		}
		return ""
	}
	return ""
}

// detailMarkdown builds the markdown body of the detail pane for the
// selected node. Metadata is resolved through the cache (first access may
// block on a read); a fetch failure becomes the pane content instead of
// killing the session.
func detailMarkdown(cache *tree.NodeCache, st *tree.TreeState, id model.NodeID) string {
	node := st.Node(id)
	if node == nil {
		return "_nothing selected_"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", node.Name())
	fmt.Fprintf(&sb, "`%s`\n\n", node.ID)

	meta, err := cache.ResolveMetadata(id)
	if err != nil {
		node.Err = err
		fmt.Fprintf(&sb, "**unreadable:** %v\n", err)
		return sb.String()
	}
	node.Err = nil
	node.Meta = &meta

	switch node.Kind {
	case model.KindGroup:
		sb.WriteString("| Kind | Members |\n|---|---|\n")
		members := "not loaded"
		if node.State == model.ChildrenLoaded {
			members = fmt.Sprintf("%d", len(node.Children))
		}
		fmt.Fprintf(&sb, "| group | %s |\n\n", members)
	case model.KindDataset:
		sb.WriteString("| Kind | Dtype | Shape | Size |\n|---|---|---|---|\n")
		fmt.Fprintf(&sb, "| dataset | %s | %s | %s |\n\n",
			meta.DType, meta.ShapeString(), formatSize(meta.ByteSize))
	}

	if meta.AttrCount > 0 {
		fmt.Fprintf(&sb, "### Attributes (%d)\n", meta.AttrCount)
		for _, a := range meta.Attrs {
			fmt.Fprintf(&sb, "- **%s**: %s\n", a.Name, a.Value)
		}
	}
	return sb.String()
}

// headerLine renders the file name and size header.
func headerLine(theme Theme, info hdf.FileInfo, width int) string {
	name := truncate(info.Name, width/2)
	size := formatSize(info.ByteSize)
	gap := width - runewidth.StringWidth(name) - runewidth.StringWidth(size)
	if gap < 1 {
		gap = 1
	}
	return theme.HeaderName.Render(name) + strings.Repeat(" ", gap) + theme.Header.Render(size)
}
