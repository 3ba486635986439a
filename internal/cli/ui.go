package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
)

// stdout receives all user-facing output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, living wood
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, cuts
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleBranch = lipgloss.NewStyle().Foreground(colorGreen)
	styleCut    = lipgloss.NewStyle().Foreground(colorRed).Strikethrough(true)
	styleKey    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCut     = "✂"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line, tagged with where the data came from.
func printFile(path string, cached bool) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path)+" "+cacheTag(cached))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(stdout)
}

func cacheTag(cached bool) string {
	if cached {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

// =============================================================================
// Tree Display
// =============================================================================

// printTreeStats prints the control and pruned tree sizes on one line.
func printTreeStats(full, pruned tree.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d branches", full.Branches),
		fmt.Sprintf("%d leaves", full.Leaves),
		fmt.Sprintf("depth %d", full.MaxDepth),
	}
	if removed := full.Branches - pruned.Branches; removed > 0 {
		parts = append(parts, fmt.Sprintf("%d cut", removed))
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	line.WriteString(StyleDim.Render(" · ") + cacheTag(cached))
	fmt.Fprintln(stdout, line.String())
}

// treeView renders the branch hierarchy of t as an indented terminal tree.
// Branches in removed are shown struck through and their subtrees are
// collapsed. Below maxLevels levels the remaining descendants are
// summarised as a count; a negative maxLevels shows everything.
func treeView(t *tree.Tree, removed prune.Set, maxLevels int) string {
	root := lgtree.Root(StyleDim.Render(tree.RootID)).
		EnumeratorStyle(StyleDim).
		IndenterStyle(StyleDim)
	for _, id := range t.Children(tree.RootID) {
		root.Child(branchNode(t, id, removed, 1, maxLevels))
	}
	return root.String()
}

func branchNode(t *tree.Tree, id string, removed prune.Set, level, maxLevels int) any {
	seg, _ := t.Node(id)
	label := fmt.Sprintf("%s %s", id, StyleDim.Render(fmt.Sprintf("%.2f", seg.Length())))

	if removed.Has(id) {
		hidden := 0
		t.Walk(id, func(tree.Segment) bool { hidden++; return true })
		return styleCut.Render(id) + " " + styleIconError.Render(iconCut) +
			StyleDim.Render(fmt.Sprintf(" %d removed", hidden))
	}

	children := t.Children(id)
	if len(children) == 0 {
		return styleBranch.Render(label)
	}
	if maxLevels >= 0 && level >= maxLevels {
		below := -1
		t.Walk(id, func(tree.Segment) bool { below++; return true })
		return styleBranch.Render(label) + StyleDim.Render(fmt.Sprintf(" (+%d)", below))
	}

	node := lgtree.Root(styleBranch.Render(label))
	for _, child := range children {
		node.Child(branchNode(t, child, removed, level+1, maxLevels))
	}
	return node
}
