// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view rehearsal workflow:
//  1. [SongListView] : Browse the song catalog and pick something to practice
//  2. [PlayerView] : Transport, mixer, tempo and loop control for the loaded tab
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Playback state flows from the player session's update channel into
// re-rendered snapshots, so the view never reads engine internals directly.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus
// transport keys (space, s, arrows) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
