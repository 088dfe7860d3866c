package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	play   key.Binding
	stop   key.Binding
	seekB  key.Binding
	seekF  key.Binding
	mute   key.Binding
	solo   key.Binding
	loop   key.Binding
	clear  key.Binding
	faster key.Binding
	slower key.Binding
	bpm    key.Binding
	reset  key.Binding
	retry  key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		play:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		seekB:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek back")),
		seekF:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek forward")),
		mute:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute track")),
		solo:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "solo track")),
		loop:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "loop")),
		clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear loop")),
		faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		slower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
		bpm:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "set bpm")),
		reset:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset tempo")),
		retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.play, k.stop, k.seekB, k.seekF},
		{k.mute, k.solo, k.loop, k.clear},
		{k.faster, k.slower, k.bpm, k.reset},
		{k.retry, k.quit},
	}
}
