package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/bandassist/internal/derived"
	"github.com/desertthunder/bandassist/internal/models"
	"github.com/desertthunder/bandassist/internal/player"
	"github.com/desertthunder/bandassist/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	PlayerView
)

// SessionStarter builds and starts a player session for a catalog song.
// The cmd layer supplies it so the model never touches files or config.
type SessionStarter func(ctx context.Context, song *models.Song) (*player.Session, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	songs        models.Repository[*models.Song]
	startSession SessionStarter

	width  int
	height int

	songList    list.Model
	currentSong *models.Song
	initialSong *models.Song

	session *player.Session
	snap    player.Snapshot

	// bpmEntry holds the in-progress BPM text, keyed by song ID so the
	// buffer resets when a different song is opened.
	bpmEntry   derived.State[string]
	bpmEditing bool

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, songs models.Repository[*models.Song], start SessionStarter) *Model {
	return &Model{
		ctx:          ctx,
		view:         SongListView,
		songs:        songs,
		startSession: start,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// OpenOnStart skips the picker and opens straight into the player for song.
func (m *Model) OpenOnStart(song *models.Song) {
	m.initialSong = song
}

// Init initializes the TUI by loading the song catalog.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadSongs()}
	if m.initialSong != nil {
		m.currentSong = m.initialSong
		cmds = append(cmds, m.openSong(m.initialSong))
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() == 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case PlayerView:
			return m.handlePlayerKeys(msg)
		}

	case songsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.songs))
		for i, song := range msg.songs {
			items[i] = songItem{song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = "Song Catalog"
		m.songList.SetSize(m.width-4, m.height-8)
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SongListView
			return m, nil
		}
		m.session = msg.session
		m.snap = msg.session.Snapshot()
		m.view = PlayerView
		m.bpmEditing = false
		m.bpmEntry.Sync(m.currentSong.ID(), "")
		return m, m.waitForSession()

	case sessionUpdateMsg:
		if m.session != nil {
			m.snap = m.session.Snapshot()
		}
		return m, m.waitForSession()

	case sessionClosedMsg:
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == SongListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case PlayerView:
		return m.renderPlayer()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				m.currentSong = item.song
				m.err = nil
				return m, m.openSong(item.song)
			}
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.bpmEditing {
		return m.handleBPMEntryKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.closeSession()
		return m, tea.Quit
	case "esc":
		m.closeSession()
		m.view = SongListView
		return m, nil
	case " ":
		m.session.TogglePlayPause()
	case "s":
		m.session.Stop()
	case "left", "h":
		m.seekBy(-5000)
	case "right", "l":
		m.seekBy(5000)
	case "up", "k":
		m.session.RenderTrack(m.snap.RenderedTrack - 1)
	case "down", "j":
		m.session.RenderTrack(m.snap.RenderedTrack + 1)
	case "m":
		m.session.ToggleMute(m.snap.RenderedTrack)
	case "o":
		m.session.ToggleSolo(m.snap.RenderedTrack)
	case "L":
		m.session.ToggleLoop()
	case "c":
		m.session.ClearLoopRange()
	case "+", "=":
		m.session.SetSpeed(m.snap.Speed + 0.25)
	case "-":
		m.session.SetSpeed(m.snap.Speed - 0.25)
	case "0":
		m.session.ResetTempo()
	case "b":
		if m.snap.State == player.StateReady {
			m.bpmEditing = true
			m.bpmEntry.Set(strconv.Itoa(m.snap.BPM))
		}
	case "r":
		if m.snap.State == player.StateError {
			m.err = nil
			m.session.Retry()
		}
	}

	m.snap = m.session.Snapshot()
	return m, nil
}

// handleBPMEntryKeys is the tiny modal editor for typing an absolute tempo.
// Enter commits through the session (which discards unparsable input), esc
// abandons the buffer.
func (m *Model) handleBPMEntryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.session.CommitBPMEntry(m.bpmEntry.Value())
		m.bpmEditing = false
	case "esc":
		m.bpmEditing = false
	case "backspace":
		m.bpmEntry.Update(func(s string) string {
			if len(s) == 0 {
				return s
			}
			return s[:len(s)-1]
		})
	default:
		if len(msg.String()) == 1 && msg.String() >= "0" && msg.String() <= "9" {
			m.bpmEntry.Update(func(s string) string { return s + msg.String() })
		}
	}

	m.snap = m.session.Snapshot()
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == SongListView {
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.songs.List(nil)
		return songsLoadedMsg{songs: songs, err: err}
	}
}

func (m *Model) openSong(song *models.Song) tea.Cmd {
	return func() tea.Msg {
		session, err := m.startSession(m.ctx, song)
		return sessionStartedMsg{session: session, err: err}
	}
}

// waitForSession blocks on the session's update channel and converts each
// signal into a message. The channel closing means the session shut down.
func (m *Model) waitForSession() tea.Cmd {
	session := m.session
	if session == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-session.Updates(); !ok {
			return sessionClosedMsg{}
		}
		return sessionUpdateMsg{}
	}
}

func (m *Model) closeSession() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

func (m *Model) seekBy(deltaMS float64) {
	if m.snap.EndMS <= 0 {
		return
	}
	f := (m.snap.PositionMS + deltaMS) / m.snap.EndMS
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	m.session.SeekFraction(f)
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderPlayer() string {
	switch m.snap.State {
	case player.StateError:
		body := styles.err.Render(fmt.Sprintf("Playback error: %s", m.snap.Err))
		hint := styles.help.Render("r retry • esc back • q quit")
		return fmt.Sprintf("%s\n\n%s", body, hint)
	case player.StateReady:
		return m.renderTransport()
	default:
		title := styles.title.Render(m.songTitle())
		return fmt.Sprintf("%s\n%s", title, styles.dim.Render(fmt.Sprintf("Loading (%s)...", m.snap.State)))
	}
}

func (m *Model) renderTransport() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(m.songTitle()))
	b.WriteString("\n")

	state := "paused"
	if m.snap.Playing {
		state = "playing"
	}
	position := fmt.Sprintf("%s / %s", shared.FormatTimestamp(m.snap.PositionMS), shared.FormatTimestamp(m.snap.EndMS))
	b.WriteString(fmt.Sprintf("%s  %s  %s\n", styles.ok.Render(state), position, m.renderPulse()))

	tempo := fmt.Sprintf("%d bpm (x%.2f)", m.snap.BPM, m.snap.Speed)
	if m.bpmEditing {
		tempo = fmt.Sprintf("bpm: %s_", m.bpmEntry.Value())
	}
	b.WriteString(tempo)
	b.WriteString("  ")
	b.WriteString(m.renderLoop())
	b.WriteString("\n\n")

	for i, track := range m.snap.Tracks {
		marker := "  "
		if i == m.snap.RenderedTrack {
			marker = "> "
		}
		flags := ""
		if track.Mute {
			flags += " [M]"
		}
		if track.Solo {
			flags += " [S]"
		}
		line := fmt.Sprintf("%s%s%s", marker, track.Name, flags)
		if i == m.snap.RenderedTrack {
			line = styles.ok.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.play, m.keys.mute, m.keys.solo, m.keys.loop, m.keys.bpm, m.keys.back}))
	return b.String()
}

func (m *Model) renderPulse() string {
	if m.snap.Pulse <= 0 {
		return styles.dim.Render("·")
	}
	return styles.pulse.Render(fmt.Sprintf(" %d ", m.snap.Pulse))
}

func (m *Model) renderLoop() string {
	if !m.snap.LoopEnabled && m.snap.LoopRange == nil && !m.snap.PendingLoop {
		return styles.dim.Render("loop off")
	}

	var parts []string
	if m.snap.LoopEnabled {
		parts = append(parts, "loop on")
	} else {
		parts = append(parts, "loop off")
	}
	if m.snap.PendingLoop {
		parts = append(parts, "selecting...")
	}
	if r := m.snap.LoopRange; r != nil {
		parts = append(parts, fmt.Sprintf("%s-%s", shared.FormatTimestamp(r.StartTick), shared.FormatTimestamp(r.EndTick)))
	}
	return styles.warn.Render(strings.Join(parts, " "))
}

func (m *Model) songTitle() string {
	if m.snap.Title != "" {
		return m.snap.Title
	}
	if m.currentSong != nil {
		return m.currentSong.Title()
	}
	return "Band Assist"
}
