// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/session"
	"github.com/verte-zerg/typetest/internal/stats"
)

const (
	tickInterval = 100 * time.Millisecond
	windowBefore = 10
	windowAfter  = 40
)

// ResultStore persists finished results.
type ResultStore interface {
	SaveResult(ctx context.Context, r model.Result) (string, error)
}

// summaryLoader is implemented by stores that can report history for a key.
type summaryLoader interface {
	SummaryForKey(ctx context.Context, key string) (model.KeySummary, bool, error)
}

// weakLoader is implemented by stores that aggregate recent character stats.
type weakLoader interface {
	GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error)
}

// weakFocuser is implemented by word sources that can favour weak characters.
type weakFocuser interface {
	FocusWeak(weak map[rune]struct{}, factor float64)
}

type screen int

const (
	screenTyping screen = iota
	screenResults
)

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	settings model.Settings
	source   session.WordSource
	store    ResultStore
	styles   styles
	now      func() time.Time

	sess   *session.Session
	screen screen
	result *model.Result
	saved  bool
	err    error

	summary    model.KeySummary
	hasSummary bool
	weakNotice bool

	width  int
	height int
}

// NewModel builds a typing model and its first session.
func NewModel(settings model.Settings, source session.WordSource, store ResultStore) (*Model, error) {
	return newModel(settings, source, store, time.Now)
}

func newModel(settings model.Settings, source session.WordSource, store ResultStore, now func() time.Time) (*Model, error) {
	m := &Model{
		settings: settings,
		source:   source,
		store:    store,
		styles:   newStyles(settings.Theme),
		now:      now,
	}
	if settings.FocusWeak {
		m.refreshWeakSet()
	}
	sess, err := session.New(settings.TestConfig(), source,
		session.WithClock(now),
		session.WithWindow(windowBefore, windowAfter),
	)
	if err != nil {
		return nil, err
	}
	m.sess = sess
	m.loadSummary()
	return m, nil
}

// Err returns the error that stopped the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.screen == screenTyping && m.sess.Phase() == session.Running && m.sess.Config().Mode == model.ModeTime {
			snap, err := m.sess.Tick(m.now())
			if cmd := m.apply("tick", snap, err); cmd != nil {
				return m, cmd
			}
		}
		return m, tickCmd()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenResults {
			return m, m.updateResults(msg)
		}
		return m, m.updateTyping(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateTyping(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		if _, err := m.sess.Cancel(); err != nil {
			log.Printf("cancel: %v", err)
		}
		return tea.Quit
	case tea.KeyTab:
		if m.settings.RestartKey {
			return m.restart()
		}
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		snap, err := m.sess.Backspace()
		return m.apply("backspace", snap, err)
	case tea.KeySpace:
		return m.advance()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			var cmd tea.Cmd
			if r == ' ' {
				cmd = m.advance()
			} else {
				snap, err := m.sess.HandleChar(r)
				cmd = m.apply("type", snap, err)
			}
			if cmd != nil || m.screen != screenTyping {
				return cmd
			}
		}
		return nil
	default:
		return nil
	}
}

func (m *Model) updateResults(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyEnter:
		return m.restart()
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) advance() tea.Cmd {
	snap, err := m.sess.AdvanceWord()
	return m.apply("advance", snap, err)
}

// apply reacts to the outcome of one session call. Rejected transitions are
// ignored; any other error stops the program.
func (m *Model) apply(op string, snap session.Snapshot, err error) tea.Cmd {
	if err != nil {
		var te *session.TransitionError
		if errors.As(err, &te) {
			return nil
		}
		log.Printf("%s: %v", op, err)
		m.err = err
		return tea.Quit
	}
	if snap.Phase == session.Finished {
		m.finish()
	}
	return nil
}

func (m *Model) restart() tea.Cmd {
	next, err := m.sess.Restart()
	if err != nil {
		log.Printf("restart: %v", err)
		m.err = err
		return tea.Quit
	}
	m.sess = next
	m.screen = screenTyping
	m.result = nil
	m.saved = false
	return nil
}

func (m *Model) finish() {
	res, ok := m.sess.Result()
	if !ok {
		return
	}
	m.result = &res
	m.screen = screenResults
	if m.store == nil {
		return
	}
	id, err := m.store.SaveResult(context.Background(), res)
	if err != nil {
		log.Printf("failed to save result: %v", err)
		return
	}
	m.result.ID = id
	m.saved = true
	m.loadSummary()
	if m.settings.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) loadSummary() {
	loader, ok := m.store.(summaryLoader)
	if !ok {
		return
	}
	summary, found, err := loader.SummaryForKey(context.Background(), m.settings.TestConfig().Key())
	if err != nil {
		log.Printf("failed to load result history: %v", err)
		return
	}
	m.summary = summary
	m.hasSummary = found
}

func (m *Model) refreshWeakSet() {
	loader, ok := m.store.(weakLoader)
	focuser, canFocus := m.source.(weakFocuser)
	if !ok || !canFocus {
		return
	}
	aggs, err := loader.GetWeakChars(context.Background(), m.settings.WeakWindow, m.settings.Lang)
	if err != nil {
		log.Printf("failed to load weak chars: %v", err)
		return
	}
	weak := stats.SelectWeakChars(aggs, m.settings.WeakTop)
	if len(weak) == 0 && !m.weakNotice {
		log.Printf("no stats available for weak-char focus yet; using uniform selection")
		m.weakNotice = true
	}
	focuser.FocusWeak(weak, m.settings.WeakFactor)
}
