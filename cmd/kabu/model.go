package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"kabu/internal/app"
	"kabu/internal/config"
	"kabu/internal/dashboard"
	"kabu/internal/domain"
)

// mode is what currently owns the keyboard.
type mode int

const (
	modeNormal mode = iota
	modeInput
	modeNotice
	modeConfirm
)

// Layout: header, body, ticker, footer.
const (
	headerH = 1
	tickerH = 1
	footerH = 1
)

// Messages.
type tickMsg time.Time

// opDoneMsg carries the controller state after an operation finished.
type opDoneMsg struct {
	snap   app.Snapshot
	notice *app.Notice
}

type openedMsg struct {
	url string
	err error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runOp runs one controller operation off the UI goroutine. The model stays
// busy until its opDoneMsg arrives, so the controller is never shared.
func runOp(ctx context.Context, ctrl *app.Controller, op func(context.Context) *app.Notice) tea.Cmd {
	return func() tea.Msg {
		n := op(ctx)
		return opDoneMsg{snap: ctrl.Snapshot(), notice: n}
	}
}

// Model.
type model struct {
	ctx    context.Context
	ctrl   *app.Controller
	logger *slog.Logger
	open   func(url string) error

	snap      app.Snapshot
	busy      bool
	busyLabel string
	mode      mode
	notice    *app.Notice
	confirm   domain.Symbol
	cursor    int

	input     textinput.Model
	list      viewport.Model
	ticker    *dashboard.Ticker
	tickerSeq int

	sparkWidth   int
	tickInterval time.Duration

	ready         bool
	width, height int
}

func initialModel(ctx context.Context, ctrl *app.Controller, ui config.UI, logger *slog.Logger, open func(string) error) model {
	ti := textinput.New()
	ti.Prompt = "add › "
	ti.Placeholder = "AAPL, 7203 or a company name"
	ti.CharLimit = 64

	return model{
		ctx:          ctx,
		ctrl:         ctrl,
		logger:       logger,
		open:         open,
		snap:         ctrl.Snapshot(),
		busy:         true,
		busyLabel:    "loading watchlist",
		input:        ti,
		ticker:       dashboard.NewTicker(0, ui.TickerGap, ui.TickerStep),
		tickerSeq:    -1,
		sparkWidth:   ui.SparklineWidth,
		tickInterval: ui.TickerInterval,
	}
}

func (m model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		tickCmd(m.tickInterval),
		runOp(m.ctx, ctrl, func(ctx context.Context) *app.Notice {
			ctrl.Start(ctx)
			return nil
		}),
	)
}

// start marks the model busy and returns the command running op.
func (m *model) start(label string, op func(context.Context) *app.Notice) tea.Cmd {
	m.busy = true
	m.busyLabel = label
	return runOp(m.ctx, m.ctrl, op)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeNotice:
			switch msg.String() {
			case "enter", "esc", " ", "q":
				m.mode = modeNormal
				m.notice = nil
			}
			return m, nil
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.list = viewport.New(m.listWidth(), m.bodyHeight())
			m.list.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.list.Width = m.listWidth()
			m.list.Height = m.bodyHeight()
		}
		m.ticker.Resize(m.width)
		m.list.SetContent(m.renderCards())
		return m, nil

	case tickMsg:
		m.ticker.Advance()
		return m, tickCmd(m.tickInterval)

	case opDoneMsg:
		m.busy = false
		m.busyLabel = ""
		m.applySnapshot(msg.snap)
		if msg.notice != nil {
			m.notice = msg.notice
			m.mode = modeNotice
			if msg.notice.Kind == app.NoticeError {
				m.logger.Warn("operation failed", "message", msg.notice.Message)
			}
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.logger.Warn("opening link", "url", msg.url, "error", msg.err)
			// A pending confirmation or half-typed input keeps the keyboard.
			if m.mode == modeNormal {
				m.notice = &app.Notice{Kind: app.NoticeError, Message: "could not open browser: " + msg.err.Error()}
				m.mode = modeNotice
			}
		}
		return m, nil
	}
	return m, nil
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch key {
	case "/", "a":
		m.mode = modeInput
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		if sym, ok := m.cursorSymbol(); ok {
			cmd := m.selectCmd(sym)
			return m, cmd
		}
	case "d", "delete", "backspace":
		if sym, ok := m.cursorSymbol(); ok {
			m.confirm = sym
			m.mode = modeConfirm
		}
	case "[", "left":
		cmd := m.periodCmd(-1)
		return m, cmd
	case "]", "right":
		cmd := m.periodCmd(1)
		return m, cmd
	case "r":
		ctrl := m.ctrl
		cmd := m.start("refreshing", func(ctx context.Context) *app.Notice {
			ctrl.Start(ctx)
			return nil
		})
		return m, cmd
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		cmd := m.openHeadline(int(key[0] - '1'))
		return m, cmd
	}
	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		m.mode = modeNormal
		m.input.Blur()
		if text == "" || m.busy {
			return m, nil
		}
		ctrl := m.ctrl
		cmd := m.start("adding "+text, func(ctx context.Context) *app.Notice {
			return ctrl.Add(ctx, text)
		})
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sym := m.confirm
	switch msg.String() {
	case "y", "Y":
		m.mode = modeNormal
		m.confirm = ""
		if m.busy {
			return m, nil
		}
		ctrl := m.ctrl
		cmd := m.start("deleting "+sym.String(), func(ctx context.Context) *app.Notice {
			return ctrl.Delete(ctx, sym, true)
		})
		return m, cmd
	case "n", "N", "esc", "q":
		m.mode = modeNormal
		m.confirm = ""
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || m.mode != modeNormal {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		// Wheel scrolling for the card list.
		if msg.X < m.listWidth() {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Ticker line: open the clicked headline.
	if msg.Y == m.height-footerH-tickerH {
		if i := m.ticker.HitTest(msg.X); i >= 0 {
			cmd := m.openHeadline(i)
			return m, cmd
		}
		return m, nil
	}

	bodyTop := headerH
	if m.busy || msg.Y < bodyTop || msg.Y >= bodyTop+m.bodyHeight() || msg.X >= m.listWidth() {
		return m, nil
	}
	var cards dashboard.CardList
	for _, c := range m.snap.Cards {
		cards.Append(c)
	}
	idx, action := cards.HitTest(msg.Y-bodyTop+m.list.YOffset, msg.X)
	switch action {
	case dashboard.CardDelete:
		m.cursor = idx
		m.confirm = cards.At(idx).Symbol
		m.mode = modeConfirm
		m.list.SetContent(m.renderCards())
	case dashboard.CardSelect:
		m.cursor = idx
		m.list.SetContent(m.renderCards())
		cmd := m.selectCmd(cards.At(idx).Symbol)
		return m, cmd
	}
	return m, nil
}

func (m *model) selectCmd(sym domain.Symbol) tea.Cmd {
	ctrl := m.ctrl
	return m.start("loading "+sym.String(), func(ctx context.Context) *app.Notice {
		ctrl.Select(ctx, sym)
		return nil
	})
}

func (m *model) periodCmd(delta int) tea.Cmd {
	n := len(domain.Periods)
	next := ((m.snap.Period+delta)%n + n) % n
	ctrl := m.ctrl
	return m.start("period "+domain.Periods[next].Label, func(ctx context.Context) *app.Notice {
		ctrl.ChangePeriod(ctx, next)
		return nil
	})
}

func (m *model) openHeadline(i int) tea.Cmd {
	item, ok := m.ticker.Item(i)
	if !ok || item.URL == "" {
		return nil
	}
	open, url := m.open, item.URL
	m.logger.Info("opening headline", "url", url)
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}

// applySnapshot installs a new controller snapshot, resetting the ticker only
// when the headlines were rebuilt.
func (m *model) applySnapshot(s app.Snapshot) {
	m.snap = s
	if s.NewsSeq != m.tickerSeq {
		if len(s.News) == 0 {
			m.ticker.Clear()
		} else {
			m.ticker.SetItems(s.News)
		}
		m.tickerSeq = s.NewsSeq
	}
	for i, c := range s.Cards {
		if c.Symbol == s.Selected {
			m.cursor = i
		}
	}
	m.clampCursor()
	if m.ready {
		m.list.SetContent(m.renderCards())
		m.ensureVisible()
	}
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.list.SetContent(m.renderCards())
	m.ensureVisible()
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.snap.Cards) {
		m.cursor = len(m.snap.Cards) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) cursorSymbol() (domain.Symbol, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Cards) {
		return "", false
	}
	return m.snap.Cards[m.cursor].Symbol, true
}

// ensureVisible scrolls the card list so the cursor row is visible.
func (m *model) ensureVisible() {
	if !m.ready {
		return
	}
	yOff := m.list.YOffset
	if m.cursor < yOff {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor >= yOff+m.list.Height {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m model) bodyHeight() int {
	h := m.height - headerH - tickerH - footerH
	if h < 1 {
		h = 1
	}
	return h
}
