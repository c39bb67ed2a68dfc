package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/paperdeck/internal/ai"
	"github.com/matheuskafuri/paperdeck/internal/browser"
	"github.com/matheuskafuri/paperdeck/internal/deck"
	"github.com/matheuskafuri/paperdeck/internal/events"
	"github.com/matheuskafuri/paperdeck/internal/store"
)

type mode int

const (
	modeHome mode = iota
	modeSearch
	modeDeck
	modeLibrary
	modeChat
	modeHelp
)

const (
	animFrames   = 6
	animInterval = 40 * time.Millisecond
	noticeTTL    = 2500 * time.Millisecond
)

type animState struct {
	action deck.Action
	dir    deck.Direction
	frame  int
}

// Dealer builds a fresh engine (queue, cache, prefetcher) for a query.
// The old queue is replaced wholesale, never mutated.
type Dealer func(ctx context.Context, query string) (*deck.Engine, error)

type App struct {
	engine     *deck.Engine
	deal       Dealer
	dispatcher *deck.Dispatcher
	library    *store.Library
	chat       ai.Client
	eventCh    <-chan events.Event
	query      string

	width  int
	height int
	mode   mode

	// Sub-components
	spinner     spinner.Model
	chatInput   textinput.Model
	searchInput textinput.Model
	markdown    *glamour.TermRenderer
	mdWidth     int

	// State
	searching     bool
	fetching      bool
	anim          *animState
	dragging      bool
	dragX, dragY  int
	chatHistory   []store.Message
	chatWaiting   bool
	libPapers     []store.SavedPaper
	libCursor     int
	savedCount    int
	notice        string
	noticeSeq     int
	updateVersion string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	// Engine is nil when launched without a query; the user searches
	// from inside the TUI instead.
	Engine        *deck.Engine
	Deal          Dealer
	Library       *store.Library
	Chat          ai.Client
	Broker        *events.Broker
	Query         string
	StartAtHome   bool
	UpdateVersion string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Ask about this paper..."
	ti.Prompt = chatPromptStyle.Render("> ")
	ti.CharLimit = 500

	si := textinput.New()
	si.Placeholder = "Search arXiv..."
	si.Prompt = chatPromptStyle.Render("/ ")
	si.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	startMode := modeDeck
	if opts.StartAtHome || opts.Engine == nil {
		startMode = modeHome
	}

	saved := 0
	if papers, err := opts.Library.Saved(); err == nil {
		saved = len(papers)
	}

	return &App{
		engine:        opts.Engine,
		deal:          opts.Deal,
		dispatcher:    deck.NewDispatcher(),
		library:       opts.Library,
		chat:          opts.Chat,
		eventCh:       opts.Broker.Subscribe(events.FavoriteAdded, events.FavoriteRemoved),
		query:         opts.Query,
		chatInput:     ti,
		searchInput:   si,
		spinner:       sp,
		savedCount:    saved,
		mode:          startMode,
		updateVersion: opts.UpdateVersion,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{listenEvents(a.eventCh)}
	if a.engine != nil {
		cmds = append(cmds, a.warmCmd())
	}
	if a.mode == modeDeck {
		if cmd := a.maybeFetchContent(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// warmCmd runs the one-time batch prefetch for the front of the queue.
func (a *App) warmCmd() tea.Cmd {
	eng := a.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		eng.Warm(ctx)
		return contentReadyMsg{index: 0, level: 1}
	}
}

func listenEvents(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return libraryEventMsg{ev: ev}
	}
}

func (a *App) guards() deck.Guards {
	return deck.Guards{
		FetchInFlight:    a.fetching,
		TextInputFocused: a.mode == modeChat || a.mode == modeSearch,
	}
}

func (a *App) maybeFetchContent() tea.Cmd {
	if a.engine == nil {
		return nil
	}
	if a.fetching || a.engine.Exhausted() {
		return nil
	}
	if _, st := a.engine.Content(); st != deck.StatusAbsent {
		return nil
	}
	if a.engine.ContentError() != nil {
		return nil // sticky until the user retries
	}
	return a.fetchContentCmd()
}

func (a *App) fetchContentCmd() tea.Cmd {
	a.fetching = true
	eng := a.engine
	cur := eng.Cursor()
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		if _, err := eng.FetchCurrent(ctx); err != nil {
			return contentErrMsg{err: err}
		}
		return contentReadyMsg{index: cur.Index, level: cur.Level}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

func (a *App) setNotice(s string) tea.Cmd {
	a.notice = s
	a.noticeSeq++
	seq := a.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func animTickCmd(action deck.Action, frame int) tea.Cmd {
	return tea.Tick(animInterval, func(time.Time) tea.Msg {
		return animTickMsg{action: action, frame: frame}
	})
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return contentErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.markdown = nil // word-wrap width changed
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case contentReadyMsg:
		a.fetching = false
		return a, nil

	case dealDoneMsg:
		return a.handleDealDone(msg)

	case contentErrMsg:
		a.fetching = false
		a.err = msg.err
		return a, nil

	case animTickMsg:
		return a.handleAnimTick(msg)

	case chatReplyMsg:
		return a.handleChatReply(msg)

	case libraryEventMsg:
		return a.handleLibraryEvent(msg.ev)

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
		}
		return a, nil

	case spinner.TickMsg:
		if a.fetching || a.chatWaiting || a.searching {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleAnimTick(msg animTickMsg) (tea.Model, tea.Cmd) {
	if a.anim == nil || a.anim.action != msg.action {
		return a, nil
	}
	next := msg.frame + 1
	if next < animFrames {
		a.anim.frame = next
		return a, animTickCmd(msg.action, next)
	}
	a.anim = nil
	if a.engine.AnimationComplete(msg.action) {
		return a, a.maybeFetchContent()
	}
	return a, nil
}

func (a *App) handleLibraryEvent(ev events.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenEvents(a.eventCh)}

	switch ev.Type {
	case events.FavoriteAdded:
		a.savedCount++
		if ev.First {
			cmds = append(cmds, a.setNotice("First paper saved! Your library has begun."))
		} else {
			cmds = append(cmds, a.setNotice("Saved to library"))
		}
	case events.FavoriteRemoved:
		if a.savedCount > 0 {
			a.savedCount--
		}
	}

	if a.mode == modeLibrary {
		a.reloadLibrary()
	}
	return a, tea.Batch(cmds...)
}

func (a *App) reloadLibrary() {
	papers, err := a.library.Saved()
	if err != nil {
		a.err = err
		return
	}
	a.libPapers = papers
	if a.libCursor >= len(a.libPapers) {
		a.libCursor = max(0, len(a.libPapers)-1)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeLibrary:
		return a.handleLibraryKey(msg)
	case modeChat:
		return a.handleChatKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeDeck
			if a.engine == nil {
				a.mode = modeHome
			}
		}
		return a, nil
	}

	// Deck mode
	if a.engine == nil {
		a.mode = modeHome
		return a, nil
	}
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "H":
		a.mode = modeHome
		return a, nil
	case "L":
		a.mode = modeLibrary
		a.reloadLibrary()
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	case "c":
		return a.enterChat()
	case "/":
		return a.enterSearch()
	case "o", "enter":
		if p, ok := a.engine.Current(); ok {
			return a, openBrowserCmd(p.ArxivURL)
		}
		return a, nil
	case "r":
		if a.engine.ContentError() != nil && !a.fetching {
			return a, a.fetchContentCmd()
		}
		return a, nil
	}

	if action, ok := a.dispatcher.Key(msg.String(), a.guards()); ok {
		return a.applyAction(action)
	}
	return a, nil
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.mode != modeDeck || a.engine == nil {
		return a, nil
	}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		a.dragging = true
		a.dragX, a.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease && a.dragging:
		a.dragging = false
		if action, ok := a.dispatcher.Swipe(msg.X-a.dragX, msg.Y-a.dragY, a.guards()); ok {
			return a.applyAction(action)
		}
	}
	return a, nil
}

func (a *App) applyAction(action deck.Action) (tea.Model, tea.Cmd) {
	res := a.engine.Apply(action)
	if res.Err != nil {
		a.err = fmt.Errorf("saving paper: %w", res.Err)
		return a, nil
	}

	var cmds []tea.Cmd
	if res.AlreadySaved {
		cmds = append(cmds, a.setNotice("Already in your library"))
	}
	if res.Exit != nil {
		a.anim = &animState{action: res.Exit.Action, dir: res.Exit.Dir}
		cmds = append(cmds, animTickCmd(res.Exit.Action, 0))
	}
	if res.Committed {
		if cmd := a.maybeFetchContent(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "d":
		if a.engine == nil {
			return a.enterSearch()
		}
		a.mode = modeDeck
		return a, a.maybeFetchContent()
	case "/", "s":
		return a.enterSearch()
	case "L":
		a.mode = modeLibrary
		a.reloadLibrary()
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "L":
		a.mode = modeDeck
		if a.engine == nil {
			a.mode = modeHome
		}
		return a, nil
	case "H":
		a.mode = modeHome
		return a, nil
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.libCursor < len(a.libPapers)-1 {
			a.libCursor++
		}
		return a, nil
	case "k", "up":
		if a.libCursor > 0 {
			a.libCursor--
		}
		return a, nil
	case "o", "enter":
		if a.libCursor < len(a.libPapers) {
			return a, openBrowserCmd(a.libPapers[a.libCursor].Paper.ArxivURL)
		}
		return a, nil
	case "d":
		if a.libCursor < len(a.libPapers) {
			if err := a.library.RemoveSave(a.libPapers[a.libCursor].Paper.ID); err != nil {
				a.err = err
			}
			a.reloadLibrary()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) enterSearch() (tea.Model, tea.Cmd) {
	if a.deal == nil {
		return a, nil
	}
	a.mode = modeSearch
	a.searchInput.Focus()
	return a, textinput.Blink
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeDeck
		if a.engine == nil {
			a.mode = modeHome
		}
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		return a, nil
	case "enter":
		query := strings.TrimSpace(a.searchInput.Value())
		if query == "" || a.searching {
			return a, nil
		}
		a.searching = true
		return a, tea.Batch(a.spinner.Tick, a.dealCmd(query))
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) dealCmd(query string) tea.Cmd {
	deal := a.deal
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		engine, err := deal(ctx, query)
		return dealDoneMsg{engine: engine, query: query, err: err}
	}
}

func (a *App) handleDealDone(msg dealDoneMsg) (tea.Model, tea.Cmd) {
	a.searching = false
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}

	// New queue replaces the old one wholesale
	a.engine = msg.engine
	a.query = msg.query
	a.anim = nil
	a.fetching = false
	a.searchInput.Blur()
	a.searchInput.SetValue("")
	a.mode = modeDeck

	cmds := []tea.Cmd{a.warmCmd()}
	if cmd := a.maybeFetchContent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) enterChat() (tea.Model, tea.Cmd) {
	if a.chat == nil {
		a.err = fmt.Errorf("chat requires an AI provider in config")
		return a, nil
	}
	paper, ok := a.engine.Current()
	if !ok {
		return a, nil
	}
	history, err := a.library.LoadConversation(paper.ID)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.chatHistory = history
	a.mode = modeChat
	a.chatInput.Focus()
	return a, textinput.Blink
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeDeck
		a.chatInput.Blur()
		a.chatInput.SetValue("")
		return a, nil
	case "enter":
		return a.sendChatMessage()
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func (a *App) sendChatMessage() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.chatInput.Value())
	if text == "" || a.chatWaiting {
		return a, nil
	}
	paper, ok := a.engine.Current()
	if !ok {
		return a, nil
	}

	// History before this message decides whether the paper context is
	// embedded; the model only needs it once per conversation.
	prior := make([]ai.Message, len(a.chatHistory))
	for i, m := range a.chatHistory {
		prior[i] = ai.Message{Role: m.Role, Content: m.Content}
	}
	firstTurn := len(prior) == 0

	userMsg, err := a.library.AppendMessage(paper.ID, "user", text)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.chatHistory = append(a.chatHistory, userMsg)
	a.chatInput.SetValue("")
	a.chatWaiting = true

	chat := a.chat
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		reply, err := chat.Chat(ctx, text, paper, prior, firstTurn)
		return chatReplyMsg{paperID: paper.ID, userMsgID: userMsg.ID, reply: reply, err: err}
	})
}

func (a *App) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	a.chatWaiting = false

	if msg.err != nil {
		// Roll the user turn back out of the log so a retry does not
		// leave an unanswered message behind.
		if rmErr := a.library.RemoveMessage(msg.paperID, msg.userMsgID); rmErr == nil {
			for i, m := range a.chatHistory {
				if m.ID == msg.userMsgID {
					a.chatHistory = append(a.chatHistory[:i], a.chatHistory[i+1:]...)
					break
				}
			}
		}
		a.err = msg.err
		return a, nil
	}

	reply, err := a.library.AppendMessage(msg.paperID, "assistant", msg.reply)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.chatHistory = append(a.chatHistory, reply)
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderStatusBar(a.statusLeft(), hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) statusLeft() string {
	if a.err != nil {
		return errorStyle.Render(a.err.Error())
	}
	if a.notice != "" {
		return noticeStyle.Render(a.notice)
	}

	if a.searching {
		return a.spinner.View() + " Searching arXiv..."
	}
	if a.engine == nil {
		return "no deck yet · press / to search"
	}

	var left string
	if a.engine.Exhausted() {
		left = fmt.Sprintf("%s · deck complete · %d papers", truncateStr(a.query, 24), a.engine.Len())
	} else {
		cur := a.engine.Cursor()
		left = fmt.Sprintf("%s · %d/%d · level %d/%d",
			truncateStr(a.query, 24), cur.Index+1, a.engine.Len(), cur.Level, deck.MaxLevel)
	}
	if a.savedCount > 0 {
		left += fmt.Sprintf(" · %d saved", a.savedCount)
	}
	if a.fetching {
		left = a.spinner.View() + " " + left
	}
	return left
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  paperdeck")
	}

	switch a.mode {
	case modeHome:
		hints := "/ search  L library  ? help  q quit"
		if a.engine != nil {
			hints = "enter deck  " + hints
		}
		return a.withBottomBar(renderHomeScreen(a.width, a.height, a.updateVersion), hints)
	case modeSearch:
		return a.withBottomBar(a.renderSearch(), "enter search  esc cancel")
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	case modeLibrary:
		return a.withBottomBar(
			renderLibrary(a.libPapers, a.libCursor, a.width, a.height),
			"j/k move  o open  d remove  esc back  q quit",
		)
	case modeChat:
		hints := "enter send  esc back"
		if a.chatWaiting {
			hints = a.spinner.View() + " thinking...  esc back"
		}
		return a.withBottomBar(a.renderChat(), hints)
	}

	// Deck mode
	if a.engine == nil {
		return a.withBottomBar(renderHomeScreen(a.width, a.height, a.updateVersion), "/ search  q quit")
	}
	if a.engine.Exhausted() {
		return a.withBottomBar(
			renderExhausted(a.engine.Len(), a.savedCount, a.width, a.height),
			"L library  H home  q quit",
		)
	}

	paper, _ := a.engine.Current()
	cur := a.engine.Cursor()
	content, status := a.engine.Content()

	body := ""
	switch status {
	case deck.StatusReady:
		if cur.Level >= 2 {
			body = a.renderMarkdown(content, cardInnerWidth(a.width))
		} else {
			body = wrapText(content, cardInnerWidth(a.width))
		}
	case deck.StatusPending:
		body = a.spinner.View() + " " + cardMetaStyle.Render(loadingLabel(cur.Level))
	case deck.StatusAbsent:
		if fetchErr := a.engine.ContentError(); fetchErr != nil {
			body = errorStyle.Render(wrapText(fetchErr.Error(), cardInnerWidth(a.width))) +
				"\n" + cardMetaStyle.Render("r retry")
		} else {
			body = a.spinner.View() + " " + cardMetaStyle.Render(loadingLabel(cur.Level))
		}
	}

	saved, _ := a.library.IsSaved(paper.ID)
	card := renderCard(paper, cur, a.engine.Len(), body, saved, a.anim, a.width, a.height)

	return a.withBottomBar(card, "← pass  → deeper  space save  c chat  o open  q quit")
}

func loadingLabel(level int) string {
	switch level {
	case 1:
		return "Summarizing abstract..."
	case 2:
		return "Reading the full paper..."
	default:
		return "Preparing deep analysis..."
	}
}

func (a *App) renderMarkdown(content string, width int) string {
	if a.markdown == nil || a.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wrapText(content, width)
		}
		a.markdown = r
		a.mdWidth = width
	}
	out, err := a.markdown.Render(content)
	if err != nil {
		return wrapText(content, width)
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderSearch() string {
	title := cardTitleStyle.Render("Search arXiv")
	body := title + "\n\n" + a.searchInput.View()
	if a.searching {
		body += "\n\n" + a.spinner.View() + " " + cardMetaStyle.Render("Searching...")
	}

	card := helpCardStyle.Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("paperdeck")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Deck") + "\n" +
		"  ←, h          Pass (skip to the next paper)\n" +
		"  →, l          Go deeper (next summary level)\n" +
		"  space, s      Save to library\n" +
		"  drag          Swipe left to pass, right to go deeper\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open paper on arXiv\n" +
		"  c             Chat about the current paper\n" +
		"  r             Retry a failed summary\n\n" +
		dim.Render("Screens") + "\n" +
		"  /             New search (replaces the deck)\n" +
		"  L             Library\n" +
		"  H             Home\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
