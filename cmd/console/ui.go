package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/eb4890/thechoiceswemake/pkg/scenario"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do?"
)

type page int

const (
	pageHowItWorks page = iota
	pagePlay
	pageArchive
	pagePropose
	pageCurate
)

var pageNames = []string{"How it Works", "Play", "Archive", "Propose a Scenario", "Curate"}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(3)
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api    *apiClient
	page   page
	width  int
	height int
	ready  bool

	err     error
	status  string
	loading bool

	// How it Works page
	menuIndex int
	pseudonym textinput.Model
	usageInfo *Usage

	// Play page
	play             *PlayState
	scenarios        []scenario.Scenario
	selectedScenario int
	offlineModel     bool
	chatViewport     viewport.Model
	textarea         textarea.Model
	selectedChoice   int
	freeformChoice   textinput.Model
	freeformFocused  bool
	summaryEditor    textarea.Model
	progressTick     int

	// Archive page
	journeys       []scenario.Journey
	archiveView    viewport.Model
	archiveLoaded  bool
	journeysErrMsg string

	// Propose page
	proposeInputs  []textinput.Model
	proposePrompt  textarea.Model
	proposeFocus   int
	proposeResult  string
	proposeErrMsg  string

	// Curate page
	moderation    []scenario.ModerationEntry
	selectedEntry int
	curateLoaded  bool
}

const (
	proposeFieldTitle = iota
	proposeFieldDescription
	proposeFieldOpeningScene
	proposeFieldCategory
	proposeFieldSoundtrack
	proposeFieldCount // the prompt textarea follows the inputs
)

type scenariosMsg struct {
	scenarios []scenario.Scenario
	err       error
}

type playMsg struct {
	play *PlayState
	err  error
}

type journeysMsg struct {
	journeys []scenario.Journey
	err      error
}

type usageMsg struct {
	usage *Usage
	err   error
}

type proposedMsg struct {
	pending *scenario.PendingScenario
	err     error
}

type moderationMsg struct {
	entries []scenario.ModerationEntry
	err     error
}

type curateActionMsg struct {
	action string
	err    error
}

type progressTickMsg struct{}

func NewConsoleUI(api *apiClient) ConsoleUI {
	pseudonym := textinput.New()
	pseudonym.Placeholder = "Anonymous"
	pseudonym.CharLimit = 40
	pseudonym.Width = 30
	pseudonym.Focus()

	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	freeform := textinput.New()
	freeform.Placeholder = "Or forge your own path..."
	freeform.CharLimit = 200
	freeform.Width = 60

	summary := textarea.New()
	summary.CharLimit = 4000
	summary.SetWidth(70)
	summary.SetHeight(12)
	summary.ShowLineNumbers = false

	inputs := make([]textinput.Model, proposeFieldCount)
	placeholders := []string{
		"Title (must be unique)",
		"A short teaser shown in the catalog",
		"The narrator's first line",
		"Category (blank for Uncategorized)",
		"Soundtrack link (optional)",
	}
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].CharLimit = 500
		inputs[i].Width = 60
	}

	prompt := textarea.New()
	prompt.Placeholder = "System instructions defining the narrator persona and rules..."
	prompt.CharLimit = 8000
	prompt.SetWidth(70)
	prompt.SetHeight(8)
	prompt.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		api:            api,
		page:           pageHowItWorks,
		pseudonym:      pseudonym,
		textarea:       ta,
		freeformChoice: freeform,
		summaryEditor:  summary,
		proposeInputs:  inputs,
		proposePrompt:  prompt,
		chatViewport:   chatVp,
		archiveView:    viewport.New(70, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.fetchUsage(), textinput.Blink)
}

// --- commands ---

func (m ConsoleUI) fetchScenarios() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		scenarios, err := api.listScenarios()
		return scenariosMsg{scenarios, err}
	}
}

func (m ConsoleUI) fetchJourneys() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		journeys, err := api.listJourneys()
		return journeysMsg{journeys, err}
	}
}

func (m ConsoleUI) fetchUsage() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		usage, err := api.usage()
		return usageMsg{usage, err}
	}
}

func (m ConsoleUI) fetchModeration() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		entries, err := api.listModeration()
		return moderationMsg{entries, err}
	}
}

func playCmd(fn func() (*PlayState, error)) tea.Cmd {
	return func() tea.Msg {
		ps, err := fn()
		return playMsg{ps, err}
	}
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

// --- update ---

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		chatWidth := m.width - 8
		m.chatViewport.Width = chatWidth
		m.chatViewport.Height = m.height - 10
		m.archiveView.Width = chatWidth
		m.archiveView.Height = m.height - 8
		m.textarea.SetWidth(chatWidth - 4)
		m.writeChatContent()

	case usageMsg:
		if msg.err == nil {
			m.usageInfo = msg.usage
		}

	case scenariosMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.scenarios = msg.scenarios
			if m.selectedScenario >= len(m.scenarios) {
				m.selectedScenario = 0
			}
		}

	case playMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.play = msg.play
			m.selectedChoice = 0
			m.freeformFocused = false
			m.freeformChoice.Reset()
			if m.play.Phase == "summary" && m.summaryEditor.Value() == "" {
				m.summaryEditor.SetValue(m.play.AISummary)
			}
			if m.play.Phase != "summary" {
				m.summaryEditor.Reset()
			}
			m.writeChatContent()
		}

	case journeysMsg:
		m.loading = false
		m.archiveLoaded = true
		if msg.err != nil {
			m.journeysErrMsg = msg.err.Error()
		} else {
			m.journeysErrMsg = ""
			m.journeys = msg.journeys
		}
		m.writeArchiveContent()

	case proposedMsg:
		m.loading = false
		if msg.err != nil {
			m.proposeErrMsg = msg.err.Error()
			m.proposeResult = ""
		} else {
			m.proposeErrMsg = ""
			m.proposeResult = fmt.Sprintf("Submitted %q for review. Thank you!", msg.pending.Title)
			for i := range m.proposeInputs {
				m.proposeInputs[i].Reset()
			}
			m.proposePrompt.Reset()
		}

	case moderationMsg:
		m.loading = false
		m.curateLoaded = true
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.moderation = msg.entries
			if m.selectedEntry >= len(m.moderation) {
				m.selectedEntry = 0
			}
		}

	case curateActionMsg:
		if msg.err != nil {
			m.err = msg.err
			m.loading = false
			return m, nil
		}
		m.status = "Done: " + msg.action
		return m, m.fetchModeration()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			if m.page == pagePlay {
				m.writeChatContent()
			}
			return m, progressTick()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// updateFocused forwards non-key messages to whichever component owns
// the cursor on the current page.
func (m ConsoleUI) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.chatViewport, cmd = m.chatViewport.Update(msg)
	cmds = append(cmds, cmd)
	m.archiveView, cmd = m.archiveView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.page {
	case pageHowItWorks:
		return m.keysHowItWorks(msg)
	case pagePlay:
		return m.keysPlay(msg)
	case pageArchive:
		return m.keysArchive(msg)
	case pagePropose:
		return m.keysPropose(msg)
	case pageCurate:
		return m.keysCurate(msg)
	}
	return m, nil
}

func (m ConsoleUI) gotoPage(p page) (tea.Model, tea.Cmd) {
	m.page = p
	m.err = nil
	m.status = ""
	switch p {
	case pageHowItWorks:
		m.pseudonym.Focus()
		return m, m.fetchUsage()
	case pagePlay:
		m.pseudonym.Blur()
		if m.play == nil || m.play.Phase == "setup" {
			m.loading = true
			return m, tea.Batch(m.fetchScenarios(), progressTick())
		}
		m.textarea.Focus()
		return m, textarea.Blink
	case pageArchive:
		m.loading = true
		return m, tea.Batch(m.fetchJourneys(), progressTick())
	case pagePropose:
		m.proposeFocus = proposeFieldTitle
		m.setProposeFocus()
		return m, textinput.Blink
	case pageCurate:
		m.loading = true
		return m, tea.Batch(m.fetchModeration(), progressTick())
	}
	return m, nil
}

func (m ConsoleUI) keysHowItWorks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.menuIndex > 0 {
			m.menuIndex--
		}
		return m, nil
	case tea.KeyDown:
		if m.menuIndex < len(pageNames)-1 {
			m.menuIndex++
		}
		return m, nil
	case tea.KeyEnter:
		return m.gotoPage(page(m.menuIndex))
	case tea.KeyEsc:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.pseudonym, cmd = m.pseudonym.Update(msg)
	return m, cmd
}

func (m ConsoleUI) keysPlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		if msg.Type == tea.KeyEsc {
			return m.gotoPage(pageHowItWorks)
		}
		return m, nil
	}

	phase := "setup"
	if m.play != nil {
		phase = m.play.Phase
	}

	switch phase {
	case "setup":
		return m.keysPlaySetup(msg)
	case "roleplay":
		return m.keysPlayRoleplay(msg)
	case "choice":
		return m.keysPlayChoice(msg)
	case "summary":
		return m.keysPlaySummary(msg)
	case "recorded":
		return m.keysPlayRecorded(msg)
	}
	return m, nil
}

func (m ConsoleUI) keysPlaySetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyUp:
		if m.selectedScenario > 0 {
			m.selectedScenario--
		}
	case tea.KeyDown:
		if m.selectedScenario < len(m.scenarios)-1 {
			m.selectedScenario++
		}
	case tea.KeyTab:
		m.offlineModel = !m.offlineModel
	case tea.KeyEnter:
		if len(m.scenarios) == 0 {
			return m, nil
		}
		title := m.scenarios[m.selectedScenario].Title
		model := ""
		if m.offlineModel {
			model = "offline"
		}
		m.loading = true
		m.progressTick = 0
		api := m.api
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.beginPlay(title, model)
		}), progressTick())
	}
	return m, nil
}

func (m ConsoleUI) keysPlayRoleplay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	api := m.api
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyCtrlD:
		// Decision time.
		sessionID := m.play.SessionID
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.ready(sessionID)
		}), progressTick())
	case tea.KeyCtrlR:
		sessionID := m.play.SessionID
		m.loading = true
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.reset(sessionID)
		}), progressTick())
	case tea.KeyEnter:
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		m.textarea.Reset()
		m.loading = true
		m.progressTick = 0
		sessionID := m.play.SessionID
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.say(sessionID, input)
		}), progressTick())
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m ConsoleUI) keysPlayChoice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	api := m.api
	sessionID := m.play.SessionID

	if m.freeformFocused {
		switch msg.Type {
		case tea.KeyEsc:
			m.freeformFocused = false
			m.freeformChoice.Blur()
			return m, nil
		case tea.KeyEnter:
			choice := strings.TrimSpace(m.freeformChoice.Value())
			if choice == "" {
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			return m, tea.Batch(playCmd(func() (*PlayState, error) {
				return api.choose(sessionID, choice)
			}), progressTick())
		}
		var cmd tea.Cmd
		m.freeformChoice, cmd = m.freeformChoice.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyUp:
		if m.selectedChoice > 0 {
			m.selectedChoice--
		}
	case tea.KeyDown:
		if m.selectedChoice < len(m.play.Choices)-1 {
			m.selectedChoice++
		}
	case tea.KeyTab:
		m.freeformFocused = true
		m.freeformChoice.Focus()
		return m, textinput.Blink
	case tea.KeyEnter:
		if len(m.play.Choices) == 0 {
			return m, nil
		}
		choice := m.play.Choices[m.selectedChoice]
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.choose(sessionID, choice)
		}), progressTick())
	default:
		if msg.String() == "b" {
			m.loading = true
			return m, tea.Batch(playCmd(func() (*PlayState, error) {
				return api.back(sessionID)
			}), progressTick())
		}
	}
	return m, nil
}

func (m ConsoleUI) keysPlaySummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	api := m.api
	sessionID := m.play.SessionID

	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyCtrlS:
		summary := strings.TrimSpace(m.summaryEditor.Value())
		pseudonym := strings.TrimSpace(m.pseudonym.Value())
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.record(sessionID, summary, pseudonym)
		}), progressTick())
	case tea.KeyCtrlB:
		m.loading = true
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.back(sessionID)
		}), progressTick())
	}

	if !m.summaryEditor.Focused() {
		m.summaryEditor.Focus()
	}
	var cmd tea.Cmd
	m.summaryEditor, cmd = m.summaryEditor.Update(msg)
	return m, cmd
}

func (m ConsoleUI) keysPlayRecorded(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	api := m.api
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyEnter:
		sessionID := m.play.SessionID
		m.loading = true
		return m, tea.Batch(playCmd(func() (*PlayState, error) {
			return api.reset(sessionID)
		}), progressTick())
	}
	return m, nil
}

func (m ConsoleUI) keysArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	default:
		if msg.String() == "r" {
			m.loading = true
			return m, tea.Batch(m.fetchJourneys(), progressTick())
		}
	}
	var cmd tea.Cmd
	m.archiveView, cmd = m.archiveView.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) setProposeFocus() {
	for i := range m.proposeInputs {
		if i == m.proposeFocus {
			m.proposeInputs[i].Focus()
		} else {
			m.proposeInputs[i].Blur()
		}
	}
	if m.proposeFocus == proposeFieldCount {
		m.proposePrompt.Focus()
	} else {
		m.proposePrompt.Blur()
	}
}

func (m ConsoleUI) keysPropose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyTab:
		m.proposeFocus = (m.proposeFocus + 1) % (proposeFieldCount + 1)
		m.setProposeFocus()
		return m, nil
	case tea.KeyShiftTab:
		m.proposeFocus = (m.proposeFocus + proposeFieldCount) % (proposeFieldCount + 1)
		m.setProposeFocus()
		return m, nil
	case tea.KeyCtrlS:
		sc := scenario.Scenario{
			Title:        strings.TrimSpace(m.proposeInputs[proposeFieldTitle].Value()),
			Description:  strings.TrimSpace(m.proposeInputs[proposeFieldDescription].Value()),
			OpeningScene: strings.TrimSpace(m.proposeInputs[proposeFieldOpeningScene].Value()),
			Category:     strings.TrimSpace(m.proposeInputs[proposeFieldCategory].Value()),
			Soundtrack:   strings.TrimSpace(m.proposeInputs[proposeFieldSoundtrack].Value()),
			Prompt:       strings.TrimSpace(m.proposePrompt.Value()),
			Author:       strings.TrimSpace(m.pseudonym.Value()),
		}
		m.loading = true
		api := m.api
		return m, tea.Batch(func() tea.Msg {
			pending, err := api.propose(sc)
			return proposedMsg{pending, err}
		}, progressTick())
	}

	var cmd tea.Cmd
	if m.proposeFocus == proposeFieldCount {
		m.proposePrompt, cmd = m.proposePrompt.Update(msg)
	} else {
		m.proposeInputs[m.proposeFocus], cmd = m.proposeInputs[m.proposeFocus].Update(msg)
	}
	return m, cmd
}

func (m ConsoleUI) keysCurate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	api := m.api
	switch msg.Type {
	case tea.KeyEsc:
		return m.gotoPage(pageHowItWorks)
	case tea.KeyUp:
		if m.selectedEntry > 0 {
			m.selectedEntry--
		}
		return m, nil
	case tea.KeyDown:
		if m.selectedEntry < len(m.moderation)-1 {
			m.selectedEntry++
		}
		return m, nil
	}

	if len(m.moderation) == 0 {
		return m, nil
	}
	entry := m.moderation[m.selectedEntry]

	switch msg.String() {
	case "a":
		if entry.Status != scenario.StatusPending {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(func() tea.Msg {
			return curateActionMsg{"approved " + entry.Title, api.approve(entry.ID, entry.Scenario)}
		}, progressTick())
	case "x":
		if entry.Status != scenario.StatusPending {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(func() tea.Msg {
			return curateActionMsg{"rejected " + entry.Title, api.reject(entry.ID)}
		}, progressTick())
	case "e":
		if entry.Status != scenario.StatusApproved {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(func() tea.Msg {
			return curateActionMsg{"released " + entry.Title, api.release(entry.ID)}
		}, progressTick())
	case "r":
		m.loading = true
		return m, tea.Batch(m.fetchModeration(), progressTick())
	}
	return m, nil
}

// --- content builders ---

func (m *ConsoleUI) writeChatContent() {
	if m.play == nil {
		return
	}
	chatWidth := m.chatViewport.Width
	if chatWidth <= 0 {
		chatWidth = 60
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.play.ScenarioTitle) + "\n")
	if m.play.Soundtrack != "" {
		content.WriteString(promptStyle.Render("Soundtrack: "+m.play.Soundtrack) + "\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	for _, msg := range m.play.History {
		switch msg.Role {
		case "assistant":
			wrapped := wordwrap.String(msg.Content, chatWidth-6)
			content.WriteString(narratorStyle.Render(AgentName+": ") + wrapped + "\n\n")
		case "user":
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeArchiveContent() {
	width := m.archiveView.Width
	if width <= 0 {
		width = 70
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("THE JOURNEY ARCHIVE") + "\n\n")

	if m.journeysErrMsg != "" {
		content.WriteString(errorStyle.Render("Could not load the archive: "+m.journeysErrMsg) + "\n")
		content.WriteString("The rest of the console remains usable. Press r to retry.\n")
	} else if len(m.journeys) == 0 {
		content.WriteString("No journeys recorded yet. Be the first.\n")
	}

	for _, j := range m.journeys {
		header := fmt.Sprintf("%s — %s (%s, %s)",
			j.ScenarioTitle, j.AuthorLabel(), j.LLMModel, j.SubmittedAt.Format("2006-01-02"))
		content.WriteString(speakerStyle.Render(header) + "\n")
		content.WriteString(promptStyle.Render("Final choice: "+j.ChoiceText) + "\n")
		content.WriteString(wordwrap.String(j.Summary, width-4) + "\n")
		content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-6, 10))) + "\n\n")
	}

	m.archiveView.SetContent(content.String())
	m.archiveView.GotoTop()
}

// --- view ---

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var body string
	switch m.page {
	case pageHowItWorks:
		body = m.viewHowItWorks()
	case pagePlay:
		body = m.viewPlay()
	case pageArchive:
		body = m.viewArchive()
	case pagePropose:
		body = m.viewPropose()
	case pageCurate:
		body = m.viewCurate()
	}
	return panelStyle.Render(body)
}

func (m ConsoleUI) viewHowItWorks() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("THE CHOICES WE MAKE") + "\n\n")
	b.WriteString(wordwrap.String(
		"An interactive exploration of ethical dilemmas. Pick a scenario, "+
			"talk it through with the narrator, face a decision point, and "+
			"record your journey for others to read.", 70) + "\n\n")

	if m.usageInfo != nil {
		b.WriteString(promptStyle.Render(fmt.Sprintf(
			"Shared narrations used today: %d of %d", m.usageInfo.Used, m.usageInfo.Limit)) + "\n\n")
	}

	b.WriteString("Pseudonym (shown in the archive, optional):\n")
	b.WriteString(m.pseudonym.View() + "\n\n")

	for i, name := range pageNames {
		if i == m.menuIndex {
			b.WriteString(selectedItemStyle.Render("▶ "+name) + "\n")
		} else {
			b.WriteString("  " + name + "\n")
		}
	}

	b.WriteString("\n" + promptStyle.Render("↑/↓ navigate · Enter select · Ctrl+C quit"))
	return b.String()
}

func (m ConsoleUI) viewPlay() string {
	if m.err != nil {
		return titleStyle.Render("PLAY") + "\n\n" +
			errorStyle.Render("Error: "+m.err.Error()) + "\n\n" +
			promptStyle.Render("Esc to go back")
	}

	phase := "setup"
	if m.play != nil {
		phase = m.play.Phase
	}

	switch phase {
	case "setup":
		return m.viewPlaySetup()
	case "roleplay":
		return m.viewPlayRoleplay()
	case "choice":
		return m.viewPlayChoice()
	case "summary":
		return m.viewPlaySummary()
	case "recorded":
		return m.viewPlayRecorded()
	}
	return ""
}

func (m ConsoleUI) viewPlaySetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CHOOSE YOUR DILEMMA") + "\n\n")

	if m.loading {
		b.WriteString(loadingStyle.Render("Loading scenarios..."))
		return b.String()
	}

	for i, s := range m.scenarios {
		line := fmt.Sprintf("%s (%s) — %s", s.Title, s.Category, s.Description)
		line = wordwrap.String(line, 76)
		if i == m.selectedScenario {
			b.WriteString(selectedItemStyle.Render("▶ "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	model := "default"
	if m.offlineModel {
		model = "offline (no narrator, canned responses)"
	}
	b.WriteString("\nModel: " + model + "\n")
	b.WriteString("\n" + promptStyle.Render("↑/↓ navigate · Enter begin · Tab toggle model · Esc back"))
	return b.String()
}

func (m ConsoleUI) viewPlayRoleplay() string {
	var b strings.Builder
	b.WriteString(m.chatViewport.View() + "\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", max(m.chatViewport.Width-4, 10))) + "\n")
	b.WriteString(m.textarea.View() + "\n")
	b.WriteString(promptStyle.Render("Enter send · Ctrl+D decision time · Ctrl+R restart · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewPlayChoice() string {
	var b strings.Builder
	b.WriteString(m.chatViewport.View() + "\n")
	b.WriteString(titleStyle.Render("THE MOMENT OF CHOICE") + "\n\n")

	if m.play.ChoicesFallback {
		b.WriteString(loadingStyle.Render("The narrator faltered; here are the timeless options.") + "\n\n")
	}

	for i, c := range m.play.Choices {
		if i == m.selectedChoice && !m.freeformFocused {
			b.WriteString(selectedItemStyle.Render(fmt.Sprintf("▶ %d. %s", i+1, c)) + "\n")
		} else {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, c))
		}
	}

	b.WriteString("\n" + m.freeformChoice.View() + "\n")
	b.WriteString("\n" + promptStyle.Render("↑/↓ navigate · Enter commit · Tab freeform · b back to story · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewPlaySummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("YOUR JOURNEY, SUMMARIZED") + "\n\n")
	b.WriteString(promptStyle.Render("Final choice: "+m.play.FinalChoice) + "\n\n")

	if m.loading {
		b.WriteString(loadingStyle.Render("The narrator reflects on your journey...") + "\n")
		b.WriteString(m.renderProgressBar())
		return b.String()
	}

	b.WriteString("Edit freely before recording:\n\n")
	b.WriteString(m.summaryEditor.View() + "\n\n")
	b.WriteString(promptStyle.Render("Ctrl+S record journey · Ctrl+B back to choices · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewPlayRecorded() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("JOURNEY RECORDED") + "\n\n")
	b.WriteString(wordwrap.String(m.play.EditedSummary, 70) + "\n\n")
	b.WriteString(promptStyle.Render("Your reflection joins the archive. Enter to begin anew · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewArchive() string {
	var b strings.Builder
	if m.loading && !m.archiveLoaded {
		b.WriteString(loadingStyle.Render("Loading the archive..."))
		return b.String()
	}
	b.WriteString(m.archiveView.View() + "\n")
	b.WriteString(promptStyle.Render("↑/↓ scroll · r refresh · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewPropose() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PROPOSE A SCENARIO") + "\n\n")

	labels := []string{"Title", "Description", "Opening scene", "Category", "Soundtrack"}
	for i, in := range m.proposeInputs {
		b.WriteString(labels[i] + ":\n" + in.View() + "\n")
	}
	b.WriteString("Narrator prompt:\n" + m.proposePrompt.View() + "\n\n")

	if m.proposeErrMsg != "" {
		b.WriteString(errorStyle.Render(m.proposeErrMsg) + "\n")
	}
	if m.proposeResult != "" {
		b.WriteString(narratorStyle.Render(m.proposeResult) + "\n")
	}
	if m.loading {
		b.WriteString(loadingStyle.Render("Submitting...") + "\n")
	}

	b.WriteString(promptStyle.Render("Tab next field · Ctrl+S submit · Esc menu"))
	return b.String()
}

func (m ConsoleUI) viewCurate() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CURATION") + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		b.WriteString(wordwrap.String(
			"Set ADMIN_SECRET in the environment to unlock moderation.", 70) + "\n\n")
		b.WriteString(promptStyle.Render("Esc menu"))
		return b.String()
	}
	if m.loading && !m.curateLoaded {
		b.WriteString(loadingStyle.Render("Loading the moderation queue..."))
		return b.String()
	}

	if len(m.moderation) == 0 {
		b.WriteString("The queue is empty.\n\n")
	}
	for i, e := range m.moderation {
		line := fmt.Sprintf("[%s] %s — %s", e.Status, e.Title, e.Description)
		line = wordwrap.String(line, 76)
		if i == m.selectedEntry {
			b.WriteString(selectedItemStyle.Render("▶ "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + narratorStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + promptStyle.Render("↑/↓ navigate · a approve · x reject · e release now · r refresh · Esc menu"))
	return b.String()
}

func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}
