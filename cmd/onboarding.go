package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	providerAnthropic = "anthropic"
	providerOpenAI    = "openai"
)

// OnboardingSettings records the first-run choices.
type OnboardingSettings struct {
	Completed   bool   `json:"completed"`
	ScanEnabled bool   `json:"scan_enabled"`
	Provider    string `json:"provider,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0o644)
}

func secureKeyPath(configDir, provider string) string {
	return filepath.Join(configDir, provider+"_api_key")
}

func saveSecureAPIKey(configDir, provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(secureKeyPath(configDir, provider), []byte(strings.TrimSpace(key)+"\n"), 0o600)
}

func loadSecureAPIKey(configDir, provider string) (string, error) {
	data, err := os.ReadFile(secureKeyPath(configDir, provider))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

type onboardingStep int

const (
	stepProvider onboardingStep = iota
	stepKey
	stepDone
)

type providerOption struct {
	id    string
	label string
	env   string
	help  []string
}

var providerOptions = []providerOption{
	{
		id:    providerAnthropic,
		label: "Anthropic Claude (label reading + web search)",
		env:   "ANTHROPIC_API_KEY",
		help: []string{
			"1) https://console.anthropic.com/settings/keys",
			"2) Create a key",
			"3) Paste it below",
		},
	},
	{
		id:    providerOpenAI,
		label: "OpenAI (label reading only)",
		env:   "OPENAI_API_KEY",
		help: []string{
			"1) https://platform.openai.com/api-keys",
			"2) Create a secret key",
			"3) Paste it below",
		},
	},
	{id: "", label: "Disable label scanning"},
}

type onboardingModel struct {
	step         onboardingStep
	cursor       int
	existingKeys map[string]string
	keyInput     textinput.Model
	settings     OnboardingSettings
	capturedKey  string
	status       string
	width        int
	height       int
}

var (
	obColorMuted  = lipgloss.Color("#8C7E84")
	obColorText   = lipgloss.Color("#E6D8DC")
	obColorAccent = lipgloss.Color("#A8556B")
	obColorDanger = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obOptionStyle = lipgloss.NewStyle().
			Foreground(obColorText)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Bold(true)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel(existingKeys map[string]string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "Paste API key here"
	in.CharLimit = 300
	in.Prompt = "key> "
	in.EchoMode = textinput.EchoPassword
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.Focus()

	return onboardingModel{
		step:         stepProvider,
		existingKeys: existingKeys,
		keyInput:     in,
		settings:     OnboardingSettings{Completed: true},
	}
}

func (m onboardingModel) selected() providerOption {
	return providerOptions[m.cursor]
}

func (m onboardingModel) Init() tea.Cmd { return nil }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case stepProvider:
			switch msg.String() {
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
				return m, nil
			case "down", "j":
				if m.cursor < len(providerOptions)-1 {
					m.cursor++
				}
				return m, nil
			case "enter":
				return m.nextStep()
			case "ctrl+c", "q":
				return m.finish(false, "Setup canceled. Label scanning disabled.")
			default:
				return m, nil
			}
		case stepKey:
			switch msg.String() {
			case "enter":
				key := strings.TrimSpace(m.keyInput.Value())
				if key == "" {
					return m.finish(false, "No key entered. Label scanning disabled.")
				}
				m.capturedKey = key
				return m.finish(true, "API key saved. Label scanning enabled.")
			case "esc":
				return m.finish(false, "Skipped key setup. Label scanning disabled.")
			case "ctrl+c":
				return m.finish(false, "Setup canceled. Label scanning disabled.")
			}
			var cmd tea.Cmd
			m.keyInput, cmd = m.keyInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) finish(enabled bool, status string) (tea.Model, tea.Cmd) {
	m.settings.ScanEnabled = enabled
	if enabled {
		m.settings.Provider = m.selected().id
	}
	m.status = status
	m.step = stepDone
	return m, tea.Quit
}

func (m onboardingModel) nextStep() (tea.Model, tea.Cmd) {
	opt := m.selected()
	if opt.id == "" {
		return m.finish(false, "Label scanning disabled.")
	}
	if strings.TrimSpace(m.existingKeys[opt.id]) != "" {
		return m.finish(true, fmt.Sprintf("Using existing %s from the environment.", opt.env))
	}
	m.step = stepKey
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	contentHeight := height - 6
	if contentHeight < 8 {
		contentHeight = 8
	}
	ui := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		m.renderTabs(width),
		m.renderContent(width, contentHeight),
		m.renderFooter(width),
	)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("cellar") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	providerTab := obTabInactive.Render("Label Scanning")
	keyTab := obTabInactive.Render("API Key")
	if m.step == stepProvider {
		providerTab = obTabActive.Render("Label Scanning")
	}
	if m.step == stepKey {
		keyTab = obTabActive.Render("API Key")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", providerTab, keyTab))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepProvider:
		return obFooterStyle.Width(width).Render("↑↓/jk to navigate  enter to confirm  q cancel")
	case stepKey:
		return obFooterStyle.Width(width).Render("enter save  esc skip  ctrl+c cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepProvider:
		lines := []string{obLabelStyle.Render("Read wine labels from photos?"), ""}
		for i, opt := range providerOptions {
			if i == m.cursor {
				lines = append(lines, "  "+obOptionSelected.Render("→ "+opt.label))
			} else {
				lines = append(lines, "    "+obOptionStyle.Render(opt.label))
			}
		}
		lines = append(lines,
			"",
			obMutedStyle.Render("Use arrow keys or j/k to navigate, Enter to confirm"),
			obMutedStyle.Render("You can change this later in ~/.cellar/onboarding.json"),
		)
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepKey:
		opt := m.selected()
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.keyInput.View())
		lines := []string{obLabelStyle.Render("Get an API key:"), ""}
		for _, h := range opt.help {
			lines = append(lines, obMutedStyle.Render(h))
		}
		lines = append(lines,
			"",
			obLabelStyle.Render(opt.env),
			input,
			"",
			obMutedStyle.Render("Press Enter to save, Esc to skip."),
		)
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "disabled") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

// runOnboarding shows the setup screen and persists the choices.
func runOnboarding(cfg *Config) error {
	model := newOnboardingModel(map[string]string{
		providerAnthropic: cfg.AnthropicAPIKey,
		providerOpenAI:    cfg.OpenAIAPIKey,
	})
	prog := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return fmt.Errorf("unexpected onboarding model type")
	}
	if m.capturedKey != "" {
		if err := saveSecureAPIKey(cfg.ConfigDir, m.settings.Provider, m.capturedKey); err != nil {
			return err
		}
	}
	if err := saveOnboardingSettings(cfg.ConfigDir, m.settings); err != nil {
		return err
	}
	return cfg.applySettings(m.settings)
}
