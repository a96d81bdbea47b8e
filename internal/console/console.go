// Package console is the terminal front end of the landing service. The
// admin dashboards open through the same key gate as the web page.
package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/gate"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
)

// LeadStore is the ledger as seen by the lead dashboard
type LeadStore interface {
	ListAll(ctx context.Context) []models.Lead
	SetStatus(ctx context.Context, id string, status models.LeadStatus) (bool, error)
}

// AnalyticsStore is the aggregator as seen by the analytics dashboard
type AnalyticsStore interface {
	Snapshot(ctx context.Context) models.AnalyticsRecord
	Reset(ctx context.Context, confirmed bool) error
}

// View is the screen currently shown
type View int

const (
	ViewLanding View = iota
	ViewLeads
	ViewAnalytics
)

// Options configures a Model
type Options struct {
	// ExportDir receives CSV exports; empty means the working directory
	ExportDir string
	// MarkdownStyle is a glamour standard style name
	MarkdownStyle string
	Now           func() time.Time
}

// Model is the bubbletea model of the console
type Model struct {
	ctx       context.Context
	gate      *gate.Gate
	ledger    LeadStore
	analytics AnalyticsStore
	site      *content.Site
	opts      Options

	view         View
	table        table.Model
	leads        []models.Lead
	record       models.AnalyticsRecord
	faq          string
	message      string
	confirmReset bool
	width        int

	styles Styles
}

// New builds the console model
func New(ctx context.Context, ledger LeadStore, agg AnalyticsStore, site *content.Site, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 16},
			{Title: "Name/Company", Width: 22},
			{Title: "Phone", Width: 16},
			{Title: "Email", Width: 24},
			{Title: "Pricing", Width: 12},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		ctx:       ctx,
		gate:      gate.New(),
		ledger:    ledger,
		analytics: agg,
		site:      site,
		opts:      opts,
		table:     t,
		faq:       renderMarkdown(site.FAQMarkdown(), opts.MarkdownStyle),
		width:     100,
		styles:    DefaultStyles(),
	}
}

func renderMarkdown(md, style string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Run starts the console until the user quits or ctx is cancelled
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.gate.Press(gateKey(msg)) {
		case gate.Unlocked:
			m.message = "Admin mode enabled. Ctrl+Alt+D leads, Ctrl+Alt+A analytics, Ctrl+Alt+X lock."
			return m, nil
		case gate.OpenedLeads:
			m.openLeads()
			return m, nil
		case gate.OpenedAnalytics:
			m.openAnalytics()
			return m, nil
		case gate.Locked:
			m.view = ViewLanding
			m.confirmReset = false
			m.message = "Admin mode disabled."
			return m, nil
		}

		switch m.view {
		case ViewLeads:
			return m.updateLeads(msg)
		case ViewAnalytics:
			return m.updateAnalytics(msg)
		default:
			if msg.String() == "q" && !m.gate.Unlocked() {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// gateKey translates a terminal key into the DOM-style code the gate expects
func gateKey(msg tea.KeyMsg) gate.Key {
	switch msg.Type {
	case tea.KeyUp:
		return gate.Key{Code: gate.ArrowUp, Alt: msg.Alt}
	case tea.KeyDown:
		return gate.Key{Code: gate.ArrowDown, Alt: msg.Alt}
	case tea.KeyLeft:
		return gate.Key{Code: gate.ArrowLeft, Alt: msg.Alt}
	case tea.KeyRight:
		return gate.Key{Code: gate.ArrowRight, Alt: msg.Alt}
	case tea.KeyCtrlA:
		return gate.Key{Code: gate.KeyA, Ctrl: true, Alt: msg.Alt}
	case tea.KeyCtrlD:
		return gate.Key{Code: gate.KeyD, Ctrl: true, Alt: msg.Alt}
	case tea.KeyCtrlX:
		return gate.Key{Code: gate.KeyX, Ctrl: true, Alt: msg.Alt}
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && unicode.IsLetter(msg.Runes[0]) {
			return gate.Key{Code: "Key" + string(unicode.ToUpper(msg.Runes[0])), Alt: msg.Alt}
		}
	}
	return gate.Key{Code: msg.String(), Alt: msg.Alt}
}

func (m *Model) openLeads() {
	m.view = ViewLeads
	m.confirmReset = false
	m.message = ""
	m.reloadLeads()
}

func (m *Model) openAnalytics() {
	m.view = ViewAnalytics
	m.message = ""
	m.record = m.analytics.Snapshot(m.ctx)
}

func (m *Model) reloadLeads() {
	all := m.ledger.ListAll(m.ctx)
	// Newest first, as on the dashboard
	m.leads = make([]models.Lead, len(all))
	for i, l := range all {
		m.leads[len(all)-1-i] = l
	}
	rows := make([]table.Row, 0, len(m.leads))
	for _, l := range m.leads {
		rows = append(rows, table.Row{
			l.SubmittedAt.Local().Format("2006-01-02 15:04"),
			l.Name,
			l.Phone,
			l.EmailOrDefault(),
			l.PricingOrDefault(),
			l.Status.Label(),
		})
	}
	m.table.SetRows(rows)
}

// closeView closes the active dashboard and falls back to any other open one
func (m *Model) closeView() {
	switch m.view {
	case ViewLeads:
		m.gate.CloseLeads()
	case ViewAnalytics:
		m.gate.CloseAnalytics()
		m.confirmReset = false
	}
	switch {
	case m.gate.LeadsOpen():
		m.openLeads()
	case m.gate.AnalyticsOpen():
		m.openAnalytics()
	default:
		m.view = ViewLanding
	}
}

var statusKeys = map[string]models.LeadStatus{
	"1": models.LeadNew,
	"2": models.LeadContacted,
	"3": models.LeadConverted,
	"4": models.LeadLost,
}

func (m Model) updateLeads(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if status, ok := statusKeys[key]; ok {
		m.setSelectedStatus(status)
		return m, nil
	}

	switch key {
	case "esc":
		m.closeView()
		return m, nil
	case "e":
		m.exportLeads()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setSelectedStatus(status models.LeadStatus) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.leads) {
		return
	}
	lead := m.leads[i]
	changed, err := m.ledger.SetStatus(m.ctx, lead.ID, status)
	switch {
	case err != nil:
		m.message = err.Error()
	case changed:
		m.message = fmt.Sprintf("%s marked %s", lead.Name, status.Label())
	default:
		m.message = fmt.Sprintf("%s already %s", lead.Name, status.Label())
	}
	m.reloadLeads()
	m.table.SetCursor(i)
}

func (m *Model) exportLeads() {
	path := filepath.Join(m.opts.ExportDir, leads.ExportFilename(m.opts.Now()))
	m.message = m.writeExport(path, func(f *os.File) error {
		return leads.ExportCSV(f, m.ledger.ListAll(m.ctx))
	})
}

func (m Model) updateAnalytics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmReset {
		m.confirmReset = false
		if key == "y" {
			if err := m.analytics.Reset(m.ctx, true); err != nil {
				m.message = "Reset failed: " + err.Error()
			} else {
				m.message = "Analytics data reset."
			}
			m.record = m.analytics.Snapshot(m.ctx)
			return m, nil
		}
		m.message = "Reset cancelled."
		return m, nil
	}

	switch key {
	case "esc":
		m.closeView()
	case "e":
		path := filepath.Join(m.opts.ExportDir, analytics.ExportFilename(m.opts.Now()))
		rec := m.analytics.Snapshot(m.ctx)
		m.message = m.writeExport(path, func(f *os.File) error {
			return analytics.ExportCSV(f, rec)
		})
	case "r":
		m.confirmReset = true
		m.message = "Reset ALL analytics data? This cannot be undone. (y/n)"
	case "R", "ctrl+r":
		m.record = m.analytics.Snapshot(m.ctx)
	}
	return m, nil
}

func (m *Model) writeExport(path string, write func(*os.File) error) string {
	f, err := os.Create(path)
	if err != nil {
		return "Export failed: " + err.Error()
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return "Export failed: " + err.Error()
	}
	if err := f.Close(); err != nil {
		return "Export failed: " + err.Error()
	}
	logging.L().Info("console export written", zap.String("path", path))
	return "Exported to " + path
}

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.view {
	case ViewLeads:
		body = m.leadsView()
	case ViewAnalytics:
		body = m.analyticsView()
	default:
		body = m.landingView()
	}
	if m.message != "" {
		body += "\n" + m.styles.Status.Render(m.message) + "\n"
	}
	return body
}

func (m Model) landingView() string {
	s := m.site
	var sb strings.Builder
	sb.WriteString(m.styles.Kanji.Render(s.Brand.Tagline) + "\n")
	sb.WriteString(m.styles.Title.Render(s.Hero.Headline) + " " + m.styles.Accent.Render(s.Hero.Subheadline) + "\n")
	sb.WriteString(m.styles.Muted.Render(s.Hero.Subtitle) + "\n\n")

	for _, p := range s.Pricing {
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			m.styles.Accent.Render(fmt.Sprintf("%-10s", p.Name)),
			fmt.Sprintf("%-7s", p.Price),
			m.styles.Muted.Render(p.Description)))
	}
	sb.WriteString("\n" + m.faq)

	hint := "q quit"
	if m.gate.Unlocked() {
		hint = "ADMIN  ctrl+alt+d leads  ctrl+alt+a analytics  ctrl+alt+x lock"
	}
	sb.WriteString(m.styles.Muted.Render(hint) + "\n")
	return sb.String()
}

func (m Model) leadsView() string {
	stats := leads.ComputeStats(m.ledger.ListAll(m.ctx), m.opts.Now())
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.stat("Total", stats.Total),
		m.stat("New", stats.New),
		m.stat("Contacted", stats.Contacted),
		m.stat("Converted", stats.Converted),
		m.stat("This Month", stats.ThisMonth),
	)

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("LEADS DASHBOARD") + "\n")
	sb.WriteString(cards + "\n")
	if len(m.leads) == 0 {
		sb.WriteString(m.styles.Muted.Render("No leads yet.") + "\n")
	} else {
		sb.WriteString(m.styles.Panel.Render(m.table.View()) + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("1 new  2 contacted  3 converted  4 lost  e export  esc close") + "\n")
	return sb.String()
}

func (m Model) analyticsView() string {
	r := m.record
	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		m.stat("Page Views", r.TotalPageViews),
		m.stat("Unique Visitors", r.UniqueVisitors),
		m.stat("Sessions", r.Sessions),
		m.stat("Submissions", r.TotalSubmissions),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statText("Conversion", fmt.Sprintf("%.2f%%", r.ConversionRate)),
		m.statText("Bounce Rate", fmt.Sprintf("%.2f%%", r.BounceRate)),
		m.statText("Avg Load", fmt.Sprintf("%.0fms", r.AverageLoadTime)),
		m.statText("Avg Time", analytics.FormatDuration(r.AverageTimeOnSite)),
	)

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("ANALYTICS DASHBOARD") + "\n")
	sb.WriteString(row1 + "\n" + row2 + "\n")
	sb.WriteString(fmt.Sprintf("Traffic  direct %d  search %d  social %d  referral %d\n",
		r.DirectTraffic, r.SearchTraffic, r.SocialTraffic, r.ReferralTraffic))
	sb.WriteString(fmt.Sprintf("Devices  mobile %d  desktop %d  tablet %d\n",
		r.DeviceTypes.Mobile, r.DeviceTypes.Desktop, r.DeviceTypes.Tablet))
	sb.WriteString(fmt.Sprintf("Top browser %s  top country %s\n", analytics.TopBrowser(r), analytics.TopCountry(r)))

	if m.confirmReset {
		sb.WriteString(m.styles.Warning.Render("Press y to confirm the reset, any other key cancels") + "\n")
	}
	sb.WriteString(m.styles.Muted.Render("e export  r reset  R refresh  esc close") + "\n")
	return sb.String()
}

func (m Model) stat(label string, value int) string {
	return m.statText(label, fmt.Sprint(value))
}

func (m Model) statText(label, value string) string {
	return m.styles.Stat.Render(m.styles.Muted.Render(label) + "\n" + m.styles.Accent.Render(value))
}

// ActiveView returns the screen currently shown
func (m Model) ActiveView() View { return m.view }

