package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/structiou/pkg/corpus"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// sort orders for the result browser
const (
	sortInput = iota
	sortScoreAsc
	sortScoreDesc
	numSorts
)

var sortNames = [numSorts]string{"input order", "score ↑", "score ↓"}

// =============================================================================
// ResultListModel - Interactive corpus result browser
// =============================================================================

// ResultListModel is the bubbletea model behind "eval --browse".
type ResultListModel struct {
	Summary *corpus.Summary
	Order   []int // indices into Summary.Results in display order
	Cursor  int
	Offset  int
	Height  int
	Sort    int
	Detail  bool
}

// newResultListModel creates a browser over a finished run.
func newResultListModel(s *corpus.Summary) ResultListModel {
	m := ResultListModel{Summary: s, Height: 15}
	m.applySort()
	return m
}

func (m *ResultListModel) applySort() {
	m.Order = m.Order[:0]
	for i := range m.Summary.Results {
		m.Order = append(m.Order, i)
	}
	rs := m.Summary.Results
	switch m.Sort {
	case sortScoreAsc:
		slices.SortStableFunc(m.Order, func(a, b int) int { return cmp.Compare(scoreKey(rs[a]), scoreKey(rs[b])) })
	case sortScoreDesc:
		slices.SortStableFunc(m.Order, func(a, b int) int { return cmp.Compare(scoreKey(rs[b]), scoreKey(rs[a])) })
	}
}

// scoreKey sorts failures below every scored example.
func scoreKey(r corpus.Result) float64 {
	if !r.OK() {
		return -1
	}
	return r.Score
}

func (m ResultListModel) Init() tea.Cmd {
	return nil
}

func (m ResultListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Detail && msg.String() == "esc" {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Order)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			m.Sort = (m.Sort + 1) % numSorts
			m.applySort()
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m ResultListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Corpus Results"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("mean %.4f · %d scored · %d failed · sorted by %s",
		m.Summary.Mean, m.Summary.Scored, m.Summary.Failed, sortNames[m.Sort])))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s sort  q quit"))
	b.WriteString("\n\n")

	if len(m.Order) == 0 {
		b.WriteString(listDimStyle.Render("  no examples"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Order))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Summary.Results[m.Order[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		score, status := fmt.Sprintf("%.4f", r.Score), iconFresh
		if r.Cached {
			status = iconCached
		}
		if !r.OK() {
			score, status = "—", string(r.Code)
		}
		rows = append(rows, []string{cursor, r.ID, score, status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Example", "Score", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Order) {
				return lipgloss.NewStyle()
			}
			r := m.Summary.Results[m.Order[idx]]
			base := lipgloss.NewStyle()
			if !r.OK() {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Order))))

	if m.Detail {
		b.WriteString("\n\n")
		b.WriteString(m.detailView(m.Summary.Results[m.Order[m.Cursor]]))
	}
	return b.String()
}

func (m ResultListModel) detailView(r corpus.Result) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(r.ID))
	b.WriteString("\n")
	if !r.OK() {
		b.WriteString(listErrorStyle.Render(r.Error))
		return b.String()
	}
	rep := r.Report
	fmt.Fprintf(&b, "score %.4f  weight %.4f  nodes %d/%d  %s\n",
		rep.Score, rep.Weight, rep.ReferenceNodes, rep.PredictedNodes, listDimStyle.Render(r.Duration.String()))
	if len(rep.Pairs) > 0 {
		b.WriteString(pairsTable(rep.Pairs))
	}
	return b.String()
}
