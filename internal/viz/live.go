package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/l96lab/internal/dynamo"
)

const (
	historyCapacity = 360
	stepsPerFrame   = 4
)

type TickMsg time.Time

type energySource interface {
	Energy(dynamo.State) float64
}

// Live animates a running integration: the slow ring as a sparkline,
// one tracked variable as a scrolling chart, and the current energy
// and parameters alongside.
type Live struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	state      dynamo.State
	initial    dynamo.State
	slow       int
	t, dt      float64
	threshold  float64

	running  bool
	diverged bool
	tracked  int
	history  []float64
	energy   []float64
}

func NewLive(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, threshold float64) Live {
	slow := sys.Dim()
	if p, ok := sys.(dynamo.Partitioned); ok {
		slow = p.SlowDim()
	}
	if threshold <= 0 {
		threshold = dynamo.DivergenceThreshold
	}
	return Live{
		sys:        sys,
		integrator: integ,
		state:      x0.Clone(),
		initial:    x0.Clone(),
		slow:       slow,
		dt:         dt,
		threshold:  threshold,
		running:    true,
		history:    make([]float64, 0, historyCapacity),
		energy:     make([]float64, 0, historyCapacity),
	}
}

func (m Live) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.state = m.initial.Clone()
			m.t = 0
			m.diverged = false
			m.running = true
			m.history = m.history[:0]
			m.energy = m.energy[:0]
		case "tab":
			m.tracked = (m.tracked + 1) % m.slow
			m.history = m.history[:0]
		case "+", "=":
			m.nudgeForcing(0.5)
		case "-":
			m.nudgeForcing(-0.5)
		}
	case TickMsg:
		if m.running && !m.diverged {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Live) advance() {
	for i := 0; i < stepsPerFrame; i++ {
		m.state = m.integrator.Step(m.sys, m.state, m.t, m.dt)
		m.t += m.dt
		if m.state[:m.slow].MaxAbs() > m.threshold || !m.state.IsValid() {
			m.diverged = true
			m.running = false
			return
		}
	}

	m.history = append(m.history, m.state[m.tracked])
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if es, ok := m.sys.(energySource); ok {
		m.energy = append(m.energy, es.Energy(m.state))
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
	}
}

func (m *Live) nudgeForcing(delta float64) {
	cfg, ok := m.sys.(dynamo.Configurable)
	if !ok {
		return
	}
	f, ok := cfg.GetParams()["f"]
	if !ok {
		return
	}
	_ = cfg.SetParam("f", f+delta)
}

func (m Live) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("lorenz-96 live"))
	sb.WriteByte('\n')

	slow := m.state[:m.slow]
	lim := math.Max(slow.MaxAbs(), 1)
	sb.WriteString(labelStyle.Render("ring"))
	sb.WriteString(Sparkline(slow, -lim, lim))
	sb.WriteByte('\n')

	marker := strings.Repeat(" ", m.tracked) + selectedStyle.Render("^")
	sb.WriteString(labelStyle.Render(""))
	sb.WriteString(marker)
	sb.WriteByte('\n')

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("x%d", m.tracked)))
		sb.WriteString(graphStyle.Render(chart))
		sb.WriteByte('\n')
	}

	sb.WriteString(labelStyle.Render("time"))
	sb.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", m.t)))
	sb.WriteByte('\n')
	if len(m.energy) > 0 {
		sb.WriteString(labelStyle.Render("energy"))
		sb.WriteString(valueStyle.Render(fmt.Sprintf("%.3f", m.energy[len(m.energy)-1])))
		sb.WriteByte('\n')
	}
	if cfg, ok := m.sys.(dynamo.Configurable); ok {
		if f, ok := cfg.GetParams()["f"]; ok {
			sb.WriteString(labelStyle.Render("forcing"))
			sb.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", f)))
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(labelStyle.Render("status"))
	switch {
	case m.diverged:
		sb.WriteString(statusDiverged.Render("diverged"))
	case m.running:
		sb.WriteString(statusRunning.Render("running"))
	default:
		sb.WriteString(statusPaused.Render("paused"))
	}
	sb.WriteByte('\n')

	sb.WriteString(helpStyle.Render("space pause · r reset · tab track · +/- forcing · q quit"))
	sb.WriteByte('\n')
	return sb.String()
}
