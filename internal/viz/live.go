package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rollersim/internal/engine"
	"github.com/san-kum/rollersim/internal/geom"
)

const (
	canvasWidth     = 78
	canvasHeight    = 22
	historyCapacity = 600
	trailCapacity   = 160
	curveSamples    = 400
)

type TickMsg time.Time

// Model runs the engine in real time and renders the curve, the body and an
// energy trace in the terminal.
type Model struct {
	eng     *engine.Engine
	rebuild func() (*engine.Engine, error)

	dt            float64
	stepsPerFrame int
	title         string

	canvas        *Canvas
	trail         []geom.Vec2
	energyHistory []float64

	minX, maxX float64
	minY, maxY float64

	running  bool
	showHelp bool
	fault    error
}

// NewModel sets up the live view. rebuild produces a fresh engine for the
// reset key.
func NewModel(rebuild func() (*engine.Engine, error), dt float64, title string) (Model, error) {
	eng, err := rebuild()
	if err != nil {
		return Model{}, err
	}
	spf := int(1.0 / 60.0 / dt)
	if spf < 1 {
		spf = 1
	}
	m := Model{
		eng:           eng,
		rebuild:       rebuild,
		dt:            dt,
		stepsPerFrame: spf,
		title:         title,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trail:         make([]geom.Vec2, 0, trailCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		running:       true,
	}
	m.fitWorld()
	return m, nil
}

// fitWorld sizes the view window to the curve with headroom for flight.
func (m *Model) fitWorld() {
	path := m.eng.Path()
	pMin, pMax, _ := path.Domain()

	first := path.PositionAt(pMin)
	m.minX, m.maxX = first.X, first.X
	m.minY, m.maxY = first.Y, first.Y
	for i := 1; i <= curveSamples; i++ {
		p := pMin + (pMax-pMin)*float64(i)/float64(curveSamples)
		pos := path.PositionAt(p)
		if pos.X < m.minX {
			m.minX = pos.X
		}
		if pos.X > m.maxX {
			m.maxX = pos.X
		}
		if pos.Y < m.minY {
			m.minY = pos.Y
		}
		if pos.Y > m.maxY {
			m.maxY = pos.Y
		}
	}
	padX := 0.05 * (m.maxX - m.minX)
	padY := 0.25 * (m.maxY - m.minY)
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	m.minX -= padX
	m.maxX += padX
	m.minY -= padY
	m.maxY += padY
}

func (m *Model) project(pos geom.Vec2) (int, int) {
	px := (pos.X - m.minX) / (m.maxX - m.minX) * float64(canvasWidth*2-1)
	py := (1 - (pos.Y-m.minY)/(m.maxY-m.minY)) * float64(canvasHeight*4-1)
	return int(px), int(py)
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if eng, err := m.rebuild(); err == nil {
				m.eng = eng
				m.trail = m.trail[:0]
				m.energyHistory = m.energyHistory[:0]
				m.fault = nil
				m.running = true
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.fault == nil {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.eng.Advance(m.dt); err != nil {
			m.fault = err
			m.running = false
			return
		}
	}

	m.trail = append(m.trail, m.eng.Position())
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.energyHistory = append(m.energyHistory, m.eng.EnergyInfo().Total)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()

	path := m.eng.Path()
	pMin, pMax, _ := path.Domain()
	prevX, prevY := m.project(path.PositionAt(pMin))
	for i := 1; i <= curveSamples; i++ {
		p := pMin + (pMax-pMin)*float64(i)/float64(curveSamples)
		x, y := m.project(path.PositionAt(p))
		m.canvas.Line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}

	for _, pos := range m.trail {
		x, y := m.project(pos)
		m.canvas.Set(x, y)
	}

	bx, by := m.project(m.eng.Position())
	m.canvas.Circle(bx, by, 2)
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if m.fault != nil {
		status = "FAULT: " + m.fault.Error()
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	canvasView := canvasStyle.Render(m.canvas.String())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.statsView()))

	if len(m.energyHistory) > 2 {
		graph := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6), asciigraph.Width(70),
			asciigraph.Caption("total energy"))
		s.WriteString(graphStyle.Render(graph))
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	} else {
		s.WriteString(helpStyle.Render("? help"))
	}
	s.WriteString("\n")
	return s.String()
}

func (m Model) statsView() string {
	sv := m.eng.StateVector()
	en := m.eng.EnergyInfo()
	pos := m.eng.Position()
	vel := m.eng.Velocity()

	modeLabel := trackStyle.Render("TRACK")
	if _, free := m.eng.Mode().(engine.Free); free {
		modeLabel = freeStyle.Render("FREE")
	}

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	b.WriteString(modeLabel + "\n\n")
	line("time", fmt.Sprintf("%8.2f s", m.eng.Time()))
	line("position", fmt.Sprintf("(%6.2f, %6.2f)", pos.X, pos.Y))
	line("velocity", fmt.Sprintf("(%6.2f, %6.2f)", vel.X, vel.Y))
	line("p", fmt.Sprintf("%8.3f", sv.Value(engine.IdxP)))
	line("kinetic", fmt.Sprintf("%8.3f", en.Kinetic))
	line("potential", fmt.Sprintf("%8.3f", en.Potential))
	line("total", fmt.Sprintf("%8.3f", en.Total))
	line("departures", fmt.Sprintf("%d", m.eng.Departures()))
	line("bounces", fmt.Sprintf("%d", m.eng.Bounces()))
	line("re-latches", fmt.Sprintf("%d", m.eng.Relatches()))
	return statsStyle.Render(b.String())
}

// Run starts the live view program.
func Run(rebuild func() (*engine.Engine, error), dt float64, title string) error {
	m, err := NewModel(rebuild, dt, title)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
