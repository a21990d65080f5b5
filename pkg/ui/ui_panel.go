package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	captionHeight = 15.0
)

// Widget is implemented by every control the panel can hold
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	// Caption is drawn above the widget; empty means none.
	Caption() string
	Height() float64
	Top() float64
	SetY(y float64)
}

// Section groups consecutive widgets under a header
type Section struct {
	Title      string
	StartIndex int // first widget of the section
	EndIndex   int // exclusive
}

// Panel manages a column of widgets in a scrollable area
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	Widgets       []Widget
	ScrollOffset  float64

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
	SectionBG   color.RGBA

	sections []Section
}

// NewPanel creates an empty panel
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionBG:   color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection opens a section; widgets added next belong to it
func (p *Panel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, Section{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   -1,
	})
}

// EndSection closes the open section, if any
func (p *Panel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].EndIndex < 0 {
		p.sections[n-1].EndIndex = len(p.Widgets)
	}
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	p.Widgets = append(p.Widgets, w)
	p.layout()
}

// AddSlider adds a slider widget to the panel
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.add(s)
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(c)
	return c
}

// AddButton adds a full width button to the panel
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.add(b)
	return b
}

// Contains reports whether screen point (x, y) falls on the panel
func (p *Panel) Contains(x, y int) bool {
	return inside(float64(x), float64(y), p.X, p.Y, p.Width, p.Height)
}

// ContentHeight is the height of everything in the panel, title included
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		if s.Title != "" {
			h += sectionHeight
		}
	}
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

// layout places widgets and section headers; it returns the header positions
func (p *Panel) layout() []float64 {
	headers := make([]float64, len(p.sections))
	y := p.Y + titleHeight - p.ScrollOffset
	next := 0
	for i, s := range p.sections {
		headers[i] = y
		if s.Title != "" {
			y += sectionHeight
		}
		end := s.EndIndex
		if end < 0 {
			end = len(p.Widgets)
		}
		for ; next < end && next < len(p.Widgets); next++ {
			w := p.Widgets[next]
			offset := 0.0
			if w.Caption() != "" {
				offset = captionHeight
			}
			w.SetY(y + offset)
			y += w.Height()
		}
	}
	return headers
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y+titleHeight-captionHeight && y <= p.Y+p.Height
}

// Update handles scrolling and input for all visible widgets
func (p *Panel) Update() {
	mx, my := ebiten.CursorPosition()
	if _, dy := ebiten.Wheel(); dy != 0 && p.Contains(mx, my) {
		maxScroll := max(p.ContentHeight()-p.Height+10, 0)
		p.ScrollOffset = max(0, min(maxScroll, p.ScrollOffset-dy*20))
		p.layout()
	}

	for _, w := range p.Widgets {
		if p.visible(w.Top()) {
			w.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	headers := p.layout()
	for i, s := range p.sections {
		if s.Title == "" || !p.visible(headers[i]) {
			continue
		}
		vector.FillRect(screen,
			float32(p.X+5), float32(headers[i]),
			float32(p.Width-10), 20,
			p.SectionBG, true)
		ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+10), int(headers[i]+3))
	}

	for _, w := range p.Widgets {
		y := w.Top()
		if !p.visible(y) {
			continue
		}
		if c := w.Caption(); c != "" {
			ebitenutil.DebugPrintAt(screen, c, int(p.X+10), int(y-captionHeight))
		}
		w.Draw(screen)
	}
}
