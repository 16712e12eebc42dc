// Package term draws a visibility controller onto a terminal screen.
package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/fade/pkg/filmstrip"
	"github.com/go-drift/fade/pkg/visibility"
)

const (
	spokes  = 12
	radiusX = 8.0
	radiusY = 4.0
	barSize = 20
	dot     = '●'
)

// Command is what a key press asks the preview to do.
type Command int

const (
	CommandNone Command = iota
	CommandToggle
	CommandRemount
	CommandQuit
)

// KeyCommand maps a key event to a Command.
func KeyCommand(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CommandQuit
	case tcell.KeyEnter:
		return CommandToggle
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return CommandToggle
		case 'r', 'R':
			return CommandRemount
		case 'q', 'Q':
			return CommandQuit
		}
	}
	return CommandNone
}

// Presenter renders snapshots as a spinner made of dots, with a
// progress bar and a status line underneath.
type Presenter struct {
	screen tcell.Screen
	style  visibility.AppearanceStyle
	color  filmstrip.Color
}

// NewPresenter creates a presenter drawing in color.
func NewPresenter(screen tcell.Screen, style visibility.AppearanceStyle, color filmstrip.Color) *Presenter {
	return &Presenter{screen: screen, style: style, color: color}
}

// Draw renders snap and status and shows the result.
func (p *Presenter) Draw(snap visibility.Snapshot, status string) {
	p.screen.Clear()
	w, h := p.screen.Size()
	a := p.style.Resolve(snap)

	if snap.Shown() && a.Opacity > 0 && a.Scale > 0 {
		st := tcell.StyleDefault.Foreground(p.fade(a.Opacity))
		cx, cy := float64(w)/2, float64(h-2)/2
		// Spoke 0 is left out so the rotation can be seen.
		for k := 1; k < spokes; k++ {
			angle := a.Rotation + float64(k)*2*math.Pi/spokes - math.Pi/2
			x := int(math.Round(cx + radiusX*a.Scale*math.Cos(angle)))
			y := int(math.Round(cy + radiusY*a.Scale*math.Sin(angle)))
			p.screen.SetContent(x, y, dot, nil, st)
		}
	}

	filled := int(math.Round(snap.EnterProgress * barSize))
	bar := fmt.Sprintf("[%s%s] %-8s %.2f",
		strings.Repeat("#", filled), strings.Repeat(".", barSize-filled),
		snap.State, snap.EnterProgress)
	putString(p.screen, 1, h-2, bar, tcell.StyleDefault)
	putString(p.screen, 1, h-1, status, tcell.StyleDefault.Dim(true))

	p.screen.Show()
}

// fade scales the presenter color toward black by opacity.
func (p *Presenter) fade(opacity float64) tcell.Color {
	r, g, b := p.color.RGB8()
	scale := func(v uint8) int32 { return int32(math.Round(float64(v) * opacity)) }
	return tcell.NewRGBColor(scale(r), scale(g), scale(b))
}

func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
