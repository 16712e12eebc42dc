// Package filmstrip renders a sequence of sampled appearances into a
// single contact-sheet image, one cell per sample.
//
// Each cell draws a sprite centered in the cell, scaled, rotated and
// faded according to the sample's [visibility.Appearance]. Cells are
// laid out left to right, top to bottom.
package filmstrip

import (
	stderrors "errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/fade/pkg/visibility"
)

// ErrNoFrames is returned by Render when there is nothing to draw.
var ErrNoFrames = stderrors.New("filmstrip: no frames")

const (
	defaultCellSize   = 96
	defaultMaxColumns = 8
	labelHeight       = 16
)

// Frame is one sample of a controller.
type Frame struct {
	At         time.Duration
	State      visibility.State
	Appearance visibility.Appearance
}

// Options controls the layout of a filmstrip.
type Options struct {
	// CellSize is the width and height of a cell in pixels (default 96).
	CellSize int
	// Columns per row. Zero fits up to eight frames per row.
	Columns int
	// Background fills every cell. Zero means ColorInk.
	Background Color
	// Foreground colors the default sprite and the labels. Zero means
	// ColorAccent.
	Foreground Color
	// Sprite replaces the default ring.
	Sprite image.Image
	// Labels adds the sample time and state under each cell.
	Labels bool
}

func (o Options) withDefaults(n int) Options {
	if o.CellSize <= 0 {
		o.CellSize = defaultCellSize
	}
	if o.Columns <= 0 {
		o.Columns = min(n, defaultMaxColumns)
	}
	if o.Background == 0 {
		o.Background = ColorInk
	}
	if o.Foreground == 0 {
		o.Foreground = ColorAccent
	}
	if o.Sprite == nil {
		o.Sprite = Ring(o.CellSize*6/10, o.Foreground)
	}
	return o
}

// Render draws frames into a new image.
func Render(frames []Frame, opts Options) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	opts = opts.withDefaults(len(frames))

	cellH := opts.CellSize
	if opts.Labels {
		cellH += labelHeight
	}
	rows := (len(frames) + opts.Columns - 1) / opts.Columns
	dst := image.NewRGBA(image.Rect(0, 0, opts.Columns*opts.CellSize, rows*cellH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	for i, f := range frames {
		origin := image.Pt((i%opts.Columns)*opts.CellSize, (i/opts.Columns)*cellH)
		drawSprite(dst, opts.Sprite, origin, opts.CellSize, f.Appearance)
		if opts.Labels {
			drawLabel(dst, origin.Add(image.Pt(4, opts.CellSize+12)), opts.Foreground, label(f))
		}
	}
	return dst, nil
}

// drawSprite places src at the center of the cell at origin.
func drawSprite(dst *image.RGBA, src image.Image, origin image.Point, cell int, a visibility.Appearance) {
	opacity := clamp01(a.Opacity)
	if opacity == 0 || a.Scale <= 1e-6 {
		return
	}
	sb := src.Bounds()
	w, h := float64(sb.Dx()), float64(sb.Dy())
	cx := float64(origin.X) + float64(cell)/2
	cy := float64(origin.Y) + float64(cell)/2

	sin, cos := math.Sincos(a.Rotation)
	m := f64.Aff3{
		a.Scale * cos, -a.Scale * sin, 0,
		a.Scale * sin, a.Scale * cos, 0,
	}
	// Map the sprite center, not its corner, onto the cell center.
	sx, sy := float64(sb.Min.X)+w/2, float64(sb.Min.Y)+h/2
	m[2] = cx - m[0]*sx - m[1]*sy
	m[5] = cy - m[3]*sx - m[4]*sy

	clip := dst.SubImage(image.Rect(origin.X, origin.Y, origin.X+cell, origin.Y+cell)).(*image.RGBA)
	var opts *draw.Options
	if opacity < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: alpha01ToByte(opacity)})}
	}
	draw.BiLinear.Transform(clip, m, src, sb, draw.Over, opts)
}

func drawLabel(dst *image.RGBA, at image.Point, c Color, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}

func label(f Frame) string {
	state := f.State.String()
	if len(state) > 3 {
		state = state[:3]
	}
	return fmt.Sprintf("%d %s", f.At.Milliseconds(), state)
}

// Ring returns a size×size ring with a notch at the top, so that
// rotation is visible.
func Ring(size int, c Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2
	outer := center - 1
	inner := outer * 0.7
	const notch = 0.35
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := float64(x)+0.5-center, float64(y)+0.5-center
			r := math.Hypot(px, py)
			if r < inner || r > outer {
				continue
			}
			if math.Abs(math.Atan2(py, px)+math.Pi/2) < notch {
				continue
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// LoadSprite decodes a PNG or JPEG sprite.
func LoadSprite(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode sprite: %w", err)
	}
	return img, nil
}
