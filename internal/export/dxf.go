// Package export writes designs to interchange formats: DXF sketches of
// the tooth contours and bodies for CAD import, and XLSX reports of the
// computed geometry and of parameter sweeps.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/involute"
	"github.com/HendryAvila/hdrive/internal/params"
)

// DefaultCircleSegments is the number of chords used to approximate a
// circle or the wave generator ellipse.
const DefaultCircleSegments = 180

// ErrEmptyDrawing is returned by WriteDXF when there is nothing to draw.
var ErrEmptyDrawing = errors.New("export: drawing has no polylines")

// Polyline is one outline of the sketch, in mm, centred on the drive axis.
type Polyline struct {
	Name   string
	Points []involute.Point
	Closed bool
}

// Segments returns how many line entities the polyline becomes.
func (p Polyline) Segments() int {
	n := len(p.Points)
	switch {
	case n < 2:
		return 0
	case p.Closed && n > 2:
		return n
	default:
		return n - 1
	}
}

// Drawing is a flat 2D sketch of a complete drive.
type Drawing struct {
	Polylines []Polyline
}

// Segments returns the total line entity count of the drawing.
func (d Drawing) Segments() int {
	n := 0
	for _, p := range d.Polylines {
		n += p.Segments()
	}
	return n
}

// NewDrawing lays out one design: every CS and FS tooth contour, the CS
// housing circle, the FS bore, the wave generator cam and its shaft bore.
// segments <= 0 selects DefaultCircleSegments.
func NewDrawing(p params.Params, profile harmonic.Profile, segments int) Drawing {
	if segments <= 0 {
		segments = DefaultCircleSegments
	}
	calc := geometry.NewCalculator(p)
	cs := calc.CircularSpline()
	fs := calc.FlexSpline()
	wg := calc.WaveGenerator()

	var d Drawing
	for i, tooth := range profile.CircularSpline() {
		d.Polylines = append(d.Polylines, Polyline{Name: fmt.Sprintf("cs_tooth_%d", i), Points: tooth, Closed: true})
	}
	for i, tooth := range profile.FlexSpline() {
		d.Polylines = append(d.Polylines, Polyline{Name: fmt.Sprintf("fs_tooth_%d", i), Points: tooth, Closed: true})
	}

	d.Polylines = append(d.Polylines,
		circle("cs_housing", cs.OuterDiameter/2, segments),
		circle("fs_bore", fs.InnerDiameter/2, segments),
		ellipse("wg_cam", wg, segments),
		circle("wg_shaft", wg.ShaftDiameter/2, segments),
	)
	return d
}

func circle(name string, r float64, n int) Polyline {
	pts := make([]involute.Point, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = involute.Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return Polyline{Name: name, Points: pts, Closed: true}
}

func ellipse(name string, wg geometry.WaveGeneratorGeometry, n int) Polyline {
	raw := wg.Ellipse(n)
	pts := make([]involute.Point, len(raw))
	for i, xy := range raw {
		pts[i] = involute.Point{X: xy[0], Y: xy[1]}
	}
	return Polyline{Name: name, Points: pts, Closed: true}
}

// WriteDXF renders every polyline of d as DXF line entities at path,
// creating the parent directory if needed.
func WriteDXF(path string, d Drawing) error {
	if d.Segments() == 0 {
		return ErrEmptyDrawing
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create output dir: %w", err)
	}

	out := render.NewDXF(path)
	for _, pl := range d.Polylines {
		if pl.Segments() == 0 {
			continue
		}
		for i := 1; i < len(pl.Points); i++ {
			out.Line(line(pl.Points[i-1], pl.Points[i]))
		}
		if pl.Closed && len(pl.Points) > 2 {
			out.Line(line(pl.Points[len(pl.Points)-1], pl.Points[0]))
		}
	}
	if err := out.Save(); err != nil {
		return fmt.Errorf("export: write dxf: %w", err)
	}
	return nil
}

func line(a, b involute.Point) *sdf.Line2 {
	return &sdf.Line2{v2.Vec{X: a.X, Y: a.Y}, v2.Vec{X: b.X, Y: b.Y}}
}
