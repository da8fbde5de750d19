// Package render draws debug images of grids and contours.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// DefaultCellSize is the pixel size of one grid cell.
const DefaultCellSize = 8

var (
	// CellColor fills colliding cells.
	CellColor = color.RGBA{R: 255, A: 255}
	// PathColor strokes contours.
	PathColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// GridImage draws every colliding cell of g as a filled quad on a black
// background.
func GridImage(g *marcher.Grid, cell int) *image.NRGBA {
	if cell <= 0 {
		cell = DefaultCellSize
	}
	w, h := g.Width()*cell, g.Height()*cell
	canvas := imaging.New(w, h, color.Black)
	if w == 0 || h == 0 {
		return canvas
	}

	r := vector.NewRasterizer(w, h)
	filled := 0
	for y := range g.Height() {
		for x := range g.Width() {
			if !g.IsColliding(x, y) {
				continue
			}
			x0, y0 := float32(x*cell), float32(y*cell)
			x1, y1 := x0+float32(cell), y0+float32(cell)
			r.MoveTo(x0, y0)
			r.LineTo(x1, y0)
			r.LineTo(x1, y1)
			r.LineTo(x0, y1)
			r.ClosePath()
			filled++
		}
	}
	if filled > 0 {
		r.Draw(canvas, canvas.Bounds(), image.NewUniform(CellColor), image.Point{})
	}
	return canvas
}

// PathsImage strokes every path as a closed line strip on a black canvas of
// width x height cells. Polygon coordinates are multiplied by cell.
func PathsImage(paths marcher.PathSet, width, height, cell int) *image.RGBA {
	if cell <= 0 {
		cell = DefaultCellSize
	}
	// One extra pixel so contours on the far border stay visible.
	canvas := image.NewRGBA(image.Rect(0, 0, width*cell+1, height*cell+1))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, p := range paths {
		pts := make([]utils.Point, len(p.Polygon))
		for i, v := range p.Polygon {
			pts[i] = v.Scaled(float64(cell))
		}
		utils.DrawPolygon(canvas, pts, PathColor, 1)
	}
	return canvas
}
