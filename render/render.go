// Package render turns snapshots into board geometry and images. It never
// changes game state.
package render

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// Board palette.
const (
	ColorBoard = "#f3f4f6"
	ColorGrid  = "#e5e7eb"
	ColorHead  = "#22c55e"
	ColorBody  = "#4ade80"
	ColorFood  = "#ef4444"
	ColorText  = "#111827"
)

type Kind string

const (
	KindFood Kind = "food"
	KindHead Kind = "head"
	KindBody Kind = "body"
)

// Rect is one drawn block in board pixels.
type Rect struct {
	Kind Kind `json:"kind"`
	ID   int  `json:"id"`
	X    int  `json:"x"`
	Y    int  `json:"y"`
	W    int  `json:"w"`
	H    int  `json:"h"`
	Z    int  `json:"z"`
}

// Board is the full pixel layout of one snapshot.
type Board struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Rects  []Rect `json:"rects"`
}

// Sprites supplies optional images by name (see memimg).
type Sprites interface {
	Sprite(name string) (image.Image, bool)
}

func cellRect(x, y, size int) (int, int, int) {
	inner := memimg.SpriteSize(size)
	return x*size + 1, y*size + 1, inner
}

// Geometry lays out the food and every snake segment. Earlier segments
// stack above later ones so the head is always on top.
func Geometry(snap structs.Snapshot) Board {
	size := snap.CellSize
	b := Board{
		Width:  snap.Width * size,
		Height: snap.Height * size,
		Rects:  make([]Rect, 0, len(snap.State.Snake)+1),
	}

	fx, fy, inner := cellRect(snap.State.Food.X, snap.State.Food.Y, size)
	b.Rects = append(b.Rects, Rect{Kind: KindFood, X: fx, Y: fy, W: inner, H: inner})

	n := len(snap.State.Snake)
	for i, c := range snap.State.Snake {
		kind := KindBody
		if i == 0 {
			kind = KindHead
		}
		x, y, inner := cellRect(c.X, c.Y, size)
		b.Rects = append(b.Rects, Rect{Kind: kind, ID: c.ID, X: x, Y: y, W: inner, H: inner, Z: n - i})
	}
	return b
}

// DrawBoard paints the snapshot. sprites may be nil.
func DrawBoard(snap structs.Snapshot, sprites Sprites) *gg.Context {
	board := Geometry(snap)
	dc := gg.NewContext(board.Width, board.Height)

	dc.SetHexColor(ColorBoard)
	dc.Clear()
	drawGrid(dc, board.Width, board.Height, snap.CellSize)

	// food first, then the snake from the tail up so the head ends on top
	drawRect(dc, board.Rects[0], sprites)
	for i := len(board.Rects) - 1; i > 0; i-- {
		drawRect(dc, board.Rects[i], sprites)
	}

	switch {
	case snap.State.GameOver:
		drawBanner(dc, board.Width, board.Height, "GAME OVER - press R")
	case snap.State.IsPaused:
		drawBanner(dc, board.Width, board.Height, "PAUSED")
	}
	return dc
}

// EncodePNG writes the board image for snap to w.
func EncodePNG(w io.Writer, snap structs.Snapshot, sprites Sprites) error {
	return DrawBoard(snap, sprites).EncodePNG(w)
}

func drawGrid(dc *gg.Context, width, height, blockSize int) {
	if blockSize <= 0 {
		return
	}
	dc.SetHexColor(ColorGrid)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

// spriteName maps a rect kind onto the memimg sprite drawn for it.
func spriteName(k Kind) string {
	switch k {
	case KindHead:
		return memimg.SpriteHead
	case KindFood:
		return memimg.SpriteFood
	default:
		return memimg.SpriteBody
	}
}

func drawRect(dc *gg.Context, r Rect, sprites Sprites) {
	if sprites != nil {
		if img, ok := sprites.Sprite(spriteName(r.Kind)); ok {
			dc.DrawImage(img, r.X, r.Y)
			return
		}
	}

	x, y, w, h := float64(r.X), float64(r.Y), float64(r.W), float64(r.H)
	switch r.Kind {
	case KindFood:
		dc.SetHexColor(ColorFood)
		dc.DrawCircle(x+w/2, y+h/2, w/2)
	case KindHead:
		dc.SetHexColor(ColorHead)
		dc.DrawRoundedRectangle(x, y, w, h, 2)
	default:
		dc.SetHexColor(ColorBody)
		dc.DrawRoundedRectangle(x, y, w, h, 2)
	}
	dc.Fill()
}

func drawBanner(dc *gg.Context, width, height int, text string) {
	dc.SetRGBA(1, 1, 1, 0.75)
	dc.DrawRectangle(0, float64(height)/2-14, float64(width), 28)
	dc.Fill()
	dc.SetHexColor(ColorText)
	dc.DrawStringAnchored(text, float64(width)/2, float64(height)/2, 0.5, 0.5)
}
