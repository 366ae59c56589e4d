package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

func startSnapshot() structs.Snapshot {
	return structs.Snapshot{
		State: structs.GameState{
			Snake: []structs.Cell{
				{ID: 2, X: 3, Y: 5},
				{ID: 1, X: 2, Y: 5},
				{ID: 0, X: 1, Y: 5},
			},
			Food:          structs.Position{X: 10, Y: 10},
			Direction:     structs.Right,
			NextDirection: structs.Right,
		},
		Width:    20,
		Height:   15,
		CellSize: 20,
	}
}

func TestGeometry(t *testing.T) {
	b := Geometry(startSnapshot())

	if b.Width != 400 || b.Height != 300 {
		t.Errorf("Expected 400x300 board, got %dx%d", b.Width, b.Height)
	}
	if len(b.Rects) != 4 {
		t.Fatalf("Expected 4 rects, got %d", len(b.Rects))
	}

	food := b.Rects[0]
	if food.Kind != KindFood || food.X != 201 || food.Y != 201 || food.W != 18 {
		t.Errorf("Expected food at 201,201 size 18, got %+v", food)
	}

	head := b.Rects[1]
	if head.Kind != KindHead || head.ID != 2 || head.X != 61 || head.Y != 101 || head.Z != 3 {
		t.Errorf("Expected head at 61,101 z3, got %+v", head)
	}

	tail := b.Rects[3]
	if tail.Kind != KindBody || tail.X != 21 || tail.Z != 1 {
		t.Errorf("Expected tail at x21 z1, got %+v", tail)
	}
}

type oneSprite struct {
	name string
	img  image.Image
}

func (s oneSprite) Sprite(name string) (image.Image, bool) {
	if name == s.name {
		return s.img, true
	}
	return nil, false
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, startSnapshot(), nil); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("Expected 400x300, got %dx%d", b.Dx(), b.Dy())
	}

	// centre of the head cell is the head colour
	r, g, bl, _ := img.At(70, 110).RGBA()
	if r>>8 != 0x22 || g>>8 != 0xc5 || bl>>8 != 0x5e {
		t.Errorf("Expected head colour at (70,110), got %02x%02x%02x", r>>8, g>>8, bl>>8)
	}
}

func TestDrawBoardUsesSprites(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 18, 18))
	for x := 0; x < 18; x++ {
		for y := 0; y < 18; y++ {
			sprite.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	img := DrawBoard(startSnapshot(), oneSprite{name: memimg.SpriteHead, img: sprite}).Image()

	r, g, b, _ := img.At(70, 110).RGBA()
	if r != 0 || g != 0 || b>>8 != 255 {
		t.Errorf("Expected sprite pixel at (70,110), got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestHeadDrawnOverFood(t *testing.T) {
	snap := startSnapshot()
	snap.State.Food = structs.Position{X: 3, Y: 5}
	snap.State.GameOver = true
	img := DrawBoard(snap, nil).Image()

	// (70,104) is inside the head cell but clear of the banner
	r, g, b, _ := img.At(70, 104).RGBA()
	if r>>8 != 0x22 || g>>8 != 0xc5 || b>>8 != 0x5e {
		t.Errorf("Expected head colour over food at (70,104), got %02x%02x%02x", r>>8, g>>8, b>>8)
	}
}

func TestSpriteName(t *testing.T) {
	tests := map[Kind]string{
		KindHead: memimg.SpriteHead,
		KindBody: memimg.SpriteBody,
		KindFood: memimg.SpriteFood,
	}
	for kind, want := range tests {
		if got := spriteName(kind); got != want {
			t.Errorf("Expected sprite %q for %s, got %q", want, kind, got)
		}
	}
}
