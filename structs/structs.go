package structs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDirection 无法识别的方向
var ErrUnknownDirection = errors.New("unknown direction")

// Direction 蛇的移动方向
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Valid 是否为四个合法方向之一
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Opposite 返回相反方向，非法方向返回自身
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// Delta 返回单步位移，y轴向下为正
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection accepts "up", "UP", "Up" and returns the canonical value.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
	return d, nil
}

// Position 描述网格上的一个坐标位置。
type Position struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Cell 描述蛇身上的一格，ID 只用于渲染时保持稳定标识
type Cell struct {
	ID int `json:"id"` // 每个tick新蛇头加一
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Pos 去掉ID后的坐标
func (c Cell) Pos() Position {
	return Position{X: c.X, Y: c.Y}
}

// GameState 描述一局游戏的全部状态，每个tick整体替换。
type GameState struct {
	Snake         []Cell    `json:"snake"`          // 蛇身，蛇头在前
	Food          Position  `json:"food"`           // 食物位置
	Direction     Direction `json:"direction"`      // 上一个tick实际使用的方向
	NextDirection Direction `json:"next_direction"` // 下一个tick将使用的方向
	GameOver      bool      `json:"game_over"`
	Score         int       `json:"score"`
	IsPaused      bool      `json:"is_paused"`
}

// Clone 深拷贝，蛇身切片不与原状态共享
func (s GameState) Clone() GameState {
	c := s
	c.Snake = make([]Cell, len(s.Snake))
	copy(c.Snake, s.Snake)
	return c
}

// Head 返回蛇头，空蛇返回零值
func (s GameState) Head() Cell {
	if len(s.Snake) == 0 {
		return Cell{}
	}
	return s.Snake[0]
}

// Snapshot 发布给渲染端的只读快照
type Snapshot struct {
	State    GameState `json:"state"`
	Width    int       `json:"width"`     // 网格宽度（格子数）
	Height   int       `json:"height"`    // 网格高度（格子数）
	CellSize int       `json:"cell_size"` // 每格像素
	Session  string    `json:"session"`   // 每次重置生成新的标识
	Tick     uint64    `json:"tick"`
}
