// 贪吃蛇状态机：每个tick返回新的状态，不做任何I/O
package snake

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoshinonyaruko/snake-in-browser/config"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
	"golang.org/x/exp/rand"
)

var (
	ErrGridTooSmall = errors.New("grid too small for the starting snake")
	ErrInvalidState = errors.New("invalid game state")
)

// 随机采样在这么多次之后改为枚举空格
const maxSampleAttempts = 64

// Rand is the subset of a random source the engine needs.
type Rand interface {
	Intn(n int) int
}

// Engine 持有网格尺寸和随机源，状态本身由调用方持有
type Engine struct {
	width  int
	height int
	rng    Rand
}

// 初始蛇身，蛇头在前
func startingSnake() []structs.Cell {
	return []structs.Cell{
		{ID: 2, X: 3, Y: 5},
		{ID: 1, X: 2, Y: 5},
		{ID: 0, X: 1, Y: 5},
	}
}

// NewEngine validates the grid against the starting snake. A nil rng gets
// a time-seeded generator.
func NewEngine(width, height int, rng Rand) (*Engine, error) {
	for _, c := range startingSnake() {
		if c.X >= width || c.Y >= height {
			return nil, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, width, height)
		}
	}
	// 还需要至少一个空格放食物
	if width*height <= len(startingSnake()) {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, width, height)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &Engine{width: width, height: height, rng: rng}, nil
}

func (e *Engine) Width() int  { return e.width }
func (e *Engine) Height() int { return e.height }

// Initial 新开一局
func (e *Engine) Initial() structs.GameState {
	s := structs.GameState{
		Snake:         startingSnake(),
		Direction:     structs.Right,
		NextDirection: structs.Right,
	}
	s.Food, _ = e.spawnFood(s.Snake)
	return s
}

// Reset 丢弃当前状态，等价于重新开局
func (e *Engine) Reset() structs.GameState {
	return e.Initial()
}

// SetDirection 记录下一个tick的方向，游戏结束或与当前方向相反时忽略
func SetDirection(s structs.GameState, d structs.Direction) structs.GameState {
	if s.GameOver || !d.Valid() || d == s.Direction.Opposite() {
		return s
	}
	s.NextDirection = d
	return s
}

// TogglePause 暂停/继续
func TogglePause(s structs.GameState) structs.GameState {
	s.IsPaused = !s.IsPaused
	return s
}

// WrapPosition 超出边界时从对边进入
func WrapPosition(x, y, width, height int) (int, int) {
	x %= width
	if x < 0 {
		x += width
	}
	y %= height
	if y < 0 {
		y += height
	}
	return x, y
}

// Advance 推进一个tick
func (e *Engine) Advance(s structs.GameState) structs.GameState {
	if s.GameOver || s.IsPaused || len(s.Snake) == 0 {
		return s
	}

	head := s.Snake[0]
	dx, dy := s.NextDirection.Delta()
	x, y := WrapPosition(head.X+dx, head.Y+dy, e.width, e.height)
	newHead := structs.Cell{ID: head.ID + 1, X: x, Y: y}

	// 撞到自己，冻结蛇身和分数
	if occupied(s.Snake, newHead.Pos()) {
		s.GameOver = true
		return s
	}

	// 先加蛇头，没吃到食物再去掉蛇尾
	body := make([]structs.Cell, 0, len(s.Snake)+1)
	body = append(body, newHead)
	body = append(body, s.Snake...)

	next := s
	if newHead.Pos() == s.Food {
		next.Score += config.FoodReward
		food, ok := e.spawnFood(body)
		if ok {
			next.Food = food
		} else {
			// 蛇已经占满整个网格
			next.GameOver = true
		}
	} else {
		body = body[:len(body)-1]
	}
	next.Snake = body
	next.Direction = s.NextDirection
	return next
}

func occupied(snake []structs.Cell, p structs.Position) bool {
	for _, c := range snake {
		if c.X == p.X && c.Y == p.Y {
			return true
		}
	}
	return false
}

// spawnFood 随机取一个不在蛇身上的位置；多次落空后改为在空格中均匀挑选
func (e *Engine) spawnFood(snake []structs.Cell) (structs.Position, bool) {
	for i := 0; i < maxSampleAttempts; i++ {
		p := structs.Position{X: e.rng.Intn(e.width), Y: e.rng.Intn(e.height)}
		if !occupied(snake, p) {
			return p, true
		}
	}

	taken := make(map[structs.Position]bool, len(snake))
	for _, c := range snake {
		taken[c.Pos()] = true
	}
	free := make([]structs.Position, 0, e.width*e.height-len(taken))
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			p := structs.Position{X: x, Y: y}
			if !taken[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return structs.Position{}, false
	}
	return free[e.rng.Intn(len(free))], true
}

// Validate checks the invariants every reachable state must hold.
func (e *Engine) Validate(s structs.GameState) error {
	if len(s.Snake) == 0 {
		return fmt.Errorf("%w: empty snake", ErrInvalidState)
	}
	if s.Score < 0 || s.Score%config.FoodReward != 0 {
		return fmt.Errorf("%w: score %d", ErrInvalidState, s.Score)
	}
	if !s.Direction.Valid() || !s.NextDirection.Valid() {
		return fmt.Errorf("%w: direction %q next %q", ErrInvalidState, s.Direction, s.NextDirection)
	}

	seen := make(map[structs.Position]bool, len(s.Snake))
	headID := s.Snake[0].ID
	for i, c := range s.Snake {
		if !e.inBounds(c.Pos()) {
			return fmt.Errorf("%w: cell %d at (%d,%d) out of bounds", ErrInvalidState, i, c.X, c.Y)
		}
		if seen[c.Pos()] {
			return fmt.Errorf("%w: cell %d at (%d,%d) overlaps the body", ErrInvalidState, i, c.X, c.Y)
		}
		seen[c.Pos()] = true
		if i > 0 && c.ID >= headID {
			return fmt.Errorf("%w: cell %d id %d not below head id %d", ErrInvalidState, i, c.ID, headID)
		}
	}

	if !e.inBounds(s.Food) {
		return fmt.Errorf("%w: food (%d,%d) out of bounds", ErrInvalidState, s.Food.X, s.Food.Y)
	}
	if !s.GameOver && seen[s.Food] {
		return fmt.Errorf("%w: food (%d,%d) under the snake", ErrInvalidState, s.Food.X, s.Food.Y)
	}
	return nil
}

func (e *Engine) inBounds(p structs.Position) bool {
	return p.X >= 0 && p.X < e.width && p.Y >= 0 && p.Y < e.height
}
