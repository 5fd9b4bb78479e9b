package puzzle

import (
	"github.com/mcoot/schoolgate/internal/dependencies/random"
	"github.com/mcoot/schoolgate/internal/model"
)

// Engine generates and mutates four-tile ordering challenges
type Engine struct {
	random random.Random
}

// New creates a new puzzle Engine
func New(random random.Random) *Engine {
	return &Engine{
		random: random,
	}
}

// Generate builds a challenge over the given tiles whose order is never
// already solved. A single swap away from solved is still a valid result.
func (e *Engine) Generate(tiles [model.TileCount]model.Tile) *model.Challenge {
	c := &model.Challenge{Tiles: tiles}
	for {
		c.Current = e.permutation()
		if c.Current != model.SolvedOrder {
			return c
		}
	}
}

// Reshuffle resamples the order over all permutations, the solved one included
func (e *Engine) Reshuffle(c *model.Challenge) {
	c.Current = e.permutation()
}

// Swap exchanges the tiles shown at positions a and b
func (e *Engine) Swap(c *model.Challenge, a, b int) error {
	if !model.ValidPosition(a) || !model.ValidPosition(b) {
		return model.ErrInvalidPosition
	}
	if a == b {
		return model.ErrSamePosition
	}
	c.Current[a], c.Current[b] = c.Current[b], c.Current[a]
	return nil
}

// IsSolved reports whether every tile sits in its own slot
func (e *Engine) IsSolved(c *model.Challenge) bool {
	return c.Current == model.SolvedOrder
}

func (e *Engine) permutation() [model.TileCount]int {
	order := model.SolvedOrder
	e.random.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
