package puzzle

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/schoolgate/internal/dependencies/mocks"
	"github.com/mcoot/schoolgate/internal/dependencies/random"
	"github.com/mcoot/schoolgate/internal/model"
)

type EngineSuite struct {
	suite.Suite
	random *mocks.MockRandom
	engine *Engine
	tiles  [model.TileCount]model.Tile
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.engine = New(s.random)
	for i := range s.tiles {
		s.tiles[i] = model.Tile{Index: i}
	}
}

// allPermutations lists the 24 orderings of four tiles
func allPermutations() [][model.TileCount]int {
	var out [][model.TileCount]int
	var build func(prefix []int, used [model.TileCount]bool)
	build = func(prefix []int, used [model.TileCount]bool) {
		if len(prefix) == model.TileCount {
			var p [model.TileCount]int
			copy(p[:], prefix)
			out = append(out, p)
			return
		}
		for i := 0; i < model.TileCount; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			build(append(prefix, i), used)
			used[i] = false
		}
	}
	build(nil, [model.TileCount]bool{})
	return out
}

// Generate tests

func (s *EngineSuite) TestGenerateUsesShuffledOrder() {
	s.random.QueuePermutation([4]int{2, 0, 3, 1})

	c := s.engine.Generate(s.tiles)

	s.Equal([4]int{2, 0, 3, 1}, c.Current)
	s.Equal(s.tiles, c.Tiles)
}

func (s *EngineSuite) TestGenerateRejectsSolvedOrder() {
	s.random.QueuePermutation(model.SolvedOrder)
	s.random.QueuePermutation(model.SolvedOrder)
	s.random.QueuePermutation([4]int{1, 0, 2, 3})

	c := s.engine.Generate(s.tiles)

	s.Equal([4]int{1, 0, 2, 3}, c.Current)
	s.Equal(0, s.random.Remaining())
}

func (s *EngineSuite) TestGenerateAcceptsSingleSwapAway() {
	s.random.QueuePermutation([4]int{0, 1, 3, 2})

	c := s.engine.Generate(s.tiles)

	s.False(s.engine.IsSolved(c))
	s.Equal([4]int{0, 1, 3, 2}, c.Current)
}

func (s *EngineSuite) TestGenerateWithCryptoRandomIsNeverSolved() {
	engine := New(random.New())
	for i := 0; i < 500; i++ {
		c := engine.Generate(s.tiles)
		s.True(model.IsPermutation(c.Current))
		s.NotEqual(model.SolvedOrder, c.Current)
	}
}

// Reshuffle tests

func (s *EngineSuite) TestReshuffleMayProduceSolvedOrder() {
	s.random.QueuePermutation([4]int{3, 2, 1, 0})
	c := s.engine.Generate(s.tiles)

	s.random.QueuePermutation(model.SolvedOrder)
	s.engine.Reshuffle(c)

	s.True(s.engine.IsSolved(c))
}

func (s *EngineSuite) TestReshuffleKeepsPermutation() {
	engine := New(random.New())
	c := engine.Generate(s.tiles)
	for i := 0; i < 200; i++ {
		engine.Reshuffle(c)
		s.True(model.IsPermutation(c.Current))
	}
}

func (s *EngineSuite) TestReshuffleCoversAllPermutations() {
	engine := New(random.New())
	c := engine.Generate(s.tiles)
	seen := make(map[[model.TileCount]int]bool)
	for i := 0; i < 5000 && len(seen) < 24; i++ {
		engine.Reshuffle(c)
		seen[c.Current] = true
	}
	s.Len(seen, 24)
}

// Swap tests

func (s *EngineSuite) TestSwapExchangesPositions() {
	s.random.QueuePermutation([4]int{1, 0, 2, 3})
	c := s.engine.Generate(s.tiles)

	s.Require().NoError(s.engine.Swap(c, 0, 1))

	s.Equal(model.SolvedOrder, c.Current)
	s.True(s.engine.IsSolved(c))
}

func (s *EngineSuite) TestSwapIsSelfInverse() {
	for _, perm := range allPermutations() {
		for a := 0; a < model.TileCount; a++ {
			for b := 0; b < model.TileCount; b++ {
				if a == b {
					continue
				}
				c := &model.Challenge{Tiles: s.tiles, Current: perm}
				s.Require().NoError(s.engine.Swap(c, a, b))
				s.Require().NoError(s.engine.Swap(c, a, b))
				s.Equal(perm, c.Current)
			}
		}
	}
}

func (s *EngineSuite) TestSwapRejectsSamePosition() {
	c := &model.Challenge{Current: [4]int{3, 1, 2, 0}}

	err := s.engine.Swap(c, 2, 2)

	s.ErrorIs(err, model.ErrSamePosition)
	s.Equal([4]int{3, 1, 2, 0}, c.Current)
}

func (s *EngineSuite) TestSwapRejectsOutOfRange() {
	c := &model.Challenge{Current: [4]int{3, 1, 2, 0}}

	s.ErrorIs(s.engine.Swap(c, -1, 2), model.ErrInvalidPosition)
	s.ErrorIs(s.engine.Swap(c, 0, 4), model.ErrInvalidPosition)
	s.Equal([4]int{3, 1, 2, 0}, c.Current)
}

// IsSolved tests

func (s *EngineSuite) TestIsSolvedOnlyForIdentity() {
	solved := 0
	for _, perm := range allPermutations() {
		c := &model.Challenge{Current: perm}
		if s.engine.IsSolved(c) {
			solved++
			s.Equal(model.SolvedOrder, perm)
		}
	}
	s.Equal(1, solved)
}
