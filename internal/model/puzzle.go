package model

import "image"

// TileCount is the number of tiles in a puzzle challenge
const TileCount = 4

// SolvedOrder is the identity permutation: every tile in its own slot
var SolvedOrder = [TileCount]int{0, 1, 2, 3}

// Tile is one image piece of the puzzle. Index is its slot in the solved picture.
type Tile struct {
	Index int
	Image image.Image
}

// Challenge is the live puzzle of one login window.
// Current[pos] is the index of the tile displayed at position pos.
type Challenge struct {
	Tiles   [TileCount]Tile
	Current [TileCount]int
}

// Order returns a copy of the current ordering
func (c *Challenge) Order() [TileCount]int {
	return c.Current
}

// TileAt returns the tile displayed at position pos
func (c *Challenge) TileAt(pos int) (Tile, error) {
	if !ValidPosition(pos) {
		return Tile{}, ErrInvalidPosition
	}
	return c.Tiles[c.Current[pos]], nil
}

// ValidPosition reports whether pos addresses a puzzle slot
func ValidPosition(pos int) bool {
	return pos >= 0 && pos < TileCount
}

// IsPermutation reports whether order contains each tile index exactly once
func IsPermutation(order [TileCount]int) bool {
	var seen [TileCount]bool
	for _, idx := range order {
		if !ValidPosition(idx) || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
