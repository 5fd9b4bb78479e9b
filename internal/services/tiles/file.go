package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/mcoot/schoolgate/internal/model"
)

// ErrTileNotFound is returned when no candidate directory holds a tile file
var ErrTileNotFound = errors.New("tile file not found")

// Extensions tried for each tile, in order
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// FileProvider loads tiles named 1..4 from the first candidate directory that
// has them. Tile i comes from "<i+1><ext>".
type FileProvider struct {
	dirs   []string
	size   int
	logger *slog.Logger
}

// NewFileProvider creates a FileProvider over the given directories
func NewFileProvider(dirs []string, size int, logger *slog.Logger) *FileProvider {
	if size <= 0 {
		size = DefaultSize
	}
	return &FileProvider{
		dirs:   dirs,
		size:   size,
		logger: logger,
	}
}

// Tiles loads each tile, falling back to its placeholder on any failure
func (p *FileProvider) Tiles(ctx context.Context) [model.TileCount]model.Tile {
	var tiles [model.TileCount]model.Tile
	for i := range tiles {
		img, err := p.load(ctx, i)
		if err != nil {
			p.logger.Warn("using placeholder tile",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			tiles[i] = Placeholder(i, p.size)
			continue
		}
		tiles[i] = model.Tile{Index: i, Image: img}
	}
	return tiles
}

func (p *FileProvider) load(ctx context.Context, index int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := p.find(index)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Scale(src, p.size), nil
}

func (p *FileProvider) find(index int) (string, error) {
	name := strconv.Itoa(index + 1)
	for _, dir := range p.dirs {
		for _, ext := range Extensions {
			path := filepath.Join(dir, name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTileNotFound, name)
}
