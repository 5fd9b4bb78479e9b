package factory

import (
	"time"

	"github.com/mcoot/schoolgate/internal/config"
	"github.com/mcoot/schoolgate/internal/dependencies/mocks"
	"github.com/mcoot/schoolgate/internal/services/tiles"
	"github.com/mcoot/schoolgate/internal/storage/memory"
	"github.com/mcoot/schoolgate/internal/testutil"
)

// TestPassSecret signs passes in test apps
const TestPassSecret = "test-pass-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Memory     *memory.Storage
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies,
// placeholder tiles and the in-memory store
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := config.Default()
	cfg.Pass.Secret = TestPassSecret
	cfg.Tiles.Size = 16

	app, err := newWithDependencies(store, mockClock, mockRandom, tiles.StaticProvider{Size: cfg.Tiles.Size}, cfg, testutil.NopLogger())
	if err != nil {
		panic("test app: " + err.Error())
	}

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
