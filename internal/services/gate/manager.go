package gate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/schoolgate/internal/dependencies/clock"
	"github.com/mcoot/schoolgate/internal/dependencies/random"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/lockout"
	"github.com/mcoot/schoolgate/internal/services/puzzle"
	"github.com/mcoot/schoolgate/internal/services/tiles"
)

// ErrCaptchaSoftLocked is returned once a window has used up its puzzle failures
var ErrCaptchaSoftLocked = errors.New("too many puzzle failures, open a new login window")

const (
	tokenLength   = 24
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Config holds configuration for login windows
type Config struct {
	PuzzleFailureLimit int
	WindowTTL          time.Duration
}

// DefaultConfig returns default window configuration
func DefaultConfig() Config {
	return Config{
		PuzzleFailureLimit: lockout.DefaultPuzzleFailureLimit,
		WindowTTL:          15 * time.Minute,
	}
}

// window is one open login form: a live challenge, its puzzle counter and the
// tile the user has picked but not yet swapped
type window struct {
	mu        sync.Mutex
	token     string
	challenge *model.Challenge
	counter   *lockout.PuzzleCounter
	selected  int
	lastSeen  time.Time
}

// View is a snapshot of a window for display
type View struct {
	Token          string    `json:"token"`
	Order          [4]int    `json:"order"`
	Selected       *int      `json:"selected"`
	PuzzleFailures int       `json:"puzzle_failures"`
	SoftLocked     bool      `json:"soft_locked"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// SelectResult describes what a tile selection did
type SelectResult struct {
	View
	Swapped bool `json:"swapped"`
}

// Manager owns every open login window
type Manager struct {
	coordinator *auth.Coordinator
	engine      *puzzle.Engine
	tiles       tiles.Provider
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
	cfg         Config

	mu      sync.RWMutex
	windows map[string]*window
}

// New creates a new window Manager
func New(
	coordinator *auth.Coordinator,
	engine *puzzle.Engine,
	tiles tiles.Provider,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Manager {
	if cfg.WindowTTL == 0 {
		cfg.WindowTTL = DefaultConfig().WindowTTL
	}
	return &Manager{
		coordinator: coordinator,
		engine:      engine,
		tiles:       tiles,
		clock:       clock,
		random:      random,
		logger:      logger,
		cfg:         cfg,
		windows:     make(map[string]*window),
	}
}

// Open creates a new window with fresh tiles, a scrambled puzzle and a zero counter
func (m *Manager) Open(ctx context.Context) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}

	w := &window{
		challenge: m.engine.Generate(m.tiles.Tiles(ctx)),
		counter:   lockout.NewPuzzleCounter(m.cfg.PuzzleFailureLimit),
		selected:  -1,
		lastSeen:  m.clock.Now(),
	}

	m.mu.Lock()
	w.token = m.random.String(tokenLength, tokenAlphabet)
	if _, taken := m.windows[w.token]; taken || w.token == "" {
		w.token = uuid.NewString()
	}
	m.windows[w.token] = w
	m.mu.Unlock()

	m.logger.Debug("login window opened", slog.String("window", w.token))
	return m.view(w), nil
}

// View returns the current state of a window
func (m *Manager) View(token string) (View, error) {
	w, unlock, err := m.acquire(token)
	if err != nil {
		return View{}, err
	}
	defer unlock()
	return m.view(w), nil
}

// Tile returns the tile displayed at position pos
func (m *Manager) Tile(token string, pos int) (model.Tile, error) {
	w, unlock, err := m.acquire(token)
	if err != nil {
		return model.Tile{}, err
	}
	defer unlock()
	return w.challenge.TileAt(pos)
}

// Select applies click semantics: the first pick marks a tile, a second pick
// of another tile swaps the two, picking the marked tile again unmarks it
func (m *Manager) Select(token string, pos int) (SelectResult, error) {
	if !model.ValidPosition(pos) {
		return SelectResult{}, model.ErrInvalidPosition
	}

	w, unlock, err := m.acquire(token)
	if err != nil {
		return SelectResult{}, err
	}
	defer unlock()

	swapped := false
	switch w.selected {
	case -1:
		w.selected = pos
	case pos:
		w.selected = -1
	default:
		if err := m.engine.Swap(w.challenge, w.selected, pos); err != nil {
			return SelectResult{}, err
		}
		w.selected = -1
		swapped = true
	}

	return SelectResult{View: m.view(w), Swapped: swapped}, nil
}

// Swap exchanges two positions directly
func (m *Manager) Swap(token string, a, b int) (View, error) {
	w, unlock, err := m.acquire(token)
	if err != nil {
		return View{}, err
	}
	defer unlock()

	if err := m.engine.Swap(w.challenge, a, b); err != nil {
		return View{}, err
	}
	w.selected = -1
	return m.view(w), nil
}

// Reshuffle rescrambles the puzzle. The result may happen to be solved.
func (m *Manager) Reshuffle(token string) (View, error) {
	w, unlock, err := m.acquire(token)
	if err != nil {
		return View{}, err
	}
	defer unlock()

	m.engine.Reshuffle(w.challenge)
	w.selected = -1
	return m.view(w), nil
}

// Submit runs a login attempt against the window's current puzzle. Any failed
// login gets a new puzzle, whether or not the username exists; success closes
// the window.
func (m *Manager) Submit(ctx context.Context, token, username, password string) (auth.Result, error) {
	return m.SubmitWith(ctx, token, username, password, nil)
}

// SubmitWith is Submit with a hook run for an authenticated account before the
// window closes. If the hook fails the window stays open with its solved
// puzzle, so the same login can be submitted again.
func (m *Manager) SubmitWith(ctx context.Context, token, username, password string, onAuthenticated func(*model.Account) error) (auth.Result, error) {
	w, unlock, err := m.acquire(token)
	if err != nil {
		return auth.Result{}, err
	}
	defer unlock()

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return auth.Result{}, model.ErrMissingCredentials
	}

	if w.counter.SoftLocked() {
		return auth.Result{}, ErrCaptchaSoftLocked
	}

	result, err := m.coordinator.Attempt(ctx, auth.Attempt{
		Username:  username,
		Password:  password,
		Challenge: w.challenge,
		Puzzle:    w.counter,
	})
	if err != nil {
		return auth.Result{}, err
	}

	switch result.Outcome {
	case auth.Authenticated:
		if onAuthenticated != nil {
			if err := onAuthenticated(result.Account); err != nil {
				m.logger.Error("login succeeded but could not be completed",
					slog.String("window", w.token),
					slog.String("account_id", string(result.Account.ID)),
					slog.String("error", err.Error()),
				)
				return auth.Result{}, err
			}
		}
		m.remove(w.token)
		m.logger.Debug("login window closed", slog.String("window", w.token), slog.String("reason", "authenticated"))
	case auth.PuzzleUnsolved:
		m.regenerate(w)
		if w.counter.SoftLocked() {
			m.logger.Warn("login window soft locked", slog.String("window", w.token))
		}
	case auth.UnknownCredentials:
		m.regenerate(w)
	}

	return result, nil
}

// Close discards a window
func (m *Manager) Close(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[token]; !ok {
		return model.ErrWindowNotFound
	}
	delete(m.windows, token)
	return nil
}

// CleanExpired removes windows idle longer than the TTL (call periodically)
func (m *Manager) CleanExpired() int {
	now := m.clock.Now()

	// Window locks are always taken before the map lock, so check expiry on a snapshot
	m.mu.RLock()
	open := make(map[string]*window, len(m.windows))
	for token, w := range m.windows {
		open[token] = w
	}
	m.mu.RUnlock()

	var stale []string
	for token, w := range open {
		w.mu.Lock()
		if m.expired(w, now) {
			stale = append(stale, token)
		}
		w.mu.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, token := range stale {
		if m.windows[token] == open[token] {
			delete(m.windows, token)
			removed++
		}
	}
	return removed
}

// Count returns the number of open windows
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows)
}

// acquire finds a live window, locks it and refreshes its idle timer
func (m *Manager) acquire(token string) (*window, func(), error) {
	m.mu.RLock()
	w, ok := m.windows[token]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, model.ErrWindowNotFound
	}

	w.mu.Lock()
	now := m.clock.Now()
	if m.expired(w, now) {
		w.mu.Unlock()
		m.remove(token)
		return nil, nil, model.ErrWindowNotFound
	}
	w.lastSeen = now
	return w, w.mu.Unlock, nil
}

func (m *Manager) remove(token string) {
	m.mu.Lock()
	delete(m.windows, token)
	m.mu.Unlock()
}

func (m *Manager) expired(w *window, now time.Time) bool {
	return now.Sub(w.lastSeen) > m.cfg.WindowTTL
}

func (m *Manager) regenerate(w *window) {
	w.challenge = m.engine.Generate(w.challenge.Tiles)
	w.selected = -1
}

func (m *Manager) view(w *window) View {
	v := View{
		Token:          w.token,
		Order:          w.challenge.Order(),
		PuzzleFailures: w.counter.Failures(),
		SoftLocked:     w.counter.SoftLocked(),
		ExpiresAt:      w.lastSeen.Add(m.cfg.WindowTTL),
	}
	if w.selected >= 0 {
		sel := w.selected
		v.Selected = &sel
	}
	return v
}
