package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	passFileName   = "pass"
	windowFileName = "window"
)

// ErrNoWindow is returned when a command needs a login window and none is open
var ErrNoWindow = errors.New("no login window open, run 'schoolgate window open' first")

// Config holds CLI configuration
type Config struct {
	ServerURL string
	// Pass is the role pass sent as a bearer token
	Pass string
	// Home holds the saved pass and window token
	Home    string
	Output  string
	Verbose bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("SCHOOLGATE_SERVER", "http://localhost:8080"),
		Pass:      os.Getenv("SCHOOLGATE_PASS"),
		Home:      getEnvOrDefault("SCHOOLGATE_HOME", defaultHome()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadPass loads the pass from file if not already set
func (c *Config) LoadPass() error {
	if c.Pass != "" {
		return nil
	}
	pass, err := c.read(passFileName)
	if err != nil {
		return err
	}
	c.Pass = pass
	return nil
}

// SavePass saves the pass for later commands
func (c *Config) SavePass(pass string) error {
	c.Pass = pass
	return c.write(passFileName, pass)
}

// ClearPass forgets the saved pass
func (c *Config) ClearPass() error {
	c.Pass = ""
	return c.remove(passFileName)
}

// Window returns the saved window token
func (c *Config) Window() (string, error) {
	token, err := c.read(windowFileName)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoWindow
	}
	return token, nil
}

// SaveWindow remembers the open window token
func (c *Config) SaveWindow(token string) error {
	return c.write(windowFileName, token)
}

// ClearWindow forgets the window token
func (c *Config) ClearWindow() error {
	return c.remove(windowFileName)
}

func (c *Config) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(c.Home, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Config) write(name, value string) error {
	if err := os.MkdirAll(c.Home, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Home, name), []byte(value), 0600)
}

func (c *Config) remove(name string) error {
	err := os.Remove(filepath.Join(c.Home, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".schoolgate"
	}
	return filepath.Join(home, ".schoolgate")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
