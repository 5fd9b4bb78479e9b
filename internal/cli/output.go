package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Window:
		o.printWindow(v)
	case LoginResult:
		o.printLoginResult(v)
	case Account:
		o.printAccount(v)
	case []Account:
		o.printAccounts(v)
	case Me:
		o.printMe(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Window response type (matches API)
type Window struct {
	Token          string    `json:"token"`
	Order          [4]int    `json:"order"`
	Selected       *int      `json:"selected"`
	PuzzleFailures int       `json:"puzzle_failures"`
	SoftLocked     bool      `json:"soft_locked"`
	ExpiresAt      time.Time `json:"expires_at"`
	Swapped        bool      `json:"swapped,omitempty"`
}

// Account response type
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Role           string    `json:"role"`
	FailedAttempts int       `json:"failed_attempts"`
	Blocked        bool      `json:"blocked"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResult response type
type LoginResult struct {
	Outcome       string     `json:"outcome"`
	Message       string     `json:"message"`
	Account       *Account   `json:"account,omitempty"`
	Pass          string     `json:"pass,omitempty"`
	PassExpiresAt *time.Time `json:"pass_expires_at,omitempty"`
	Route         string     `json:"route,omitempty"`
	Window        *Window    `json:"window,omitempty"`
}

// Me response type
type Me struct {
	Account   Account   `json:"account"`
	Route     string    `json:"route"`
	ExpiresAt time.Time `json:"pass_expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Windows int    `json:"windows"`
}

// printWindow draws the 2x2 grid as the tile numbers shown at each position.
// A pending selection is bracketed with asterisks.
func (o *Output) printWindow(w Window) {
	fmt.Fprintf(o.w, "Window: %s\n", w.Token)
	for row := 0; row < 2; row++ {
		cells := make([]string, 2)
		for col := 0; col < 2; col++ {
			pos := row*2 + col
			label := fmt.Sprintf(" %d ", w.Order[pos]+1)
			if w.Selected != nil && *w.Selected == pos {
				label = fmt.Sprintf("*%d*", w.Order[pos]+1)
			}
			cells[col] = fmt.Sprintf("[%s]", label)
		}
		fmt.Fprintf(o.w, "  %s\n", strings.Join(cells, ""))
	}
	if w.Swapped {
		fmt.Fprintln(o.w, "Tiles swapped")
	}
	fmt.Fprintf(o.w, "Puzzle failures: %d\n", w.PuzzleFailures)
	if w.SoftLocked {
		fmt.Fprintln(o.w, "Window locked: open a new one")
	}
}

func (o *Output) printLoginResult(r LoginResult) {
	fmt.Fprintln(o.w, r.Message)
	if r.Account != nil {
		fmt.Fprintf(o.w, "Role: %s\n", r.Route)
	}
	if r.Window != nil {
		o.printWindow(*r.Window)
	}
}

func (o *Output) printAccount(a Account) {
	status := "active"
	if a.Blocked {
		status = "blocked"
	}
	fmt.Fprintf(o.w, "Account: %s (%s)\n", a.Username, a.ID)
	fmt.Fprintf(o.w, "Name: %s\n", a.FullName)
	fmt.Fprintf(o.w, "Role: %s\n", a.Role)
	fmt.Fprintf(o.w, "Status: %s, failed attempts: %d\n", status, a.FailedAttempts)
}

func (o *Output) printAccounts(accounts []Account) {
	fmt.Fprintf(o.w, "Accounts (%d):\n", len(accounts))
	for _, a := range accounts {
		status := ""
		if a.Blocked {
			status = " [blocked]"
		}
		fmt.Fprintf(o.w, "  - %-8s %s (%s) %s, attempts %d%s\n", a.Role, a.Username, a.ID, a.FullName, a.FailedAttempts, status)
	}
}

func (o *Output) printMe(m Me) {
	o.printAccount(m.Account)
	fmt.Fprintf(o.w, "Pass expires: %s\n", m.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	fmt.Fprintf(o.w, "Open windows: %d\n", h.Windows)
}
