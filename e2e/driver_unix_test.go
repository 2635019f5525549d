//go:build e2e && unix

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

// binPath is set by TestMain to the freshly built binary
var binPath = "ledgergrip_e2e"

const (
	screenLimit = 1 << 20
	pollEvery   = 25 * time.Millisecond
	seeTimeout  = 3 * time.Second
)

// Keys as the terminal sends them
const (
	KeyEnter  = "\r"
	KeyEsc    = "\x1b"
	KeyTab    = "\t"
	KeyCtrlC  = "\x03"
	KeyDown   = "j"
	KeyUp     = "k"
	KeyBottom = "G"
	KeySearch = "/"
	KeyHelp   = "?"
	KeyQuit   = "q"
)

// ansiRe matches the escape sequences a bubbletea program writes: CSI,
// OSC, charset and keypad switches, plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

func plain(s string) string { return ansiRe.ReplaceAllString(s, "") }

// screen accumulates everything the program wrote, keeping the most
// recent screenLimit bytes
type screen struct {
	mu  sync.Mutex
	out []byte
}

func (s *screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, p...)
	if over := len(s.out) - screenLimit; over > 0 {
		s.out = append(s.out[:0], s.out[over:]...)
	}
	return len(p), nil
}

func (s *screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.out)
}

// terminal runs ledgergrip in a pseudo terminal of 40x120 cells
type terminal struct {
	t       *testing.T
	cmd     *exec.Cmd
	tty     *os.File
	screen  screen
	exited  chan struct{}
	exitErr error
}

// startTerminal launches the binary in dir. The process is killed when
// the test ends.
func startTerminal(t *testing.T, dir string, args ...string) (*terminal, error) {
	term := &terminal{t: t, exited: make(chan struct{})}

	term.cmd = exec.Command(binPath, args...)
	term.cmd.Dir = dir
	term.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+dir,
	)

	tty, err := pty.StartWithSize(term.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return nil, fmt.Errorf("start %s in pty: %w", binPath, err)
	}
	term.tty = tty

	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := tty.Read(buf)
			if n > 0 {
				_, _ = term.screen.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	go func() {
		term.exitErr = term.cmd.Wait()
		close(term.exited)
	}()

	t.Cleanup(term.close)
	return term, nil
}

// Type writes keys to the program
func (term *terminal) Type(keys string) {
	term.t.Helper()
	if _, err := term.tty.Write([]byte(keys)); err != nil {
		term.t.Logf("write %q: %v", keys, err)
	}
}

func (term *terminal) Down()      { term.Type(KeyDown) }
func (term *terminal) SwitchTab() { term.Type(KeyTab) }
func (term *terminal) Quit()      { term.Type(KeyQuit) }
func (term *terminal) Interrupt() { term.Type(KeyCtrlC) }

// Search opens the search prompt, types query and submits it
func (term *terminal) Search(query string) { term.Type(KeySearch + query + KeyEnter) }

// ClearSearch sends esc, which clears the query in normal mode
func (term *terminal) ClearSearch() { term.Type(KeyEsc) }

// Raw returns the output so far, escape sequences included
func (term *terminal) Raw() string { return term.screen.String() }

// Plain returns the output so far without escape sequences
func (term *terminal) Plain() string { return plain(term.Raw()) }

// Eventually polls pred against the raw output until it holds or timeout
// passes
func (term *terminal) Eventually(pred func(raw string) bool, timeout time.Duration) bool {
	term.t.Helper()
	deadline := time.Now().Add(timeout)
	for !pred(term.Raw()) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollEvery)
	}
	return true
}

// Expect is Eventually with an error carrying the tail of the output
func (term *terminal) Expect(pred func(raw string) bool, timeout time.Duration, what string) error {
	term.t.Helper()
	if term.Eventually(pred, timeout) {
		return nil
	}
	tail := term.Plain()
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	return fmt.Errorf("%s\n--- tail ---\n%s", what, tail)
}

// SeeWithin waits for text in the plain output
func (term *terminal) SeeWithin(text string, timeout time.Duration) bool {
	term.t.Helper()
	return term.Eventually(func(raw string) bool { return strings.Contains(plain(raw), text) }, timeout)
}

// See waits a few seconds for text in the plain output
func (term *terminal) See(text string) bool {
	term.t.Helper()
	return term.SeeWithin(text, seeTimeout)
}

// Ready waits for the first frame showing both list tabs
func (term *terminal) Ready() bool {
	term.t.Helper()
	return term.SeeWithin("Customers", 5*time.Second) && term.SeeWithin("Invoices", time.Second)
}

// WaitExit waits for the process to end. It reports whether it did and
// with which exit error.
func (term *terminal) WaitExit(timeout time.Duration) (bool, error) {
	select {
	case <-term.exited:
		return true, term.exitErr
	case <-time.After(timeout):
		return false, nil
	}
}

// saveTail writes the last n bytes of plain output next to the test's
// temp files
func (term *terminal) saveTail(name string, n int) {
	s := term.Plain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(term.t.TempDir(), name+".txt")
	if err := os.WriteFile(p, []byte(s), 0644); err != nil {
		term.t.Logf("save tail: %v", err)
		return
	}
	term.t.Logf("saved output tail to %s", p)
}

func (term *terminal) close() {
	// closing the pty hangs the program up first
	_ = term.tty.Close()
	select {
	case <-term.exited:
		return
	case <-time.After(time.Second):
	}
	if err := term.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		term.t.Logf("kill: %v", err)
	}
	<-term.exited
}
