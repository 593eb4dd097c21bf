package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/zoro11031/hosts-editor/internal/hostsfile"
)

// ErrExit is returned when the user chooses to exit the menu
var ErrExit = errors.New("exit")

// Menu provides an interactive menu interface
type Menu struct {
	ctx *AppContext
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	changed *hostsfile.Event
}

// NewMenu creates a new Menu instance
func NewMenu(ctx *AppContext) *Menu {
	return newMenu(ctx, os.Stdin, os.Stdout)
}

func newMenu(ctx *AppContext, in io.Reader, out io.Writer) *Menu {
	return &Menu{ctx: ctx, in: bufio.NewReader(in), out: out}
}

// clearScreen clears the terminal screen using ANSI escape codes
func (m *Menu) clearScreen() {
	// \033[2J clears screen, \033[H moves cursor to home
	fmt.Fprint(m.out, "\033[2J\033[H")
}

func (m *Menu) pause() {
	fmt.Fprintln(m.out)
	m.ctx.UI.Info("Press Enter to return to menu...")
	_, _ = m.in.ReadString('\n')
}

// Show displays the main menu and handles user input until exit.
func (m *Menu) Show(ctx context.Context) error {
	stop := m.watchChanges(ctx)
	defer stop()

	for {
		m.clearScreen()
		m.displayMenu()

		choice, err := m.ctx.UI.PromptInput("Enter your choice", "")
		if err != nil {
			return err
		}

		choice = strings.ToUpper(strings.TrimSpace(choice))

		if err := m.handleChoice(ctx, choice); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			m.ctx.UI.ShowError("Action failed", err.Error())
			m.pause()
		}
	}
}

// watchChanges loads the current content so later notifications are
// compared against it, then follows change events for the banner. The
// returned func ends the subscription.
func (m *Menu) watchChanges(ctx context.Context) func() {
	if res := m.ctx.Engine.Read(ctx); !res.Success {
		m.ctx.Logger.Warn("initial read failed", zap.String("error", res.Error))
	}
	sub := m.ctx.Engine.Subscribe()
	go m.trackChanges(sub)
	return sub.Close
}

// trackChanges remembers the latest external change for the banner.
func (m *Menu) trackChanges(sub *hostsfile.Subscription) {
	for ev := range sub.C {
		ev := ev
		m.mu.Lock()
		m.changed = &ev
		m.mu.Unlock()
	}
}

func (m *Menu) pendingChange() *hostsfile.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed
}

func (m *Menu) acknowledgeChange() {
	m.mu.Lock()
	m.changed = nil
	m.mu.Unlock()
}

// displayMenu displays the main menu
func (m *Menu) displayMenu() {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	border := strings.Repeat("=", 70)
	cyan.Fprintln(m.out, border)
	cyan.Fprintln(m.out, "  Hosts File Editor")
	cyan.Fprintln(m.out, border)
	fmt.Fprintln(m.out)

	st := m.ctx.Engine.Status()
	m.ctx.UI.Infof("Managing %s", st.Path)
	if st.Watching {
		m.ctx.UI.Info("Watching for external changes")
	}
	if ev := m.pendingChange(); ev != nil {
		m.ctx.UI.Warningf("File changed on disk at %s (hash %s). Choose [V] to see it.",
			ev.Timestamp.Local().Format(time.TimeOnly), ev.Hash)
	}
	fmt.Fprintln(m.out)

	options := []struct {
		key, label string
	}{
		{"V", "View hosts file"},
		{"E", "Edit in $EDITOR"},
		{"I", "Import from file"},
		{"", ""},
		{"B", "Back up hosts file"},
		{"L", "List backups"},
		{"R", "Restore a backup"},
		{"", ""},
		{"S", "Show status"},
		{"C", "Clear cache"},
		{"M", "Reset statistics"},
		{"W", "Reload watcher"},
		{"D", "Open documentation"},
		{"H", "Help"},
		{"X", "Exit"},
	}

	cyan.Fprintln(m.out, strings.Repeat("-", 70))
	for _, opt := range options {
		if opt.key == "" {
			fmt.Fprintln(m.out)
			continue
		}
		bold.Fprintf(m.out, "  [%s] ", opt.key)
		fmt.Fprintln(m.out, opt.label)
	}
	cyan.Fprintln(m.out, strings.Repeat("-", 70))
	fmt.Fprintln(m.out)
}

// handleChoice processes the user's menu choice
func (m *Menu) handleChoice(ctx context.Context, choice string) error {
	switch choice {
	case "V":
		return m.view(ctx)
	case "E":
		return m.run(func() error { return m.ctx.EditHosts(ctx) })
	case "I":
		return m.run(func() error { return m.ctx.ImportFile(ctx, "") })
	case "B":
		return m.run(func() error { return m.ctx.BackupHosts(ctx) })
	case "L":
		return m.run(func() error {
			_, err := m.ctx.ListBackups()
			return err
		})
	case "R":
		return m.run(func() error { return m.ctx.RestoreBackup(ctx, "", false) })
	case "S":
		return m.run(func() error { return m.ctx.ShowStatus(false) })
	case "C":
		return m.run(m.ctx.ClearCache)
	case "M":
		return m.run(m.ctx.ResetStats)
	case "W":
		return m.run(m.ctx.ReloadWatcher)
	case "D":
		return m.run(func() error { return m.ctx.OpenDocs(ctx) })
	case "H":
		return m.showHelp()
	case "X":
		return ErrExit
	default:
		return fmt.Errorf("invalid choice: %s", choice)
	}
}

// run clears the screen, runs fn and waits for Enter on success.
func (m *Menu) run(fn func() error) error {
	m.clearScreen()
	if err := fn(); err != nil {
		return err
	}
	m.pause()
	return nil
}

func (m *Menu) view(ctx context.Context) error {
	return m.run(func() error {
		if err := m.ctx.ShowHosts(ctx, false); err != nil {
			return err
		}
		m.acknowledgeChange()
		return nil
	})
}

// showHelp displays help information
func (m *Menu) showHelp() error {
	m.clearScreen()
	m.ctx.UI.Header("Help")

	help := `
Hosts File Editor - Help

This tool views and edits the system hosts file, keeps an in-memory copy
for fast reads and notices when another program changes the file.

MENU OPTIONS:

  [V] View      Shows the file. The source line tells whether the content
                came from disk or from the cache.
  [E] Edit      Opens the file in $VISUAL or $EDITOR and saves on confirm.
  [I] Import    Replaces the file with the content of another file.
  [B] Backup    Copies the file on disk into the backup directory.
  [R] Restore   Writes a backup back to the hosts file.
  [C] Clear     Drops the cache so the next view reads the disk.
  [M] Reset     Clears the timing statistics shown by [S].
  [W] Reload    Re-creates the change watcher.

PERMISSIONS:

  Writing the hosts file needs root on Linux and macOS, or an elevated
  prompt on Windows. Reading and backups work without it.

COMMAND-LINE MODE:

    hosts-editor show [--raw]          # Print the hosts file
    hosts-editor write --from FILE     # Replace it (or pipe to stdin)
    hosts-editor edit                  # Edit in $EDITOR
    hosts-editor backup                # Create a backup
    hosts-editor backups               # List backups
    hosts-editor restore NAME          # Restore a backup
    hosts-editor watch                 # Stream external changes
    hosts-editor status [--json]       # Engine and metrics status
    hosts-editor config init           # Write a default config file

For more information, see the project README.
`

	fmt.Fprintln(m.out, help)
	m.pause()
	return nil
}
