package cli

import (
	"fmt"
	"os"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/statedir"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/color"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/config"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/logging"
)

// requireState discovers the state directory from CWD and returns it with
// its configuration, or exits with error.
func requireState() (*statedir.StateDir, *config.Config) {
	cwd, err := os.Getwd()
	if err != nil {
		fmtErr("cannot get current directory: %v", err)
		os.Exit(1)
	}
	state, err := statedir.Discover(cwd)
	if err != nil {
		fmtErr("not a ChadGI state directory: %v (run 'chadgi init' first)", err)
		os.Exit(1)
	}

	cfg, err := config.Load(state.Root)
	if err != nil {
		fmtErr("load config: %v", err)
		os.Exit(1)
	}
	applyLogging(cfg)

	return state, cfg
}

// newManager builds the lock manager for a discovered state directory.
func newManager(state *statedir.StateDir, cfg *config.Config) *lock.Manager {
	return lock.NewManager(state.LockDir(), cfg.Policy())
}

func applyLogging(cfg *config.Config) {
	switch cfg.Logging.Level {
	case "debug":
		logging.SetGlobal(logging.NewLogger(logging.LevelDebug))
	case "warn":
		logging.SetGlobal(logging.NewLogger(logging.LevelWarn))
	case "error":
		logging.SetGlobal(logging.NewLogger(logging.LevelError))
	}
}

func fmtErr(format string, args ...any) {
	// Colorize the error prefix
	prefix := "chadgi: "
	if color.Enabled() {
		prefix = color.Error("chadgi:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
