package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/identity"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/janitor"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/unlock"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/color"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/config"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/logging"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/webhook"
)

var (
	unlockAll     bool
	unlockForce   bool
	janitorListen string
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "Manage task locks",
}

var locksAcquireCmd = &cobra.Command{
	Use:   "acquire <issue>",
	Short: "Claim an issue for processing",
	Long: `Claim an issue for processing.

Acquire is non-blocking: if another worker holds the issue the command
fails fast and reports the holder, including whether its lock is stale.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue := parseIssueArg(args[0])
		state, cfg := requireState()
		mgr := newManager(state, cfg)

		id, err := identity.Current(cfg.WorkerID, cfg.RepoName)
		if err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}

		res, err := mgr.Acquire(issue, id)
		if err != nil {
			fmtErr("acquire lock: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(res)
		}
		if !res.Acquired {
			if !jsonOutput {
				holder := res.Holder
				stateWord := "active"
				if holder.Classification.IsStale {
					stateWord = "stale"
				}
				fmtErr("issue #%d is locked by %s session %s on %s (use 'chadgi locks unlock %d' to reclaim)",
					issue, stateWord, holder.Lock.SessionID, holder.Lock.Hostname, issue)
			}
			os.Exit(1)
		}
		if !jsonOutput {
			fmt.Printf("Acquired lock on issue %s\n", color.IssueRef(fmt.Sprintf("#%d", issue)))
			fmt.Printf("  Session: %s\n", color.Session(res.Lock.SessionID))
		}
	},
}

var locksRenewCmd = &cobra.Command{
	Use:   "renew <issue>",
	Short: "Heartbeat a held lock",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue := parseIssueArg(args[0])
		state, cfg := requireState()
		mgr := newManager(state, cfg)

		rec, err := mgr.Renew(issue)
		if err != nil {
			if errors.Is(err, errclass.ErrLockLost) {
				fmtErr("lock on issue #%d was lost: stop processing it", issue)
			} else {
				fmtErr("renew lock: %v", err)
			}
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(rec)
		} else {
			fmt.Printf("Heartbeat recorded for issue #%d at %s\n",
				issue, rec.LastHeartbeat.Format(time.RFC3339))
		}
	},
}

var locksReleaseCmd = &cobra.Command{
	Use:   "release <issue>",
	Short: "Release a held lock after processing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue := parseIssueArg(args[0])
		state, cfg := requireState()
		mgr := newManager(state, cfg)

		removed, err := mgr.Release(issue)
		if err != nil {
			fmtErr("release lock: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]any{"issue": issue, "released": removed})
			return
		}
		if removed {
			fmt.Printf("Released lock on issue #%d\n", issue)
		} else {
			fmt.Printf("Issue #%d was not locked\n", issue)
		}
	},
}

var locksHoldCmd = &cobra.Command{
	Use:   "hold <issue>",
	Short: "Claim an issue and heartbeat it until interrupted",
	Long: `Claim an issue and heartbeat it until interrupted.

Intended to wrap an external processing step: hold the lock in one shell,
do the work, then interrupt to release. Exits non-zero if the lock is
forcibly released while held.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue := parseIssueArg(args[0])
		state, cfg := requireState()
		mgr := newManager(state, cfg)

		id, err := identity.Current(cfg.WorkerID, cfg.RepoName)
		if err != nil {
			fmtErr("%v", err)
			os.Exit(1)
		}
		res, err := mgr.Acquire(issue, id)
		if err != nil {
			fmtErr("acquire lock: %v", err)
			os.Exit(1)
		}
		if !res.Acquired {
			fmtErr("issue #%d is already locked by session %s", issue, res.Holder.Lock.SessionID)
			os.Exit(1)
		}

		interval := time.Duration(cfg.Lock.HeartbeatIntervalSeconds) * time.Second
		if !jsonOutput {
			fmt.Printf("Holding lock on issue %s, heartbeating every %s (interrupt to release)\n",
				color.IssueRef(fmt.Sprintf("#%d", issue)), interval)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hb := lock.NewHeartbeater(mgr, issue, interval)
		err = hb.Run(ctx)
		if err != nil {
			// The record vanished underneath us; nothing left to release.
			fmtErr("lock on issue #%d was lost while held: stop processing it", issue)
			os.Exit(1)
		}

		if _, err := mgr.Release(issue); err != nil {
			fmtErr("release lock: %v", err)
			os.Exit(1)
		}
		if !jsonOutput {
			fmt.Printf("Released lock on issue #%d\n", issue)
		}
	},
}

var locksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all task locks with staleness",
	Run: func(cmd *cobra.Command, args []string) {
		state, cfg := requireState()
		svc := unlock.NewService(newManager(state, cfg))

		res, err := svc.Status()
		if err != nil {
			fmtErr("list locks: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(res)
			return
		}
		renderLocks(res.Locks)
		fmt.Println(res.Message)
	},
}

var locksUnlockCmd = &cobra.Command{
	Use:   "unlock [issue]",
	Short: "Release locks, guarding active holders",
	Long: `Release locks, guarding active holders.

With an issue number, releases that lock; an active (non-stale) lock is
only released with --force. With --all, releases stale locks, or every
lock with --force. With no target, lists all locks without mutating.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		state, cfg := requireState()
		mgr := newManager(state, cfg)
		svc := unlock.NewService(mgr)

		var (
			res *unlock.Result
			err error
		)
		switch {
		case len(args) == 1:
			issue := parseIssueArg(args[0])
			res, err = svc.Unlock(issue, unlockForce)
		case unlockAll:
			res, err = svc.UnlockAll(unlockForce)
		default:
			res, err = svc.Status()
		}
		if err != nil {
			fmtErr("unlock: %v", err)
			os.Exit(1)
		}

		notifyForceReleases(cfg, res)

		if jsonOutput {
			outputJSON(res)
		} else {
			if len(res.Locks) > 0 {
				renderLocks(res.Locks)
			}
			if res.Success {
				fmt.Println(res.Message)
			} else {
				fmtErr("%s", res.Message)
			}
		}
		if !res.Success {
			os.Exit(1)
		}
	},
}

var locksCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale locks",
	Long: `Remove stale locks.

Only locks whose heartbeat exceeded the configured timeout are removed;
active locks are never touched. Safe to run at any time, concurrently
with active workers.`,
	Run: func(cmd *cobra.Command, args []string) {
		state, cfg := requireState()
		svc := unlock.NewService(newManager(state, cfg))

		res, err := svc.Cleanup()
		if err != nil {
			fmtErr("cleanup: %v", err)
			os.Exit(1)
		}

		notifyForceReleases(cfg, res)

		if jsonOutput {
			outputJSON(res)
		} else {
			fmt.Println(res.Message)
		}
	},
}

var locksJanitorCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Run the periodic stale-lock sweeper",
	Long: `Run the periodic stale-lock sweeper.

Sweeps stale locks on the configured schedule until interrupted. With
--listen (or janitor.listen in config), serves Prometheus metrics on
/metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		state, cfg := requireState()
		mgr := newManager(state, cfg)

		listen := cfg.Janitor.Listen
		if janitorListen != "" {
			listen = janitorListen
		}

		jan, err := janitor.New(mgr, webhook.NewNotifier(cfg.Webhooks), janitor.Options{
			Schedule: cfg.Janitor.Schedule,
			Listen:   listen,
		})
		if err != nil {
			fmtErr("janitor: %v", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := jan.Run(ctx); err != nil {
			fmtErr("janitor: %v", err)
			os.Exit(1)
		}
	},
}

func parseIssueArg(arg string) int {
	issue, err := strconv.Atoi(arg)
	if err != nil || issue < 0 {
		fmtErr("invalid issue number: %s", arg)
		os.Exit(1)
	}
	return issue
}

// notifyForceReleases fires a webhook when an operator command removed locks.
func notifyForceReleases(cfg *config.Config, res *unlock.Result) {
	if !res.Success || len(res.Released) == 0 {
		return
	}
	event := webhook.EventLockForceReleased
	if res.Action == "cleanup" {
		event = webhook.EventLockCleanup
	}
	webhook.NewNotifier(cfg.Webhooks).Notify(context.Background(), webhook.Event{
		Event:    event,
		Released: res.Released,
		Message:  res.Message,
	})
	logging.Info("operator released locks", map[string]any{
		"action":   res.Action,
		"released": res.Released,
	})
}

func renderLocks(statuses []model.LockStatus) {
	if len(statuses) == 0 {
		return
	}
	fmt.Printf("%-8s %-8s %-38s %-12s %-14s %-12s\n",
		"ISSUE", "STATE", "SESSION", "WORKER", "LOCKED", "HEARTBEAT")
	for _, st := range statuses {
		stateWord := string(st.Classification.State())
		if color.Enabled() {
			if st.Classification.IsStale {
				stateWord = color.Warning(stateWord)
			} else {
				stateWord = color.Success(stateWord)
			}
		}
		fmt.Printf("%-8s %-8s %-38s %-12s %-14s %-12s\n",
			fmt.Sprintf("#%d", st.Lock.IssueNumber),
			stateWord,
			st.Lock.SessionID,
			st.Lock.WorkerID,
			secondsWord(st.Classification.LockedSeconds),
			secondsWord(st.Classification.HeartbeatAgeSeconds)+" ago",
		)
	}
}

func secondsWord(sec int64) string {
	return (time.Duration(sec) * time.Second).String()
}

func init() {
	locksUnlockCmd.Flags().BoolVar(&unlockAll, "all", false, "target every lock")
	locksUnlockCmd.Flags().BoolVar(&unlockForce, "force", false, "release active locks too")
	locksJanitorCmd.Flags().StringVar(&janitorListen, "listen", "", "metrics listen address")

	locksCmd.AddCommand(locksAcquireCmd)
	locksCmd.AddCommand(locksRenewCmd)
	locksCmd.AddCommand(locksReleaseCmd)
	locksCmd.AddCommand(locksHoldCmd)
	locksCmd.AddCommand(locksListCmd)
	locksCmd.AddCommand(locksUnlockCmd)
	locksCmd.AddCommand(locksCleanupCmd)
	locksCmd.AddCommand(locksJanitorCmd)
	rootCmd.AddCommand(locksCmd)
}
