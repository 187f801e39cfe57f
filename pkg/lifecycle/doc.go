// Package lifecycle supervises long-running tasks such as spool following.
//
// A Supervisor runs a task under a small state machine and restarts it with
// exponential backoff when it fails:
//
//	sup := lifecycle.NewSupervisor(logger,
//	    lifecycle.WithBackoff(time.Second, time.Minute),
//	    lifecycle.WithMaxRestarts(10),
//	)
//	err := sup.Run(ctx, "follow", func(ctx context.Context) error {
//	    return runner.RunFollow(ctx, dir, repo, debounce)
//	})
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting, Stopped
//
// # Version
//
// See version.go for version constants that can be used programmatically.
package lifecycle
