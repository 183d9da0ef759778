package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/spf13/cobra"
)

// loadCommand describes one load command.
type loadCommand struct {
	use   string
	short string
	args  cobra.PositionalArgs
	// dispatch starts the action; args are the positional arguments.
	dispatch func(ctx context.Context, s *store.Store, args []string) (*store.Task, error)
	// view picks what to print once the task settles.
	view func(s *store.Store) any
}

func loadCmds(envFile *string) []*cobra.Command {
	threads := func(s *store.Store) any { return s.Snapshot().Threads }

	commands := []loadCommand{
		{
			use:   "latest",
			short: "Load the latest threads",
			args:  cobra.NoArgs,
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				return s.LoadRecentThreads(ctx), nil
			},
			view: threads,
		},
		{
			use:   "hot",
			short: "Load the hot threads",
			args:  cobra.NoArgs,
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				return s.LoadHotThreads(ctx), nil
			},
			view: threads,
		},
		{
			use:   "node <node-id>",
			short: "Load the threads of a node",
			args:  cobra.ExactArgs(1),
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				id, err := parseID("node-id", args[0])
				if err != nil {
					return nil, err
				}
				return s.LoadNodeThreads(ctx, id), nil
			},
			view: threads,
		},
		{
			use:   "user <username>",
			short: "Load the threads of a user",
			args:  cobra.ExactArgs(1),
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				return s.LoadUserThreads(ctx, args[0]), nil
			},
			view: threads,
		},
		{
			use:   "nodes",
			short: "Load the node list, sorted by topic count",
			args:  cobra.NoArgs,
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				return s.LoadNodeList(ctx), nil
			},
			view: func(s *store.Store) any { return s.SortedNodes() },
		},
		{
			use:   "node-detail <node-id>",
			short: "Load the detail of a node",
			args:  cobra.ExactArgs(1),
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				id, err := parseID("node-id", args[0])
				if err != nil {
					return nil, err
				}
				return s.LoadNodeDetail(ctx, id), nil
			},
			view: func(s *store.Store) any { return s.Snapshot().NodeDetail },
		},
		{
			use:   "profile <user-id>",
			short: "Load a user profile",
			args:  cobra.ExactArgs(1),
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				id, err := parseID("user-id", args[0])
				if err != nil {
					return nil, err
				}
				return s.LoadUserProfile(ctx, id), nil
			},
			view: func(s *store.Store) any { return s.Snapshot().UserProfile },
		},
		{
			use:   "discuss <thread-id>",
			short: "Load the discussion of a thread",
			args:  cobra.ExactArgs(1),
			dispatch: func(ctx context.Context, s *store.Store, args []string) (*store.Task, error) {
				id, err := parseID("thread-id", args[0])
				if err != nil {
					return nil, err
				}
				return s.LoadDiscuss(ctx, id), nil
			},
			view: func(s *store.Store) any { return s.Snapshot().Discusses },
		},
	}

	cmds := make([]*cobra.Command, 0, len(commands))
	for _, lc := range commands {
		cmds = append(cmds, lc.command(envFile))
	}
	return cmds
}

func (lc loadCommand) command(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   lc.use,
		Short: lc.short,
		Args:  lc.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*envFile)
			if err != nil {
				return err
			}
			s := a.newStore()
			defer s.Close()

			return runLoad(cmd, s, lc, args)
		},
	}
}

// runLoad dispatches the action, waits for it and prints the view as JSON.
func runLoad(cmd *cobra.Command, s *store.Store, lc loadCommand, args []string) error {
	task, err := lc.dispatch(cmd.Context(), s, args)
	if err != nil {
		return err
	}
	if err := task.Wait(); err != nil {
		return fmt.Errorf("failed to load %s: %w", task.Field(), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(lc.view(s))
}

func parseID(name, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, raw)
	}
	return id, nil
}
