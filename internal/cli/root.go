package cli

import (
	"context"
	"io"
	"tokend/internal/structures"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// EngineFactory opens the stores and builds an engine for a one-shot command.
// The returned func releases everything it opened.
type EngineFactory func(flags *structures.CliFlags) (interfaces.EngineInterface, func(), error)

// ServeFunc runs the daemon until it is told to stop.
type ServeFunc func(flags *structures.CliFlags) error

// NewRootCommand creates the tokend command tree.
func NewRootCommand(newEngine EngineFactory, serve ServeFunc) *cobra.Command {
	flags := &structures.CliFlags{}

	cmd := &cobra.Command{
		Use:           "tokend",
		Short:         "Daily posting token delivery daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "configs/tokend.yml", "path to the config file")
	cmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "debug logging")

	cmd.AddCommand(newServeCommand(flags, serve))
	cmd.AddCommand(newUserCommand(flags, newEngine, "status", "Evaluate and print today's token status",
		func(ctx context.Context, e interfaces.EngineInterface, user string, _ []string) (any, error) {
			return e.EvaluateStatus(ctx, user)
		}))
	cmd.AddCommand(newUserCommand(flags, newEngine, "consume", "Spend today's token",
		func(ctx context.Context, e interfaces.EngineInterface, user string, _ []string) (any, error) {
			return e.ConsumeToken(ctx, user)
		}))
	cmd.AddCommand(newUserCommand(flags, newEngine, "reconcile", "Adopt the remote schedule for today",
		func(ctx context.Context, e interfaces.EngineInterface, user string, _ []string) (any, error) {
			return e.ReconcileWithRemote(ctx, user)
		}))
	cmd.AddCommand(newUserCommand(flags, newEngine, "countdown", "Print the time left until arrival",
		func(ctx context.Context, e interfaces.EngineInterface, user string, _ []string) (any, error) {
			return e.TimeUntilArrival(ctx, user)
		}))
	cmd.AddCommand(newSetArrivalCommand(flags, newEngine))

	return cmd
}

func newServeCommand(flags *structures.CliFlags, serve ServeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(flags)
		},
	}
}

type userAction func(ctx context.Context, e interfaces.EngineInterface, user string, args []string) (any, error)

func newUserCommand(flags *structures.CliFlags, newEngine EngineFactory, use, short string, action userAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAction(cmd, flags, newEngine, args[0], args[1:], action)
		},
	}
}

func newSetArrivalCommand(flags *structures.CliFlags, newEngine EngineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "set-arrival <user> <HH:MM>",
		Short: "Write today's arrival time to the remote store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAction(cmd, flags, newEngine, args[0], args[1:],
				func(ctx context.Context, e interfaces.EngineInterface, user string, rest []string) (any, error) {
					return e.SetRemoteArrival(ctx, user, rest[0])
				})
		},
	}
}

func runUserAction(cmd *cobra.Command, flags *structures.CliFlags, newEngine EngineFactory, user string, rest []string, action userAction) error {
	engine, cleanup, err := newEngine(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := action(cmd.Context(), engine, user, rest)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
