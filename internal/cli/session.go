package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Game session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionRestartCmd())
	cmd.AddCommand(newSessionMoveCmd())
	cmd.AddCommand(newSessionActionCmd("shuffle", "Regenerate the current round's layout"))
	cmd.AddCommand(newSessionActionCmd("menu", "Abandon the game and return to the menu"))
	cmd.AddCommand(newSessionDifficultyCmd())
	cmd.AddCommand(newSessionResultCmd())
	cmd.AddCommand(newSessionAutoplayCmd())

	return cmd
}

func sessionPath(id string, parts ...string) string {
	path := "/api/v1/sessions/" + id
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post("/api/v1/sessions", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []SessionSummary

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get(sessionPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionStartCmd() *cobra.Command {
	var mode string
	var round int

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a campaign or a practice round",
		Long: `Start a game in the session.

A campaign plays every round of the round table in order. Practice plays the
single round selected with --round (1-based).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if round < 1 {
				return fmt.Errorf("--round must be at least 1")
			}

			req := map[string]any{
				"mode":  mode,
				"round": round - 1,
			}
			var result Session

			if err := client.Post(sessionPath(args[0], "start"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "campaign", "Game mode: campaign, practice")
	cmd.Flags().IntVar(&round, "round", 1, "Round to practice (1-based)")

	return cmd
}

func newSessionRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <id>",
		Short: "Start the same game again from the beginning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(sessionPath(args[0], "restart"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// parseDirection turns a direction name into a unit step
func parseDirection(s string) (dx, dy int, err error) {
	switch strings.ToLower(s) {
	case "up", "w", "k", "north":
		return 0, -1, nil
	case "down", "s", "j", "south":
		return 0, 1, nil
	case "left", "a", "h", "west":
		return -1, 0, nil
	case "right", "d", "l", "east":
		return 1, 0, nil
	}
	return 0, 0, fmt.Errorf("unknown direction %q (use up, down, left or right)", s)
}

func newSessionMoveCmd() *cobra.Command {
	var dx, dy int

	cmd := &cobra.Command{
		Use:   "move <id> [direction]",
		Short: "Take a single step",
		Long: `Move the player one cell.

The direction is one of up, down, left or right (or w, a, s, d and h, j, k, l). The raw step
can be given with --dx and --dy instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				var err error
				if dx, dy, err = parseDirection(args[1]); err != nil {
					return err
				}
			} else if !cmd.Flags().Changed("dx") && !cmd.Flags().Changed("dy") {
				return fmt.Errorf("a direction or --dx/--dy is required")
			}

			req := map[string]int{"dx": dx, "dy": dy}
			var result MoveResult

			if err := client.Post(sessionPath(args[0], "move"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&dx, "dx", 0, "Horizontal step")
	cmd.Flags().IntVar(&dy, "dy", 0, "Vertical step")

	return cmd
}

// newSessionActionCmd builds a command that posts to a bodiless session action
func newSessionActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(sessionPath(args[0], action), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionDifficultyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "difficulty <id> <easy|normal|hard>",
		Short: "Change the hazard density",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"difficulty": strings.ToLower(args[1])}
			var result Session

			if err := client.Patch(sessionPath(args[0], "difficulty"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <id>",
		Short: "Show the session's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Result

			if err := client.Get(sessionPath(args[0], "result"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionAutoplayCmd() *cobra.Command {
	var strategy string
	var maxMoves int

	cmd := &cobra.Command{
		Use:   "autoplay <id>",
		Short: "Let a bot play the current round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxMoves < 0 {
				return fmt.Errorf("--max-moves must not be negative")
			}

			req := map[string]any{"strategy": strategy}
			if maxMoves > 0 {
				req["max_moves"] = maxMoves
			}
			var result AutoplayResult

			if err := client.Post(sessionPath(args[0], "autoplay"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "explorer", "Bot strategy: random, explorer")
	cmd.Flags().IntVar(&maxMoves, "max-moves", 0, "Stop after this many moves (0 uses the server default)")

	return cmd
}
