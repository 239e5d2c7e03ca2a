package cli

import (
	"github.com/spf13/cobra"
)

func newRoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rounds",
		Short: "Show the campaign round table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoundTable

			if err := client.Get("/api/v1/rounds", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
