package main

import (
	"fmt"

	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/usecase/commands"

	"github.com/spf13/cobra"
)

func newSweepOverdueCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark confirmed reservations past their end date as overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reservations commands.ReservationCommands
				clk          clock.Clock
			)
			stop, err := startCore(cmd.Context(), &reservations, &clk)
			if err != nil {
				return err
			}
			defer stop()

			res, err := reservations.SweepOverdue(cmd.Context(), clk.Now(), limit)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "examined=%d marked=%d failed=%d\n", res.Examined, len(res.Marked), res.Failed)
			for _, id := range res.Marked {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 500, "max reservations examined in one sweep")
	return c
}
