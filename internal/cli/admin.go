package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"cookoff-scoreboard/internal/config"
	"cookoff-scoreboard/internal/domain"
	"github.com/spf13/cobra"
)

// NewResetCmd clears every recorded score. The catalog is untouched.
func NewResetCmd(configPath *string) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all recorded ratings and notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("reset is irreversible, rerun with --yes")
			}
			return runReset(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm erasing every score")
	return cmd
}

func runReset(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)
	board, closeStore, err := openScoreboard(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	cleared := len(board.Entries())
	if err := board.ResetScores(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "cleared %d entries\n", cleared)
	return nil
}

// NewStandingsCmd prints the leaderboard and group progress.
func NewStandingsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Print the current leaderboard and judging progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandings(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runStandings(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)
	board, closeStore, err := openScoreboard(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	snap := board.Snapshot()
	return printStandings(out, snap)
}

func printStandings(out io.Writer, snap domain.Snapshot) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPARTICIPANT\tTOTAL")
	for _, s := range snap.Leaderboard.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", s.Rank, s.Name, s.TotalScore)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "GROUP\tPROGRESS\tLEVELS")
	for _, g := range snap.Progress {
		fmt.Fprintf(tw, "%s\t%d%%\t%v\n", g.GroupName, g.Percentage, g.LevelStatus)
	}
	return tw.Flush()
}
