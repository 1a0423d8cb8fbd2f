package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dailytens/application/commands"
	"dailytens/application/commands/bus"
	"dailytens/application/ports"
	queryhandlers "dailytens/application/queries/handlers"
	"dailytens/domain/events"
	"dailytens/domain/game"

	"github.com/spf13/cobra"
)

// ErrExtractionFailed is returned by extract when no complete board was read
var ErrExtractionFailed = errors.New("extraction failed: no complete board found")

// Services are the wired components the commands run against
type Services struct {
	Resolver   queryhandlers.Resolver
	Extractor  ports.Extractor
	CommandBus *bus.CommandBus
}

// Loader builds Services. The returned cleanup releases whatever the
// services hold open.
type Loader func(ctx context.Context) (*Services, func(), error)

// NewRootCmd creates the root command
func NewRootCmd(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dailytens",
		Short: "Operate the daily trivia content store",
		Long: `Operator tool for the daily trivia backend.
Resolves dates exactly as the API does, runs dry extractions against the
source page, and validates or adds hand-authored game files.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newResolveCmd(load),
		newExtractCmd(load),
		newAddCmd(load),
		newValidateCmd(),
	)

	return cmd
}

func newResolveCmd(load Loader) *cobra.Command {
	var date, format string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the game for a date (default today)",
		Long: `Resolve runs the full resolution: store lookup, extraction when the
date is today, and fallback to the most recent earlier game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			if date != "" {
				if err := game.ValidateDate(date); err != nil {
					return err
				}
			}

			svc, cleanup, err := load(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing: %w", err)
			}
			defer cleanup()

			if date == "" {
				date = svc.Resolver.Today()
			}

			res, err := svc.Resolver.Resolve(cmd.Context(), date)
			if err != nil {
				return err
			}

			return writeResolve(cmd.OutOrStdout(), &ResolveOutput{
				RequestedDate: res.RequestedDate,
				ResolvedDate:  res.ResolvedDate(),
				Source:        string(res.Source),
				Game:          res.Record,
			}, outFormat)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to resolve, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

func newExtractCmd(load Loader) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Read today's board from the source page without storing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}

			svc, cleanup, err := load(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing: %w", err)
			}
			defer cleanup()

			candidate, ok := svc.Extractor.Extract(cmd.Context())
			if !ok {
				return ErrExtractionFailed
			}
			return writeCandidate(cmd.OutOrStdout(), candidate, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

func newAddCmd(load Loader) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a hand-authored game file",
		Long: `Add stores a game JSON file ({"date","title","correctAnswers"}) if no
game exists for its date yet. An existing date is reported as a conflict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readGameFile(file)
			if err != nil {
				return err
			}

			svc, cleanup, err := load(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing: %w", err)
			}
			defer cleanup()

			command := commands.NewCreateGameCommand(rec)
			command.Origin = events.OriginCLI
			if err := svc.CommandBus.Send(cmd.Context(), command); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", rec.Date, rec.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the game JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a game file with the same rules as the write endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readGameFile(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s: %s (%d answers)\n", rec.Date, rec.Title, len(rec.CorrectAnswers))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the game JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func readGameFile(path string) (*game.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game file: %w", err)
	}
	return game.ParsePayload(raw)
}
