// Package cli implements tripctl, a command-line front end that drives the
// trip engine against a running Tripboard API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/tripboard/internal/client"
	"github.com/pkordes/tripboard/internal/config"
	"github.com/pkordes/tripboard/internal/planner"
)

// closeTimeout bounds the final flush of scheduled saves.
const closeTimeout = 30 * time.Second

type options struct {
	tripID     string
	jsonOutput bool
}

// NewRootCmd builds the tripctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tripctl",
		Short: "Plan trips against a Tripboard API",
		Long: `tripctl loads every trip from the API, applies one change to the selected
trip, and waits for the change to be saved before exiting.

The API location and save behaviour come from TRIPBOARD_API_URL,
SAVE_DEBOUNCE and SAVE_MAX_RETRIES (or a .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&opts.tripID, "trip", "", "trip id to act on (default: first trip)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")

	root.AddGroup(
		&cobra.Group{ID: "trips", Title: "Trips:"},
		&cobra.Group{ID: "days", Title: "Days:"},
		&cobra.Group{ID: "places", Title: "Places:"},
	)
	for _, c := range []*cobra.Command{
		newListCmd(opts), newShowCmd(opts), newCreateCmd(opts), newDeleteTripCmd(opts),
	} {
		c.GroupID = "trips"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newAppendDestinationCmd(opts), newInsertDayCmd(opts), newDuplicateDayCmd(opts),
		newDeleteDayCmd(opts), newReorderDayCmd(opts), newClearDayCmd(opts),
	} {
		c.GroupID = "days"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newPoolAddCmd(opts), newPlaceCmd(opts), newUnplaceCmd(opts),
	} {
		c.GroupID = "places"
		root.AddCommand(c)
	}
	return root
}

// Execute runs tripctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// session is one hydrated planner plus the client it persists through.
type session struct {
	planner *planner.Planner
	client  *client.Client
}

// withSession hydrates a planner from the API, selects --trip when given,
// runs fn, and flushes pending saves before returning.
func withSession(ctx context.Context, opts *options, fn func(s *session) error) (err error) {
	cfg, err := config.LoadSync()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c := client.New(cfg.APIURL)
	p := planner.New(c, planner.Options{
		SaveDelay:  cfg.SaveDebounce,
		MaxRetries: cfg.SaveMaxRetries,
		Logger:     newLogger(cfg.LogLevel),
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := p.Close(closeCtx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("flush saves: %w", cerr))
		}
	}()

	records, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}
	if err := p.Hydrate(records); err != nil {
		return err
	}
	if opts.tripID != "" {
		if err := p.SelectTrip(opts.tripID); err != nil {
			return err
		}
	}
	return fn(&session{planner: p, client: c})
}

// newLogger writes engine logs to stderr so they never mix with command output.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
