package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/planner"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, func(s *session) error {
				trips := s.planner.Trips()
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return outputJSON(out, trips)
				}
				if len(trips) == 0 {
					fmt.Fprintln(out, "No trips yet")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tDAYS\tDATES")
				for _, t := range trips {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Status, len(t.Days), dateLabel(t))
				}
				return tw.Flush()
			})
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the selected trip day by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, func(s *session) error {
				t, ok := s.planner.Current()
				if !ok {
					return domain.ErrNoCurrentTrip
				}
				if opts.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), t)
				}
				printTrip(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var (
		in          planner.CreateInput
		allocations map[string]int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a trip and wait for the server id",
		Example: `  tripctl create --name Portugal --dest Lisbon --dest Porto --start 2025-06-01 --end 2025-06-05
  tripctl create --name Someday --dest Kyoto --days 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Allocation = allocations
			return withSession(cmd.Context(), opts, func(s *session) error {
				id, err := s.planner.CreateTripAsync(cmd.Context(), in)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "created %s", id)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "trip name")
	f.StringSliceVar(&in.Destinations, "dest", nil, "destination (repeatable, in travel order)")
	f.StringVar(&in.StartDate, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&in.EndDate, "end", "", "last day, YYYY-MM-DD")
	f.IntVar(&in.DayCount, "days", 0, "number of days for a trip without dates")
	f.StringToIntVar(&allocations, "allocate", nil, "days per destination, e.g. Lisbon=3,Porto=2")
	f.IntVar(&in.GroupSize, "group-size", 0, "number of travellers")
	f.StringVar(&in.GroupType, "group-type", "", "solo, couple, family, friends")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func newDeleteTripCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-trip <id>",
		Short: "Delete a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *session) error {
				if err := s.planner.DeleteTrip(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "deleted %s", args[0])
				return nil
			})
		},
	}
}

func newAppendDestinationCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "append-destination <name>",
		Short: "Add a destination with one day at the end of the trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, func(s *session) error {
				if err := s.planner.AppendDestination(args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "added %s as day %d", args[0], s.planner.CurrentDay())
				return nil
			})
		},
	}
}

func newInsertDayCmd(opts *options) *cobra.Command {
	var before bool
	cmd := &cobra.Command{
		Use:   "insert-day <day>",
		Short: "Insert an empty day after (or --before) a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := dayArg(args[0])
			if err != nil {
				return err
			}
			pos := planner.After
			if before {
				pos = planner.Before
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error { return p.InsertDay(pos, ref) }, "inserted a day")
		},
	}
	cmd.Flags().BoolVar(&before, "before", false, "insert before the day instead of after")
	return cmd
}

func newDuplicateDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate-day <day>",
		Short: "Insert a copy of a day's skeleton right after it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := dayArg(args[0])
			if err != nil {
				return err
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error { return p.DuplicateDay(n) }, "duplicated day %d", n)
		},
	}
}

func newDeleteDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-day <day>",
		Short: "Delete a day, returning its places to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := dayArg(args[0])
			if err != nil {
				return err
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error { return p.DeleteDay(n) }, "deleted day %d", n)
		},
	}
}

func newReorderDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder-day <from> <to>",
		Short: "Move a day to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := dayArg(args[0])
			if err != nil {
				return err
			}
			to, err := dayArg(args[1])
			if err != nil {
				return err
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error { return p.ReorderDay(from, to) }, "moved day %d to %d", from, to)
		},
	}
}

func newClearDayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-day <day>",
		Short: "Return every place on a day to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := dayArg(args[0])
			if err != nil {
				return err
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error { return p.ClearDay(n) }, "cleared day %d", n)
		},
	}
}

func newPoolAddCmd(opts *options) *cobra.Command {
	var pl domain.Place
	var kind string
	cmd := &cobra.Command{
		Use:   "pool-add <id> <name>",
		Short: "Add a place to the pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl.ID, pl.Name, pl.Type = args[0], args[1], domain.PlaceType(kind)
			return withSession(cmd.Context(), opts, func(s *session) error {
				n, err := s.planner.AddToPool(pl)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already in the pool\n", pl.ID)
					return nil
				}
				printSuccess(cmd.OutOrStdout(), "added %s to the pool", pl.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(domain.PlaceActivity), "restaurant, cafe, bar, museum, activity, shop, park, neighborhood, hotel")
	cmd.Flags().StringVar(&pl.Location, "location", "", "city or neighbourhood")
	return cmd
}

func newPlaceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "place <item-id> <day> <slot>",
		Short: "Place a pool item into a day's slot",
		Long:  "Slots: breakfast, morning, lunch, afternoon, dinner, evening.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayArg(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), opts, func(s *session) error {
				id, err := s.planner.PlaceItem(args[0], day, domain.SlotID(args[2]))
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "placed %s on day %d %s as %s", args[0], day, args[2], id)
				return nil
			})
		},
	}
}

func newUnplaceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "unplace <place-id> <day> <slot>",
		Short: "Return a placed item to the pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayArg(args[1])
			if err != nil {
				return err
			}
			return runDayOp(cmd, opts, func(p *planner.Planner) error {
				return p.UnplaceFromSlot(args[0], day, domain.SlotID(args[2]))
			}, "unplaced %s", args[0])
		},
	}
}

// runDayOp runs one mutation on the selected trip and reports success.
func runDayOp(cmd *cobra.Command, opts *options, op func(p *planner.Planner) error, format string, args ...any) error {
	return withSession(cmd.Context(), opts, func(s *session) error {
		if err := op(s.planner); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), format, args...)
		return nil
	})
}

func dayArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: day must be a positive number, got %q", domain.ErrValidation, s)
	}
	return n, nil
}
