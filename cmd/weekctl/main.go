// Command weekctl inspects meeting weeks from the terminal: it resolves week
// input, prints the slot catalog and renders a density table for a stored state.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
	"github.com/noah-isme/meeting-planner-api/internal/repository"
	"github.com/noah-isme/meeting-planner-api/pkg/config"
	"github.com/noah-isme/meeting-planner-api/pkg/storage"
)

type options struct {
	week         string
	now          string
	tz           string
	catalog      bool
	statePath    string
	dataFile     string
	meeting      string
	participants []string
	rosterFile   string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "weekctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("weekctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&opts.week, "week", "w", "", "week number or D.M[.YYYY] date; empty means the current week")
	fs.StringVar(&opts.now, "now", "", "reference date YYYY-MM-DD instead of today")
	fs.StringVar(&opts.tz, "tz", "Local", "IANA time zone for week boundaries")
	fs.BoolVarP(&opts.catalog, "catalog", "c", false, "print the slot catalog")
	fs.StringVarP(&opts.statePath, "state", "s", "", "serialized state JSON file to render")
	fs.StringVar(&opts.dataFile, "data-file", "", "server data file to read the state from")
	fs.StringVarP(&opts.meeting, "meeting", "m", "", "meeting id inside --data-file")
	fs.StringSliceVarP(&opts.participants, "participants", "p", []string{"I", "To", "M", "Ta", "JS", "H"}, "participant names in index order")
	fs.StringVar(&opts.rosterFile, "roster-file", "", "YAML roster file, overrides --participants")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := time.LoadLocation(opts.tz)
	if err != nil {
		return fmt.Errorf("unknown time zone %q: %w", opts.tz, err)
	}
	now := time.Now().In(loc)
	if opts.now != "" {
		if now, err = time.ParseInLocation("2006-01-02", opts.now, loc); err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	start := availability.WeekStartOf(now)
	if opts.week != "" {
		resolved, ok := availability.ResolveWeekStart(opts.week, now)
		if !ok {
			return fmt.Errorf("cannot resolve week %q", opts.week)
		}
		start = resolved
	}
	ts := availability.WeekTimestamp(start)
	fmt.Fprintln(out, availability.WeekLabel(start))
	fmt.Fprintf(out, "weekStart: %d\n", ts)

	if opts.catalog {
		printCatalog(out)
	}

	state, found, err := loadState(ctx, opts, ts)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	roster, err := config.LoadRoster(config.RosterConfig{Participants: opts.participants, File: opts.rosterFile})
	if err != nil {
		return err
	}
	printDensity(out, availability.Deserialize(state), roster)
	return nil
}

func loadState(ctx context.Context, opts options, weekStart int64) (availability.Serialized, bool, error) {
	switch {
	case opts.statePath != "":
		file, err := storage.NewJSONFile(opts.statePath)
		if err != nil {
			return nil, false, err
		}
		state := availability.Serialized{}
		if err := file.Read(&state); err != nil {
			return nil, false, fmt.Errorf("read state: %w", err)
		}
		return state, true, nil
	case opts.dataFile != "":
		if opts.meeting == "" {
			return nil, false, fmt.Errorf("--meeting is required with --data-file")
		}
		file, err := storage.NewJSONFile(opts.dataFile)
		if err != nil {
			return nil, false, err
		}
		state, err := repository.NewFileStateRepository(file).Get(ctx, opts.meeting, weekStart)
		if err != nil {
			return nil, false, err
		}
		return state, true, nil
	}
	return nil, false, nil
}

func printCatalog(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "day\tname\thours\tslots")
	for day, hours := range availability.HoursByDay {
		fmt.Fprintf(w, "%d\t%s\t%d-%d\t%d\n", day, availability.DayNames[day], hours.Start, hours.End, availability.DaySlotCount(day))
	}
	fmt.Fprintf(w, "total\t\t\t%d\n", availability.SlotCount())
	_ = w.Flush()
}

// printDensity renders one row per hour and one column per day. Cells outside
// the day's hours stay blank; empty slots show a dot.
func printDensity(out io.Writer, sel availability.Selection, roster []string) {
	minHour, maxHour := 24, -1
	for _, hours := range availability.HoursByDay {
		if hours.Start < minHour {
			minHour = hours.Start
		}
		if hours.End > maxHour {
			maxHour = hours.End
		}
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\t"+strings.Join(availability.DayNames[:], "\t"))
	for hour := minHour; hour <= maxHour; hour++ {
		cells := make([]string, 0, availability.DaysPerWeek+1)
		cells = append(cells, strconv.Itoa(hour))
		for day := 0; day < availability.DaysPerWeek; day++ {
			switch {
			case !availability.ValidSlot(day, hour):
				cells = append(cells, "")
			case sel.Count(day, hour) == 0:
				cells = append(cells, ".")
			default:
				cells = append(cells, strconv.Itoa(sel.Count(day, hour)))
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	best, bestCount := availability.SlotKey{}, 0
	for _, slot := range availability.BuildSlots() {
		if c := sel.Count(slot.Day, slot.Hour); c > bestCount {
			best, bestCount = slot.Key(), c
		}
	}
	if bestCount == 0 {
		fmt.Fprintln(out, "no selections")
		return
	}
	names := make([]string, 0, bestCount)
	for _, idx := range sel.Participants(best.Day, best.Hour) {
		if idx >= 0 && idx < len(roster) {
			names = append(names, roster[idx])
		} else {
			names = append(names, "#"+strconv.Itoa(idx))
		}
	}
	fmt.Fprintf(out, "best: %s %d:00 (%d) %s\n", availability.DayNames[best.Day], best.Hour, bestCount, strings.Join(names, ", "))
}
