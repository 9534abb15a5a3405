package formatter

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/theoremus-urban-solutions/mnr-arrivals/utils"
)

// BuildText renders a board as an aligned table for terminals.
func (rb *ResponseBuilder) BuildText(ab ArrivalBoard, loc *time.Location) []byte {
	var buf bytes.Buffer

	title := ab.StopID
	if ab.StopName != "" {
		title = fmt.Sprintf("%s (%s)", ab.StopName, ab.StopID)
	}
	fmt.Fprintf(&buf, "Next arrivals at %s as of %s\n", title, clock(ab.ResponseTimestamp, loc))

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tIN\tDELAY\tTRAIN\tTRACK\tHEADSIGN\tSCHEDULED")
	if len(ab.Arrivals) == 0 {
		fmt.Fprintln(tw, "-\t-\t-\t-\t-\tno live trains\t-")
	}
	for _, a := range ab.Arrivals {
		track, headsign, sched := "-", "-", "-"
		if a.Scheduled != nil {
			track = orDash(a.Scheduled.Track)
			headsign = orDash(a.Scheduled.Headsign)
			sched = clock(a.Scheduled.ScheduledArrival, loc)
		}
		fmt.Fprintf(tw, "%s\t%dm\t%s\t%s\t%s\t%s\t%s\n",
			clock(a.ExpectedArrival, loc),
			a.MinutesAway,
			utils.FormatDelay(time.Duration(a.DelaySeconds)*time.Second),
			orDash(a.Train),
			track,
			headsign,
			sched,
		)
	}
	_ = tw.Flush()

	if len(ab.Scheduled) > 0 {
		buf.WriteString("\nScheduled without live tracking\n")
		tw = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTRAIN\tTRACK\tHEADSIGN")
		for _, s := range ab.Scheduled {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				clock(s.ScheduledArrival, loc), orDash(s.Train), orDash(s.Track), orDash(s.Headsign))
		}
		_ = tw.Flush()
	}

	for _, w := range ab.Warnings {
		fmt.Fprintf(&buf, "warning: %s (%d)\n", w.Description, w.Count)
	}
	return buf.Bytes()
}

func clock(iso string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return "--:--"
	}
	return utils.ClockTime(t, loc)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
