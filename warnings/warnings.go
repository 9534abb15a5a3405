package warnings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Warning type constants
const (
	// Static schedule warnings
	BadArrivalTime     = "bad_arrival_time"
	BadServiceDate     = "bad_service_date"
	BadExceptionType   = "bad_exception_type"
	DuplicateTripLabel = "duplicate_trip_label"

	// Realtime warnings
	MissingVehicleLabel = "missing_vehicle_label"
	NoScheduleMatch     = "no_schedule_match"
)

const maxExamples = 3

type warningInfo struct {
	count    int
	examples []string
}

// Summary is the aggregated view of one warning type.
type Summary struct {
	Type        string   `json:"type" xml:"type,attr"`
	Count       int      `json:"count" xml:"count,attr"`
	Examples    []string `json:"examples" xml:"Example"`
	Description string   `json:"description" xml:"Description"`
}

// Aggregator collects data-quality warnings and reports them as one line per
// type. The zero value is not usable; call New.
type Aggregator struct {
	warnings map[string]*warningInfo
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{warnings: make(map[string]*warningInfo)}
}

// Add records a warning occurrence with an example identifier.
func (a *Aggregator) Add(warningType, example string) {
	info := a.warnings[warningType]
	if info == nil {
		info = &warningInfo{examples: make([]string, 0, maxExamples)}
		a.warnings[warningType] = info
	}
	info.count++
	if len(info.examples) < maxExamples {
		info.examples = append(info.examples, example)
	}
}

// Merge folds other into a. Examples are kept up to the usual limit.
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	for typ, info := range other.warnings {
		dst := a.warnings[typ]
		if dst == nil {
			dst = &warningInfo{examples: make([]string, 0, maxExamples)}
			a.warnings[typ] = dst
		}
		dst.count += info.count
		for _, ex := range info.examples {
			if len(dst.examples) >= maxExamples {
				break
			}
			dst.examples = append(dst.examples, ex)
		}
	}
}

// Count returns the number of occurrences of warningType.
func (a *Aggregator) Count(warningType string) int {
	if a == nil {
		return 0
	}
	if info := a.warnings[warningType]; info != nil {
		return info.count
	}
	return 0
}

// Total returns the number of occurrences across all types.
func (a *Aggregator) Total() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, info := range a.warnings {
		n += info.count
	}
	return n
}

// Summaries returns one entry per warning type, sorted by type.
func (a *Aggregator) Summaries() []Summary {
	if a == nil {
		return nil
	}
	out := make([]Summary, 0, len(a.warnings))
	for typ, info := range a.warnings {
		out = append(out, Summary{
			Type:        typ,
			Count:       info.count,
			Examples:    append([]string(nil), info.examples...),
			Description: describe(typ),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// LogAll writes one warn-level event per warning type.
func (a *Aggregator) LogAll(logger zerolog.Logger, feed, stopID string) {
	for _, s := range a.Summaries() {
		logger.Warn().
			Str("feed", feed).
			Str("stop_id", stopID).
			Str("warning", s.Type).
			Int("count", s.Count).
			Strs("examples", s.Examples).
			Msg(formatWarningMessage(s))
	}
}

func formatWarningMessage(s Summary) string {
	return fmt.Sprintf("%s (%d occurrences). %s. Examples: %s",
		s.Description, s.Count, action(s.Type), strings.Join(s.Examples, ", "))
}

func describe(warningType string) string {
	switch warningType {
	case BadArrivalTime:
		return "stop_times rows with an unparseable arrival_time"
	case BadServiceDate:
		return "calendar_dates rows with an unparseable date"
	case BadExceptionType:
		return "calendar_dates rows whose exception_type is neither 1 nor 2"
	case DuplicateTripLabel:
		return "trip_short_name values scheduled more than once at the stop on one service day"
	case MissingVehicleLabel:
		return "tracked trips whose vehicle carries no label"
	case NoScheduleMatch:
		return "tracked trips with no matching scheduled trip"
	default:
		return "unknown issue"
	}
}

func action(warningType string) string {
	switch warningType {
	case BadArrivalTime, BadServiceDate, BadExceptionType:
		return "Excluding the rows from the schedule"
	case DuplicateTripLabel:
		return "Attaching every matching row"
	case MissingVehicleLabel, NoScheduleMatch:
		return "Reporting the trip without schedule details"
	default:
		return "Continuing with fallback behavior"
	}
}
