package formatter

import (
	"strconv"
	"strings"
)

// BuildXML serializes a board to XML
func (rb *ResponseBuilder) BuildXML(ab ArrivalBoard) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("<ArrivalBoard>")
	writeElem(&b, "StopID", ab.StopID)
	writeElem(&b, "StopName", ab.StopName)
	writeElem(&b, "ResponseTimestamp", ab.ResponseTimestamp)
	writeElem(&b, "FeedTimestamp", ab.FeedTimestamp)
	writeElem(&b, "ServiceDate", ab.ServiceDate)

	b.WriteString("<Arrivals>")
	for _, a := range ab.Arrivals {
		writeArrivalXML(&b, a)
	}
	b.WriteString("</Arrivals>")

	if len(ab.Scheduled) > 0 {
		b.WriteString("<Scheduled>")
		for _, s := range ab.Scheduled {
			writeScheduledXML(&b, s)
		}
		b.WriteString("</Scheduled>")
	}

	if len(ab.Warnings) > 0 {
		b.WriteString("<Warnings>")
		for _, w := range ab.Warnings {
			b.WriteString(`<Warning type="`)
			b.WriteString(xmlEscape(w.Type))
			b.WriteString(`" count="`)
			b.WriteString(strconv.Itoa(w.Count))
			b.WriteString(`">`)
			writeElem(&b, "Description", w.Description)
			for _, ex := range w.Examples {
				writeElem(&b, "Example", ex)
			}
			b.WriteString("</Warning>")
		}
		b.WriteString("</Warnings>")
	}

	b.WriteString("</ArrivalBoard>")
	return []byte(b.String())
}

func writeArrivalXML(b *strings.Builder, a Arrival) {
	b.WriteString("<Arrival>")
	writeElem(b, "Train", a.Train)
	writeElem(b, "TripID", a.TripID)
	writeElem(b, "RouteID", a.RouteID)
	b.WriteString("<DirectionID>")
	b.WriteString(strconv.FormatUint(uint64(a.DirectionID), 10))
	b.WriteString("</DirectionID>")
	writeElem(b, "ScheduleRelationship", a.ScheduleRelationship)
	writeElem(b, "ExpectedArrival", a.ExpectedArrival)
	b.WriteString("<DelaySeconds>")
	b.WriteString(strconv.FormatInt(a.DelaySeconds, 10))
	b.WriteString("</DelaySeconds>")
	b.WriteString("<MinutesAway>")
	b.WriteString(strconv.Itoa(a.MinutesAway))
	b.WriteString("</MinutesAway>")
	if len(a.Updates) > 0 {
		b.WriteString("<Updates>")
		for _, u := range a.Updates {
			b.WriteString("<Update>")
			writeElem(b, "ExpectedArrival", u.ExpectedArrival)
			b.WriteString("<DelaySeconds>")
			b.WriteString(strconv.FormatInt(u.DelaySeconds, 10))
			b.WriteString("</DelaySeconds>")
			b.WriteString("</Update>")
		}
		b.WriteString("</Updates>")
	}
	if a.Scheduled != nil {
		writeScheduledXML(b, *a.Scheduled)
	}
	b.WriteString("</Arrival>")
}

func writeScheduledXML(b *strings.Builder, s ScheduledCall) {
	b.WriteString("<ScheduledCall>")
	writeElem(b, "Train", s.Train)
	writeElem(b, "TripID", s.TripID)
	writeElem(b, "Track", s.Track)
	writeElem(b, "Headsign", s.Headsign)
	writeElem(b, "ScheduledArrival", s.ScheduledArrival)
	b.WriteString("</ScheduledCall>")
}

// writeElem writes <name>value</name>, skipping empty values.
func writeElem(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
