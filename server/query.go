package server

import (
	"strconv"
	"strings"
)

// QueryError is a client error in the request parameters.
type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// arrivalsQuery holds the parsed parameters of the arrivals endpoint.
type arrivalsQuery struct {
	count     int
	format    string
	route     string
	direction string
	scheduled bool
}

func parseArrivalsQuery(params map[string]string, defCount, maxCount int) (arrivalsQuery, error) {
	q := arrivalsQuery{count: defCount, format: "json", scheduled: true}

	if s := strings.TrimSpace(params["count"]); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return q, &QueryError{Msg: "count must be a positive integer."}
		}
		if v > maxCount {
			return q, &QueryError{Msg: "count must not exceed " + strconv.Itoa(maxCount) + "."}
		}
		q.count = v
	}

	format, err := normalizeFormat(params["format"])
	if err != nil {
		return q, err
	}
	q.format = format

	q.route = strings.TrimSpace(params["route"])
	q.direction = strings.TrimSpace(params["direction"])
	if q.direction != "" && q.direction != "0" && q.direction != "1" {
		return q, &QueryError{Msg: "direction must be 0 or 1."}
	}

	if s := strings.TrimSpace(strings.ToLower(params["scheduled"])); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, &QueryError{Msg: "scheduled must be a boolean."}
		}
		q.scheduled = b
	}
	return q, nil
}

func normalizeFormat(s string) (string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "json":
		return "json", nil
	case "xml", "text":
		return s, nil
	}
	return "", &QueryError{Msg: "Unsupported format: " + s}
}

// flattenQuery keeps the first value of each parameter, keyed in lower case.
func flattenQuery(values map[string][]string) map[string]string {
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[strings.ToLower(k)] = v[0]
		}
	}
	return params
}
