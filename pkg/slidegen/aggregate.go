package slidegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// GroupTotal is one row of the leaderboard: the summed sale amount for a
// (branch, product) pair, finalized into a display string.
type GroupTotal struct {
	Branch    string
	Product   string
	Total     float64
	Formatted string
}

// AggregateRecords groups records by (branch, product) and sums their sale
// amounts. Group keys are raw strings, case-sensitive and untrimmed. Amounts
// are parsed after stripping thousands separators; a value that does not parse
// contributes zero. The result is sorted descending by total, ties keeping
// encounter order, with every total formatted as the shortest round-trippable
// number plus the unit suffix.
//
// The sort key deliberately re-parses the formatted string rather than using
// the raw float, so that rows ranking equal on screen also rank equal here.
func AggregateRecords(records []Record, fields FieldMap, unitSuffix string) []GroupTotal {
	branchCol := fields[TokenBranch]
	productCol := fields[TokenProduct]
	amountCol := fields[TokenAmount]

	type key struct{ branch, product string }
	index := make(map[key]int)
	var groups []GroupTotal

	for _, record := range records {
		k := key{record.Get(branchCol), record.Get(productCol)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupTotal{Branch: k.branch, Product: k.product})
		}
		groups[i].Total += parseAmount(record.Get(amountCol))
	}

	for i := range groups {
		groups[i].Formatted = formatTotal(groups[i].Total, unitSuffix)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return reparseTotal(groups[i].Formatted, unitSuffix) > reparseTotal(groups[j].Formatted, unitSuffix)
	})
	return groups
}

// parseAmount parses a locale-formatted sale amount. Thousands separators are
// stripped; anything unparseable counts as zero.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatTotal(v float64, unitSuffix string) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + unitSuffix
}

func reparseTotal(formatted, unitSuffix string) float64 {
	return parseAmount(strings.TrimSuffix(formatted, unitSuffix))
}

// Paginate chunks sorted groups into pages of the given size. The last page
// may be short; the table fill blanks its unused rows.
func Paginate(groups []GroupTotal, size int) [][]GroupTotal {
	if size <= 0 || len(groups) == 0 {
		return nil
	}
	var pages [][]GroupTotal
	for start := 0; start < len(groups); start += size {
		end := start + size
		if end > len(groups) {
			end = len(groups)
		}
		pages = append(pages, groups[start:end])
	}
	return pages
}

// dateLayouts are tried in order for every record; the first that parses wins.
var dateLayouts = []string{"2006/1/2", "2006-1-2", "2006.1.2"}

// DateRange scans the date column of all records and returns the minimum and
// maximum dates as "month.day" strings. A time-of-day suffix after a space is
// ignored. Records whose value is empty or unparseable are skipped; when no
// record yields a date both strings are empty.
func DateRange(records []Record, dateColumn string) (string, string) {
	var dates []time.Time
	for _, record := range records {
		raw := strings.TrimSpace(record.Get(dateColumn))
		if raw == "" {
			continue
		}
		if i := strings.IndexByte(raw, ' '); i >= 0 {
			raw = raw[:i]
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				dates = append(dates, t)
				break
			}
		}
	}
	if len(dates) == 0 {
		return "", ""
	}

	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return monthDay(min), monthDay(max)
}

func monthDay(t time.Time) string {
	return fmt.Sprintf("%d.%d", int(t.Month()), t.Day())
}
