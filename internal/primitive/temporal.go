package primitive

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/OData/odata.net-sub101/pkg/model"
)

var (
	// durationPattern validates the day-time duration lexical form.
	durationPattern = regexp.MustCompile(`^-?P(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)

	// durationPartPattern extracts one designated duration component.
	durationPartPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)([DHMS])`)

	// timeOfDayPattern matches hh:mm with optional seconds and fraction.
	timeOfDayPattern = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,12}))?)?$`)

	// errDurationOverflow reports a duration that cannot fit in time.Duration.
	errDurationOverflow = errors.New("duration overflow")
)

const maxDuration = time.Duration(^uint64(0) >> 1)

func parseDateTimeOffset(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid DateTimeOffset: %s", s)
	}
	return t, nil
}

func formatDateTimeOffset(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseDate(s string) (model.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid Date: %s", s)
	}
	return model.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func parseTimeOfDay(s string) (model.TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return model.TimeOfDay{}, fmt.Errorf("invalid TimeOfDay: %s", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	if hour > 23 || minute > 59 || second > 59 {
		return model.TimeOfDay{}, fmt.Errorf("invalid TimeOfDay: %s", s)
	}
	nanos := 0
	if frac := m[4]; frac != "" {
		if len(frac) > 9 {
			if strings.Trim(frac[9:], "0") != "" {
				return model.TimeOfDay{}, fmt.Errorf("invalid TimeOfDay: fractional seconds beyond nanoseconds: %s", s)
			}
			frac = frac[:9]
		}
		nanos, _ = strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
	}
	return model.TimeOfDay{Hour: hour, Minute: minute, Second: second, Nanosecond: nanos}, nil
}

func validTimeOfDay(t model.TimeOfDay) bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59 &&
		t.Second >= 0 && t.Second <= 59 && t.Nanosecond >= 0 && t.Nanosecond < int(time.Second)
}

// parseDuration parses a day-time duration such as -P1DT2H3M4.5S.
// Year and month components are indeterminate and rejected.
func parseDuration(s string) (time.Duration, error) {
	if !durationPattern.MatchString(s) || s == "P" || s == "-P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("invalid Duration: %s", s)
	}
	negative := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "P")
	datePart, timePart, _ := strings.Cut(body, "T")

	total := time.Duration(0)
	add := func(text string, unit time.Duration) error {
		whole, frac, _ := strings.Cut(text, ".")
		n, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || n > int64(maxDuration/unit) {
			return errDurationOverflow
		}
		delta := time.Duration(n) * unit
		if frac != "" {
			if len(frac) > 9 {
				frac = frac[:9]
			}
			ns, _ := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
			delta += time.Duration(ns)
		}
		if total > maxDuration-delta {
			return errDurationOverflow
		}
		total += delta
		return nil
	}

	units := map[byte]time.Duration{'H': time.Hour, 'M': time.Minute, 'S': time.Second}
	for _, m := range durationPartPattern.FindAllStringSubmatch(datePart, -1) {
		if err := add(m[1], 24*time.Hour); err != nil {
			return 0, fmt.Errorf("invalid Duration: %s: %w", s, err)
		}
	}
	for _, m := range durationPartPattern.FindAllStringSubmatch(timePart, -1) {
		if err := add(m[1], units[m[2][0]]); err != nil {
			return 0, fmt.Errorf("invalid Duration: %s: %w", s, err)
		}
	}
	if negative {
		total = -total
	}
	return total, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if d > 0 {
		secs := d / time.Second
		nanos := d - secs*time.Second
		if nanos == 0 {
			fmt.Fprintf(&b, "%dS", secs)
		} else {
			frac := strings.TrimRight(fmt.Sprintf("%09d", int64(nanos)), "0")
			fmt.Fprintf(&b, "%d.%sS", secs, frac)
		}
	}
	return b.String()
}
