package quotes

import (
	"strconv"
	"strings"
	"time"

	domainpricing "venue/internal/domain/pricing"
	"venue/internal/domain/shared/daterange"
)

const dateLayout = "2006-01-02"

// QuoteForm carries the raw booking form values as the browser sends them.
type QuoteForm struct {
	CheckIn  string   `form:"check_in"`
	CheckOut string   `form:"check_out"`
	Guests   string   `form:"guests"`
	Extras   []string `form:"extras"`
}

// ParseQuoteForm turns form values into a quote request. Unparseable dates
// become zero so the engine reports them as missing.
func ParseQuoteForm(form QuoteForm) domainpricing.QuoteRequest {
	return domainpricing.QuoteRequest{
		CheckIn:  ParseDate(form.CheckIn),
		CheckOut: ParseDate(form.CheckOut),
		Guests:   parseGuests(form.Guests),
		Extras:   normalizeExtras(form.Extras),
	}
}

// ParseDate reads YYYY-MM-DD or RFC 3339. An RFC 3339 value keeps the day
// written in it, whatever its offset.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return daterange.Date(t)
	}
	return time.Time{}
}

func parseGuests(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func normalizeExtras(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		for _, part := range strings.Split(raw, ",") {
			id := strings.ToLower(strings.TrimSpace(part))
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
