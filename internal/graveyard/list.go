package graveyard

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danieljhkim/rip/internal/catalog"
)

// List returns every catalog entry in burial order.
func (g *Graveyard) List() ([]ListEntry, error) {
	cat, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	out := make([]ListEntry, len(cat.Items))
	for i, e := range cat.Items {
		out[i] = g.listEntry(e)
	}
	return out, nil
}

func (g *Graveyard) listEntry(e catalog.Entry) ListEntry {
	return ListEntry{
		Entry:    e,
		ID:       e.ShortID(),
		Basename: e.Basename(),
		Age:      g.age(e),
	}
}

// Candidates returns short ids and basenames containing prefix, compared
// case-insensitively, sorted and without duplicates.
func (g *Graveyard) Candidates(prefix string) ([]string, error) {
	cat, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || s == "-" || seen[s] {
			return
		}
		if strings.Contains(strings.ToLower(s), needle) {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, e := range cat.Items {
		add(e.ShortID())
		add(e.Basename())
	}
	sort.Strings(out)
	return out, nil
}

var ageUnits = []struct {
	suffix string
	size   time.Duration
}{
	{"w", 7 * 24 * time.Hour},
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
}

// CompactAge formats d with at most its two largest non-zero units, such as
// "1m47s", "3h12m" or "2d".
func CompactAge(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d/time.Second)) + "s"
	}

	var b strings.Builder
	parts := 0
	for _, u := range ageUnits {
		n := d / u.size
		if n == 0 {
			continue
		}
		b.WriteString(strconv.FormatInt(int64(n), 10))
		b.WriteString(u.suffix)
		d -= n * u.size
		if parts++; parts == 2 {
			break
		}
	}
	return b.String()
}
