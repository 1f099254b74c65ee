package engine

import (
	"time"

	"golang-papertrade/internal/dto"
)

// minAlignedBars is the smallest common calendar worth simulating.
const minAlignedBars = 2

// Alignment is the outcome of AlignCalendars.
type Alignment struct {
	Series  []dto.PriceSeries
	Dropped []string
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// AlignCalendars truncates every series to the trading days they all share.
// While the shared calendar is too short, the instrument whose removal widens it
// the most is dropped. When two instruments remain with nothing in common, both
// are dropped and the result is empty. A single series is returned unchanged.
func AlignCalendars(series []dto.PriceSeries) Alignment {
	if len(series) <= 1 {
		return Alignment{Series: series}
	}

	days := make([]map[string]struct{}, len(series))
	for i, s := range series {
		days[i] = make(map[string]struct{}, s.Len())
		for _, p := range s.Points {
			days[i][dayKey(p.Timestamp)] = struct{}{}
		}
	}

	alive := make([]int, len(series))
	for i := range series {
		alive[i] = i
	}

	var dropped []int
	common := intersect(days, alive)
	for len(common) < minAlignedBars {
		if len(alive) <= 2 {
			dropped = append(dropped, alive...)
			alive = nil
			break
		}

		best, bestSize := -1, -1
		for pos := range alive {
			rest := make([]int, 0, len(alive)-1)
			rest = append(rest, alive[:pos]...)
			rest = append(rest, alive[pos+1:]...)
			if size := len(intersect(days, rest)); size >= bestSize {
				best, bestSize = pos, size
			}
		}
		dropped = append(dropped, alive[best])
		alive = append(alive[:best:best], alive[best+1:]...)
		common = intersect(days, alive)
	}

	out := Alignment{Series: make([]dto.PriceSeries, 0, len(alive))}
	for _, idx := range alive {
		out.Series = append(out.Series, restrict(series[idx], common))
	}
	for _, idx := range dropped {
		out.Dropped = append(out.Dropped, series[idx].Ticker)
	}
	return out
}

func intersect(days []map[string]struct{}, members []int) map[string]struct{} {
	if len(members) == 0 {
		return nil
	}
	common := make(map[string]struct{}, len(days[members[0]]))
	for d := range days[members[0]] {
		inAll := true
		for _, m := range members[1:] {
			if _, ok := days[m][d]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common[d] = struct{}{}
		}
	}
	return common
}

func restrict(s dto.PriceSeries, common map[string]struct{}) dto.PriceSeries {
	points := make([]dto.PricePoint, 0, len(common))
	for _, p := range s.Points {
		if _, ok := common[dayKey(p.Timestamp)]; ok {
			points = append(points, p)
		}
	}
	return dto.PriceSeries{Ticker: s.Ticker, Points: points}
}
