package aggregate

import (
	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Rolling smooths daily rows into a trailing mean over the last window
// calendar days. Each output row keeps the key of the day it ends on and is
// weighted by article count, so a busy day moves the mean more than a quiet
// one. Days without articles are not filled in. Rows must be in ascending key
// order, as Summarize returns them; rows with an unparseable key are skipped.
func Rolling(byDay []models.SummaryRow, window int) []models.SummaryRow {
	if window <= 0 || len(byDay) == 0 {
		return nil
	}

	type point struct {
		row models.SummaryRow
		day int // days since the first row
	}
	points := make([]point, 0, len(byDay))
	for _, r := range byDay {
		t, err := utils.ParseDay(r.Key)
		if err != nil || t.IsZero() {
			continue
		}
		d := 0
		if len(points) > 0 {
			first, _ := utils.ParseDay(points[0].row.Key)
			d = utils.DaysBetween(first, t) - 1
		}
		points = append(points, point{row: r, day: d})
	}

	out := make([]models.SummaryRow, 0, len(points))
	sum, n, lo := 0.0, 0, 0
	for _, p := range points {
		sum += p.row.MeanSentiment * float64(p.row.Count)
		n += p.row.Count
		for p.day-points[lo].day >= window {
			sum -= points[lo].row.MeanSentiment * float64(points[lo].row.Count)
			n -= points[lo].row.Count
			lo++
		}
		out = append(out, models.SummaryRow{
			GroupBy:       models.GroupByDay,
			Key:           p.row.Key,
			MeanSentiment: sum / float64(n),
			Count:         n,
		})
	}
	return out
}
