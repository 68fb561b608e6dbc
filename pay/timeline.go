/*
timeline.go - Minute-resolution occupancy timeline for one logical day

PURPOSE:
  Reconciles a day's overlapping activity intervals into a single
  non-overlapping timeline where each minute carries at most one label.
  The timeline spans 2880 minutes (48 hours) so intervals described with
  hours up to 33 fit on their logical day.

OVERLAP RESOLUTION (two-pass paint):
  Pass 1 paints WORK and DRIVE intervals in declared record order; when
  two of them claim the same minute, the later record wins. Pass 2 paints
  BREAK intervals over everything. Break time therefore always reduces
  payable time, no matter whether the break was logged before or after
  the overlapping work entry. This models a break inside a longer logged
  shift without asking the user to split the work entry; the trade-off is
  that declared order, not chronology, settles WORK/DRIVE ties.

  OTHER and DRIVE_DIRECT records never touch the timeline. They
  contribute only flat amounts (see accumulate.go).
*/
package pay

// =============================================================================
// LABELS
// =============================================================================

// Label is the activity a timeline minute is attributed to.
type Label uint8

const (
	LabelNone Label = iota // unpaid gap
	LabelWork
	LabelDrive
	LabelBreak // painted last, always wins
)

// DayMinutes is the timeline length: 48 hours at minute resolution,
// covering clock hours 0..33 plus slack to the end of hour 47.
const DayMinutes = 48 * 60

// Timeline labels every minute of one logical day.
type Timeline [DayMinutes]Label

// =============================================================================
// BUILDER
// =============================================================================

// BuildTimeline paints the day's records onto a fresh timeline.
// Records must all belong to the same logical day; the caller groups
// them by date beforehand.
func BuildTimeline(records []ActivityRecord) *Timeline {
	var tl Timeline

	// Pass 1: payable intervals, later records overwrite earlier ones.
	for _, r := range records {
		switch r.Kind {
		case KindWork:
			tl.paint(r, LabelWork)
		case KindDrive:
			tl.paint(r, LabelDrive)
		}
	}

	// Pass 2: breaks win unconditionally.
	for _, r := range records {
		if r.Kind == KindBreak {
			tl.paint(r, LabelBreak)
		}
	}

	return &tl
}

func (tl *Timeline) paint(r ActivityRecord, label Label) {
	start, end := r.Start.Minutes(), r.End.Minutes()
	if start < 0 {
		start = 0
	}
	if end > DayMinutes {
		end = DayMinutes
	}
	for m := start; m < end; m++ {
		tl[m] = label
	}
}

// PayableMinutes counts WORK and DRIVE minutes.
func (tl *Timeline) PayableMinutes() int {
	n := 0
	for _, l := range tl {
		if l == LabelWork || l == LabelDrive {
			n++
		}
	}
	return n
}
