package schedule

import (
	"math"
	"sort"
	"strings"
)

const (
	PixelsPerHour    = 80.0
	CompressedGapPx  = 26.0
	MergeGapMinutes  = 60
	MinGridHeightPx  = 280.0
	TopPaddingPx     = 20.0
	BottomPaddingPx  = 48.0
	MinBlockHeightPx = 68.0

	pixelsPerMinute = PixelsPerHour / 60
)

// Columns are the day keys of the week grid, left to right.
var Columns = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

// ColumnIndex is the grid column for day, or -1 when the grid has none.
func ColumnIndex(day string) int {
	key := NormalizeDay(day)
	for i, c := range Columns {
		if c == key {
			return i
		}
	}
	return -1
}

// Entry is one course as the layout sees it.
type Entry struct {
	CourseID string
	Day      string
	Time     string
}

// Segment is a run of whole hours drawn to scale. Consecutive segments are
// separated by CompressedGapPx no matter how long the real gap is.
type Segment struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Offset float64 `json:"offset"`
	Height float64 `json:"height"`
}

type Marker struct {
	Top   float64 `json:"top"`
	Hour  int     `json:"hour"`
	Label string  `json:"label"`
}

type Block struct {
	CourseID    string    `json:"courseId"`
	DayColumn   int       `json:"dayColumn"`
	Top         float64   `json:"top"`
	Height      float64   `json:"height"`
	StartMinute int       `json:"startMinute"`
	EndMinute   int       `json:"endMinute"`
	Range       TimeRange `json:"range"`
	Label       string    `json:"label"`
}

type Layout struct {
	GridHeight float64   `json:"gridHeight"`
	Segments   []Segment `json:"segments"`
	Markers    []Marker  `json:"markers"`
	Blocks     []Block   `json:"blocks"`

	topOffset float64
}

func (l *Layout) Empty() bool {
	return len(l.Blocks) == 0
}

type interval struct {
	start, end int
}

// Compute lays out every entry that has a day on the grid and a time.
func Compute(entries []Entry) *Layout {
	var blocks []Block
	for _, e := range entries {
		if strings.TrimSpace(e.Day) == "" || strings.TrimSpace(e.Time) == "" {
			continue
		}
		col := ColumnIndex(e.Day)
		if col < 0 {
			continue
		}
		r := ParseTimeRange(e.Time)
		blocks = append(blocks, Block{
			CourseID:    e.CourseID,
			DayColumn:   col,
			StartMinute: r.StartMinute(),
			EndMinute:   r.EndMinute(),
			Range:       r,
			Label:       r.String(),
		})
	}

	layout := &Layout{Segments: []Segment{}, Markers: []Marker{}, Blocks: []Block{}}
	if len(blocks) == 0 {
		layout.GridHeight = MinGridHeightPx
		return layout
	}

	layout.Segments = mergeSegments(blocks)

	contentHeight := 0.0
	for i := range layout.Segments {
		seg := &layout.Segments[i]
		seg.Offset = contentHeight
		seg.Height = float64(seg.End-seg.Start) * pixelsPerMinute
		contentHeight += seg.Height
		if i < len(layout.Segments)-1 {
			contentHeight += CompressedGapPx
		}
	}

	padding := TopPaddingPx + BottomPaddingPx
	layout.GridHeight = math.Max(MinGridHeightPx, contentHeight+padding)
	layout.topOffset = TopPaddingPx + (layout.GridHeight-contentHeight-padding)/2

	for _, seg := range layout.Segments {
		for minute := seg.Start; minute <= seg.End; minute += 60 {
			hour := (minute / 60) % 24
			layout.Markers = append(layout.Markers, Marker{
				Top:   layout.MinuteToPixel(minute),
				Hour:  hour,
				Label: strings.Replace(FormatTime(Clock{Hours: hour}), ":00", "", 1),
			})
		}
	}

	for _, b := range blocks {
		top := layout.MinuteToPixel(b.StartMinute)
		bottom := layout.MinuteToPixel(b.EndMinute)
		b.Top = top
		b.Height = math.Max(MinBlockHeightPx, bottom-top)
		layout.Blocks = append(layout.Blocks, b)
	}

	return layout
}

// mergeSegments rounds each block outward to whole hours and joins
// neighbours whose gap is at most MergeGapMinutes.
func mergeSegments(blocks []Block) []Segment {
	intervals := make([]interval, 0, len(blocks))
	for _, b := range blocks {
		intervals = append(intervals, interval{
			start: floorHour(b.StartMinute),
			end:   ceilHour(b.EndMinute),
		})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var segments []Segment
	for _, iv := range intervals {
		if n := len(segments); n > 0 && iv.start-segments[n-1].End <= MergeGapMinutes {
			if iv.end > segments[n-1].End {
				segments[n-1].End = iv.end
			}
			continue
		}
		segments = append(segments, Segment{Start: iv.start, End: iv.end})
	}
	return segments
}

func floorHour(minute int) int {
	return minute / 60 * 60
}

func ceilHour(minute int) int {
	return (minute + 59) / 60 * 60
}

// MinuteToPixel maps a minute since midnight to a vertical offset in the grid.
// Minutes falling in a compressed gap snap to the top of the next segment.
func (l *Layout) MinuteToPixel(minute int) float64 {
	if len(l.Segments) == 0 {
		return TopPaddingPx
	}
	for _, seg := range l.Segments {
		if minute < seg.Start {
			return l.topOffset + seg.Offset
		}
		if minute <= seg.End {
			return l.topOffset + seg.Offset + float64(minute-seg.Start)*pixelsPerMinute
		}
	}
	last := l.Segments[len(l.Segments)-1]
	return l.topOffset + last.Offset + last.Height
}
