package projection

import (
	"chat-sim/domain/chat"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

const dateLabelLayout = "Monday, January 2, 2006"

// Entry is a message as rendered in a thread.
type Entry struct {
	Message    chat.Message
	ShowAvatar bool
}

// DateGroup holds the messages of one calendar day.
type DateGroup struct {
	Day     time.Time // midnight, in the grouping location
	Label   string
	Entries []Entry
}

// GroupByDate partitions messages by calendar day in loc.
// Groups and the messages inside them are in chronological order;
// messages created at the same instant keep their input order.
// Within a group, ShowAvatar is set on the first message of each same-sender run.
func GroupByDate(messages []chat.Message, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.Local
	}
	sorted := append([]chat.Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var groups []DateGroup
	var current []chat.Message
	var day time.Time

	flush := func() {
		if len(current) == 0 {
			return
		}
		runs := AvatarRuns(current)
		groups = append(groups, DateGroup{
			Day:   day,
			Label: day.Format(dateLabelLayout),
			Entries: lo.Map(current, func(m chat.Message, i int) Entry {
				return Entry{Message: m, ShowAvatar: runs[i]}
			}),
		})
		current = nil
	}

	for _, m := range sorted {
		y, mo, d := m.CreatedAt.In(loc).Date()
		msgDay := time.Date(y, mo, d, 0, 0, 0, 0, loc)
		if !msgDay.Equal(day) {
			flush()
			day = msgDay
		}
		current = append(current, m)
	}
	flush()
	return groups
}

// AvatarRuns reports, for each message, whether it opens a run of
// consecutive messages from the same sender.
func AvatarRuns(messages []chat.Message) []bool {
	return lo.Map(messages, func(m chat.Message, i int) bool {
		return i == 0 || messages[i-1].SenderID != m.SenderID
	})
}

// Flatten concatenates the groups back into a message sequence.
func Flatten(groups []DateGroup) []chat.Message {
	return lo.FlatMap(groups, func(g DateGroup, _ int) []chat.Message {
		return lo.Map(g.Entries, func(e Entry, _ int) chat.Message {
			return e.Message
		})
	})
}

// AttachmentSize renders an optional byte size in binary units, e.g. "1000 KiB".
func AttachmentSize(size *int64) string {
	if size == nil || *size < 0 {
		return ""
	}
	return humanize.IBytes(uint64(*size))
}
