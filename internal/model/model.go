package model

import "time"

// Occurrence is a single concrete instance of a calendar event after
// recurrence expansion and timezone normalization, carrying the display
// metadata the grid needs. It satisfies grid.Event.
type Occurrence struct {
	SourceID string // calendar source ID (config feed ID)
	UID      string // iCalendar UID

	// InstanceKey distinguishes occurrences of one recurring event,
	// derived from the local start time.
	InstanceKey string

	Summary  string
	Location string

	// ColorHex is the CSS color inherited from the occurrence's source.
	ColorHex string

	IsAllDay bool

	// StartAt / EndAt are in the configured display timezone. All-day
	// occurrences use the ICS convention of an exclusive midnight end.
	StartAt time.Time
	EndAt   time.Time
}

// ID combines UID and instance key so repeated instances of one recurring
// event stay distinguishable in emitted attributes.
func (o Occurrence) ID() string {
	if o.InstanceKey == "" {
		return o.UID
	}
	return o.UID + "/" + o.InstanceKey
}

func (o Occurrence) Kind() string  { return "event" }
func (o Occurrence) Title() string { return o.Summary }
func (o Occurrence) Color() string { return o.ColorHex }

func (o Occurrence) Start() time.Time { return o.StartAt }

// End returns the last instant the occurrence covers. All-day ends are
// stored as exclusive midnights, which would otherwise bleed the event one
// day past its real span at the grid's day granularity.
func (o Occurrence) End() time.Time {
	if o.IsAllDay && o.EndAt.After(o.StartAt) {
		return o.EndAt.Add(-time.Nanosecond)
	}
	return o.EndAt
}

func (o Occurrence) AllDay() bool { return o.IsAllDay }
