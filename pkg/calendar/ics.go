package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// BookingEvent carries the fields rendered into an iCalendar export.
type BookingEvent struct {
	BookingID string
	PlaceName string
	Address   string
	StartsAt  time.Time
	EndsAt    time.Time
}

// RenderICS serializes a booking as a single-event iCalendar document
// suitable for a text/calendar download.
func RenderICS(ev BookingEvent) (string, error) {
	if ev.BookingID == "" {
		return "", fmt.Errorf("calendar: booking id is required")
	}
	if !ev.EndsAt.After(ev.StartsAt) {
		return "", fmt.Errorf("calendar: booking window is invalid")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Spot2Go//Bookings//EN")

	event := cal.AddEvent(ev.BookingID + "@spot2go.app")
	event.SetCreatedTime(time.Now().UTC())
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(ev.StartsAt.UTC())
	event.SetEndAt(ev.EndsAt.UTC())
	event.SetSummary(fmt.Sprintf("Booking at %s", ev.PlaceName))
	if ev.Address != "" {
		event.SetLocation(ev.Address)
	}
	event.SetDescription(fmt.Sprintf("Your Spot2Go booking at %s.", ev.PlaceName))

	return cal.Serialize(), nil
}
