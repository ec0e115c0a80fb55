package reminder

import (
	"fmt"

	"github.com/golang-module/carbon/v2"
)

const (
	DisplayLayout = "2006-01-02 03:04:05 PM"

	// DefaultZoneAbbreviation is printed even while daylight time is in
	// effect; existing users rely on the literal.
	DefaultZoneAbbreviation = "EST"

	RejectionText = "❌ Failed to set reminder. Please try again."
)

type Renderer struct {
	abbreviation string
}

func NewRenderer(abbreviation string) Renderer {
	if abbreviation == "" {
		abbreviation = DefaultZoneAbbreviation
	}
	return Renderer{abbreviation: abbreviation}
}

func (r Renderer) Abbreviation() string {
	return r.abbreviation
}

// DisplayTime renders the wall clock of rec in its display zone.
func (r Renderer) DisplayTime(rec Record) string {
	if rec.Zone == "" {
		return rec.LocalDisplayTime.Format(DisplayLayout)
	}
	return carbon.Time2Carbon(rec.FireInstant).Layout(DisplayLayout, rec.Zone)
}

func (r Renderer) Confirmation(rec Record) string {
	return fmt.Sprintf(
		"✅ Your reminder has been scheduled!\n\n📅 Reminder: %s\n🕒 Scheduled for: %s (%s)",
		rec.Message,
		r.DisplayTime(rec),
		r.abbreviation,
	)
}

func (r Renderer) Delivery(rec Record) string {
	return fmt.Sprintf(
		"🔔 Scheduled Reminder: %s\n🕒 Time: %s %s",
		rec.Message,
		r.DisplayTime(rec),
		r.abbreviation,
	)
}

func (r Renderer) DeliveryFailure(rec Record) string {
	return fmt.Sprintf(
		"⚠️ Reminder %s scheduled for %s %s could not be delivered: %s",
		rec.ID,
		r.DisplayTime(rec),
		r.abbreviation,
		rec.FailureReason,
	)
}
