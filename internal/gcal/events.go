package gcal

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// DeleteEvent deletes an event from Google Calendar by id. A 404/410 from
// Google maps to ErrEventNotFound so callers can treat an already-gone
// remote event as success.
func (c *Client) DeleteEvent(calendarID, eventID string) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("calendar service not initialized")
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	err := c.service.Events.Delete(calendarID, eventID).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}
