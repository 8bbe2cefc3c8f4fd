/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package delivery

import (
	"fmt"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

// FormatSlot renders a slot into the response shape. The human-readable form
// follows the fixed template "{date} from {start} to {end}"; there is no
// locale-sensitive behavior.
func FormatSlot(slot Slot) DeliverySlot {
	date := slot.Date.Format(calendar.DateFormat)
	start := slot.Window.Start.String()
	end := slot.Window.End.String()
	return DeliverySlot{
		Date:      date,
		TimeRange: [2]string{start, end},
		Formatted: fmt.Sprintf("%s from %s to %s", date, start, end),
	}
}
