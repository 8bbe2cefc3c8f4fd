/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package delivery

import "time"

// Clock supplies the current instant. Resolution never reads system time
// directly so that cutoff behavior stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

// Now implements Clock.
func (f FixedClock) Now() time.Time { return f.At }
