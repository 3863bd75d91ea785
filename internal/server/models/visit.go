package models

import "time"

// Visit is one row per guest identity capturing browser/client metadata and
// first/last visit times. Upserted on every client start.
type Visit struct {
	GuestID    string `json:"guestId"`
	UserAgent  string `json:"userAgent"`
	Locale     string `json:"locale"`
	ScreenSize string `json:"screenSize"`
	Timezone   string `json:"timezone"`
	Referrer   string `json:"referrer"`
	FirstSeen  time.Time
	LastSeen   time.Time
}
