package models

// Visit carries the client metadata reported to the visit-tracking sink on
// every start.
type Visit struct {
	GuestID    string `json:"guestId"`
	UserAgent  string `json:"userAgent"`
	Locale     string `json:"locale"`
	ScreenSize string `json:"screenSize"`
	Timezone   string `json:"timezone"`
	Referrer   string `json:"referrer"`
}
