package domain

// ConfigEntry is a single-row-per-key override stored in the database.
// Absent keys fall back to deployment configuration.
type ConfigEntry struct {
	ConfigKey   string
	ConfigValue string
}

// AlertMobileNumber is one SMS recipient for a site's alert fan-out.
type AlertMobileNumber struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	SiteID       int    `json:"-"`
}

// AlertEmailAddress is one email recipient for a site's alert fan-out.
type AlertEmailAddress struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	EmailID string `json:"emailId"`
	SiteID  int    `json:"-"`
}
