package domain

// Site is the root of the access topology. A site owns buildings, employees
// and the alert contact lists used for notification fan-out.
type Site struct {
	SiteID          int    `json:"siteId"`
	SiteName        string `json:"siteName"`
	SiteDescription string `json:"siteDescription"`
}

type Building struct {
	BuildingID      int
	BuildingName    string
	BuildingDetails string
	SiteID          int
}

type Floor struct {
	FloorID      int
	FloorNumber  string
	FloorDetails string
	BuildingID   int
}

// Gate is the smallest co-location unit: everyone passing through any device
// mounted at the same gate shares an entry point.
type Gate struct {
	GateID            int
	GateNumber        string
	AdditionalDetails string
	FloorID           int
}

// Device ids are assigned by the edge hardware, not generated by us.
type Device struct {
	DeviceID      string
	DeviceDetails string
	GateID        int
	// UpdatedThreshold marks whether the device has pulled the current
	// temperature threshold. Cleared for every device when the threshold
	// changes so the downstream sync can re-push it.
	UpdatedThreshold bool
}

// DeviceLocation is the resolved placement of a device, used when composing
// alert notifications ("Building X, Gate Y").
type DeviceLocation struct {
	DeviceID     string
	GateID       int
	GateNumber   string
	BuildingName string
	SiteID       int
}

// SiteDeviceRow is one row of the flattened site topology listing.
type SiteDeviceRow struct {
	BuildingID    int    `json:"buildingId"`
	BuildingName  string `json:"buildingName"`
	FloorID       int    `json:"floorId"`
	FloorNumber   string `json:"floorNumber"`
	FloorDetails  string `json:"floorDetails"`
	GateID        int    `json:"gateId"`
	GateNumber    string `json:"gateNumber"`
	DeviceID      string `json:"deviceId"`
	DeviceDetails string `json:"deviceDetails"`
}
