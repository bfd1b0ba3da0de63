package resources

// Write payloads for the resource types that support creation through this
// client. Required fields carry validate tags; Service.Create and
// Service.Update reject violations before any request is sent.

// Property is a custom name/value property attached to a device or group.
type Property struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// WebsiteCreate is the payload for creating a website check.
type WebsiteCreate struct {
	Name            string `json:"name" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=webcheck pingcheck"`
	Domain          string `json:"domain,omitempty"`
	Description     string `json:"description,omitempty"`
	GroupID         int    `json:"groupId,omitempty"`
	IsInternal      bool   `json:"isInternal,omitempty"`
	PollingInterval int    `json:"pollingInterval,omitempty"`
	DisableAlerting bool   `json:"disableAlerting,omitempty"`
}

// DeviceGroupCreate is the payload for creating a device group.
type DeviceGroupCreate struct {
	Name             string     `json:"name" validate:"required"`
	ParentID         int        `json:"parentId"`
	Description      string     `json:"description,omitempty"`
	AppliesTo        string     `json:"appliesTo,omitempty"`
	DisableAlerting  bool       `json:"disableAlerting,omitempty"`
	CustomProperties []Property `json:"customProperties,omitempty" validate:"dive"`
}

// DeviceCreate is the payload for adding a monitored device.
type DeviceCreate struct {
	Name                 string     `json:"name" validate:"required"`
	DisplayName          string     `json:"displayName" validate:"required"`
	PreferredCollectorID int        `json:"preferredCollectorId" validate:"required"`
	HostGroupIDs         string     `json:"hostGroupIds,omitempty"`
	Description          string     `json:"description,omitempty"`
	DisableAlerting      bool       `json:"disableAlerting,omitempty"`
	CustomProperties     []Property `json:"customProperties,omitempty" validate:"dive"`
}

// SDTCreate is the payload for scheduling downtime.
type SDTCreate struct {
	Type          string `json:"type" validate:"required,oneof=DeviceSDT DeviceGroupSDT WebsiteSDT CollectorSDT"`
	StartDateTime int64  `json:"startDateTime" validate:"required"`
	EndDateTime   int64  `json:"endDateTime" validate:"required,gtfield=StartDateTime"`
	Comment       string `json:"comment,omitempty"`
	DeviceID      int    `json:"deviceId,omitempty"`
	GroupID       int    `json:"deviceGroupId,omitempty"`
	WebsiteID     int    `json:"websiteId,omitempty"`
	CollectorID   int    `json:"collectorId,omitempty"`
}
