// Package models defines the visit analytics domain types.
package models

import (
	"strings"
	"time"

	dErrors "tapcard/pkg/domain-errors"
)

// Device classifies the visitor's device.
type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceDesktop Device = "desktop"
	DeviceUnknown Device = "unknown"
)

// ParseDevice normalizes a client-reported device string. Anything outside
// the known classes comes back empty so the caller can fall back to
// User-Agent classification.
func ParseDevice(s string) Device {
	switch Device(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceMobile:
		return DeviceMobile
	case DeviceTablet:
		return DeviceTablet
	case DeviceDesktop:
		return DeviceDesktop
	default:
		return ""
	}
}

// Visit is one recorded card view.
type Visit struct {
	CardID    string    `json:"cardId"`
	Device    Device    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackRequest is the wire request for recording a visit.
type TrackRequest struct {
	CardID string `json:"cardId"`
	Device string `json:"device"`
}

// Normalize trims surrounding whitespace.
func (r *TrackRequest) Normalize() {
	r.CardID = strings.TrimSpace(r.CardID)
	r.Device = strings.TrimSpace(r.Device)
}

// Validate enforces the required card reference.
func (r *TrackRequest) Validate() error {
	if r.CardID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Card ID is required")
	}
	return nil
}

// Summary aggregates the visits recorded for one card.
type Summary struct {
	TotalVisits   int64 `json:"totalVisits"`
	MobileVisits  int64 `json:"mobileVisits"`
	TabletVisits  int64 `json:"tabletVisits"`
	DesktopVisits int64 `json:"desktopVisits"`
}
