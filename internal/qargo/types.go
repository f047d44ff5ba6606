package qargo

import (
	"github.com/agentstation/utc"

	"github.com/dispatchware/fleetsync/pkg/fleet"
)

// vehicle is the wire form of a vehicle attached to a resource.
type vehicle struct {
	LicensePlate string `json:"license_plate"`
}

// resourceItem is the wire form of a resource.
type resourceItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CustomFields map[string]string `json:"custom_fields"`
	Truck        *vehicle          `json:"truck,omitempty"`
	Van          *vehicle          `json:"van,omitempty"`
	Tractor      *vehicle          `json:"tractor,omitempty"`
}

// toResource converts a wire resource to the domain type. The first
// non-empty plate among the attached vehicles becomes the resource's plate.
func (r resourceItem) toResource() fleet.Resource {
	plate := ""
	for _, v := range []*vehicle{r.Truck, r.Van, r.Tractor} {
		if v != nil && v.LicensePlate != "" {
			plate = v.LicensePlate
			break
		}
	}
	return fleet.Resource{
		ID:           r.ID,
		Name:         r.Name,
		LicensePlate: plate,
		CustomFields: r.CustomFields,
	}
}

// unavailabilityItem is the wire form of an unavailability record.
type unavailabilityItem struct {
	ID          string   `json:"id,omitempty"`
	StartTime   utc.Time `json:"start_time"`
	EndTime     utc.Time `json:"end_time"`
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
}

// toUnavailability converts a wire record to the domain type, scoped to the
// resource it was fetched for.
func (u unavailabilityItem) toUnavailability(resourceID string) fleet.Unavailability {
	return fleet.Unavailability{
		ID:         u.ID,
		ResourceID: resourceID,
		Start:      u.StartTime,
		End:        u.EndTime,
		Reason:     u.Reason,
		Note:       u.Description,
	}
}

// toItem converts a domain record to its wire form.
func toItem(u fleet.Unavailability) unavailabilityItem {
	return unavailabilityItem{
		StartTime:   u.Start,
		EndTime:     u.End,
		Reason:      u.Reason,
		Description: u.Note,
	}
}
