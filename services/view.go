package services

import (
	"fmt"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
)

// locationUnknown is returned when a property has no usable address.
const locationUnknown = "Location not specified"

func newView(p *models.Property) *models.PropertyView {
	return &models.PropertyView{
		Property:          p,
		Location:          formatLocation(p.Address),
		DaysSinceCreation: daysSince(p.CreatedAt),
	}
}

func newViews(items []models.Property) []*models.PropertyView {
	views := make([]*models.PropertyView, len(items))
	for i := range items {
		views[i] = newView(&items[i])
	}
	return views
}

func formatLocation(a *models.Address) string {
	if a == nil {
		return locationUnknown
	}
	switch {
	case a.City != "" && a.Country != "":
		return fmt.Sprintf("%s, %s", a.City, a.Country)
	case a.City != "":
		return a.City
	case a.Country != "":
		return a.Country
	default:
		return locationUnknown
	}
}

func daysSince(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	days := int(time.Since(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
