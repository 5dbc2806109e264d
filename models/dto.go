package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PropertyInput is the payload accepted on property creation.
type PropertyInput struct {
	UserID       string    `json:"user_id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PropertyType string    `json:"property_type"`
	Address      *Address  `json:"address,omitempty"`
	Capacity     Capacity  `json:"capacity"`
	Amenities    Amenities `json:"amenities"`
	Policies     Policies  `json:"policies"`
}

func (in *PropertyInput) Validate() error {
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !IsValidPropertyType(in.PropertyType) {
		return &ValidationError{Field: "property_type", Reason: "must be one of APARTMENT, HOUSE, ROOM, HOTEL, CABIN, VILLA"}
	}
	if err := validateCapacity(&in.Capacity); err != nil {
		return err
	}
	return validatePolicies(&in.Policies)
}

// ToProperty builds the document to persist, applying policy defaults.
func (in *PropertyInput) ToProperty() *Property {
	p := &Property{
		UserID:       in.UserID,
		Name:         in.Name,
		Description:  in.Description,
		PropertyType: in.PropertyType,
		Address:      in.Address,
		Capacity:     in.Capacity,
		Amenities:    in.Amenities,
		Policies:     in.Policies,
	}
	p.Policies = normalizedPolicies(p.Policies)
	return p
}

// normalizedPolicies fills unset policy values with the house defaults.
func normalizedPolicies(p Policies) Policies {
	if p.CheckInTime == "" {
		p.CheckInTime = "15:00"
	}
	if p.CheckOutTime == "" {
		p.CheckOutTime = "11:00"
	}
	if p.MinimumStay < 1 {
		p.MinimumStay = 1
	}
	return p
}

// PropertyPatch is a typed partial update; nil fields are left untouched.
type PropertyPatch struct {
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	PropertyType *string    `json:"property_type,omitempty"`
	Address      *Address   `json:"address,omitempty"`
	Capacity     *Capacity  `json:"capacity,omitempty"`
	Amenities    *Amenities `json:"amenities,omitempty"`
	Policies     *Policies  `json:"policies,omitempty"`
}

func (p *PropertyPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.PropertyType != nil && !IsValidPropertyType(*p.PropertyType) {
		return &ValidationError{Field: "property_type", Reason: "must be one of APARTMENT, HOUSE, ROOM, HOTEL, CABIN, VILLA"}
	}
	if p.Capacity != nil {
		if err := validateCapacity(p.Capacity); err != nil {
			return err
		}
	}
	if p.Policies != nil {
		return validatePolicies(p.Policies)
	}
	return nil
}

// Diff compares each proposed field's serialized form against the current
// document. Replacing a nested object counts as a change even when only one
// leaf differs. Returns the fields to $set keyed by their bson names, plus
// the list of changed field names.
func (p *PropertyPatch) Diff(current *Property) (map[string]interface{}, []string) {
	fields := make(map[string]interface{})
	var changed []string
	set := func(key string, proposed, existing interface{}) {
		if !sameJSON(proposed, existing) {
			fields[key] = proposed
			changed = append(changed, key)
		}
	}
	if p.Name != nil {
		set("name", *p.Name, current.Name)
	}
	if p.Description != nil {
		set("description", *p.Description, current.Description)
	}
	if p.PropertyType != nil {
		set("property_type", *p.PropertyType, current.PropertyType)
	}
	if p.Address != nil {
		set("address", p.Address, current.Address)
	}
	if p.Capacity != nil {
		set("capacity", *p.Capacity, current.Capacity)
	}
	if p.Amenities != nil {
		set("amenities", *p.Amenities, current.Amenities)
	}
	if p.Policies != nil {
		set("policies", normalizedPolicies(*p.Policies), current.Policies)
	}
	return fields, changed
}

func sameJSON(a, b interface{}) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func validateCapacity(c *Capacity) error {
	if c.Accommodates < 1 {
		return &ValidationError{Field: "capacity.accommodates", Reason: "must be at least 1"}
	}
	if c.Bedrooms < 0 {
		return &ValidationError{Field: "capacity.bedrooms", Reason: "must not be negative"}
	}
	if c.Beds < 0 {
		return &ValidationError{Field: "capacity.beds", Reason: "must not be negative"}
	}
	if c.Bathrooms < 0 {
		return &ValidationError{Field: "capacity.bathrooms", Reason: "must not be negative"}
	}
	return nil
}

func validatePolicies(p *Policies) error {
	if p.CheckInTime != "" && !timeOfDayRe.MatchString(p.CheckInTime) {
		return &ValidationError{Field: "policies.check_in_time", Reason: "must be 24h HH:MM"}
	}
	if p.CheckOutTime != "" && !timeOfDayRe.MatchString(p.CheckOutTime) {
		return &ValidationError{Field: "policies.check_out_time", Reason: "must be 24h HH:MM"}
	}
	if p.MinimumStay < 0 {
		return &ValidationError{Field: "policies.minimum_stay", Reason: "must be at least 1"}
	}
	return nil
}
