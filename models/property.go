package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeApartment = "APARTMENT"
	TypeHouse     = "HOUSE"
	TypeRoom      = "ROOM"
	TypeHotel     = "HOTEL"
	TypeCabin     = "CABIN"
	TypeVilla     = "VILLA"
)

var PropertyTypes = []string{TypeApartment, TypeHouse, TypeRoom, TypeHotel, TypeCabin, TypeVilla}

func IsValidPropertyType(t string) bool {
	for _, v := range PropertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Address struct {
	Street     string   `bson:"street" json:"street"`
	City       string   `bson:"city" json:"city"`
	State      string   `bson:"state" json:"state"`
	PostalCode string   `bson:"postal_code" json:"postal_code"`
	Country    string   `bson:"country" json:"country"`
	Latitude   *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude  *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

type Capacity struct {
	Accommodates int `bson:"accommodates" json:"accommodates"`
	Bedrooms     int `bson:"bedrooms" json:"bedrooms"`
	Beds         int `bson:"beds" json:"beds"`
	Bathrooms    int `bson:"bathrooms" json:"bathrooms"`
}

type Amenities struct {
	Wifi            bool `bson:"wifi" json:"wifi"`
	Kitchen         bool `bson:"kitchen" json:"kitchen"`
	Parking         bool `bson:"parking" json:"parking"`
	AirConditioning bool `bson:"air_conditioning" json:"air_conditioning"`
	Heating         bool `bson:"heating" json:"heating"`
	Washer          bool `bson:"washer" json:"washer"`
	TV              bool `bson:"tv" json:"tv"`
	Pool            bool `bson:"pool" json:"pool"`
}

type Policies struct {
	CheckInTime    string `bson:"check_in_time" json:"check_in_time"`
	CheckOutTime   string `bson:"check_out_time" json:"check_out_time"`
	MinimumStay    int    `bson:"minimum_stay" json:"minimum_stay"`
	PetsAllowed    bool   `bson:"pets_allowed" json:"pets_allowed"`
	SmokingAllowed bool   `bson:"smoking_allowed" json:"smoking_allowed"`
}

type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	PropertyType  string             `bson:"property_type" json:"property_type"`
	Address       *Address           `bson:"address,omitempty" json:"address,omitempty"`
	Capacity      Capacity           `bson:"capacity" json:"capacity"`
	Amenities     Amenities          `bson:"amenities" json:"amenities"`
	Policies      Policies           `bson:"policies" json:"policies"`
	Images        []string           `bson:"images" json:"images"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	DeactivatedAt *time.Time         `bson:"deactivated_at,omitempty" json:"deactivated_at,omitempty"`
}

// PropertyView is a Property enriched with the derived response fields.
type PropertyView struct {
	*Property
	Location          string `json:"location"`
	DaysSinceCreation int    `json:"days_since_creation"`
}
