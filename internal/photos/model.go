package photos

import (
	"strings"
	"time"
)

// Section classifies which part of a property a photo shows.
type Section string

const (
	SectionKitchen    Section = "kitchen"
	SectionBathroom   Section = "bathroom"
	SectionLivingRoom Section = "livingRoom"
	SectionBedroom    Section = "bedroom"
	SectionExterior   Section = "exterior"
)

var sections = []Section{SectionKitchen, SectionBathroom, SectionLivingRoom, SectionBedroom, SectionExterior}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	for _, known := range sections {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSection matches raw case-insensitively against the known sections.
func ParseSection(raw string) (Section, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range sections {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Photo is a stored image belonging to a property. PublicID is empty when the
// storage provider did not issue one.
type Photo struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId,omitempty"`
	Section    Section   `json:"section"`
	PropertyID string    `json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
