package models

// Place is one geocoding result.
type Place struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Suggestion is one autocomplete candidate. Building suggestions carry a
// building ID; geocoded suggestions do not.
type Suggestion struct {
	Name       string  `json:"name"`
	Detail     string  `json:"detail,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	BuildingID string  `json:"building_id,omitempty"`
	Source     string  `json:"source"`
}

// SuggestionList is the response for the autocomplete endpoint.
type SuggestionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}
