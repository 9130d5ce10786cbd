package models

// Building is one campus building in API responses.
type Building struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
}

// BuildingList is the response for the buildings endpoint.
type BuildingList struct {
	Buildings []Building `json:"buildings"`
}

// BuildingMatch is one scored hit from the building search endpoint.
type BuildingMatch struct {
	Building Building `json:"building"`
	Score    int      `json:"score"`
}

// BuildingMatchList is the response for the building search endpoint.
type BuildingMatchList struct {
	Matches []BuildingMatch `json:"matches"`
}
