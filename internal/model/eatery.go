package model

// EateriesResponse is the document served by the dining API
type EateriesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Eateries []Eatery `json:"eateries"`
	} `json:"data"`
}

// Eatery is one dining venue as described by the dining API
type Eatery struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	OperatingHours []DayHours    `json:"operatingHours"`
	CampusArea     Description   `json:"campusArea"`
	Latitude       float64       `json:"latitude"`
	Longitude      float64       `json:"longitude"`
	Location       string        `json:"location"`
	EateryTypes    []Description `json:"eateryTypes"`
}

// Description is a descr/descrshort pair
type Description struct {
	Descr      string `json:"descr"`
	DescrShort string `json:"descrshort"`
}

// DayHours lists the meal events of one day
type DayHours struct {
	Date   string      `json:"date"`
	Status string      `json:"status"`
	Events []MealEvent `json:"events"`
}

// MealEvent is a serving window such as Lunch or Dinner
type MealEvent struct {
	Descr          string         `json:"descr"`
	Start          string         `json:"start"`
	End            string         `json:"end"`
	StartTimestamp int64          `json:"startTimestamp"`
	EndTimestamp   int64          `json:"endTimestamp"`
	Menu           []MenuCategory `json:"menu"`
	CalSummary     string         `json:"calSummary"`
}

// MenuCategory groups the items of a station
type MenuCategory struct {
	Category string    `json:"category"`
	SortIdx  int       `json:"sortIdx"`
	Items    []APIItem `json:"items"`
}

// APIItem is a dish as served by the dining API
type APIItem struct {
	Item    string `json:"item"`
	Healthy bool   `json:"healthy"`
	SortIdx int    `json:"sortIdx"`
}
