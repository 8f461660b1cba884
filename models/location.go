package models

// Location holds a case location
type Location struct {
	Address   string  `json:"address" bson:"address"`
	District  string  `json:"district" bson:"district"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}
