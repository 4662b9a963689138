package model

import "strings"

// GrainProfile is the safe storage band for one grain type.
type GrainProfile struct {
	Name           string
	MaxHumidity    float64
	MaxCo2         float64
	MaxTemperature float64
	ShelfDays      float64
}

var profiles = map[string]GrainProfile{
	"rice":    {Name: "Rice", MaxHumidity: 65, MaxCo2: 600, MaxTemperature: 25, ShelfDays: 180},
	"wheat":   {Name: "Wheat", MaxHumidity: 70, MaxCo2: 600, MaxTemperature: 27, ShelfDays: 240},
	"maize":   {Name: "Maize", MaxHumidity: 70, MaxCo2: 650, MaxTemperature: 27, ShelfDays: 200},
	"barley":  {Name: "Barley", MaxHumidity: 70, MaxCo2: 600, MaxTemperature: 25, ShelfDays: 240},
	"sorghum": {Name: "Sorghum", MaxHumidity: 70, MaxCo2: 650, MaxTemperature: 28, ShelfDays: 240},
}

var aliases = map[string]string{
	"corn":  "maize",
	"paddy": "rice",
}

// ProfileFor returns the profile for grainType, falling back to wheat.
func ProfileFor(grainType string) GrainProfile {
	key := strings.ToLower(strings.TrimSpace(grainType))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if p, ok := profiles[key]; ok {
		return p
	}
	return profiles["wheat"]
}
