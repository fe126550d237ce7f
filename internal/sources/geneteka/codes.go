package geneteka

import "genecrawler/internal/location"

// regionCodes maps canonical voivodeships to Geneteka's own regional coding
// scheme, submitted as the "w" form parameter.
var regionCodes = map[location.Region]string{
	location.Dolnoslaskie:       "01ds",
	location.KujawskoPomorskie:  "02kp",
	location.Lubelskie:          "03lb",
	location.Lubuskie:           "04ls",
	location.Lodzkie:            "05ld",
	location.Malopolskie:        "06mp",
	location.Mazowieckie:        "07mz",
	location.Opolskie:           "08op",
	location.Podkarpackie:       "09pk",
	location.Podlaskie:          "10pl",
	location.Pomorskie:          "11pm",
	location.Slaskie:            "12sl",
	location.Swietokrzyskie:     "13sk",
	location.WarminskoMazurskie: "14wm",
	location.Wielkopolskie:      "15wp",
	location.Zachodniopomorskie: "16zp",
}

// RegionCode translates a canonical region to Geneteka's code.
func RegionCode(region location.Region) (string, bool) {
	code, ok := regionCodes[region]
	return code, ok
}
