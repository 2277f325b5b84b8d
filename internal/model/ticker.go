package model

import "fmt"

// Sector groups tracked tickers on the dashboard
type Sector string

const (
	SectorNasdaqTech  Sector = "NASDAQ Tech"
	SectorSP500       Sector = "S&P 500"
	SectorBiotech     Sector = "Biotech"
	SectorSpace       Sector = "Space"
	SectorCleanEnergy Sector = "Clean Energy"
	SectorNuclear     Sector = "Nuclear"
)

// Sectors lists every sector in dashboard order
var Sectors = []Sector{
	SectorNasdaqTech,
	SectorSP500,
	SectorBiotech,
	SectorSpace,
	SectorCleanEnergy,
	SectorNuclear,
}

// ParseSector maps a configured sector name to a Sector
func ParseSector(name string) (Sector, error) {
	for _, s := range Sectors {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sector %q", name)
}

// Ticker is a tracked equity
type Ticker struct {
	Symbol string `json:"symbol"`
	Sector Sector `json:"sector"`
}
