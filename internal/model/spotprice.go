package model

import "time"

// SpotPrice is one hourly spot-market observation.
//
// Prices are carried in both units the Netztransparenz feed uses:
// - PriceCtKWh: ct/kWh as published (minor units)
// - PriceEUR:   EUR/kWh (major units, always PriceCtKWh / 100)
//
// The optimizer works exclusively in EUR/kWh.
type SpotPrice struct {
	Day        time.Time // calendar date only (midnight UTC)
	Hour       int       // 0..23
	PriceCtKWh float64
	PriceEUR   float64
}

// NewSpotPrice builds a SpotPrice from a ct/kWh price, deriving the EUR value.
func NewSpotPrice(day time.Time, hour int, priceCtKWh float64) SpotPrice {
	return SpotPrice{
		Day:        Midnight(day),
		Hour:       hour,
		PriceCtKWh: priceCtKWh,
		PriceEUR:   priceCtKWh / 100.0,
	}
}

// DaySeries is the price series for a single day, ordered by hour ascending.
// Hours are unique but need not be contiguous; missing hours are simply absent.
type DaySeries []SpotPrice
