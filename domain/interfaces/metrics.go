package interfaces

import "time"

// Metrics records extraction and scrape outcomes
type Metrics interface {
	// ObservePass records one extraction pass; result is "success" or "error"
	ObservePass(result string, elements int, duration time.Duration)

	// ObserveScrape records one complete scrape
	ObserveScrape(result string, screenshots int, duration time.Duration)

	IncRetry()
	SetInFlight(n int)
}
