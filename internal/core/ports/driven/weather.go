package driven

import "context"

// WeatherService fetches short forecasts for the agent's weather tool.
type WeatherService interface {
	// Forecast returns a human-readable forecast for location.
	// day is "today" or "tomorrow".
	Forecast(ctx context.Context, location, day string) (string, error)
}
