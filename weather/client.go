package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// Client fetches current conditions and the short-range forecast from
// OpenWeather. The core never calls this on its own; the weather signal is
// fed into forecasting as a caller-provided risk hook.
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient(apiKey string) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(openWeatherBaseURL).SetTimeout(15 * time.Second),
		apiKey: apiKey,
	}
}

// Current is the subset of the OpenWeather current-conditions response the
// risk analysis needs.
type Current struct {
	Weather []Condition `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

// Forecast is the subset of the 5-day/3-hour forecast response.
type Forecast struct {
	List []struct {
		Weather []Condition `json:"weather"`
	} `json:"list"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (c *Client) FetchCurrent(ctx context.Context, lat, lon float64) (Current, error) {
	var out Current
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   fmt.Sprintf("%f", lat),
			"lon":   fmt.Sprintf("%f", lon),
			"appid": c.apiKey,
			"units": "metric",
		}).
		SetResult(&out).
		Get("/weather")
	if err != nil {
		return Current{}, fmt.Errorf("weather request failed: %w", err)
	}
	if resp.IsError() {
		return Current{}, fmt.Errorf("weather API returned %d", resp.StatusCode())
	}
	return out, nil
}

func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	var out Forecast
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   fmt.Sprintf("%f", lat),
			"lon":   fmt.Sprintf("%f", lon),
			"appid": c.apiKey,
			"units": "metric",
		}).
		SetResult(&out).
		Get("/forecast")
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast request failed: %w", err)
	}
	if resp.IsError() {
		return Forecast{}, fmt.Errorf("forecast API returned %d", resp.StatusCode())
	}
	return out, nil
}
