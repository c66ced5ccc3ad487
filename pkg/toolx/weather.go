package toolx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abraxas-365/skycast/pkg/logx"
)

// Unit constants for temperature readings
const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

// Reading is the weather lookup result. Exactly one shape is populated: the
// success fields, or Error. Lookup failures travel as data so the model can
// phrase an explanation in the second pass instead of the turn dying.
type Reading struct {
	Temperature float64 `json:"temperature,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	Location    string  `json:"location,omitempty"`
	Humidity    int     `json:"humidity,omitempty"`
	Wind        float64 `json:"wind,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Failed reports whether the reading carries the error shape
func (r Reading) Failed() bool {
	return r.Error != ""
}

// JSON serializes the reading; the zero-value fallback can't actually occur
// for this shape but keeps callers total
func (r Reading) JSON() json.RawMessage {
	data, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage(`{"error":"unserializable weather reading"}`)
	}
	return data
}

// WeatherService is the lookup boundary the orchestrator depends on
type WeatherService interface {
	Current(ctx context.Context, location, unit string) Reading
}

// WeatherClient looks up current conditions via the OpenWeatherMap API
type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// WeatherOption configures a WeatherClient
type WeatherOption func(*WeatherClient)

// WithBaseURL overrides the API base URL (used in tests)
func WithBaseURL(baseURL string) WeatherOption {
	return func(c *WeatherClient) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout for lookups
func WithTimeout(timeout time.Duration) WeatherOption {
	return func(c *WeatherClient) {
		c.httpClient.Timeout = timeout
	}
}

// NewWeatherClient creates a weather client
func NewWeatherClient(apiKey string, opts ...WeatherOption) *WeatherClient {
	c := &WeatherClient{
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/data/2.5",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// owmResponse is the subset of the OpenWeatherMap current-weather payload we
// read
type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// Current implements WeatherService. It never returns a Go error: every
// failure mode is folded into the Reading's error shape.
func (c *WeatherClient) Current(ctx context.Context, location, unit string) Reading {
	if c.apiKey == "" {
		return Reading{Error: "API key not configured"}
	}
	if location == "" {
		return Reading{Error: "location is required"}
	}
	if unit != UnitCelsius && unit != UnitFahrenheit {
		unit = UnitCelsius
	}

	units := "metric"
	if unit == UnitFahrenheit {
		units = "imperial"
	}

	endpoint := fmt.Sprintf("%s/weather?q=%s&units=%s&appid=%s",
		c.baseURL, url.QueryEscape(location), units, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Reading{Error: fmt.Sprintf("building weather request: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.WithError(err).Warn("weather lookup failed")
		return Reading{Error: fmt.Sprintf("weather service unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The error body is JSON when it comes from the API itself, but a
		// proxy can hand back HTML; the status message covers that case.
		var errBody owmResponse
		msg := ""
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			msg = errBody.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("weather service returned status %d", resp.StatusCode)
		}
		return Reading{Error: msg}
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{Error: "weather service returned an unreadable response"}
	}

	condition := ""
	if len(body.Weather) > 0 {
		condition = body.Weather[0].Description
	}
	resolved := body.Name
	if resolved == "" {
		resolved = location
	}

	return Reading{
		Temperature: body.Main.Temp,
		Condition:   condition,
		Location:    resolved,
		Humidity:    body.Main.Humidity,
		Wind:        body.Wind.Speed,
		Unit:        unit,
	}
}

// WeatherToolName is the tool identifier exposed to models
const WeatherToolName = "get_weather"

// WeatherTool adapts a WeatherService to the Tool interface for the
// structured tool-call path
type WeatherTool struct {
	service     WeatherService
	defaultUnit string
}

// NewWeatherTool creates the weather tool
func NewWeatherTool(service WeatherService, defaultUnit string) *WeatherTool {
	if defaultUnit == "" {
		defaultUnit = UnitCelsius
	}
	return &WeatherTool{service: service, defaultUnit: defaultUnit}
}

// Name implements Tool
func (t *WeatherTool) Name() string { return WeatherToolName }

// Description implements Tool
func (t *WeatherTool) Description() string {
	return "Get the current weather for a location"
}

// Parameters implements Tool
func (t *WeatherTool) Parameters() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City and region, e.g. \"Austin, TX\"",
			},
			"unit": map[string]any{
				"type": "string",
				"enum": []string{UnitCelsius, UnitFahrenheit},
			},
		},
		"required": []string{"location"},
	}
}

// Call implements Tool
func (t *WeatherTool) Call(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Location string `json:"location"`
		Unit     string `json:"unit"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", errorRegistry.NewWithCause(ErrInvalidArguments, err)
	}

	unit := args.Unit
	if unit == "" {
		unit = t.defaultUnit
	}

	reading := t.service.Current(ctx, args.Location, unit)
	return string(reading.JSON()), nil
}
