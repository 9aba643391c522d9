// Package prompt holds the text the assistant sends to the model.
package prompt

import "strings"

const (
	// WeatherToolName is the function name the model calls for lookups.
	WeatherToolName = "get_weather"

	// WeatherToolDescription tells the model when to call the lookup tool.
	WeatherToolDescription = "Retrieve weather data for a given location (city name or coordinates)"

	// LocationParamDescription documents the single "location" argument.
	LocationParamDescription = "Location name (e.g., 'London, UK') or coordinates (e.g., '51.5074,-0.1278')"
)

const defaultSystemPrompt = "You are a weather assistant. " +
	"For any weather query (e.g., 'weather of London', 'London', or '51.5074,-0.1278'), " +
	"use the " + WeatherToolName + " function with the location (city name or coordinates). " +
	"If the location is ambiguous (e.g., multiple Londons), ask for clarification " +
	"(e.g., London, UK vs. London, Canada). " +
	"If the user confirms a location (e.g., 'London, UK' or 'yes' to a suggested location), " +
	"call " + WeatherToolName + " immediately. " +
	"Do not provide coordinates yourself."

// BuildSystemPrompt returns the system turn that seeds every conversation.
// A non-empty override replaces the built-in prompt.
func BuildSystemPrompt(override string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}
	return defaultSystemPrompt
}
