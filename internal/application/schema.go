package application

import (
	"fmt"
	"strings"
)

// DefaultLayout is the 2x3 grid of lights, listed left to right and top to
// bottom.
var DefaultLayout = [][]string{
	{"I1", "I2", "I3"},
	{"I4", "I5", "I6"},
}

// LightsToolDefinition builds the update_lights declaration for the given
// grid layout. Each light gets its own object with an on/off switch and three
// colour channels.
func LightsToolDefinition(layout [][]string) ToolDefinition {
	properties := make(map[string]any)
	count := 0
	for _, row := range layout {
		for _, name := range row {
			properties[name] = map[string]any{
				"type":        "object",
				"description": "Config for " + name,
				"properties": map[string]any{
					"switch": map[string]any{
						"type": "string",
						"enum": []any{"on", "off"},
					},
					"red":   map[string]any{"type": "integer"},
					"green": map[string]any{"type": "integer"},
					"blue":  map[string]any{"type": "integer"},
				},
			}
			count++
		}
	}

	return ToolDefinition{
		Name:        string(ToolUpdateLights),
		Description: lightsDescription(layout, count),
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           properties,
		},
	}
}

func lightsDescription(layout [][]string, count int) string {
	var sb strings.Builder

	widest := 0
	for _, row := range layout {
		widest = max(widest, len(row))
	}

	fmt.Fprintf(&sb, "You can use this command to update %d lights, in %d rows of %d. ", count, len(layout), widest)
	sb.WriteString("You'll send one config for each light you want to change. ")
	sb.WriteString("You can set switch, and their rgb values. ")
	sb.WriteString("Here's how the lights are placed, from left to right, and top to bottom:\n")
	for _, row := range layout {
		sb.WriteString("    ")
		sb.WriteString(strings.Join(row, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}
