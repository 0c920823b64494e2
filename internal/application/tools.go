package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"smart-lights/internal/domain"
)

// ToolName identifies a tool the model may call. The set is closed: Call
// handles every member explicitly.
type ToolName string

const ToolUpdateLights ToolName = "update_lights"

const (
	OutputToolNotFound    = "FUNCTION NOT FOUND"
	OutputInvalidArgument = "INVALID ARGUMENTS"
)

type LightUpdater interface {
	Dispatch(ctx context.Context, batch domain.BatchConfig) *Outcome
}

type ToolRegistry struct {
	lights       LightUpdater
	lightsDef    ToolDefinition
	lightsSchema *jsonschema.Schema
	metrics      Metrics
	logger       *slog.Logger
}

func NewToolRegistry(lights LightUpdater, layout [][]string, metrics Metrics, logger *slog.Logger) (*ToolRegistry, error) {
	def := LightsToolDefinition(layout)

	schema, err := compileSchema(def)
	if err != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", def.Name, err)
	}

	return &ToolRegistry{
		lights:       lights,
		lightsDef:    def,
		lightsSchema: schema,
		metrics:      metrics,
		logger:       logger,
	}, nil
}

func (r *ToolRegistry) Definitions() []ToolDefinition {
	return []ToolDefinition{r.lightsDef}
}

// Call executes the requested tool and returns its output. Unknown tools and
// bad arguments are reported through the output rather than as errors so the
// conversation can continue.
func (r *ToolRegistry) Call(ctx context.Context, call ToolCall) string {
	r.logger.Info("calling tool", "tool", call.Name, "call_id", call.CallID)

	switch ToolName(call.Name) {
	case ToolUpdateLights:
		return r.updateLights(ctx, call.Arguments)
	default:
		r.logger.Warn("model requested unknown tool", "tool", call.Name)
		r.metrics.ToolCall(call.Name, "not_found")
		return OutputToolNotFound
	}
}

func (r *ToolRegistry) updateLights(ctx context.Context, raw json.RawMessage) string {
	args := decodeArguments(raw)
	if err := r.lightsSchema.Validate(args); err != nil {
		r.logger.Warn("invalid tool arguments", "tool", ToolUpdateLights, "error", err)
		r.metrics.ToolCall(string(ToolUpdateLights), "invalid")
		return fmt.Sprintf("%s: %v", OutputInvalidArgument, err)
	}

	batch := batchFromArguments(args)

	outcome := r.lights.Dispatch(ctx, batch)
	result := "ok"
	if outcome.Failed() > 0 {
		result = "failed"
	}
	r.metrics.ToolCall(string(ToolUpdateLights), result)

	return outcome.Summary()
}

// decodeArguments parses tool arguments for validation. Missing or malformed
// arguments become an empty object.
func decodeArguments(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return map[string]any{}
	}
	return v
}

// batchFromArguments converts validated arguments into a batch. Channels are
// json.Number values that the schema has already checked to be integral, so
// forms like 255.0 or 1e2 are accepted. Entries that are not objects still
// produce an empty config so the dispatcher reports them as unresolved.
func batchFromArguments(args any) domain.BatchConfig {
	obj, _ := args.(map[string]any)
	batch := make(domain.BatchConfig, len(obj))

	for name, v := range obj {
		fields, _ := v.(map[string]any)

		var cfg domain.DeviceConfig
		if sw, ok := fields["switch"].(string); ok {
			state := domain.SwitchState(sw)
			cfg.Switch = &state
		}
		cfg.Red = channelValue(fields["red"])
		cfg.Green = channelValue(fields["green"])
		cfg.Blue = channelValue(fields["blue"])

		batch[name] = cfg
	}

	return batch
}

func channelValue(v any) *int {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	c := int(math.Round(f))
	return &c
}

// compileSchema compiles the tool parameters for argument validation. Names
// outside the layout are not rejected; the dispatcher reports them as
// unresolved.
func compileSchema(def ToolDefinition) (*jsonschema.Schema, error) {
	params := make(map[string]any, len(def.Parameters))
	for k, v := range def.Parameters {
		params[k] = v
	}
	delete(params, "additionalProperties")

	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling parameters: %w", err)
	}

	url := def.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	return compiler.Compile(url)
}
