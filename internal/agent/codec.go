package agent

import (
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/adamkadaban/kea-tui/internal/state"
)

// Apps travel as google.protobuf.Struct values. Durations are whole seconds
// and timestamps RFC 3339 strings, matching what the Stork agent reports.
// Struct numbers are doubles, so 64-bit ids and counters are sent as decimal
// strings; numbers are still accepted when decoding.

func encodeApp(app state.App) (*structpb.Struct, error) {
	fields := map[string]any{
		"id":      intField(app.ID),
		"name":    app.Name,
		"type":    app.Type,
		"version": app.Version,
		"machine": map[string]any{
			"id":       intField(app.Machine.ID),
			"address":  app.Machine.Address,
			"hostname": app.Machine.Hostname,
		},
	}
	if app.Details != nil {
		daemons := make([]any, 0, len(app.Details.Daemons))
		for _, d := range app.Details.Daemons {
			daemons = append(daemons, encodeDaemon(d))
		}
		fields["details"] = map[string]any{"daemons": daemons}
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode app %d: %w", app.ID, err)
	}
	return s, nil
}

func encodeDaemon(d state.Daemon) map[string]any {
	hooks := make([]any, 0, len(d.Hooks))
	for _, hook := range d.Hooks {
		hooks = append(hooks, hook)
	}
	targets := make([]any, 0, len(d.LogTargets))
	for _, lt := range d.LogTargets {
		targets = append(targets, map[string]any{
			"id":       intField(lt.ID),
			"name":     lt.Name,
			"severity": lt.Severity,
			"output":   lt.Output,
		})
	}

	out := map[string]any{
		"id":               intField(d.ID),
		"name":             d.Name,
		"pid":              int64(d.Pid),
		"active":           d.Active,
		"monitored":        d.Monitored,
		"version":          d.Version,
		"extendedVersion":  d.ExtendedVersion,
		"uptime":           int64(d.Uptime / time.Second),
		"hooks":            hooks,
		"logTargets":       targets,
		"agentCommErrors":  intField(d.AgentCommErrors),
		"caCommErrors":     intField(d.CACommErrors),
		"daemonCommErrors": intField(d.DaemonCommErrors),
	}
	if !d.ReloadedAt.IsZero() {
		out["reloadedAt"] = d.ReloadedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func decodeApp(s *structpb.Struct) (state.App, error) {
	if s == nil {
		return state.App{}, fmt.Errorf("decode app: empty message")
	}
	fields := s.AsMap()

	app := state.App{
		ID:      asInt(fields["id"]),
		Name:    asString(fields["name"]),
		Type:    asString(fields["type"]),
		Version: asString(fields["version"]),
	}
	if machine, ok := fields["machine"].(map[string]any); ok {
		app.Machine = state.Machine{
			ID:       asInt(machine["id"]),
			Address:  asString(machine["address"]),
			Hostname: asString(machine["hostname"]),
		}
	}

	details, ok := fields["details"].(map[string]any)
	if !ok {
		return app, nil
	}
	app.Details = &state.AppDetails{}
	rawDaemons, _ := details["daemons"].([]any)
	for idx, raw := range rawDaemons {
		fields, ok := raw.(map[string]any)
		if !ok {
			return state.App{}, fmt.Errorf("decode app %d: daemon %d is not an object", app.ID, idx)
		}
		d, err := decodeDaemon(fields)
		if err != nil {
			return state.App{}, fmt.Errorf("decode app %d: daemon %d: %w", app.ID, idx, err)
		}
		app.Details.Daemons = append(app.Details.Daemons, d)
	}
	return app, nil
}

func decodeDaemon(fields map[string]any) (state.Daemon, error) {
	d := state.Daemon{
		ID:               asInt(fields["id"]),
		Name:             asString(fields["name"]),
		Pid:              int32(asInt(fields["pid"])),
		Active:           asBool(fields["active"]),
		Monitored:        asBool(fields["monitored"]),
		Version:          asString(fields["version"]),
		ExtendedVersion:  asString(fields["extendedVersion"]),
		Uptime:           time.Duration(asInt(fields["uptime"])) * time.Second,
		AgentCommErrors:  asInt(fields["agentCommErrors"]),
		CACommErrors:     asInt(fields["caCommErrors"]),
		DaemonCommErrors: asInt(fields["daemonCommErrors"]),
	}
	if raw := asString(fields["reloadedAt"]); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return state.Daemon{}, fmt.Errorf("reloadedAt: %w", err)
		}
		d.ReloadedAt = ts
	}
	if hooks, ok := fields["hooks"].([]any); ok {
		for _, hook := range hooks {
			d.Hooks = append(d.Hooks, asString(hook))
		}
	}
	if targets, ok := fields["logTargets"].([]any); ok {
		for _, raw := range targets {
			lt, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			d.LogTargets = append(d.LogTargets, state.LogTarget{
				ID:       asInt(lt["id"]),
				Name:     asString(lt["name"]),
				Severity: asString(lt["severity"]),
				Output:   asString(lt["output"]),
			})
		}
	}
	return d, nil
}

func intField(v int64) string {
	return strconv.FormatInt(v, 10)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	case float64:
		return int64(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
