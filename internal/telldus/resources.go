package telldus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Category groups the resources of a Telldus Live account.
type Category string

const (
	CategoryController Category = "controller"
	CategoryDevice     Category = "device"
	CategorySensor     Category = "sensor"
)

// Entry is one listed resource.
type Entry struct {
	Category Category
	ID       string
	Name     string
	// Details is a comma-separated summary; empty when nothing is known.
	Details string
}

// ListControllers returns the controllers (gateways) on the account.
func (s *Session) ListControllers(ctx context.Context) ([]Entry, error) {
	items, err := s.list(ctx, "list controllers", "/json/clients/list", nil, "client", "clients")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var details []string
		if online, ok := pickString(item, "online"); ok {
			switch online {
			case "1", "true", "True", "TRUE":
				details = append(details, "online")
			case "0", "false", "False", "FALSE":
				details = append(details, "offline")
			}
		}
		if lastSeen, ok := pickString(item, "lastSeen", "lastseen"); ok && lastSeen != "0" {
			details = append(details, "lastSeen="+lastSeen)
		}
		if fw, ok := pickString(item, "firmware", "firmwareVersion"); ok {
			details = append(details, "fw="+fw)
		}
		entries = append(entries, Entry{
			Category: CategoryController,
			ID:       pickStringOr(item, "?", "id", "clientId"),
			Name:     pickStringOr(item, "(controller)", "name", "clientName"),
			Details:  joinDetails(details),
		})
	}
	return entries, nil
}

// ListDevices returns the devices on the account.
func (s *Session) ListDevices(ctx context.Context) ([]Entry, error) {
	items, err := s.list(ctx, "list devices", "/json/devices/list", nil, "device", "devices")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var details []string
		if model, ok := pickString(item, "model", "deviceType", "type"); ok {
			details = append(details, model)
		}
		if state, ok := pickString(item, "statevalue", "state", "stateValue"); ok {
			details = append(details, "state="+state)
		}
		if client, ok := pickString(item, "clientName"); ok {
			details = append(details, "client="+client)
		}
		entries = append(entries, Entry{
			Category: CategoryDevice,
			ID:       pickStringOr(item, "?", "id", "deviceId"),
			Name:     pickStringOr(item, "(unnamed device)", "name"),
			Details:  joinDetails(details),
		})
	}
	return entries, nil
}

// ListSensors returns the sensors on the account including their latest values.
func (s *Session) ListSensors(ctx context.Context) ([]Entry, error) {
	query := url.Values{
		"includeIgnored": {"0"},
		"includeValues":  {"1"},
		"includeScale":   {"1"},
	}
	items, err := s.list(ctx, "list sensors", "/json/sensors/list", query, "sensor", "sensors")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var details []string
		if model, ok := pickString(item, "model"); ok {
			details = append(details, model)
		}
		if protocol, ok := pickString(item, "protocol"); ok {
			details = append(details, "protocol="+protocol)
		}
		if data, ok := item["data"].([]any); ok {
			var values []string
			for _, raw := range data {
				sample, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				name, ok := pickString(sample, "name")
				if !ok {
					continue
				}
				value, _ := pickString(sample, "value")
				v := name + "=" + value
				if scale, ok := pickString(sample, "scale"); ok {
					v += "@" + scale
				}
				values = append(values, v)
			}
			if len(values) > 0 {
				details = append(details, strings.Join(values, ", "))
			}
		}
		entries = append(entries, Entry{
			Category: CategorySensor,
			ID:       pickStringOr(item, "?", "id", "sensorId"),
			Name:     pickStringOr(item, "(unnamed sensor)", "name"),
			Details:  joinDetails(details),
		})
	}
	return entries, nil
}

// list fetches path and returns the item array, which Telldus Live returns
// either bare or under one of keys.
func (s *Session) list(ctx context.Context, op, path string, query url.Values, keys ...string) ([]map[string]any, error) {
	var payload any
	if err := s.GetJSON(ctx, op, path, query, &payload); err != nil {
		return nil, err
	}

	var raw []any
	switch v := payload.(type) {
	case []any:
		raw = v
	case map[string]any:
		for _, key := range keys {
			if arr, ok := v[key].([]any); ok {
				raw = arr
				break
			}
		}
	}

	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// pickString returns the first non-empty value among keys, rendered as text.
func pickString(item map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := item[key]
		if !ok {
			continue
		}
		if text, ok := valueString(v); ok && text != "" {
			return text, true
		}
	}
	return "", false
}

func pickStringOr(item map[string]any, fallback string, keys ...string) string {
	if v, ok := pickString(item, keys...); ok {
		return v
	}
	return fallback
}

func valueString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t), true
		}
		return string(b), true
	}
}

func joinDetails(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
