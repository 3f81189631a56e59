package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// extractRecordID extracts record ID from SurrealDB result
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		// Handle {"tb": "table", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			if id, ok := v["id"].(string); ok {
				return tb + ":" + id
			}
		}
	}

	// Try JSON marshaling as fallback
	if data, err := json.Marshal(id); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil && recordID.Table != "" {
			return fmt.Sprintf("%s:%v", recordID.Table, recordID.ID)
		}
	}

	return ""
}

// extractQueryResults extracts the record array of the last statement
func extractQueryResults(result []interface{}) []interface{} {
	if len(result) == 0 {
		return nil
	}
	last := result[len(result)-1]
	if resp, ok := last.(map[string]interface{}); ok {
		if records, ok := resp["result"].([]interface{}); ok {
			return records
		}
		return nil
	}
	// Direct array format
	return result
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getBool extracts a bool value from a map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// getBoolPtr extracts an optional bool value from a map
func getBoolPtr(m map[string]interface{}, key string) *bool {
	if v, ok := m[key].(bool); ok {
		return &v
	}
	return nil
}

// getInt extracts an int value from a map
func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	}
	return 0
}

// getTime extracts a time value from a map
func getTime(m map[string]interface{}, key string) *time.Time {
	var t time.Time
	switch v := m[key].(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		t = parsed
	case time.Time:
		t = v
	case models.CustomDateTime:
		t = v.Time
	case *models.CustomDateTime:
		if v == nil {
			return nil
		}
		t = v.Time
	default:
		return nil
	}
	t = t.UTC()
	return &t
}

// getTimeValue is getTime with a zero default
func getTimeValue(m map[string]interface{}, key string) time.Time {
	if t := getTime(m, key); t != nil {
		return *t
	}
	return time.Time{}
}

// getStringSlice extracts a string slice from a map
func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key].([]interface{})
	if !ok || len(v) == 0 {
		return nil
	}
	result := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// formatTime renders t for a <datetime> cast
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// stringSlice converts nil slices to empty arrays so stored fields are never NONE
func stringSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
