package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Keys rendered in the header or hidden from the attribute list.
var headerKeys = map[string]struct{}{
	"ts":             {},
	"level":          {},
	"msg":            {},
	"stage":          {},
	"session_id":     {},
	"run_id":         {},
	"correlation_id": {},
	"component":      {},
}

// Format renders one JSON log record as
// "15:04:05 INFO  stage: message key=value ...". Lines that are not JSON
// objects are returned unchanged.
func Format(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return line
	}

	var b strings.Builder
	if ts, ok := record["ts"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			ts = parsed.Local().Format("15:04:05")
		}
		b.WriteString(ts)
		b.WriteByte(' ')
	}
	level, _ := record["level"].(string)
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(level))

	subject, _ := record["stage"].(string)
	if subject == "" {
		subject, _ = record["component"].(string)
	}
	if subject != "" {
		b.WriteString(subject)
		b.WriteString(": ")
	}
	msg, _ := record["msg"].(string)
	b.WriteString(msg)

	keys := make([]string, 0, len(record))
	for k := range record {
		if _, skip := headerKeys[k]; !skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, formatValue(record[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
