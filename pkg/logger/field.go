package logger

import (
	"time"

	"github.com/rs/zerolog"
)

const redactedValue = "[REDACTED]"

// Keys whose values never reach a log line or the collector.
var redactedKeys = map[string]struct{}{
	"api_key":         {},
	"registrationkey": {},
	"password":        {},
}

// Field is a structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Error logs err under the "error" key.
func Error(err error) Field { return Field{Key: zerolog.ErrorFieldName, Value: err} }

func redacted(key string) bool {
	_, ok := redactedKeys[key]
	return ok
}

func (f Field) addTo(e *zerolog.Event) {
	if redacted(f.Key) {
		e.Str(f.Key, redactedValue)
		return
	}
	switch v := f.Value.(type) {
	case string:
		e.Str(f.Key, v)
	case int:
		e.Int(f.Key, v)
	case float64:
		e.Float64(f.Key, v)
	case bool:
		e.Bool(f.Key, v)
	case time.Duration:
		e.Dur(f.Key, v)
	case error:
		e.AnErr(f.Key, v)
	default:
		e.Interface(f.Key, v)
	}
}

// value is the JSON-friendly form used for child loggers and the collector.
// Durations become milliseconds.
func (f Field) value() interface{} {
	if redacted(f.Key) {
		return redactedValue
	}
	switch v := f.Value.(type) {
	case error:
		if v == nil {
			return nil
		}
		return v.Error()
	case time.Duration:
		return v.Milliseconds()
	default:
		return v
	}
}
