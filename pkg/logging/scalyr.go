package logging

import (
	"bytes"
	"encoding/json"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// ScalyrEncoder is a Zap encoder that outputs Scalyr-compatible JSON.
// Context fields added with Logger.With are kept by the embedded JSON encoder
// and merged into every entry.
type ScalyrEncoder struct {
	zapcore.Encoder
	config zapcore.EncoderConfig
}

// NewScalyrEncoder creates a new Scalyr-compatible encoder
func NewScalyrEncoder(config zapcore.EncoderConfig) zapcore.Encoder {
	return &ScalyrEncoder{
		Encoder: zapcore.NewJSONEncoder(config),
		config:  config,
	}
}

// EncodeEntry encodes a log entry in Scalyr-compatible format
func (e *ScalyrEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	raw, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer raw.Free()

	logObj := make(map[string]interface{})
	dec := json.NewDecoder(bytes.NewReader(raw.Bytes()))
	dec.UseNumber()
	if err := dec.Decode(&logObj); err != nil {
		return nil, err
	}

	for _, key := range []string{
		e.config.TimeKey, e.config.LevelKey, e.config.NameKey, e.config.CallerKey,
		e.config.FunctionKey, e.config.MessageKey, e.config.StacktraceKey,
	} {
		if key != "" {
			delete(logObj, key)
		}
	}

	logObj["timestamp"] = entry.Time.Format(time.RFC3339Nano)
	logObj["level"] = entry.Level.String()
	logObj["message"] = entry.Message
	logObj["logger"] = entry.LoggerName

	if entry.Caller.Defined {
		logObj["file"] = entry.Caller.File
		logObj["line"] = entry.Caller.Line
		logObj["function"] = entry.Caller.Function
	}
	if entry.Stack != "" {
		logObj["stack"] = entry.Stack
	}

	out := bufferPool.Get()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(logObj); err != nil {
		out.Free()
		return nil, err
	}
	return out, nil
}

// Clone creates a copy of the encoder, including accumulated context fields
func (e *ScalyrEncoder) Clone() zapcore.Encoder {
	return &ScalyrEncoder{
		Encoder: e.Encoder.Clone(),
		config:  e.config,
	}
}
