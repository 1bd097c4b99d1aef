package logbuffer

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultTarget is used for entries logged through an unnamed zap logger.
const DefaultTarget = "app"

// Core is a zapcore.Core that writes into a Buffer. The zap logger name
// becomes the entry target; structured fields are appended to the message as
// sorted key=value pairs.
type Core struct {
	zapcore.LevelEnabler
	buf    *Buffer
	fields []zapcore.Field
}

// NewCore returns a core that records entries enabled by level into buf.
func NewCore(buf *Buffer, level zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: level, buf: buf}
}

// With returns a copy of the core carrying additional fields.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{LevelEnabler: c.LevelEnabler, buf: c.buf}
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	target := ent.LoggerName
	if target == "" {
		target = DefaultTarget
	}
	c.buf.Push(FromZap(ent.Level), target, formatMessage(ent.Message, c.fields, fields))
	return nil
}

func (c *Core) Sync() error { return nil }

func formatMessage(msg string, groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range groups {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, enc.Fields[k])
	}
	return sb.String()
}
