package motion

import (
	"fmt"
	"strings"

	"github.com/pcallahan/gridstage/token"
)

// PathEvent is one archived pathing diagnostic.
type PathEvent struct {
	Seq    uint64
	Frame  uint64
	Token  token.Handle
	Kind   string
	Detail string
}

func (e PathEvent) String() string {
	return fmt.Sprintf("#%d f%d tok%d.%d %s %s", e.Seq, e.Frame, e.Token.ID, e.Token.Gen, e.Kind, e.Detail)
}

// PathLog is an append-only archive of pathing behavior. It never writes to
// the console; callers pull the archive when they want it.
type PathLog struct {
	enabled bool
	seq     uint64
	entries []PathEvent
}

// SetEnabled toggles recording. Disabling keeps the existing archive.
func (l *PathLog) SetEnabled(enabled bool) {
	if l != nil {
		l.enabled = enabled
	}
}

// Enabled reports whether events are being recorded.
func (l *PathLog) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PathLog) append(frame uint64, h token.Handle, kind, detail string) {
	if l == nil || !l.enabled {
		return
	}
	l.seq++
	l.entries = append(l.entries, PathEvent{
		Seq:    l.seq,
		Frame:  frame,
		Token:  h,
		Kind:   kind,
		Detail: detail,
	})
}

// Archive returns a copy of the recorded events.
func (l *PathLog) Archive() []PathEvent {
	if l == nil {
		return nil
	}
	return append([]PathEvent(nil), l.entries...)
}

// Clear drops the archive without touching the enabled flag.
func (l *PathLog) Clear() {
	if l != nil {
		l.entries = nil
	}
}

// Dump renders the archive one event per line, for clipboard export.
func (l *PathLog) Dump() string {
	if l == nil || len(l.entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
