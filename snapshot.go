// snapshot.go — the immutable context captured for one error instance.
//
// A Snapshot is built once, at the first raise of an error instance, and never
// changes afterwards. Readers get copies (copy-on-read), so a Snapshot can be
// shared across goroutines without synchronization.
package throwctx

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the ambient view captured when an error was first raised.
type Snapshot struct {
	id   uuid.UUID
	fs   fields
	site Frame
	at   time.Time
}

func newSnapshot(fs fields, site Frame) *Snapshot {
	return &Snapshot{
		id:   uuid.New(),
		fs:   fs,
		site: site,
		at:   time.Now(),
	}
}

// ID is a random identifier unique to this capture. All log lines of the same
// error instance share it.
func (s *Snapshot) ID() string {
	if s == nil {
		return ""
	}
	return s.id.String()
}

// Properties returns a fresh map of the captured fields.
func (s *Snapshot) Properties() Properties {
	if s == nil {
		return Properties{}
	}
	return s.fs.toProperties()
}

// Fields returns a copy of the captured fields in capture order.
func (s *Snapshot) Fields() []Field {
	if s == nil || len(s.fs) == 0 {
		return nil
	}
	out := make([]Field, len(s.fs))
	copy(out, s.fs)
	return out
}

// Len is the number of captured fields.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fs)
}

// Site returns the raise call site when raise-site capture was enabled.
func (s *Snapshot) Site() (Frame, bool) {
	if s == nil || s.site.PC == 0 {
		return Frame{}, false
	}
	return s.site, true
}

// CapturedAt is the wall-clock time of the capture.
func (s *Snapshot) CapturedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.at
}

// Format implements fmt.Formatter.
//
//	%s, %v → id=<uuid> k1=v1 k2=v2 (keys sorted)
//	%+v    → multi-line: id, captured time, site (if any), one field per line
//	%q     → quoted concise form
func (s *Snapshot) Format(st fmt.State, verb rune) {
	switch verb {
	case 'v':
		if st.Flag('+') {
			s.formatVerbose(st)
			return
		}
		s.formatConcise(st)
	case 'q':
		_, _ = fmt.Fprintf(st, "%q", s.String())
	default:
		s.formatConcise(st)
	}
}

// String returns the concise form.
func (s *Snapshot) String() string {
	return fmt.Sprintf("%v", s)
}

func (s *Snapshot) formatConcise(w io.Writer) {
	if s == nil {
		_, _ = io.WriteString(w, "<nil>")
		return
	}
	_, _ = fmt.Fprintf(w, "id=%s", s.id)
	for _, f := range sortedFields(s.fs) {
		_, _ = fmt.Fprintf(w, " %s=%v", f.Key, f.Val)
	}
}

func (s *Snapshot) formatVerbose(w io.Writer) {
	if s == nil {
		_, _ = io.WriteString(w, "<nil>")
		return
	}
	_, _ = fmt.Fprintf(w, "id=%s captured=%s", s.id, s.at.Format(time.RFC3339Nano))
	if fr, ok := s.Site(); ok {
		_, _ = fmt.Fprintf(w, "\nsite: %s", fr)
	}
	if len(s.fs) > 0 {
		_, _ = io.WriteString(w, "\nfields:")
		for _, f := range sortedFields(s.fs) {
			_, _ = fmt.Fprintf(w, "\n  %s=%v", f.Key, f.Val)
		}
	}
}

func sortedFields(fs fields) fields {
	out := make(fields, len(fs))
	copy(out, fs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
