package mtxt

import (
	"fmt"
	"strings"
)

// File is a parsed MTXT document: an ordered list of record lines.
type File struct {
	Records []Line
}

// NewFile returns an empty document.
func NewFile() *File {
	return &File{}
}

// FileFromRecords wraps an existing record list.
func FileFromRecords(records []Line) *File {
	return &File{Records: records}
}

// Version returns the header version, if the document has one.
func (f *File) Version() (Version, bool) {
	for _, line := range f.Records {
		if h, ok := line.Record.(*Header); ok {
			return h.Version, true
		}
	}
	return Version{}, false
}

// GlobalMeta returns all file-level metadata pairs in order.
func (f *File) GlobalMeta() [][2]string {
	var metas [][2]string
	for _, line := range f.Records {
		if m, ok := line.Record.(*GlobalMeta); ok {
			metas = append(metas, [2]string{m.MetaType, m.Value})
		}
	}
	return metas
}

// GlobalMetaValue returns the first file-level metadata value for the key.
func (f *File) GlobalMetaValue(metaType string) (string, bool) {
	for _, line := range f.Records {
		if m, ok := line.Record.(*GlobalMeta); ok && m.MetaType == metaType {
			return m.Value, true
		}
	}
	return "", false
}

// AddGlobalMeta appends a file-level metadata record.
func (f *File) AddGlobalMeta(metaType, value string) {
	f.Records = append(f.Records, NewLine(&GlobalMeta{MetaType: metaType, Value: value}))
}

// Duration returns the largest record time in the document.
func (f *File) Duration() (BeatTime, bool) {
	var max BeatTime
	found := false
	for _, line := range f.Records {
		if t, ok := line.Record.Time(); ok {
			if !found || t > max {
				max = t
			}
			found = true
		}
	}
	return max, found
}

// AutoTimestampWidth returns the column width that fits every timestamp in
// the document: digits of the largest whole beat, the dot, and five
// fractional digits.
func (f *File) AutoTimestampWidth() int {
	max, _ := f.Duration()
	digits := len(fmt.Sprintf("%d", max.WholeBeats()))
	return digits + 1 + 5
}

// OutputRecords runs the process engine and transition processor over the
// document and returns the concrete event stream.
func (f *File) OutputRecords() []OutputRecord {
	records := make([]Record, len(f.Records))
	for i, line := range f.Records {
		records[i] = line.Record
	}
	return ProcessRecords(records)
}

// Format renders the document. A nil timestampWidth prints timestamps
// unpadded; otherwise each timestamp is left-aligned to the given width.
func (f *File) Format(timestampWidth *int) string {
	var b strings.Builder
	for _, line := range f.Records {
		record := line.Record

		switch record.(type) {
		case *Header, *GlobalMeta:
			b.WriteString(record.String())
		case *EmptyLine:
			if line.Comment != "" {
				b.WriteString("// " + line.Comment)
			}
		default:
			if t, ok := record.Time(); ok {
				if timestampWidth != nil {
					fmt.Fprintf(&b, "%-*s %s", *timestampWidth, t.String(), record.String())
				} else {
					fmt.Fprintf(&b, "%s %s", t.String(), record.String())
				}
			} else {
				b.WriteString(record.String())
			}
		}

		if _, empty := record.(*EmptyLine); !empty && line.Comment != "" {
			b.WriteString(" // " + line.Comment)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// String renders the document without timestamp padding.
func (f *File) String() string {
	return f.Format(nil)
}
