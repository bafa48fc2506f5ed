package calllog

import "time"

// Layouts are the accepted timestamp formats, tried in order:
// yyyy-MM-ddTHH:mm:ss.SSZ, yyyy-MM-ddTHH:mm:ss.SSSZ and yyyy-MM-ddTHH:mm:ssZ.
// The trailing Z is a literal; values are read as UTC.
var Layouts = []string{
	"2006-01-02T15:04:05.00Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
}

// ParseTimestamp parses value with the first matching layout. Layouts are
// fixed-width, so a value must have exactly the layout's length; time.Parse
// alone would accept any fraction length after the seconds.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range Layouts {
		if len(value) != len(layout) {
			continue
		}
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &UnrecognizedTimestampFormatError{Value: value}
}
