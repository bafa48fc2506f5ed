// Package calllog reads call records from a whitespace-delimited call log.
//
// Each record is five tokens:
//
//	<start> <end> <trace-id> <service> <caller-span>-><span>
//
// A caller span of "null" marks the root call of a trace. Timestamps use
// one of Layouts, tried in order.
//
// Example:
//
//	r := calllog.NewReader(file)
//	for {
//		rec, err := r.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
package calllog
