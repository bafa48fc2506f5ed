package sink

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/bytedance/sonic"
	"github.com/vmihailenco/msgpack/v5"
)

// Format names an output encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

type encoder interface {
	Encode(tree *types.TraceTree) error
}

// jsonEncoder writes one JSON document per tree, each followed by a newline
type jsonEncoder struct {
	w      io.Writer
	pretty bool
}

func (e *jsonEncoder) Encode(tree *types.TraceTree) error {
	var (
		data []byte
		err  error
	)
	if e.pretty {
		data, err = sonic.MarshalIndent(tree, "", "  ")
	} else {
		data, err = sonic.Marshal(tree)
	}
	if err != nil {
		return fmt.Errorf("encode trace %s: %w", tree.ID, err)
	}

	data = append(data, '\n')
	_, err = e.w.Write(data)
	return err
}

// msgpackEncoder writes self-delimiting MessagePack values using the JSON
// field names
type msgpackEncoder struct {
	enc *msgpack.Encoder
}

func newMsgpackEncoder(w io.Writer) *msgpackEncoder {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return &msgpackEncoder{enc: enc}
}

func (e *msgpackEncoder) Encode(tree *types.TraceTree) error {
	if err := e.enc.Encode(tree); err != nil {
		return fmt.Errorf("encode trace %s: %w", tree.ID, err)
	}
	return nil
}

func newEncoder(format Format, w io.Writer, pretty bool) (encoder, error) {
	switch format {
	case FormatJSON, "":
		return &jsonEncoder{w: w, pretty: pretty}, nil
	case FormatMsgpack:
		return newMsgpackEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
