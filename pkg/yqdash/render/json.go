package render

import (
	"encoding/json"
	"io"

	"github.com/tidwall/pretty"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Endpoint    string   `json:"endpoint"`
	DisplayName string   `json:"display_name"`
	Symbols     []string `json:"symbols"`
	Shape       string   `json:"shape"`
	Code        string   `json:"code"`
	Data        any      `json:"data"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, res types.QueryResult, opts Options) error {
	b, err := json.Marshal(jsonModel{
		Endpoint:    res.Endpoint.ID,
		DisplayName: res.Endpoint.DisplayName,
		Symbols:     res.Symbols,
		Shape:       res.Shape.String(),
		Code:        res.Code,
		Data:        res.Data,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, b, opts)
}

// writeJSON prints compact or prettified JSON followed by a newline.
func writeJSON(w io.Writer, b []byte, opts Options) error {
	if opts.Pretty || opts.Color {
		b = pretty.Pretty(b)
	} else {
		b = append(b, '\n')
	}
	if opts.Color {
		b = pretty.Color(b, nil)
	}
	_, err := w.Write(b)
	return err
}
