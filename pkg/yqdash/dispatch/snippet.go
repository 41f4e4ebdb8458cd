package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// Snippet renders the Go call a user would write to make the same access.
// The password never appears in the output.
func Snippet(symbols []string, opts types.Options, id string, args []any) string {
	var b strings.Builder
	b.WriteString("yahoo.NewTicker(")
	b.WriteString(stringSlice(symbols))
	if o := optionsLiteral(opts); o != "" {
		b.WriteString(", ")
		b.WriteString(o)
	}
	b.WriteString(").Access(ctx, ")
	b.WriteString(strconv.Quote(id))
	for _, a := range args {
		b.WriteString(", ")
		b.WriteString(argLiteral(a))
	}
	b.WriteString(")")
	return b.String()
}

func stringSlice(s []string) string {
	quoted := make([]string, 0, len(s))
	for _, v := range s {
		quoted = append(quoted, strconv.Quote(v))
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func optionsLiteral(o types.Options) string {
	var fields []string
	if o.Formatted {
		fields = append(fields, "Formatted: true")
	}
	if o.Asynchronous {
		fields = append(fields, "Asynchronous: true")
	}
	if o.Username != "" {
		fields = append(fields, "Username: "+strconv.Quote(o.Username))
	}
	if o.Password != "" {
		fields = append(fields, `Password: os.Getenv("YAHOO_PASSWORD")`)
	}
	if len(fields) == 0 {
		return ""
	}
	return "types.Options{" + strings.Join(fields, ", ") + "}"
}

func argLiteral(a any) string {
	switch v := a.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		return stringSlice(v)
	case types.HistoryRequest:
		var fields []string
		if v.Period != "" {
			fields = append(fields, "Period: "+strconv.Quote(v.Period))
		}
		if v.Interval != "" {
			fields = append(fields, "Interval: "+strconv.Quote(v.Interval))
		}
		if v.Start != nil {
			fields = append(fields, "Start: date("+strconv.Quote(v.Start.Format("2006-01-02"))+")")
		}
		if v.End != nil {
			fields = append(fields, "End: date("+strconv.Quote(v.End.Format("2006-01-02"))+")")
		}
		return "types.HistoryRequest{" + strings.Join(fields, ", ") + "}"
	default:
		return fmt.Sprintf("%#v", v)
	}
}
