package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/muesli/termenv"
)

// echo writes the request a mutating call would have sent.
//
//	[DRY-RUN] PUT /dedicated/server/ns123.ip-1-2-3.eu
//	{
//	    "bootId": 1
//	}
func (p *Proxy) echo(method Method, path string, body []byte) error {
	out := termenv.NewOutput(p.cfg.Output)
	tag := out.String("[DRY-RUN]").Foreground(out.Color("3")).Bold()

	if _, err := fmt.Fprintf(out, "%s %s %s\n", tag, method, path); err != nil {
		return err
	}
	if blankBody(body) {
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "    "); err != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	_, err := fmt.Fprintln(out, pretty.String())
	return err
}

// blankBody reports whether body carries nothing worth echoing: no bytes,
// null, {} or [].
func blankBody(body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
