package tmpl

import (
	"io"
	"strings"
)

// Print writes the program listing to w, one numbered instruction per line:
//
//	0000  el0 = createElement "div"
//	0001  this["name"] = el0
//	0002  el0.setAttribute "class", "card "+data["kind"]
//	0003  return el0
func (t *Template) Print(w io.Writer) error {
	for pc, ins := range t.code {
		if _, err := io.WriteString(w, label(pc)+"  "+ins.String()+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// String returns the program listing.
func (t *Template) String() string {
	var sb strings.Builder

	_ = t.Print(&sb)

	return sb.String()
}
