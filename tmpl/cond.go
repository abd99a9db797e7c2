package tmpl

import "github.com/ardnew/domly/markup"

// conditional lowers an <if> group. Its children are emitted into the
// enclosing parent, so the tag itself never appears in the tree:
//
//	unless guard goto ELSE
//	  ...true branch...
//	  goto END            (only with an <else>)
//	ELSE:
//	  ...else branch...
//	END:
func (e *emitter) conditional(el *markup.Element, parent Temp) error {
	keys := make([]string, len(el.Attrs))
	for i, a := range el.Attrs {
		keys[i] = a.Key
	}

	guard, err := compileGuard(keys)
	if err != nil {
		return err
	}

	body, alt := splitElse(el.Children)

	branch := e.emit(Instr{Op: OpBranchFalse, Guard: guard})

	if err := e.children(body, parent); err != nil {
		return err
	}

	if alt == nil {
		e.code[branch].Target = len(e.code)

		return nil
	}

	jump := e.emit(Instr{Op: OpJump})
	e.code[branch].Target = len(e.code)

	if err := e.children(alt.Children, parent); err != nil {
		return err
	}

	e.code[jump].Target = len(e.code)

	return nil
}

// splitElse separates the true branch from the alternative. Every immediate
// <else> child is removed from the true branch; the first one, if any,
// supplies the alternative. Nested <else> tags are ordinary elements.
func splitElse(children []markup.Node) (body []markup.Node, alt *markup.Element) {
	body = make([]markup.Node, 0, len(children))

	for _, c := range children {
		if el, ok := c.(*markup.Element); ok && el.Tag == ElseTag {
			if alt == nil {
				alt = el
			}

			continue
		}

		body = append(body, c)
	}

	return body, alt
}
