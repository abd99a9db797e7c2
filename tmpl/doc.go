// Package tmpl compiles HTML-like templates into instruction programs that
// build a fresh node tree on every execution.
//
// A template is ordinary markup with three additions:
//
//   - {{key}} markers in text and attribute values are replaced by the
//     stringified value of data[key]. Keys are flat and taken verbatim.
//   - <if a b> includes its children only when every named key is truthy;
//     an immediate <else> child supplies the alternative.
//   - data-handle="name" registers the element with the caller's [Receiver].
//     A "$name" handle registers the bare node as "name" and the runtime's
//     wrapped node as "$name".
//
// Compilation is done once. Each [Template.Execute] constructs through a
// caller-supplied [Runtime], so the same template can target any tree
// implementation:
//
//	t, err := tmpl.Compile(ctx, `<li data-handle="$item">{{label}}</li>`)
//	if err != nil {
//		return err
//	}
//
//	h := tmpl.Handles{}
//	root, err := t.Execute(rt, map[string]any{"label": "one"}, h)
package tmpl
