// Package markup parses HTML-like template source into an ordered tree of
// [*Element] and [*Text] nodes.
//
// The tokenizer is [golang.org/x/net/html]'s; tree construction is
// deliberately simpler than the HTML5 algorithm so that a template's shape is
// exactly what its author wrote. There is no foster parenting, no implied
// <tbody>, and unknown tags such as <if> and <else> are ordinary elements.
// An end tag closes the nearest open element with the same name.
package markup
