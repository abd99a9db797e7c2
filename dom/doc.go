// Package dom is a server-side node runtime for compiled templates. It
// constructs [golang.org/x/net/html] node trees, wraps "$" handles in
// [github.com/PuerkitoBio/goquery] selections, and serializes results with
// [html.Render].
package dom
