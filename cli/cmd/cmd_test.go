package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/domly/pkg"
)

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tmpl string
		data []string
		set  map[string]string
		want string
	}{
		{
			name: "yaml data",
			tmpl: `<p class="{{c}}">{{name}}</p>`,
			data: []string{"c: big\nname: Ann\n"},
			want: "<p class=\"big\">Ann</p>\n",
		},
		{
			name: "json data",
			tmpl: `<if show><b>{{n}}</b><else><i>none</i></else></if>`,
			data: []string{`{"show": true, "n": 3}`},
			want: "<b>3</b>\n",
		},
		{
			name: "later files override earlier",
			tmpl: `<p>{{a}} {{b}}</p>`,
			data: []string{"a: 1\nb: 1\n", "b: 2\n"},
			want: "<p>1 2</p>\n",
		},
		{
			name: "set overrides files",
			tmpl: `<p>{{a}}</p>`,
			data: []string{"a: file\n"},
			set:  map[string]string{"a": "flag"},
			want: "<p>flag</p>\n",
		},
		{
			name: "empty data file",
			tmpl: `<p>{{a}}</p>`,
			data: []string{""},
			want: "<p></p>\n",
		},
		{
			name: "fragment",
			tmpl: `<h1>{{t}}</h1><p>x</p>`,
			set:  map[string]string{"t": "T"},
			want: "<h1>T</h1><p>x</p>\n",
		},
		{
			name: "nothing constructed",
			tmpl: `<if no><p></p></if>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			var files []string
			for i, d := range tt.data {
				files = append(files, writeFile(t, dir, "data"+string(rune('a'+i))+".yaml", d))
			}

			var buf bytes.Buffer

			r := Render{
				TemplateFlags: TemplateFlags{Template: writeFile(t, dir, "t.html", tt.tmpl)},
				DataFlags:     DataFlags{Data: files, Set: tt.set},
				Output:        stdinSource,
				stdout:        &buf,
			}

			if err := r.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOutputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.html")

	r := Render{
		TemplateFlags: TemplateFlags{Template: writeFile(t, dir, "t.html", `<a href="{{u}}">go</a>`)},
		DataFlags:     DataFlags{Set: map[string]string{"u": "/x"}},
		Output:        out,
		stdout:        &bytes.Buffer{},
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "<a href=\"/x\">go</a>\n" {
		t.Errorf("output file = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tp := writeFile(t, dir, "t.html", `<p>{{a}}</p>`)

	tests := []struct {
		name string
		r    Render
		want error
	}{
		{
			name: "missing template",
			r:    Render{TemplateFlags: TemplateFlags{Template: filepath.Join(dir, "none.html")}},
			want: ErrReadTemplate,
		},
		{
			name: "missing data",
			r: Render{
				TemplateFlags: TemplateFlags{Template: tp},
				DataFlags:     DataFlags{Data: []string{filepath.Join(dir, "none.yaml")}},
			},
			want: ErrReadData,
		},
		{
			name: "data is not an object",
			r: Render{
				TemplateFlags: TemplateFlags{Template: tp},
				DataFlags:     DataFlags{Data: []string{writeFile(t, dir, "list.yaml", "- 1\n- 2\n")}},
			},
			want: ErrDecodeData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.r.stdout = &bytes.Buffer{}

			if err := tt.r.Run(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadDedup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "x: a\n")
	b := writeFile(t, dir, "b.yaml", "x: b\n")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	f := DataFlags{Data: []string{a, b, link}}

	data, err := f.load(context.Background(), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// The link names a file already read, so it does not override b.
	if got := data["x"]; got != "b" {
		t.Errorf("x = %v, want b", got)
	}
}

func TestLoadStdinReused(t *testing.T) {
	t.Parallel()

	f := DataFlags{Data: []string{stdinSource}}

	if _, err := f.load(context.Background(), true); !errors.Is(err, ErrStdinReused) {
		t.Errorf("load() error = %v, want %v", err, ErrStdinReused)
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tp := writeFile(t, dir, "t.html", `<p data-handle="p">{{x}}</p>`)

	wantText := strings.Join([]string{
		`0000  el0 = createElement "p"`,
		`0001  this["p"] = el0`,
		`0002  el1 = createTextNode data["x"]`,
		`0003  el0.appendChild el1`,
		`0004  return el0`,
		``,
	}, "\n")

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		d := Dump{TemplateFlags: TemplateFlags{Template: tp}, Format: "text", stdout: &buf}
		if err := d.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		if diff := cmp.Diff(wantText, buf.String()); diff != "" {
			t.Errorf("listing mismatch (-want +got):\n%s", diff)
		}
	})

	wantSteps := []step{
		{PC: 0, Op: "createElement", Dst: "el0", Name: "p"},
		{PC: 1, Op: "handle", Dst: "el0", Name: "p"},
		{PC: 2, Op: "createText", Dst: "el1", Value: `data["x"]`},
		{PC: 3, Op: "append", Dst: "el1", Parent: "el0"},
		{PC: 4, Op: "return", Roots: []string{"el0"}},
	}

	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			d := Dump{TemplateFlags: TemplateFlags{Template: tp}, Format: format, stdout: &buf}
			if err := d.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			var got listing

			var err error
			if format == "json" {
				err = json.Unmarshal(buf.Bytes(), &got)
			} else {
				err = yaml.Unmarshal(buf.Bytes(), &got)
			}

			if err != nil {
				t.Fatalf("decode %s: %v\n%s", format, err, buf.String())
			}

			if got.Temps != 2 {
				t.Errorf("temps = %d, want 2", got.Temps)
			}

			if diff := cmp.Diff([]string{"x"}, got.Keys); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(wantSteps, got.Program); diff != "" {
				t.Errorf("program mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tp := writeFile(t, dir, "t.html", `<p title="{{age}}">{{nme}}</p>`)
	data := writeFile(t, dir, "d.yaml", "name: Ann\nage: 3\n")

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		c := Check{
			TemplateFlags: TemplateFlags{Template: tp},
			DataFlags:     DataFlags{Data: []string{data}},
			stdout:        &buf,
		}

		if err := c.Run(context.Background()); !errors.Is(err, ErrMissingKeys) {
			t.Fatalf("Run() error = %v, want %v", err, ErrMissingKeys)
		}

		want := "missing \"nme\", did you mean \"name\"?\n"
		if got := buf.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		c := Check{
			TemplateFlags: TemplateFlags{Template: tp},
			DataFlags: DataFlags{
				Data: []string{data},
				Set:  map[string]string{"nme": "x"},
			},
			stdout: &buf,
		}

		if err := c.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		if got := buf.String(); got != "ok: 2 keys\n" {
			t.Errorf("got %q", got)
		}
	})
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		cands []string
		want  string
		ok    bool
	}{
		{key: "usr", cands: []string{"id", "user"}, want: "user", ok: true},
		{key: "zzz", cands: []string{"id", "user"}},
		{key: "", cands: []string{"id"}},
		{key: "id", cands: nil},
	}

	for _, tt := range tests {
		got, ok := suggest(tt.key, tt.cands)
		if got != tt.want || ok != tt.ok {
			t.Errorf("suggest(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	if err := (&Version{stdout: &buf}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if want := pkg.Name + " " + pkg.Version + "\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
