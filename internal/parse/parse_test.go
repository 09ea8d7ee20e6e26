package parse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/javascrub/internal/lang"
	"github.com/phobologic/javascrub/internal/model"
)

func parseString(t *testing.T, src string) *File {
	t.Helper()
	p := lang.Java.NewParser()
	t.Cleanup(p.Close)
	f, err := Parse(context.Background(), p, "Test.java", []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestParseReconstructsSource(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"empty":   "",
		"package": "package com.example;\n",
		"comments": `// leading comment
package a.b;

/* block */ import java.util.List; // trailing

/**
 * Doc with unicode: héllo ✓
 */
public class Foo<T> extends Bar implements Baz {
	private static final String S = "a \"quoted\" string";
	char c = '\'';
	int[] xs = {1, 2, 3};

	@Override public String toString() { return S + c; }
}
`,
		"crlf":             "class A {\r\n  int x;\r\n}\r\n",
		"no-final-newline": "class A {}",
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := parseString(t, src)
			assert.Equal(t, src, string(f.Reconstruct()))
		})
	}
}

func TestParseTokens(t *testing.T) {
	t.Parallel()

	f := parseString(t, "class A { String s = \"x.y\"; }")
	var types []string
	for _, tok := range f.Tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, "string_literal")
	assert.NotContains(t, types, "string_fragment")

	for i := 1; i < len(f.Tokens); i++ {
		assert.Equal(t, f.Tokens[i-1].Span.End, f.Tokens[i].Leading.Start)
		assert.Equal(t, f.Tokens[i].Leading.End, f.Tokens[i].Span.Start)
	}
}

func TestParseError(t *testing.T) {
	t.Parallel()

	p := lang.Java.NewParser()
	defer p.Close()

	_, err := Parse(context.Background(), p, "Bad.java", []byte("package a;\n\nclass Bad {\n  int x = ;\n}\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
	assert.Equal(t, "Bad.java", perr.Path)
	assert.Equal(t, 4, perr.Line)
	assert.Contains(t, perr.Error(), "Bad.java:4:")
}

func TestParseErrorMissing(t *testing.T) {
	t.Parallel()

	p := lang.Java.NewParser()
	defer p.Close()

	_, err := Parse(context.Background(), p, "Open.java", []byte("class Open {\n  void f() {}\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "want *ParseError, got %v", err)
	assert.Equal(t, "Open.java", perr.Path)
}

func TestDeclarations(t *testing.T) {
	t.Parallel()

	src := `package p;

@Include
public class Foo {
  public Foo() {}
  int getCount() { return 0; }
  @Exclude int y, z;

  @Outer.Exclude(reason = "x")
  private static class Inner {
    void run() {}
  }

  enum Color {
    RED, GREEN;
    @Exclude void paint() {}
  }

  interface Shape {
    int SIDES = 0;
    double area();
  }
}

@interface Marker {
  String value() default "";
}
`
	f := parseString(t, src)
	require.Len(t, f.Decls, 2)

	foo := f.Decls[0]
	assert.Equal(t, model.Type, foo.Kind)
	assert.Equal(t, "Foo", foo.Name)
	require.Len(t, foo.Markers, 1)
	assert.Equal(t, "Include", foo.Markers[0].Name)

	var names []string
	for _, c := range foo.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Foo", "getCount", "y", "Inner", "Color", "Shape"}, names)

	assert.Equal(t, model.Method, foo.Children[0].Kind)
	assert.Equal(t, model.Field, foo.Children[2].Kind)
	assert.Equal(t, "Outer.Exclude", foo.Children[3].Markers[0].Name)

	inner := foo.Children[3]
	require.Len(t, inner.Children, 1)
	assert.Equal(t, "run", inner.Children[0].Name)

	color := foo.Children[4]
	require.Len(t, color.Children, 3)
	assert.Equal(t, "RED", color.Children[0].Name)
	assert.Equal(t, model.Field, color.Children[0].Kind)
	assert.Equal(t, "paint", color.Children[2].Name)

	shape := foo.Children[5]
	require.Len(t, shape.Children, 2)
	assert.Equal(t, model.Field, shape.Children[0].Kind)
	assert.Equal(t, model.Method, shape.Children[1].Kind)

	marker := f.Decls[1]
	assert.Equal(t, "Marker", marker.Name)
	require.Len(t, marker.Children, 1)
	assert.Equal(t, "value", marker.Children[0].Name)

	assert.Equal(t, 2, f.TopLevelTypes())
}

func TestPrunableSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		path []int
		want string
	}{
		{
			name: "line with indentation and newline",
			src:  "class A {\n  int a;\n  int b;\n  int c;\n}\n",
			path: []int{0, 1},
			want: "  int b;\n",
		},
		{
			name: "attached javadoc",
			src:  "class A {\n  int a;\n  /** Doc. */\n  @Deprecated\n  int b;\n  int c;\n}\n",
			path: []int{0, 1},
			want: "  /** Doc. */\n  @Deprecated\n  int b;\n",
		},
		{
			name: "line comment is not attached",
			src:  "class A {\n  int a;\n  // note\n  int b;\n}\n",
			path: []int{0, 1},
			want: "  int b;\n",
		},
		{
			name: "owns following blank line between blank lines",
			src:  "class A {\n  int a;\n\n  int b;\n\n  int c;\n}\n",
			path: []int{0, 1},
			want: "  int b;\n\n",
		},
		{
			name: "first member owns following blank line",
			src:  "class A {\n  int a;\n\n  int b;\n}\n",
			path: []int{0, 0},
			want: "  int a;\n\n",
		},
		{
			name: "last member owns preceding blank line",
			src:  "class A {\n  int a;\n\n  int b;\n}\n",
			path: []int{0, 1},
			want: "\n  int b;\n",
		},
		{
			name: "shares line with previous declaration",
			src:  "class A {\n  int a; int b;\n}\n",
			path: []int{0, 1},
			want: " int b;",
		},
		{
			name: "shares line with next declaration",
			src:  "class A {\n  int a; int b;\n}\n",
			path: []int{0, 0},
			want: "int a; ",
		},
		{
			name: "top-level type at end of file",
			src:  "class A {}\n\nclass B {\n}\n",
			path: []int{1},
			want: "\nclass B {\n}\n",
		},
		{
			name: "trailing line comment",
			src:  "class A {\n  int x;\n  @Exclude int y; // internal secret\n  int z;\n}\n",
			path: []int{0, 1},
			want: "  @Exclude int y; // internal secret\n",
		},
		{
			name: "trailing block comment",
			src:  "class A {\n  int x;\n  int y; /* internal */\n  int z;\n}\n",
			path: []int{0, 1},
			want: "  int y; /* internal */\n",
		},
		{
			name: "block comment followed by code",
			src:  "class A {\n  int y; /* c */ int z;\n}\n",
			path: []int{0, 0},
			want: "int y; ",
		},
		{
			name: "enum constant with comma",
			src:  "enum E {\n  A,\n  @Exclude B,\n  C\n}\n",
			path: []int{0, 1},
			want: "  @Exclude B,\n",
		},
		{
			name: "last enum constant",
			src:  "enum E {\n  A,\n  B\n}\n",
			path: []int{0, 1},
			want: "  B\n",
		},
		{
			name: "enum constants on one line",
			src:  "enum E { A, B, C }\n",
			path: []int{0, 1},
			want: "B, ",
		},
		{
			name: "crlf line endings",
			src:  "class A {\r\n  int a;\r\n  int b;\r\n}\r\n",
			path: []int{0, 0},
			want: "  int a;\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parseString(t, tt.src)
			d := f.Decls[tt.path[0]]
			for _, i := range tt.path[1:] {
				d = d.Children[i]
			}
			assert.Equal(t, tt.want, f.Text(d.Span))
		})
	}
}

func TestImports(t *testing.T) {
	t.Parallel()

	f := parseString(t, `package p;

import java.util.List;
import static com.example.Util.helper;
import com.example.sub.*;

class A {}
`)
	require.Len(t, f.Imports, 3)

	assert.Equal(t, "java.util.List", f.Imports[0].Name)
	assert.Equal(t, "List", f.Imports[0].SimpleName())
	assert.Equal(t, "import java.util.List;\n", f.Text(f.Imports[0].Span))

	assert.True(t, f.Imports[1].Static)
	assert.Equal(t, "com.example.Util.helper", f.Imports[1].Name)
	assert.Equal(t, "helper", f.Imports[1].SimpleName())

	assert.True(t, f.Imports[2].Wildcard)
	assert.Equal(t, "com.example.sub", f.Imports[2].Name)
}
