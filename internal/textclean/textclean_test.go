package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"markup whitespace and url", "<p>Hello   world</p> http://x.com", "Hello world"},
		{"plain text untouched", "Just a sentence.", "Just a sentence."},
		{"newlines and tabs", "line one\n\n\tline two  ", "line one line two"},
		{"https url with path", "Read more at https://example.com/a/b?c=1&d=2 today", "Read more at today"},
		{"entities decoded", "Fish &amp; chips", "Fish & chips"},
		{"paragraph boundaries", "<p>First.</p><p>Second.</p>", "First. Second."},
		{"line break", "one<br>two", "one two"},
		{"script dropped", "<script>var x = 1;</script><p>Visible</p>", "Visible"},
		{"link text kept url dropped", `<a href="http://x.com/1">Story</a> via http://x.com/1`, "Story via"},
		{"unclosed tag", "<div><b>bold text", "bold text"},
		{"only url", "https://only.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world", stripTags("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "", stripTags("<br/>"))
}
