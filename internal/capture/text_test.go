package capture

import (
	"testing"

	"github.com/yiblet/clipvault/internal/store"
)

func TestDeriveText(t *testing.T) {
	tests := []struct {
		name string
		in   store.CaptureInput
		want string
	}{
		{"text kept", store.CaptureInput{ContentType: store.ContentText, ContentText: "hello"}, "hello"},
		{"html", store.CaptureInput{ContentType: store.ContentHTML, ContentHTML: "<b>bold</b> &amp; <i>it</i><script>x()</script>"}, "bold & it"},
		{"html breaks", store.CaptureInput{ContentType: store.ContentHTML, ContentHTML: "<p>one</p><p>two</p>"}, "one\ntwo"},
		{"html document", store.CaptureInput{ContentType: store.ContentHTML, ContentHTML: "<html><head><style>p { color: red }</style></head><body><h1>Title</h1>a&lt;b<br/>next &#8212; line</body></html>"}, "Title\na<b\nnext \u2014 line"},
		{"rtf", store.CaptureInput{ContentType: store.ContentRTF, ContentRTF: `{\rtf1\ansi{\fonttbl\f0 Helvetica;}\f0\fs24 Hello\par World}`}, "Hello\nWorld"},
		{"files", store.CaptureInput{ContentType: store.ContentFiles, FilePaths: []string{"/a.txt", "/b.txt"}}, "/a.txt\n/b.txt"},
		{"image", store.CaptureInput{ContentType: store.ContentImage, ImagePath: "/x.png"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveText(&tt.in); got != tt.want {
				t.Errorf("DeriveText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text   string
		maxLen int
		want   string
	}{
		{"", 10, "[empty]"},
		{"\n\n  first line  \nsecond", 80, "first line"},
		{"tab\there", 80, "tab here"},
		{"abcdefghijkl", 8, "abcde..."},
		{"héllo wörld", 7, "héll..."},
		{"abc", 2, ".."},
	}
	for _, tt := range tests {
		if got := Preview(tt.text, tt.maxLen); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
		}
	}
}

func TestClipLabel(t *testing.T) {
	if got := ClipLabel(&store.Clip{ContentType: store.ContentImage}, 20); got != "[image]" {
		t.Errorf("ClipLabel(image) = %q", got)
	}
	if got := ClipLabel(&store.Clip{ContentType: store.ContentText, ContentText: "hi"}, 20); got != "hi" {
		t.Errorf("ClipLabel(text) = %q", got)
	}
}

func TestIsBinary(t *testing.T) {
	if isBinary([]byte("plain text\n")) {
		t.Error("text reported as binary")
	}
	if !isBinary([]byte{'a', 0, 'b'}) {
		t.Error("null byte not reported as binary")
	}
	if isBinary(nil) {
		t.Error("empty reported as binary")
	}
}
