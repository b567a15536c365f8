package clipboard

import "testing"

func TestPayloadEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Payload
		want bool
	}{
		{"same text", Payload{FormatText, []byte("hi")}, Payload{FormatText, []byte("hi")}, true},
		{"different text", Payload{FormatText, []byte("hi")}, Payload{FormatText, []byte("ho")}, false},
		{"different format", Payload{FormatText, []byte("x")}, Payload{FormatImage, []byte("x")}, false},
		{"both empty", Payload{}, Payload{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	if FormatText.String() != "text" {
		t.Errorf("FormatText.String() = %q", FormatText.String())
	}
	if FormatImage.String() != "image" {
		t.Errorf("FormatImage.String() = %q", FormatImage.String())
	}
}
