package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantName string
	}{
		{
			name:     "english",
			text:     "the quick brown fox jumps over the lazy dog and walks back home",
			wantCode: "en",
			wantName: "English",
		},
		{
			name:     "spanish",
			text:     "mañana por la mañana iremos a la playa con los niños pequeños",
			wantCode: "es",
			wantName: "Spanish",
		},
		{
			name:     "empty",
			text:     "",
			wantCode: "",
			wantName: "",
		},
		{
			name:     "whitespace only",
			text:     "   \n",
			wantCode: "",
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := Detect(tt.text)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) code = %q, want %q", tt.text, code, tt.wantCode)
			}
			if name != tt.wantName {
				t.Errorf("Detect(%q) name = %q, want %q", tt.text, name, tt.wantName)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"de", "German"},
		{"ja", "Japanese"},
		{"", ""},
		{"zz", "zz"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := Name(tt.code); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}
