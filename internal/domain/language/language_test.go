package language

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"", Auto, false},
		{"auto", Auto, false},
		{"zh", Chinese, false},
		{"chinese", Chinese, false},
		{"en", English, false},
		{"english", English, false},
		{"klingon", "", true},
		{"ZH", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		text string
		want Language
	}{
		{"hello world", English},
		{"这是一个问题", Chinese},
		{"mixed 中文 text", Chinese},
		{"", English},
		{"¿cómo estás?", English},
	}

	for _, tt := range tests {
		if got := Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	if got := Auto.Resolve("你好"); got != Chinese {
		t.Errorf("Auto.Resolve CJK = %s, want Chinese", got)
	}
	if got := Auto.Resolve("hello"); got != English {
		t.Errorf("Auto.Resolve latin = %s, want English", got)
	}
	if got := English.Resolve("你好"); got != English {
		t.Errorf("concrete language must pass through, got %s", got)
	}
}
