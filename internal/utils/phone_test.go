package utils

import "testing"

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"transport prefix", "whatsapp:+14155238886", "+14155238886"},
		{"inner whitespace", "+91 98765 43210", "+919876543210"},
		{"prefix and whitespace", "whatsapp:+91 98765 43210", "+919876543210"},
		{"already clean", "+919876543210", "+919876543210"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPhone(tt.input); got != tt.want {
				t.Errorf("CleanPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces no plus", "98765 43210", "+9876543210"},
		{"country code with dash", "+91 98765-43210", "+919876543210"},
		{"transport prefix", "whatsapp:+14155238886", "+14155238886"},
		{"parentheses", "(415) 523-8886", "+4155238886"},
		{"already normalized", "+14155238886", "+14155238886"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanImportedPhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"device export prefix", "p: +91 98765 43210", "+919876543210", true},
		{"plain number", "9876543210", "+9876543210", true},
		{"too short", "12345", "", false},
		{"empty", "", "", false},
		{"punctuation only", "---", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanImportedPhone(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CleanImportedPhone(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatPhoneForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full international", "+919876543210", "987 654 3210"},
		{"exactly ten digits", "4155238886", "415 523 8886"},
		{"too short keeps input", "12345", "12345"},
		{"empty", "", "Unknown Number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPhoneForDisplay(tt.input); got != tt.want {
				t.Errorf("FormatPhoneForDisplay(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
