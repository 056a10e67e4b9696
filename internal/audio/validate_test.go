package audio

import (
	"strings"
	"testing"
)

func TestValidateMacedonianText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid Macedonian word",
			text: "куче",
		},
		{
			name: "valid Macedonian sentence",
			text: "Како си, пријателе?",
		},
		{
			name: "Macedonian specific letters",
			text: "ѓ ќ љ њ џ ѕ",
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
			errMsg:  "text cannot be empty",
		},
		{
			name:    "whitespace only",
			text:    "   \t\n",
			wantErr: true,
			errMsg:  "text cannot be empty",
		},
		{
			name:    "English text",
			text:    "Hello world",
			wantErr: true,
			errMsg:  "text must contain Cyrillic characters",
		},
		{
			name:    "numbers only",
			text:    "12345",
			wantErr: true,
			errMsg:  "text must contain Cyrillic characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMacedonianText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMacedonianText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateMacedonianText() error = %v, want error containing %v", err, tt.errMsg)
			}
		})
	}
}
