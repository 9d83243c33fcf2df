package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"head@university.edu", "a.b+c@dept.example.com"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %s to be valid", email)
		}
	}
	invalid := []string{"", "no-at-sign", "user@", "@example.com", "user@host"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %s to be invalid", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, msg := ValidatePassword("short"); ok || msg == "" {
		t.Errorf("short passwords must be rejected with a message")
	}
	if ok, _ := ValidatePassword("longenough"); !ok {
		t.Errorf("an 8+ character password must pass")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  remarks here \x00"); got != "remarks here" {
		t.Errorf("expected trimmed input, got %q", got)
	}
}
