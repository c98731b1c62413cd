package logger

import "testing"

func TestSanitizeKVs_RedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"username", "jdoe",
		"password", "hunter2",
		"Access_Token", "abc",
	})
	if out[1] != "jdoe" {
		t.Fatalf("benign value touched: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("token key matching is not case-insensitive: %v", out[5])
	}
}

func TestSanitizeKVs_OddTrailingKeyKept(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"development", "production", ""} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if log == nil || log.SugaredLogger == nil {
			t.Fatalf("New(%q) returned incomplete logger", mode)
		}
	}
}
