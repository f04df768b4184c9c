package action

import (
	"encoding/json"
	"errors"
	"testing"

	"lintfix/internal/diag"
)

// roundTrip encodes a command the way a client echoes it back.
func roundTrip(t *testing.T, cmd Command) []json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Arguments []json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return decoded.Arguments
}

func TestDecodeResolvesEveryVariant(t *testing.T) {
	d := warning("UnusedImport-7", 4)
	target := Target{URI: testURI, Diagnostic: d}
	inputs := []Action{
		ApplyOne{Target: target, Suggestion: diag.FixSuggestion{Label: "remove"}},
		ApplyInFile{Target: target, Suggestion: diag.FixSuggestion{Label: "remove"}},
		SuppressLine{Target: target, RuleID: "UnusedImport"},
		SuppressFile{Target: target, RuleID: "UnusedImport"},
		SuppressAlways{Target: target, RuleID: "UnusedImport"},
	}
	for _, in := range inputs {
		cmd := in.Command()
		got, err := Decode(cmd.Name, roundTrip(t, cmd))
		if err != nil {
			t.Fatalf("%s: decode: %v", in.Category(), err)
		}
		if got.Category() != in.Category() {
			t.Fatalf("decoded %s as %s", in.Category(), got.Category())
		}
		if got.Subject() != target {
			t.Fatalf("%s: target mismatch: %+v", in.Category(), got.Subject())
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode("lintfix.unknown", nil); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if _, err := Decode(CommandApplySingleFix, []json.RawMessage{[]byte(`{}`)}); !errors.Is(err, ErrBadArguments) {
		t.Fatalf("expected ErrBadArguments, got %v", err)
	}
	args := []json.RawMessage{[]byte(`{"code":"A-1","message":""}`), []byte(`"file:///x"`), []byte(`"galaxy"`)}
	if _, err := Decode(CommandAddFileSuppression, args); !errors.Is(err, ErrBadArguments) {
		t.Fatalf("expected ErrBadArguments for bad scope, got %v", err)
	}
	args = []json.RawMessage{[]byte(`{"code":"A","message":""}`), []byte(`"file:///x"`)}
	if _, err := Decode(CommandAddLineSuppression, args); !errors.Is(err, diag.ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
}

func TestFileSuppressionCarriesScope(t *testing.T) {
	target := Target{URI: testURI, Diagnostic: warning("UnusedImport-7", 4)}
	tests := []struct {
		in    Action
		scope string
	}{
		{SuppressFile{Target: target, RuleID: "UnusedImport"}, "file"},
		{SuppressAlways{Target: target, RuleID: "UnusedImport"}, "always"},
	}
	for _, tt := range tests {
		cmd := tt.in.Command()
		if cmd.Name != CommandAddFileSuppression {
			t.Fatalf("%s: command %q", tt.in.Category(), cmd.Name)
		}
		args := roundTrip(t, cmd)
		if len(args) != 3 {
			t.Fatalf("%s: %d arguments", tt.in.Category(), len(args))
		}
		var scope string
		if err := json.Unmarshal(args[2], &scope); err != nil || scope != tt.scope {
			t.Fatalf("%s: scope %q (%v), want %q", tt.in.Category(), scope, err, tt.scope)
		}
	}
}
