package action

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned for command names outside Commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadArguments is returned when command arguments do not decode.
	ErrBadArguments = errors.New("bad command arguments")
)

// Decode resolves an executed command back into its action variant.
// Arguments are [diagnostic, documentUri] plus, for
// CommandAddFileSuppression, an optional scope ("file" or "always").
func Decode(name string, args []json.RawMessage) (Action, error) {
	switch name {
	case CommandApplySingleFix, CommandApplyFileFix, CommandAddLineSuppression, CommandAddFileSuppression:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: %s expects [diagnostic, uri], got %d argument(s)", ErrBadArguments, name, len(args))
	}
	var target Target
	if err := json.Unmarshal(args[0], &target.Diagnostic); err != nil {
		return nil, fmt.Errorf("%w: diagnostic: %w", ErrBadArguments, err)
	}
	if err := json.Unmarshal(args[1], &target.URI); err != nil {
		return nil, fmt.Errorf("%w: uri: %w", ErrBadArguments, err)
	}

	switch name {
	case CommandApplySingleFix:
		return ApplyOne{Target: target}, nil
	case CommandApplyFileFix:
		return ApplyInFile{Target: target}, nil
	}

	ruleID, err := target.Diagnostic.RuleID()
	if err != nil {
		return nil, err
	}
	if name == CommandAddLineSuppression {
		return SuppressLine{Target: target, RuleID: ruleID}, nil
	}
	scope := scopeFile
	if len(args) > 2 {
		if err := json.Unmarshal(args[2], &scope); err != nil {
			return nil, fmt.Errorf("%w: scope: %w", ErrBadArguments, err)
		}
	}
	switch scope {
	case scopeFile:
		return SuppressFile{Target: target, RuleID: ruleID}, nil
	case scopeAlways:
		return SuppressAlways{Target: target, RuleID: ruleID}, nil
	}
	return nil, fmt.Errorf("%w: unknown scope %q", ErrBadArguments, scope)
}
