package forgecfg

import (
	"errors"
	"fmt"
)

// Sentinel base errors so callers can errors.Is against a stable kind
// regardless of the dynamic detail wrapped around it.
var (
	ErrConfigMissing  = errors.New("forgecfg: config missing")
	ErrConfigParse    = errors.New("forgecfg: config parse error")
	ErrConfigCycle    = errors.New("forgecfg: cyclic workspace dependency")
	ErrMemberMissing  = errors.New("forgecfg: member missing")
	ErrUnknownProfile = errors.New("forgecfg: unknown profile")
)

// ConfigMissingError reports a missing forge.toml at the given path.
type ConfigMissingError struct {
	Path string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("no forge.toml found at %q", e.Path)
}

func (e *ConfigMissingError) Unwrap() error { return ErrConfigMissing }

// ConfigParseError reports a malformed document or an unknown key, with
// enough location information to point the user at the offending line.
type ConfigParseError struct {
	Path string
	Key  string
	Line int
	Err  error
}

func (e *ConfigParseError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: unknown key %q", e.Path, e.Key)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return ErrConfigParse }

// ConfigCycleError reports a cyclic workspace.dependencies edge.
type ConfigCycleError struct {
	Cycle []string
}

func (e *ConfigCycleError) Error() string {
	return fmt.Sprintf("cyclic workspace dependency: %v", e.Cycle)
}

func (e *ConfigCycleError) Unwrap() error { return ErrConfigCycle }

// MemberMissingError reports a workspace.members entry with no forge.toml,
// or a workspace.dependencies name that is not a declared member.
type MemberMissingError struct {
	Member string
}

func (e *MemberMissingError) Error() string {
	return fmt.Sprintf("workspace member %q is missing", e.Member)
}

func (e *MemberMissingError) Unwrap() error { return ErrMemberMissing }

// UnknownProfileError reports a request-line profile name with no
// matching [profiles.<name>] section and no built-in default.
type UnknownProfileError struct {
	Name string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown profile %q", e.Name)
}

func (e *UnknownProfileError) Unwrap() error { return ErrUnknownProfile }
