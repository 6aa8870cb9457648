package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/matrix-org/gomatrixserverlib/spec"
)

const (
	ServerNameEnv = "SYNAPSE_SERVER_NAME"
	ServerPortEnv = "SYNAPSE_SERVER_PORT"
)

var (
	ErrEnvNotSet   = errors.New("environment variable not found")
	ErrEnvInvalid  = errors.New("environment variable was not valid unicode")
	ErrEmptyServer = errors.New("resolved m.server is empty")
)

type LookupFunc func(key string) (string, bool)

type WellKnownConfig struct {
	// Value of m.server in /.well-known/matrix/server, either "<host>" or
	// "<host>:<port>"
	Server spec.ServerName
}

func NewWellKnownConfigFromEnv() (WellKnownConfig, error) {
	return NewWellKnownConfig(os.LookupEnv)
}

func NewWellKnownConfig(lookup LookupFunc) (WellKnownConfig, error) {
	serverName, err := lookupVar(lookup, ServerNameEnv)
	if err != nil {
		return WellKnownConfig{}, fmt.Errorf("%s environment variable is not set or invalid: %w", ServerNameEnv, err)
	}

	// The port is appended as-is, an unreadable port is the same as no port
	server := serverName
	if port, err := lookupVar(lookup, ServerPortEnv); err == nil {
		server = serverName + ":" + port
	}

	return WellKnownConfig{Server: spec.ServerName(server)}, nil
}

func lookupVar(lookup LookupFunc, key string) (string, error) {
	val, found := lookup(key)
	if !found {
		return "", ErrEnvNotSet
	}
	if !utf8.ValidString(val) {
		return "", ErrEnvInvalid
	}
	return val, nil
}

// Validate checks the config can be served at all (non-empty) and then whether
// it looks like a valid Matrix server name. Only ErrEmptyServer should stop
// startup, anything else is advisory.
func (c WellKnownConfig) Validate() error {
	if c.Server == "" {
		return ErrEmptyServer
	}
	// A bare ":<port>" has no host for the parser to look at
	if strings.HasPrefix(string(c.Server), ":") {
		return fmt.Errorf("m.server %q has no host", c.Server)
	}
	if _, _, valid := spec.ParseAndValidateServerName(c.Server); !valid {
		return fmt.Errorf("m.server %q is not a valid server name", c.Server)
	}
	return nil
}
