package session

import "os"

// HostResolver reports the name of the machine the reader runs on.
type HostResolver interface {
	Hostname() (string, error)
}

// HostResolverFunc adapts a function to HostResolver.
type HostResolverFunc func() (string, error)

func (f HostResolverFunc) Hostname() (string, error) { return f() }

// OSHostResolver asks the operating system for the host name.
type OSHostResolver struct{}

func (OSHostResolver) Hostname() (string, error) { return os.Hostname() }
