package netaddr

import (
	"net"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Address is an immutable host/port pair.
type Address struct {
	Host string
	Port int
}

// New returns an Address after checking that the port is in range.
func New(host string, port int) (Address, error) {
	if host == "" {
		return Address{}, errors.New("address host must not be empty")
	}
	if port < 0 || port > 65535 {
		return Address{}, errors.Newf("address %s: port %d out of range", host, port)
	}
	return Address{Host: host, Port: port}, nil
}

// Parse reads an address in "host:port" form.
func Parse(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, errors.Wrapf(err, "parsing address %q", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Address{}, errors.Wrapf(err, "parsing port of address %q", s)
	}
	return New(host, port)
}

// String renders the address as "host:port".
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// SameHost reports whether the address lives on the named host. The
// comparison is on host names, never on resolved IPs.
func (a Address) SameHost(hostname string) bool {
	return a.Host == hostname
}
