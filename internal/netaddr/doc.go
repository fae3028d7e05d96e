// Package netaddr defines the host/port pair used to describe where task data
// lives and where workers listen. Locality decisions compare host names only;
// two addresses on the same host but different ports are the same place.
package netaddr
