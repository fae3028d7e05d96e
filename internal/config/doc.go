// Package config defines the format-agnostic configuration model for the
// reader: the tunables forwarded to the worker client, the credentials the
// caller supplied, and the tasks to read.
//
// Tunables are read through the Source interface with a caller-chosen
// default. A value equal to Unset is never forwarded to the worker client,
// which lets the client's own default apply. Concrete file formats, such as
// HCL, are provided in separate packages.
package config
