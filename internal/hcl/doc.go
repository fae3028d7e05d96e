// Package hcl provides the concrete HCL implementation of config.Loader. It
// parses reader configuration files, credentials and task definitions and
// translates them into the format-agnostic config.Model.
package hcl
