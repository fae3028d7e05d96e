// Package app contains the core application logic of the record reader. It
// defines the App struct, its configuration, and the read lifecycle: load
// tasks, open one worker session per task, drain the records and release
// everything, decoupled from any specific entrypoint like a CLI.
package app
