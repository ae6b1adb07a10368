// Package process runs toolchain command lines through the host shell and
// relays the child's standard output line by line while it runs.
//
// A command line is split on whitespace (quotes are not interpreted) and the
// tokens are handed to the shell, e.g. "cmd /C tok1 tok2 ...", so the command
// interpreter performs its own parsing of the quoted line. On Windows the raw
// command line is passed through untouched.
//
// Standard output is decoded (see Decoder) and written to the relay writer as
// each line arrives; lines that cannot be decoded are dropped. Standard error
// is passed through, not captured.
//
// Cancelling the context kills the shell together with the tools it started
// (a process group on Unix, taskkill /T on Windows). If a descendant still
// holds standard output after the wait delay, the pipe is closed so the run
// returns anyway.
package process
