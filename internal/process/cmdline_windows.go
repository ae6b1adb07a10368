//go:build windows

package process

import (
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// prepare hands cmd.exe the raw command line. Go's default argument escaping
// would turn the embedded quotes into \" which cmd.exe does not understand.
func prepare(cmd *exec.Cmd, shell Shell, tokens []string) {
	parts := make([]string, 0, len(shell.Args)+len(tokens)+1)
	parts = append(parts, syscall.EscapeArg(shell.Path))
	parts = append(parts, shell.Args...)
	parts = append(parts, tokens...)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: strings.Join(parts, " ")}
}

// killTree ends cmd.exe and every tool below it. Process.Kill alone would
// leave Compile.exe or ISCmdBld.exe running.
func killTree(cmd *exec.Cmd) error {
	pid := strconv.Itoa(cmd.Process.Pid)
	if out, err := exec.Command("taskkill", "/T", "/F", "/PID", pid).CombinedOutput(); err != nil {
		slog.Debug("taskkill failed", "pid", pid, "error", err, "output", strings.TrimSpace(string(out)))
		return cmd.Process.Kill()
	}
	return nil
}
