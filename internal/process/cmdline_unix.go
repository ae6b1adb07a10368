//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// prepare starts the shell in its own process group so killTree reaches the
// tools it launches.
func prepare(cmd *exec.Cmd, _ Shell, _ []string) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killTree(cmd *exec.Cmd) error {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
