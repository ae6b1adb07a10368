//go:build !windows && !unix

package process

import "os/exec"

func prepare(*exec.Cmd, Shell, []string) {}

func killTree(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
