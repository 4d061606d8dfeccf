package bootctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes one external tool invocation. Every bootstrap step
// (git, conda, uv, pip, python) goes through RunCmd.
type Cmd struct {
	Path   string
	Args   []string
	Env    map[string]string // additional env vars
	Dir    string            // working directory
	Stream bool              // if true, stream stdout/err via scanner
}

func RunCmd(ctx context.Context, c Cmd) error {
	debug("exec: %s %s", c.Path, strings.Join(c.Args, " "))
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	// inherit environment, manifest/proxy vars layered on top
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	if c.Stream {
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			return err
		}
		TrackProcess(cmd)
		go stream(stdout)
		go stream(stderr)
		return cmd.Wait()
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Convenience helpers built on RunCmd, via the stub point so tests can
// assert the constructed command lines.
func runCmdVerbose(ctx context.Context, name string, args ...string) error {
	return fnRunCmd(ctx, Cmd{Path: name, Args: args, Stream: false})
}

func runEnvCmd(ctx context.Context, env map[string]string, name string, args ...string) error {
	return fnRunCmd(ctx, Cmd{Path: name, Args: args, Env: env, Stream: false})
}

func stream(r io.Reader) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		fmt.Println(s.Text())
	}
}
