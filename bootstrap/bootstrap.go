// Package bootstrap runs the environment setup sequence: OS packages, the
// Python toolchain the field-processing scripts expect, and the extension
// build. Steps run in order and a failure never stops the sequence; the
// last failing step decides the exit status.
package bootstrap

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Step is one external command in the setup sequence.
type Step struct {
	Name string
	Args []string
}

func (s Step) String() string {
	return strings.Join(s.Args, " ")
}

// DefaultSteps is the full setup sequence, in order.
func DefaultSteps() []Step {
	return []Step{
		{
			Name: "system packages",
			Args: []string{"apt-get", "install", "-y",
				"python3", "cython3", "python3-h5py", "python3-numpy",
				"python3-scipy", "python3-matplotlib", "python3-mpi4py",
				"python3-pip"},
		},
		{Name: "mpi4py", Args: []string{"pip3", "install", "mpi4py"}},
		{Name: "terminaltables", Args: []string{"pip3", "install", "terminaltables"}},
		{Name: "tqdm", Args: []string{"pip3", "install", "tqdm"}},
		{Name: "extension clean", Args: []string{"python3", "setup.py", "cleanall"}},
		{Name: "extension build", Args: []string{"python3", "setup.py", "build"}},
		{Name: "extension install", Args: []string{"python3", "setup.py", "install"}},
	}
}

// Run executes every step in order. Failing steps are logged and the
// sequence continues; the returned code is the exit status of the last
// failing step, zero when everything succeeded.
func Run(ctx context.Context, steps []Step, dryRun bool) int {
	exitCode := 0

	for _, step := range steps {
		if dryRun {
			log.Infof("would run: %s", step)
			continue
		}

		log.Infof("running %s: %s", step.Name, step)

		cmd := exec.CommandContext(ctx, step.Args[0], step.Args[1:]...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			code := 1
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			}
			log.Warnf("step %s failed with status %d: %s", step.Name, code, err)
			exitCode = code
		}
	}

	return exitCode
}
