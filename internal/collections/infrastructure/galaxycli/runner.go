// Package galaxycli shells out to the ansible-galaxy binary for collection
// installation.
//
// Installing from a local artifact requires no further network
// authentication, which is the whole point of the download-and-install
// workaround: tokens issued by the Controller cannot be exchanged at the
// hub's Keycloak endpoint, so the standard galaxy client auth flow fails.
package galaxycli

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner invokes ansible-galaxy. It implements domain.Installer.
type Runner struct {
	binary          string
	collectionsPath string
	logger          *slog.Logger
}

// NewRunner creates a runner. binary defaults to "ansible-galaxy";
// collectionsPath, when set, is passed as the install path.
func NewRunner(binary, collectionsPath string, logger *slog.Logger) *Runner {
	if binary == "" {
		binary = "ansible-galaxy"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		binary:          binary,
		collectionsPath: collectionsPath,
		logger:          logger,
	}
}

// InstallFile installs a downloaded collection tarball.
func (r *Runner) InstallFile(ctx context.Context, artifactPath string) error {
	return r.run(ctx, artifactPath, nil)
}

// InstallRequirement installs a requirement string (e.g. "ns.name:1.2.3")
// from the given server, typically the public registry fallback.
func (r *Runner) InstallRequirement(ctx context.Context, requirement, serverURL string) error {
	var extra []string
	if serverURL != "" {
		extra = append(extra, "--server", serverURL)
	}
	return r.run(ctx, requirement, extra)
}

func (r *Runner) run(ctx context.Context, target string, extra []string) error {
	args := []string{"collection", "install", target, "--force"}
	if r.collectionsPath != "" {
		args = append(args, "-p", r.collectionsPath)
	}
	args = append(args, extra...)

	r.logger.Debug("running ansible-galaxy", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s failed: %w: %s", r.binary, strings.Join(args, " "), err, excerpt(output))
	}
	return nil
}

func excerpt(output []byte) string {
	const max = 400
	s := strings.TrimSpace(string(output))
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}
