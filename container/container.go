// Package container implements the §6.4 "Container runner" collaborator:
// running a job inside an image and starting/stopping sidecar services.
// Local runs shell out to the docker CLI via psexec, the same subprocess
// primitive the rest of the engine uses for script steps.
package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roxid-ci/roxid/model"
	"github.com/roxid-ci/roxid/psexec"
)

// Runner drives containers for jobs whose `container`/`services` fields
// are set (spec.md §6.4 "Container runner").
type Runner struct {
	Executor *psexec.Executor
	// Binary is the container CLI to invoke; defaults to "docker".
	Binary string
}

// New creates a Runner backed by exec, defaulting Binary to "docker".
func New(exec *psexec.Executor) *Runner {
	return &Runner{Executor: exec, Binary: "docker"}
}

func (r *Runner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "docker"
}

// Result is the outcome of RunJob.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// RunJob runs command inside image with env and workingDir bind-mounted,
// matching the `runJob(image, env, workingDir, command) → {…}` contract.
func (r *Runner) RunJob(ctx context.Context, image string, env []string, workingDir string, command []string) Result {
	args := []string{"run", "--rm", "-w", workingDir, "-v", workingDir + ":" + workingDir}
	for _, e := range env {
		args = append(args, "-e", e)
	}
	args = append(args, image)
	args = append(args, command...)

	start := time.Now()
	res := r.Executor.Run(ctx, &psexec.Command{Name: r.binary(), Args: args})
	return Result{
		Stdout:   res.Output(),
		Stderr:   res.ErrorOutput(),
		ExitCode: res.ExitCode(),
		Duration: time.Since(start),
		Err:      res.Err(),
	}
}

// ServiceHandle identifies one started sidecar container.
type ServiceHandle struct {
	Name        string
	ContainerID string
}

// StartServices starts one detached container per entry in services,
// keyed by the service name declared in a job's `services:` block
// (model.Job.Services), returning their handles for later Stop.
func (r *Runner) StartServices(ctx context.Context, services map[string]*model.Service) ([]ServiceHandle, error) {
	handles := make([]ServiceHandle, 0, len(services))
	for name, svc := range services {
		args := []string{"run", "-d", "--name", containerName(name)}
		for _, p := range svc.Ports {
			args = append(args, "-p", p)
		}
		for k, v := range svc.Env {
			args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
		}
		args = append(args, svc.Image)

		res := r.Executor.Run(ctx, &psexec.Command{Name: r.binary(), Args: args})
		if !res.Success() {
			r.Stop(ctx, handles)
			return nil, fmt.Errorf("container: starting service %q: %s", name, strings.TrimSpace(res.ErrorOutput()))
		}
		handles = append(handles, ServiceHandle{Name: name, ContainerID: strings.TrimSpace(res.Output())})
	}
	return handles, nil
}

// Stop tears down every handle StartServices returned, best-effort.
func (r *Runner) Stop(ctx context.Context, handles []ServiceHandle) {
	for _, h := range handles {
		r.Executor.Run(ctx, &psexec.Command{Name: r.binary(), Args: []string{"rm", "-f", containerName(h.Name)}})
	}
}

func containerName(service string) string {
	return "roxid-svc-" + service
}
