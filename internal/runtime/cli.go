package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CLIRuntime drives a container CLI (docker- or podman-compatible) via
// os/exec, grounded on the teacher's internal/podman/{client,container,exec}.go:
// command construction by string-slice args, combined stdout/stderr capture,
// and tolerant JSON-or-newline-delimited-JSON parsing of `ps`/`inspect`
// output across CLI versions.
type CLIRuntime struct {
	binary string
}

// NewCLIRuntime looks up binary (e.g. "docker" or "podman") on PATH.
func NewCLIRuntime(binary string) (*CLIRuntime, error) {
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("runtime: %s not found on PATH: %w", binary, err)
	}
	return &CLIRuntime{binary: binary}, nil
}

type cliResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (c *CLIRuntime) run(ctx context.Context, args ...string) (cliResult, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := cliResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("runtime: exec %s %v: %w", c.binary, args, err)
	}
	return result, nil
}

// Create provisions a container for cfg and returns its ID.
func (c *CLIRuntime) Create(ctx context.Context, cfg ContainerConfig) (string, error) {
	args := []string{"create", "--name", cfg.Name}

	for k, v := range cfg.Labels {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range cfg.Env {
		args = append(args, "--env", fmt.Sprintf("%s=%s", k, v))
	}
	if cfg.MemoryMB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", cfg.MemoryMB))
	}
	if cfg.CPUs > 0 {
		args = append(args, "--cpus", strconv.Itoa(cfg.CPUs))
	}
	if cfg.NetworkMode != "" {
		args = append(args, "--network", cfg.NetworkMode)
	}
	for _, m := range cfg.Mounts {
		spec := fmt.Sprintf("%s:%s", m.Source, m.Target)
		if m.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "--volume", spec)
	}

	args = append(args, cfg.Image)

	result, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("runtime: create %s failed (exit %d): %s", cfg.Name, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Start starts an existing container.
func (c *CLIRuntime) Start(ctx context.Context, name string) error {
	result, err := c.run(ctx, "start", name)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("runtime: start %s failed (exit %d): %s", name, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Stop signals the container with signal, then waits up to timeout seconds
// before the CLI escalates to SIGKILL itself.
func (c *CLIRuntime) Stop(ctx context.Context, name string, signal string, timeout int) error {
	args := []string{"stop"}
	if signal != "" {
		args = append(args, "--signal", signal)
	}
	if timeout > 0 {
		args = append(args, "--time", strconv.Itoa(timeout))
	}
	args = append(args, name)

	result, err := c.run(ctx, args...)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("runtime: stop %s failed (exit %d): %s", name, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Destroy force-stops and removes a container. Missing containers are not
// an error, matching the idempotent semantics Server.Destroy needs.
func (c *CLIRuntime) Destroy(ctx context.Context, name string) error {
	c.run(ctx, "stop", "--time", "0", name)
	result, err := c.run(ctx, "rm", "--force", name)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 && !strings.Contains(result.Stderr, "no such container") {
		return fmt.Errorf("runtime: destroy %s failed (exit %d): %s", name, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Exec runs a one-shot command inside a running container.
func (c *CLIRuntime) Exec(ctx context.Context, name string, cfg ExecConfig) (ExecResult, error) {
	args := []string{"exec"}
	for k, v := range cfg.Env {
		args = append(args, "--env", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, name)
	args = append(args, cfg.Command...)

	result, err := c.run(ctx, args...)
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}, nil
}

type psEntry struct {
	ID     string `json:"Id"`
	Names  string `json:"Names"`
	State  string `json:"State"`
	Status string `json:"Status"`
}

// Attach reports the observed state of a container, tolerating both a JSON
// array and newline-delimited-JSON `ps` output (podman/docker versions
// disagree on this, as the teacher's parseJSONOutput already accounts for).
func (c *CLIRuntime) Attach(ctx context.Context, name string) (ContainerInfo, bool, error) {
	result, err := c.run(ctx, "ps", "--all", "--filter", "name=^"+name+"$", "--format", "json")
	if err != nil {
		return ContainerInfo{}, false, err
	}

	entries, err := parsePSOutput(result.Stdout)
	if err != nil {
		return ContainerInfo{}, false, err
	}
	if len(entries) == 0 {
		return ContainerInfo{}, false, nil
	}

	e := entries[0]
	return ContainerInfo{
		ID:      e.ID,
		Name:    name,
		Running: strings.EqualFold(e.State, "running"),
	}, true, nil
}

func parsePSOutput(raw string) ([]psEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if raw[0] == '[' {
		var entries []psEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("runtime: parse ps output: %w", err)
		}
		return entries, nil
	}

	var entries []psEntry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e psEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("runtime: parse ps line: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// StatsStream polls `stats --no-stream` on an interval and publishes parsed
// samples until ctx is cancelled.
func (c *CLIRuntime) StatsStream(ctx context.Context, name string) (<-chan Stats, error) {
	ch := make(chan Stats)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := c.run(ctx, "stats", "--no-stream", "--format", "json", name)
				if err != nil || result.ExitCode != 0 {
					continue
				}
				sample, err := parseStats(result.Stdout)
				if err != nil {
					continue
				}
				select {
				case ch <- sample:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

type statsEntry struct {
	CPUPerc string `json:"CPU"`
	MemUsage string `json:"MemUsage"`
}

func parseStats(raw string) (Stats, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	var e statsEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Stats{}, err
	}

	cpu, _ := strconv.ParseFloat(strings.TrimSuffix(e.CPUPerc, "%"), 64)
	used, limit := parseMemUsage(e.MemUsage)

	return Stats{CPUPercent: cpu, MemoryBytes: used, MemoryLimit: limit}, nil
}

// parseMemUsage parses podman/docker's combined "12.5MiB / 512MiB" stats
// format, as the teacher's parseBytes helper does for its own stats parsing.
func parseMemUsage(s string) (used, limit uint64) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseByteSize(strings.TrimSpace(parts[0])), parseByteSize(strings.TrimSpace(parts[1]))
}

func parseByteSize(s string) uint64 {
	suffixes := []struct {
		suffix string
		mult   uint64
	}{
		{"GiB", 1 << 30}, {"MiB", 1 << 20}, {"KiB", 1 << 10},
		{"GB", 1e9}, {"MB", 1e6}, {"kB", 1e3}, {"B", 1},
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, suf.suffix), 64)
			if err != nil {
				return 0
			}
			return uint64(n * float64(suf.mult))
		}
	}
	n, _ := strconv.ParseFloat(s, 64)
	return uint64(n)
}
