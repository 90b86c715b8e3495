package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/mqchat/internal/config"
	"github.com/matheus3301/mqchat/internal/session"
	"github.com/matheus3301/mqchat/internal/tui"
	"github.com/matheus3301/mqchat/internal/tui/client"
	flag "github.com/spf13/pflag"
)

func main() {
	identityFlag := flag.StringP("identity", "i", "", "local participant id (overrides config)")
	configFlag := flag.StringP("config", "c", session.ConfigPath(), "path to config.toml")
	loopbackFlag := flag.Bool("loopback", false, "start the daemon in loopback mode if it is not running")
	flag.Parse()

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	identity, err := session.Resolve(*identityFlag, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c, err := client.New(session.SocketPath(identity))
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	// Probe daemon health; auto-start if needed.
	if !probe(c, 2*time.Second) {
		fmt.Fprintf(os.Stderr, "daemon not running for %q, starting...\n", identity)
		if err := startDaemon(identity, *configFlag, *loopbackFlag); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(c, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready, see %s\n", session.LogPath(identity))
			os.Exit(1)
		}
	}

	app := tui.NewApp(c, identity)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func probe(c *client.Client, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Healthy(ctx)
}

func startDaemon(identity, configPath string, loopback bool) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	daemon := filepath.Join(filepath.Dir(executable), "mqchatd")

	if _, err := os.Stat(daemon); err != nil {
		daemon = "mqchatd"
	}

	args := []string{"--identity", identity, "--config", configPath}
	if loopback {
		args = append(args, "--loopback")
	}
	cmd := exec.Command(daemon, args...)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// waitForDaemon polls the standard health check until the chat service is SERVING.
func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probe(c, time.Second) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
