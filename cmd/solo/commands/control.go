package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/subhaanfazeel/solo/internal/agent"
	"github.com/subhaanfazeel/solo/internal/config"
)

// ControlCmd groups the agent control subcommands.
type ControlCmd struct {
	SkipWaiting SkipWaitingCmd `cmd:"" name:"skip-waiting" help:"Activate the waiting worker"`
	Status      StatusCmd      `cmd:"" help:"Show the agent's workers"`
}

// SkipWaitingCmd implements 'control skip-waiting'.
type SkipWaitingCmd struct {
	NATS bool `name:"nats" help:"Publish over NATS instead of HTTP"`
}

// StatusCmd implements 'control status'.
type StatusCmd struct{}

const controlTimeout = 5 * time.Second

func (s *SkipWaitingCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.NATS {
		if cfg.Agent.NATSURL == "" {
			return errors.New("agent.nats_url is not configured")
		}
		reply, err := agent.PublishControl(cfg.Agent.NATSURL, cfg.Agent.NATSSubject, agent.ControlSkipWaiting, controlTimeout)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(os.Stdout, reply)
		return nil
	}
	return postControl(&http.Client{Timeout: controlTimeout}, agentURL(cfg, agent.ControlPath), agent.ControlSkipWaiting)
}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	return printStatus(&http.Client{Timeout: controlTimeout}, agentURL(cfg, agent.StatusPath), os.Stdout)
}

func agentURL(cfg config.Config, path string) string {
	base := cfg.Agent.Listen
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/") + path
}

func postControl(client *http.Client, url, msgType string) error {
	body, err := json.Marshal(agent.ControlMessage{Type: msgType})
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post control message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("agent rejected %s: %s: %s", msgType, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

func printStatus(client *http.Client, url string, out io.Writer) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("get agent status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get agent status: %s", resp.Status)
	}
	var st agent.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode agent status: %w", err)
	}
	_, _ = fmt.Fprintf(out, "strategy: %s\n", st.Strategy)
	_, _ = fmt.Fprintf(out, "active:   %s\n", workerLabel(st.Active))
	_, _ = fmt.Fprintf(out, "waiting:  %s\n", workerLabel(st.Waiting))
	return nil
}

func workerLabel(w *agent.WorkerInfo) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s (%s)", w.Generation, w.ID, w.Phase)
}
