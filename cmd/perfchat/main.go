// perfchat sends a batch of commands through the websocket chat endpoint
// and reports round-trip latency percentiles. Useful for checking upstream
// and store latency budgets against a running instance.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type options struct {
	baseURL string
	userID  string
	turns   int
	timeout time.Duration
	verbose bool
}

type chatMessage struct {
	Message string `json:"message"`
}

type chatReply struct {
	Response    string `json:"response"`
	ActionTaken bool   `json:"actionTaken"`
	Error       string `json:"error"`
	Code        string `json:"code"`
}

var defaultCommands = []string{
	"Add a task: review quarterly numbers, high priority",
	"Show my high priority tasks",
	"Delete my high priority task",
	"What's the weather like?",
}

func main() {
	opts := parseFlags()

	wsURL, err := websocketURL(opts.baseURL, opts.userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid base url: %v\n", err)
		os.Exit(1)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", wsURL, err)
		os.Exit(1)
	}
	defer conn.Close()

	latencies := make([]time.Duration, 0, opts.turns)
	for i := 0; i < opts.turns; i++ {
		text := defaultCommands[i%len(defaultCommands)]

		start := time.Now()
		if err := conn.WriteJSON(chatMessage{Message: text}); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		_ = conn.SetReadDeadline(time.Now().Add(opts.timeout))
		var reply chatReply
		if err := conn.ReadJSON(&reply); err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			os.Exit(1)
		}
		took := time.Since(start)
		latencies = append(latencies, took)

		if opts.verbose {
			status := "ok"
			if reply.Code != "" {
				status = reply.Code
			}
			fmt.Printf("turn %d (%s): %.0fms action=%v %q\n",
				i+1, status, float64(took.Milliseconds()), reply.ActionTaken, firstLine(reply.Response))
		}
	}

	report(latencies)
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", "http://127.0.0.1:8080", "service base URL")
	flag.StringVar(&opts.userID, "user", "perfchat", "user id to run commands as")
	flag.IntVar(&opts.turns, "turns", 8, "number of commands to send")
	flag.DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-turn reply timeout")
	flag.BoolVar(&opts.verbose, "v", false, "print each turn")
	flag.Parse()
	if opts.turns <= 0 {
		opts.turns = 1
	}
	return opts
}

func websocketURL(base, userID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/v1/chat/ws"
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func report(latencies []time.Duration) {
	if len(latencies) == 0 {
		fmt.Println("no samples")
		return
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	fmt.Printf("turns=%d avg=%.0fms p50=%.0fms p95=%.0fms max=%.0fms\n",
		len(sorted),
		float64(sum.Milliseconds())/float64(len(sorted)),
		float64(pick(sorted, 0.50).Milliseconds()),
		float64(pick(sorted, 0.95).Milliseconds()),
		float64(sorted[len(sorted)-1].Milliseconds()),
	)
}

func pick(sorted []time.Duration, q float64) time.Duration {
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
