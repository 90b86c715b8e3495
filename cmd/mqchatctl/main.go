package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/config"
	"github.com/matheus3301/mqchat/internal/lock"
	"github.com/matheus3301/mqchat/internal/session"
	"github.com/matheus3301/mqchat/internal/tui/client"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	identityFlag := flag.StringP("identity", "i", "", "local participant id (overrides config)")
	configFlag := flag.StringP("config", "c", session.ConfigPath(), "path to config.toml")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "init" {
		cmdInit(*configFlag, *identityFlag, args[1:])
		return
	}

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fatalf("%v", err)
	}
	identity, err := session.Resolve(*identityFlag, cfg)
	if err != nil {
		fatalf("%v", err)
	}

	c, err := client.New(session.SocketPath(identity))
	if err != nil {
		fatalf("cannot connect to daemon for %q: %v", identity, err)
	}
	defer func() { _ = c.Close() }()

	if args[0] == "watch" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmdWatch(ctx, c, identity, *jsonFlag)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !c.Healthy(ctx) {
		daemonDown(identity)
	}

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, *jsonFlag)
	case "contacts":
		cmdContacts(ctx, c, *jsonFlag)
	case "history":
		requireArgs(args, 2, "history <contact>")
		cmdHistory(ctx, c, args[1], *jsonFlag)
	case "send":
		requireArgs(args, 3, "send <contact> <text>")
		cmdSend(ctx, c, args[1], strings.Join(args[2:], " "), *jsonFlag)
	case "broadcast":
		requireArgs(args, 2, "broadcast <text>")
		cmdBroadcast(ctx, c, strings.Join(args[1:], " "), *jsonFlag)
	case "typing":
		requireArgs(args, 2, "typing <contact>")
		cmdTyping(ctx, c, args[1], *jsonFlag)
	case "read":
		requireArgs(args, 2, "read <contact>")
		cmdRead(ctx, c, args[1], *jsonFlag)
	case "drops":
		limit := 0
		if len(args) > 1 {
			if limit, err = strconv.Atoi(args[1]); err != nil {
				fatalf("invalid limit %q", args[1])
			}
		}
		cmdDrops(ctx, c, limit, *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: mqchatctl [--identity <id>] [--config <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init [broker]           Write the config file, setting --identity and broker")
	fmt.Fprintln(os.Stderr, "  status                  Show daemon and transport status")
	fmt.Fprintln(os.Stderr, "  contacts                List contacts with unread counts")
	fmt.Fprintln(os.Stderr, "  history <contact>       Print a conversation")
	fmt.Fprintln(os.Stderr, "  send <contact> <text>   Send a message")
	fmt.Fprintln(os.Stderr, "  broadcast <text>        Send a message to every contact")
	fmt.Fprintln(os.Stderr, "  typing <contact>        Send a typing notice")
	fmt.Fprintln(os.Stderr, "  read <contact>          Mark a conversation read")
	fmt.Fprintln(os.Stderr, "  drops [limit]           List dropped inbound payloads")
	fmt.Fprintln(os.Stderr, "  watch                   Stream daemon events until interrupted")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, "usage: mqchatctl "+usage)
		os.Exit(1)
	}
}

// daemonDown reports why the daemon did not answer and exits. A held lock
// means the daemon is alive but its socket is not serving.
func daemonDown(identity string) {
	pid, held, err := lock.Holder(session.Dir(identity))
	switch {
	case err != nil:
		fatalf("daemon for %q is not reachable: %v", identity, err)
	case held:
		fatalf("daemon for %q (PID %d) is not responding", identity, pid)
	default:
		fatalf("daemon for %q is not running; start it with mqchatd --identity %s", identity, identity)
	}
}

// cmdInit updates the config file in place, creating it with defaults when
// missing, so later commands can run without --identity.
func cmdInit(path, identity string, args []string) {
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("%v", err)
	}
	if identity != "" {
		if err := session.ValidateIdentity(identity); err != nil {
			fatalf("%v", err)
		}
		cfg.Identity = identity
	}
	if len(args) > 0 {
		cfg.Broker = args[0]
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	if err := config.Save(path, cfg); err != nil {
		fatalf("write config: %v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func cmdStatus(ctx context.Context, c *client.Client, jsonOut bool) {
	resp, err := c.Chat.GetStatus(ctx, &mqchatv1.GetStatusRequest{})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Identity:  %s\n", resp.Identity)
	fmt.Printf("Namespace: %s\n", resp.Namespace)
	fmt.Printf("Broker:    %s\n", resp.Broker)
	fmt.Printf("Status:    %s\n", resp.Status)
	fmt.Printf("Contacts:  %d (%d unread)\n", resp.Contacts, resp.Unread)
	fmt.Printf("Drops:     %d\n", resp.Drops)
	fmt.Printf("Uptime:    %s\n", time.Since(time.UnixMilli(resp.StartedUnixMs)).Truncate(time.Second))
}

func cmdContacts(ctx context.Context, c *client.Client, jsonOut bool) {
	resp, err := c.Chat.ListContacts(ctx, &mqchatv1.ListContactsRequest{})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	table := newTable("Contact", "Label", "Unread", "Typing")
	for _, ct := range resp.Contacts {
		typing := ""
		if ct.Typing {
			typing = "yes"
		}
		table.Append([]string{ct.ID, ct.Label, strconv.Itoa(ct.Unread), typing})
	}
	table.Render()
}

func cmdHistory(ctx context.Context, c *client.Client, contact string, jsonOut bool) {
	resp, err := c.Chat.GetConversation(ctx, &mqchatv1.GetConversationRequest{Contact: contact})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("== %s ==\n", resp.Label)
	for _, m := range resp.Messages {
		fmt.Printf("%s\n\n", m.Rendered)
	}
	if resp.Typing {
		fmt.Printf("%s is typing...\n", contact)
	}
}

func cmdSend(ctx context.Context, c *client.Client, contact, text string, jsonOut bool) {
	resp, err := c.Chat.Send(ctx, &mqchatv1.SendRequest{Contact: contact, Body: text})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Sent %s\n", resp.ID)
}

func cmdBroadcast(ctx context.Context, c *client.Client, text string, jsonOut bool) {
	resp, err := c.Chat.SendToAll(ctx, &mqchatv1.SendToAllRequest{Body: text})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Sent to %d contacts\n", len(resp.IDs))
}

func cmdTyping(ctx context.Context, c *client.Client, contact string, jsonOut bool) {
	resp, err := c.Chat.NotifyTyping(ctx, &mqchatv1.NotifyTypingRequest{Contact: contact})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	if resp.Sent {
		fmt.Println("Typing notice sent.")
	} else {
		fmt.Println("Typing notice suppressed (sent recently).")
	}
}

func cmdRead(ctx context.Context, c *client.Client, contact string, jsonOut bool) {
	resp, err := c.Chat.MarkRead(ctx, &mqchatv1.MarkReadRequest{Contact: contact})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	fmt.Printf("Sent %d read receipts\n", len(resp.IDs))
}

func cmdDrops(ctx context.Context, c *client.Client, limit int, jsonOut bool) {
	resp, err := c.Chat.ListDrops(ctx, &mqchatv1.ListDropsRequest{Limit: limit})
	if err != nil {
		fatalf("%v", err)
	}
	if jsonOut {
		outputJSON(resp)
		return
	}
	if len(resp.Drops) == 0 {
		fmt.Println("No dropped payloads.")
		return
	}
	table := newTable("Time", "Topic", "Reason", "Payload")
	for _, d := range resp.Drops {
		table.Append([]string{
			time.UnixMilli(d.CreatedAtUnixMs).Format(time.DateTime),
			d.Topic,
			d.Reason,
			truncate(d.Payload, 60),
		})
	}
	table.Render()
	fmt.Printf("%d of %d shown\n", len(resp.Drops), resp.Total)
}

func cmdWatch(ctx context.Context, c *client.Client, identity string, jsonOut bool) {
	stream, err := c.Chat.WatchChanges(ctx, &mqchatv1.WatchChangesRequest{})
	if err != nil {
		daemonDown(identity)
	}
	for {
		evt, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return
		}
		if err != nil {
			fatalf("event stream: %v", err)
		}
		if jsonOut {
			outputJSON(evt)
			continue
		}
		at := time.UnixMilli(evt.OccurredAtUnixMs).Format(time.TimeOnly)
		switch {
		case evt.From != "" || evt.To != "":
			fmt.Printf("%s %-24s %s -> %s %s\n", at, evt.Kind, evt.From, evt.To, evt.Detail)
		default:
			fmt.Printf("%s %-24s %s %s\n", at, evt.Kind, evt.Contact, evt.MsgID)
		}
	}
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
