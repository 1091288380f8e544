package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

// replyDelimiter separates the reply from the quoted conversation in the
// editor template.
const replyDelimiter = "====== ^^ WRITE YOUR TEXT ABOVE ^^ ==== DO NOT CHANGE THIS LINE ======"

const defaultEditor = "vi"

// Values accepted by /support/tickets/create.
var (
	ticketCategories    = []string{"billing", "assistance", "incident"}
	ticketSubcategories = []string{"alerts", "autorenew", "bill", "down", "inProgress", "new", "other", "perfs", "start", "usage"}
	ticketProducts      = []string{
		"adsl", "cdn", "dedicated", "dedicated-billing", "dedicated-other", "dedicatedcloud",
		"domain", "exchange", "fax", "hosting", "housing", "iaas", "mail", "network",
		"publiccloud", "sms", "ssl", "storage", "telecom-billing", "telecom-other",
		"vac", "voip", "vps", "web-billing", "web-other",
	}
)

// Ticket commands never use the cache: tickets change on the remote side
// without any call from us.
func (a *app) ticketCommand() *Command {
	messageFlags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet {
			fs := a.flags(name)
			fs.StringVarP(&a.local.ticketMessage, "message", "m", "", "message text (default: open $EDITOR)")
			return fs
		}
	}

	return &Command{
		Name:    "ticket",
		Summary: "Read and answer support tickets",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List support tickets",
				Flags: func() *pflag.FlagSet {
					fs := a.flags("list")
					fs.StringVar(&a.local.ticketStatus, "status", "open", "filter by status (open, closed, unknown, all)")
					return fs
				},
				Run: a.action(a.runTicketList),
			},
			{
				Name:    "create",
				Summary: "Open a new support ticket",
				Usage:   "[flags]",
				Examples: []Example{
					{Description: "Report a broken disk", Command: "ovh-cli ticket create --category incident --subcategory down --product dedicated --service ns123.ip-1-2-3.eu --subject 'Disk failure'"},
				},
				Flags: func() *pflag.FlagSet {
					fs := messageFlags("create")()
					fs.StringVar(&a.local.ticketSubject, "subject", "", "ticket subject")
					fs.StringVar(&a.local.ticketCategory, "category", "", "category ("+strings.Join(ticketCategories, ", ")+")")
					fs.StringVar(&a.local.ticketSubcategory, "subcategory", "", "subcategory ("+strings.Join(ticketSubcategories, ", ")+")")
					fs.StringVar(&a.local.ticketProduct, "product", "", "related product (dedicated, vps, network...)")
					fs.StringVar(&a.local.ticketService, "service", "", "related service name")
					return fs
				},
				Run: a.action(a.runTicketCreate),
			},
			{
				Name:    "show",
				Summary: "Show a ticket and its messages",
				Usage:   "[flags] ID",
				Flags:   func() *pflag.FlagSet { return a.flags("show") },
				Run:     a.action(a.runTicketShow),
			},
			{
				Name:    "reply",
				Summary: "Answer a ticket",
				Usage:   "[flags] ID",
				Flags:   messageFlags("reply"),
				Run:     a.action(a.runTicketReply),
			},
			{
				Name:    "close",
				Summary: "Close a ticket",
				Usage:   "[flags] ID",
				Flags:   func() *pflag.FlagSet { return a.flags("close") },
				Run:     a.action(a.runTicketClose),
			},
			{
				Name:    "reopen",
				Summary: "Reopen a closed ticket with a message",
				Usage:   "[flags] ID",
				Flags:   messageFlags("reopen"),
				Run:     a.action(a.runTicketReopen),
			},
		},
	}
}

func (a *app) runTicketList(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	params := url.Values{}
	if a.local.ticketStatus != "" && a.local.ticketStatus != "all" {
		params.Set("status", a.local.ticketStatus)
	}
	ids, err := api.Tickets(ctx, params)
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	tickets := make([]ovh.Ticket, 0, len(ids))
	for _, id := range ids {
		t, err := api.Ticket(ctx, id)
		if err != nil {
			return err
		}
		tickets = append(tickets, t)
	}

	if a.opts.grep {
		f := a.formatter()
		for _, t := range tickets {
			if err := f.Section(strconv.Itoa(t.TicketID), t); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATE\tUPDATED\tSERVICE\tSUBJECT")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			t.TicketID, t.TicketNumber, t.State, t.UpdateDate, orDash(t.ServiceName), t.Subject)
	}
	return tw.Flush()
}

func (a *app) runTicketCreate(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}

	var (
		req ovh.NewTicket
		err error
	)
	fields := []struct {
		dst     *string
		flag    string
		label   string
		def     string
		allowed []string
	}{
		{&req.Category, a.local.ticketCategory, "Ticket category", "incident", ticketCategories},
		{&req.Subcategory, a.local.ticketSubcategory, "Ticket subcategory", "new", ticketSubcategories},
		{&req.Product, a.local.ticketProduct, "Related to product", "dedicated", ticketProducts},
		{&req.Subject, a.local.ticketSubject, "Ticket subject", "Generic request", nil},
		{&req.ServiceName, a.local.ticketService, "Service name", "", nil},
	}
	for _, field := range fields {
		value := field.flag
		if value == "" {
			if value, err = a.prompt(field.label, field.def); err != nil {
				return err
			}
		}
		if field.allowed != nil && !slices.Contains(field.allowed, value) {
			return fmt.Errorf("invalid %s %q (%s)", strings.ToLower(field.label), value, strings.Join(field.allowed, ", "))
		}
		*field.dst = value
	}

	req.Body = strings.TrimSpace(a.local.ticketMessage)
	if req.Body == "" {
		text, err := a.edit(ctx, "\n\n"+replyDelimiter+"\n")
		if err != nil {
			return err
		}
		if req.Body = extractReply(text); req.Body == "" {
			return fmt.Errorf("empty message: %w", errAborted)
		}
	}

	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	created, err := api.CreateTicket(ctx, req)
	if err != nil {
		return err
	}
	if created != nil {
		return a.formatter().Line("Ticket %d created (number %d)", created.TicketID, created.TicketNumber)
	}
	return nil
}

func (a *app) runTicketShow(ctx context.Context, args []string) error {
	id, err := ticketID(args)
	if err != nil {
		return err
	}
	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	ticket, err := api.Ticket(ctx, id)
	if err != nil {
		return err
	}
	messages, err := api.TicketMessages(ctx, id)
	if err != nil {
		return err
	}

	f := a.formatter()
	if err := f.Section(strconv.Itoa(id), ticket); err != nil {
		return err
	}
	if a.opts.grep {
		return f.Section("messages", messages)
	}
	f.Line("")
	return f.Line("%s", conversation(messages))
}

func (a *app) runTicketReply(ctx context.Context, args []string) error {
	id, err := ticketID(args)
	if err != nil {
		return err
	}
	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	body, err := a.ticketBody(ctx, api, id)
	if err != nil {
		return err
	}
	if err := api.ReplyTicket(ctx, id, body); err != nil {
		return err
	}
	if !a.opts.dryRun {
		return a.formatter().Line("Reply sent to ticket %d", id)
	}
	return nil
}

func (a *app) runTicketClose(ctx context.Context, args []string) error {
	id, err := ticketID(args)
	if err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Close ticket %d", id)); err != nil {
		return err
	}
	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	return api.CloseTicket(ctx, id)
}

func (a *app) runTicketReopen(ctx context.Context, args []string) error {
	id, err := ticketID(args)
	if err != nil {
		return err
	}
	api, err := a.openAPI(ctx, true)
	if err != nil {
		return err
	}
	body, err := a.ticketBody(ctx, api, id)
	if err != nil {
		return err
	}
	return api.ReopenTicket(ctx, id, body)
}

// ticketBody returns --message, or the text written in the editor above
// the delimiter line of a template quoting the conversation.
func (a *app) ticketBody(ctx context.Context, api *ovh.API, id int) (string, error) {
	if msg := strings.TrimSpace(a.local.ticketMessage); msg != "" {
		return msg, nil
	}

	messages, err := api.TicketMessages(ctx, id)
	if err != nil {
		return "", err
	}
	text, err := a.edit(ctx, replyTemplate(messages))
	if err != nil {
		return "", err
	}
	body := extractReply(text)
	if body == "" {
		return "", fmt.Errorf("empty message: %w", errAborted)
	}
	return body, nil
}

// edit opens the configured editor on content and returns the saved text.
func (a *app) edit(ctx context.Context, content string) (string, error) {
	editor := defaultEditor
	if cfg, err := a.config(); err == nil && cfg.Editor != "" {
		editor = cfg.Editor
	}

	tmp, err := os.CreateTemp("", "ovh-cli-ticket-*.txt")
	if err != nil {
		return "", fmt.Errorf("create message file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write message file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close message file: %w", err)
	}

	argv := append(strings.Fields(editor), tmp.Name())
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = a.stdin
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w", editor, err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("read message file: %w", err)
	}
	return string(data), nil
}

func ticketID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("exactly one ticket id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", args[0])
	}
	return id, nil
}

// conversation renders messages oldest first.
func conversation(messages []ovh.TicketMessage) string {
	sorted := make([]ovh.TicketMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreationDate < sorted[j].CreationDate
	})

	var b strings.Builder
	for i, m := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- %s, %s ---\n", m.From, m.CreationDate)
		b.WriteString(strings.TrimRight(m.Body, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func replyTemplate(messages []ovh.TicketMessage) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(replyDelimiter)
	b.WriteString("\n\n")
	for _, line := range strings.Split(conversation(messages), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// extractReply returns the trimmed text above the delimiter line. Without
// a delimiter the whole text is the reply.
func extractReply(text string) string {
	if i := strings.Index(text, replyDelimiter); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
