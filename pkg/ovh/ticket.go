package ovh

import (
	"context"
	"net/url"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Tickets lists support ticket ids, optionally filtered (status, product...).
func (a *API) Tickets(ctx context.Context, params url.Values) ([]int, error) {
	return get[[]int](ctx, a, proxy.NewPath("/support/tickets"), params)
}

// Ticket returns one support ticket.
func (a *API) Ticket(ctx context.Context, id int) (Ticket, error) {
	return get[Ticket](ctx, a, proxy.NewPath("/support/tickets/%s", id), nil)
}

// TicketMessages returns the messages of a ticket.
func (a *API) TicketMessages(ctx context.Context, id int) ([]TicketMessage, error) {
	return get[[]TicketMessage](ctx, a, proxy.NewPath("/support/tickets/%s/messages", id), nil)
}

// CreateTicket opens a new support ticket.
func (a *API) CreateTicket(ctx context.Context, t NewTicket) (*TicketCreated, error) {
	path := proxy.NewPath("/support/tickets/create")
	raw, err := a.caller.Post(ctx, path, t)
	return mutation[TicketCreated](path, raw, err)
}

// ReplyTicket adds a message to a ticket.
func (a *API) ReplyTicket(ctx context.Context, id int, body string) error {
	_, err := a.caller.Post(ctx, proxy.NewPath("/support/tickets/%s/reply", id), map[string]string{"body": body})
	return err
}

// CloseTicket closes a ticket.
func (a *API) CloseTicket(ctx context.Context, id int) error {
	_, err := a.caller.Post(ctx, proxy.NewPath("/support/tickets/%s/close", id), nil)
	return err
}

// ReopenTicket reopens a closed ticket with a new message.
func (a *API) ReopenTicket(ctx context.Context, id int, body string) error {
	_, err := a.caller.Post(ctx, proxy.NewPath("/support/tickets/%s/reopen", id), map[string]string{"body": body})
	return err
}
