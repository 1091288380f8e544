package ovh

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Servers lists the dedicated server names.
func (a *API) Servers(ctx context.Context) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/dedicated/server"), nil)
}

// Server returns the details of a dedicated server.
func (a *API) Server(ctx context.Context, name string) (Server, error) {
	return get[Server](ctx, a, proxy.NewPath("/dedicated/server/%s", name), nil)
}

// UpdateServer changes writable server properties.
func (a *API) UpdateServer(ctx context.Context, name string, update ServerUpdate) error {
	_, err := a.caller.Put(ctx, proxy.NewPath("/dedicated/server/%s", name), update)
	return err
}

// SetBoot selects the boot id used at the next reboot.
func (a *API) SetBoot(ctx context.Context, name string, bootID int) error {
	return a.UpdateServer(ctx, name, ServerUpdate{BootID: &bootID})
}

// BootIDs lists the boot ids available to a server.
func (a *API) BootIDs(ctx context.Context, name string) ([]int, error) {
	return get[[]int](ctx, a, proxy.NewPath("/dedicated/server/%s/boot", name), nil)
}

// BootOption returns one boot configuration.
func (a *API) BootOption(ctx context.Context, name string, bootID int) (BootOption, error) {
	return get[BootOption](ctx, a, proxy.NewPath("/dedicated/server/%s/boot/%s", name, bootID), nil)
}

// BootOptions returns every boot configuration keyed by boot id.
func (a *API) BootOptions(ctx context.Context, name string) (map[int]BootOption, error) {
	ids, err := a.BootIDs(ctx, name)
	if err != nil {
		return nil, err
	}

	options := make(map[int]BootOption, len(ids))
	for _, id := range ids {
		opt, err := a.BootOption(ctx, name, id)
		if err != nil {
			return nil, err
		}
		options[opt.BootID] = opt
	}
	return options, nil
}

// BootMode returns the boot configuration currently selected on a server.
func (a *API) BootMode(ctx context.Context, name string) (BootOption, error) {
	server, err := a.Server(ctx, name)
	if err != nil {
		return BootOption{}, err
	}
	options, err := a.BootOptions(ctx, name)
	if err != nil {
		return BootOption{}, err
	}
	opt, ok := options[server.BootID]
	if !ok {
		return BootOption{}, fmt.Errorf("%w: %d for server %s", ErrBootIDNotFound, server.BootID, name)
	}
	return opt, nil
}

// Reboot hard-reboots a server. It returns nil in dry-run mode.
func (a *API) Reboot(ctx context.Context, name string) (*Task, error) {
	path := proxy.NewPath("/dedicated/server/%s/reboot", name)
	raw, err := a.caller.Post(ctx, path, nil)
	return mutation[Task](path, raw, err)
}

// ServerIPs lists the IP blocks routed to a server.
func (a *API) ServerIPs(ctx context.Context, name string) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/dedicated/server/%s/ips", name), nil)
}

// ServerServiceInfos returns the billing information of a server.
func (a *API) ServerServiceInfos(ctx context.Context, name string) (ServiceInfos, error) {
	return get[ServiceInfos](ctx, a, proxy.NewPath("/dedicated/server/%s/serviceInfos", name), nil)
}

// UpdateServerServiceInfos changes the renewal policy of a server.
func (a *API) UpdateServerServiceInfos(ctx context.Context, name string, renew Renewal) error {
	_, err := a.caller.Put(ctx, proxy.NewPath("/dedicated/server/%s/serviceInfos", name), map[string]any{"renew": renew})
	return err
}

// NetworkInterfaces lists the virtual network interface uuids of a server.
func (a *API) NetworkInterfaces(ctx context.Context, name string) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/dedicated/server/%s/virtualNetworkInterface", name), nil)
}

// NetworkInterface returns one virtual network interface.
func (a *API) NetworkInterface(ctx context.Context, name, uuid string) (NetworkInterface, error) {
	return get[NetworkInterface](ctx, a, proxy.NewPath("/dedicated/server/%s/virtualNetworkInterface/%s", name, uuid), nil)
}

// VrackInterface returns the uuid of the server interface in vrack mode.
func (a *API) VrackInterface(ctx context.Context, name string) (string, error) {
	uuids, err := a.NetworkInterfaces(ctx, name)
	if err != nil {
		return "", err
	}
	for _, uuid := range uuids {
		nic, err := a.NetworkInterface(ctx, name, uuid)
		if err != nil {
			return "", err
		}
		if nic.Mode == "vrack" {
			return uuid, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoVrackInterface, name)
}

// RequestIPMIAccess asks for an IPMI session of the given type
// (e.g. "kvmipHtml5URL", "serialOverLanURL").
func (a *API) RequestIPMIAccess(ctx context.Context, name, accessType, ipToAllow string, ttlMinutes int) (*Task, error) {
	path := proxy.NewPath("/dedicated/server/%s/features/ipmi/access", name)
	body := map[string]any{"type": accessType, "ttl": ttlMinutes}
	if ipToAllow != "" {
		body["ipToAllow"] = ipToAllow
	}
	raw, err := a.caller.Post(ctx, path, body)
	return mutation[Task](path, raw, err)
}

// IPMIAccess returns the access data of a previously requested session.
func (a *API) IPMIAccess(ctx context.Context, name, accessType string) (IPMIAccess, error) {
	params := url.Values{"type": {accessType}}
	return get[IPMIAccess](ctx, a, proxy.NewPath("/dedicated/server/%s/features/ipmi/access", name), params)
}

// ResetIPMI resets the IPMI interface of a server.
func (a *API) ResetIPMI(ctx context.Context, name string) (*Task, error) {
	path := proxy.NewPath("/dedicated/server/%s/features/ipmi/resetInterface", name)
	raw, err := a.caller.Post(ctx, path, nil)
	return mutation[Task](path, raw, err)
}
