package ovh

import (
	"context"
	"fmt"
	"slices"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Vracks lists the vRack ids (e.g. "pn-12345").
func (a *API) Vracks(ctx context.Context) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/vrack"), nil)
}

// Vrack returns the details of a vRack.
func (a *API) Vrack(ctx context.Context, id string) (Vrack, error) {
	return get[Vrack](ctx, a, proxy.NewPath("/vrack/%s", id), nil)
}

// VrackNames maps every vRack id to its name.
func (a *API) VrackNames(ctx context.Context) (map[string]string, error) {
	ids, err := a.Vracks(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		v, err := a.Vrack(ctx, id)
		if err != nil {
			return nil, err
		}
		names[id] = v.Name
	}
	return names, nil
}

// FindVrack returns the id of the vRack whose id or name is nameOrID.
func (a *API) FindVrack(ctx context.Context, nameOrID string) (string, error) {
	names, err := a.VrackNames(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := names[nameOrID]; ok {
		return nameOrID, nil
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if names[id] == nameOrID {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrVrackNotFound, nameOrID)
}

// VrackInterfaces lists the server interface uuids attached to a vRack.
// Never cached.
func (a *API) VrackInterfaces(ctx context.Context, id string) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/vrack/%s/dedicatedServerInterface", id), nil)
}

// VrackInterfaceDetails lists the attached interfaces with their servers.
func (a *API) VrackInterfaceDetails(ctx context.Context, id string) ([]map[string]any, error) {
	return get[[]map[string]any](ctx, a, proxy.NewPath("/vrack/%s/dedicatedServerInterfaceDetails", id), nil)
}

// VrackIPBlocks lists the IP blocks routed in a vRack.
func (a *API) VrackIPBlocks(ctx context.Context, id string) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/vrack/%s/ip", id), nil)
}

// AssignInterface attaches a server interface to a vRack.
func (a *API) AssignInterface(ctx context.Context, id, uuid string) (*Task, error) {
	path := proxy.NewPath("/vrack/%s/dedicatedServerInterface", id)
	raw, err := a.caller.Post(ctx, path, map[string]string{"dedicatedServerInterface": uuid})
	return mutation[Task](path, raw, err)
}

// RemoveInterface detaches a server interface from a vRack.
func (a *API) RemoveInterface(ctx context.Context, id, uuid string) (*Task, error) {
	path := proxy.NewPath("/vrack/%s/dedicatedServerInterface/%s", id, uuid)
	raw, err := a.caller.Delete(ctx, path)
	return mutation[Task](path, raw, err)
}

// InVrack reports whether the interface is attached to the vRack.
func (a *API) InVrack(ctx context.Context, id, uuid string) (bool, error) {
	uuids, err := a.VrackInterfaces(ctx, id)
	if err != nil {
		return false, err
	}
	return slices.Contains(uuids, uuid), nil
}

// ServerVrack returns the vRack a server's vrack interface is attached to,
// or "" when it is not attached anywhere.
func (a *API) ServerVrack(ctx context.Context, server string) (string, error) {
	uuid, err := a.VrackInterface(ctx, server)
	if err != nil {
		return "", err
	}
	ids, err := a.Vracks(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		in, err := a.InVrack(ctx, id, uuid)
		if err != nil {
			return "", err
		}
		if in {
			return id, nil
		}
	}
	return "", nil
}
