package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/onemodel/ordinal/pkg/fuzzyfinder"
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/service/sorting"
)

// resolveID finds query among ids by exact id, else among names.
func resolveID(ids []idwrap.IDWrap, names []string, query string) (int, error) {
	if id, err := idwrap.NewText(query); err == nil {
		for i := range ids {
			if ids[i].Compare(id) == 0 {
				return i, nil
			}
		}
	}
	return fuzzyfinder.Resolve(names, query)
}

func resolveEntity(ctx context.Context, svc *Services, query string) (idwrap.IDWrap, error) {
	entities, err := svc.Reader.ListEntities(ctx)
	if err != nil {
		return idwrap.IDWrap{}, err
	}
	ids := make([]idwrap.IDWrap, len(entities))
	names := make([]string, len(entities))
	for i, e := range entities {
		ids[i], names[i] = e.ID, e.Name
	}
	i, err := resolveID(ids, names, query)
	if err != nil {
		return idwrap.IDWrap{}, fmt.Errorf("entity %w", err)
	}
	return ids[i], nil
}

func resolveGroup(ctx context.Context, svc *Services, query string) (idwrap.IDWrap, error) {
	groups, err := svc.Reader.ListGroups(ctx)
	if err != nil {
		return idwrap.IDWrap{}, err
	}
	ids := make([]idwrap.IDWrap, len(groups))
	names := make([]string, len(groups))
	for i, g := range groups {
		ids[i], names[i] = g.ID, g.Name
	}
	i, err := resolveID(ids, names, query)
	if err != nil {
		return idwrap.IDWrap{}, fmt.Errorf("group %w", err)
	}
	return ids[i], nil
}

// resolveContainer parses "group:<name>" or "entity:<name>".
func resolveContainer(ctx context.Context, svc *Services, arg string) (mcontainer.Ref, error) {
	kindText, query, ok := strings.Cut(arg, ":")
	if !ok || query == "" {
		return mcontainer.Ref{}, fmt.Errorf("container %q: want group:<name> or entity:<name>", arg)
	}
	kind, err := mcontainer.ParseKind(kindText)
	if err != nil {
		return mcontainer.Ref{}, err
	}

	ref := mcontainer.Ref{Kind: kind}
	switch kind {
	case mcontainer.KindEntityAttributes:
		ref.ID, err = resolveEntity(ctx, svc, query)
	case mcontainer.KindGroupEntries:
		ref.ID, err = resolveGroup(ctx, svc, query)
	}
	return ref, err
}

// resolveMember finds a member of ref by id or label, archived members
// included.
func resolveMember(ctx context.Context, svc *Services, ref mcontainer.Ref, query string) (sorting.Listed, error) {
	listed, err := svc.Reader.List(ctx, ref, true)
	if err != nil {
		return sorting.Listed{}, err
	}
	ids := make([]idwrap.IDWrap, len(listed))
	names := make([]string, len(listed))
	for i, l := range listed {
		ids[i], names[i] = l.ID, l.Label
	}
	i, err := resolveID(ids, names, query)
	if err != nil {
		return sorting.Listed{}, fmt.Errorf("member of %s %w", ref, err)
	}
	return listed[i], nil
}
