package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/errmap"
	"github.com/aislelist/aislelist/pkg/eventstream"
	"github.com/aislelist/aislelist/pkg/session"
	"github.com/aislelist/aislelist/pkg/store"
	json "github.com/goccy/go-json"
)

// stateTimeout bounds how long a command waits for the list to settle.
const stateTimeout = 10 * time.Second

// resolveLocation accepts a location id or its exact name.
func resolveLocation(ctx context.Context, s *store.Store, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if _, err := s.GetLocation(ctx, id); err != nil {
			return 0, userError(err)
		}
		return id, nil
	}
	id, err := s.FindLocation(ctx, arg)
	if err != nil {
		return 0, userError(err)
	}
	return id, nil
}

type itemRef struct {
	kind displayitem.Kind
	id   int64
}

// parseItemRef reads "aisle:ID" or "product:ID".
func parseItemRef(s string) (itemRef, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return itemRef{}, fmt.Errorf("item %q: want aisle:ID or product:ID", s)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return itemRef{}, fmt.Errorf("item %q: bad id", s)
	}
	switch strings.ToLower(kind) {
	case "aisle":
		return itemRef{kind: displayitem.KindAisle, id: id}, nil
	case "product":
		return itemRef{kind: displayitem.KindProduct, id: id}, nil
	}
	return itemRef{}, fmt.Errorf("item %q: unknown kind %q", s, kind)
}

func (r itemRef) find(items []displayitem.Item) (displayitem.Item, error) {
	it, ok := displayitem.Find(items, r.kind, r.id)
	if !ok {
		return nil, fmt.Errorf("%s %d is not on the list", r.kind, r.id)
	}
	return it, nil
}

// awaitUpdated returns the next Updated state. An Error state ends the wait
// with the state's message.
func awaitUpdated(ctx context.Context, events <-chan eventstream.Event[int64, session.DisplayState]) (session.DisplayState, error) {
	ctx, cancel := context.WithTimeout(ctx, stateTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return session.DisplayState{}, fmt.Errorf("waiting for list: %w", ctx.Err())
		case ev, ok := <-events:
			if !ok {
				return session.DisplayState{}, fmt.Errorf("session closed")
			}
			switch ev.Payload.Kind {
			case session.StateUpdated:
				return ev.Payload, nil
			case session.StateError:
				return session.DisplayState{}, errmap.New(ev.Payload.Code, ev.Payload.Message, nil)
			}
		}
	}
}

// itemView is the JSON shape of one display row.
type itemView struct {
	Kind       string   `json:"kind"`
	ID         int64    `json:"id,omitempty"`
	Name       string   `json:"name,omitempty"`
	AisleID    int64    `json:"aisle_id,omitempty"`
	Rank       int      `json:"rank"`
	IsDefault  bool     `json:"is_default,omitempty"`
	Expanded   *bool    `json:"expanded,omitempty"`
	ChildCount *int     `json:"child_count,omitempty"`
	InStock    *bool    `json:"in_stock,omitempty"`
	QtyNeeded  int      `json:"qty_needed,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

func toView(it displayitem.Item) itemView {
	v := itemView{Kind: it.Kind().String(), Rank: it.ItemRank()}
	switch it := it.(type) {
	case displayitem.Aisle:
		v.ID, v.Name, v.IsDefault = it.ID, it.Name, it.IsDefault
		v.Expanded, v.ChildCount = &it.Expanded, &it.ChildCount
	case displayitem.Product:
		v.ID, v.Name, v.AisleID = it.ID, it.Name, it.AisleID
		v.InStock, v.QtyNeeded = &it.InStock, it.QtyNeeded
		if it.Price != 0 {
			v.Price = &it.Price
		}
	}
	return v
}

func writeJSON(w io.Writer, items []displayitem.Item) error {
	views := make([]itemView, len(items))
	for i, it := range items {
		views[i] = toView(it)
	}
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, items []displayitem.Item) error {
	for _, it := range items {
		var err error
		switch it := it.(type) {
		case displayitem.Aisle:
			marker := "v"
			if !it.Expanded {
				marker = ">"
			}
			_, err = fmt.Fprintf(w, "%s %-12s %s (%d)\n", marker, fmt.Sprintf("aisle:%d", it.ID), it.Name, it.ChildCount)
		case displayitem.Product:
			check := " "
			if it.InStock {
				check = "x"
			}
			line := fmt.Sprintf("    %-12s [%s] %s", fmt.Sprintf("product:%d", it.ID), check, it.Name)
			if it.QtyNeeded > 0 {
				line += fmt.Sprintf(" x%d", it.QtyNeeded)
			}
			_, err = fmt.Fprintln(w, line)
		case displayitem.EmptyList:
			_, err = fmt.Fprintln(w, "(nothing to show)")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
