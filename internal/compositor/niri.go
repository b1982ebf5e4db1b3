package compositor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/shell"
)

// Niri speaks niri's line-delimited JSON IPC over the socket in
// $NIRI_SOCKET. Every request opens its own connection; the event stream
// holds one open for its lifetime.
type Niri struct {
	socket string
}

// NewNiri creates a niri backend for the given socket path.
func NewNiri(socket string) *Niri {
	return &Niri{socket: socket}
}

// Name implements Backend.
func (n *Niri) Name() string {
	return "niri"
}

type niriWorkspace struct {
	ID        int64   `json:"id"`
	Idx       int     `json:"idx"`
	Name      *string `json:"name"`
	Output    *string `json:"output"`
	IsActive  bool    `json:"is_active"`
	IsFocused bool    `json:"is_focused"`
	IsUrgent  bool    `json:"is_urgent"`
}

type niriReply struct {
	Ok  json.RawMessage `json:"Ok"`
	Err *string         `json:"Err"`
}

type niriEvent struct {
	WorkspacesChanged *struct {
		Workspaces []niriWorkspace `json:"workspaces"`
	} `json:"WorkspacesChanged"`
	WorkspaceActivated *struct {
		ID      int64 `json:"id"`
		Focused bool  `json:"focused"`
	} `json:"WorkspaceActivated"`
	WorkspaceUrgencyChanged *struct {
		ID     int64 `json:"id"`
		Urgent bool  `json:"urgent"`
	} `json:"WorkspaceUrgencyChanged"`
}

func (n *Niri) request(req any, reply any) error {
	conn, err := net.Dial("unix", n.socket)
	if err != nil {
		return fmt.Errorf("dialing niri socket: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("sending niri request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("reading niri reply: %w", err)
	}

	var r niriReply
	if err := json.Unmarshal(line, &r); err != nil {
		return fmt.Errorf("decoding niri reply: %w", err)
	}
	if r.Err != nil {
		return fmt.Errorf("niri error: %s", *r.Err)
	}
	if reply != nil {
		if err := json.Unmarshal(r.Ok, reply); err != nil {
			return fmt.Errorf("decoding niri payload: %w", err)
		}
	}
	return nil
}

// Workspaces implements Backend.
func (n *Niri) Workspaces() ([]shell.Workspace, error) {
	var payload struct {
		Workspaces []niriWorkspace `json:"Workspaces"`
	}
	if err := n.request("Workspaces", &payload); err != nil {
		return nil, err
	}
	return normalizeNiri(payload.Workspaces), nil
}

// Focus implements Backend.
func (n *Niri) Focus(ref Ref) error {
	var reference map[string]any
	switch {
	case ref.Name != "":
		reference = map[string]any{"Name": ref.Name}
	case ref.ID != 0:
		reference = map[string]any{"Id": ref.ID}
	default:
		reference = map[string]any{"Index": ref.Index}
	}
	req := map[string]any{
		"Action": map[string]any{
			"FocusWorkspace": map[string]any{"reference": reference},
		},
	}
	return n.request(req, nil)
}

// Subscribe implements Backend.
func (n *Niri) Subscribe(ctx context.Context, ch chan<- shell.WorkspaceUpdate) error {
	conn, err := net.Dial("unix", n.socket)
	if err != nil {
		return fmt.Errorf("dialing niri event socket: %w", err)
	}

	if err := json.NewEncoder(conn).Encode("EventStream"); err != nil {
		conn.Close()
		return fmt.Errorf("starting niri event stream: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer conn.Close()
		var state []niriWorkspace
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			var ev niriEvent
			if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
				logger.Debug("skipping undecodable niri event", "err", err)
				continue
			}
			for _, update := range translateNiri(&state, ev) {
				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logger.Error("niri event stream closed", "err", err)
		}
	}()
	return nil
}

// translateNiri folds one event into the tracked state and returns the
// normalized updates it produces.
func translateNiri(state *[]niriWorkspace, ev niriEvent) []shell.WorkspaceUpdate {
	switch {
	case ev.WorkspacesChanged != nil:
		*state = ev.WorkspacesChanged.Workspaces
		return []shell.WorkspaceUpdate{{
			Kind: shell.WorkspaceInit,
			All:  normalizeNiri(*state),
		}}

	case ev.WorkspaceActivated != nil:
		act := ev.WorkspaceActivated
		var old, next string
		for i := range *state {
			ws := &(*state)[i]
			if ws.ID == act.ID {
				next = niriName(*ws)
				ws.IsActive = true
				ws.IsFocused = act.Focused
			} else {
				if ws.IsFocused && act.Focused {
					old = niriName(*ws)
					ws.IsFocused = false
				}
				// a workspace on the same output loses active status, but
				// the event does not say which; a following
				// WorkspacesChanged reconciles it
			}
		}
		updates := []shell.WorkspaceUpdate{{
			Kind: shell.WorkspaceFocus,
			Old:  old,
			New:  next,
		}}
		if ws, ok := findNiri(*state, act.ID); ok {
			updates[0].Workspace = normalizeOneNiri(ws)
		}
		return updates

	case ev.WorkspaceUrgencyChanged != nil:
		urg := ev.WorkspaceUrgencyChanged
		for i := range *state {
			if (*state)[i].ID == urg.ID {
				(*state)[i].IsUrgent = urg.Urgent
			}
		}
		if ws, ok := findNiri(*state, urg.ID); ok {
			return []shell.WorkspaceUpdate{{
				Kind:      shell.WorkspaceUrgent,
				Workspace: normalizeOneNiri(ws),
			}}
		}
		return nil
	}
	return []shell.WorkspaceUpdate{{Kind: shell.WorkspaceUnknown}}
}

func findNiri(state []niriWorkspace, id int64) (niriWorkspace, bool) {
	for _, ws := range state {
		if ws.ID == id {
			return ws, true
		}
	}
	return niriWorkspace{}, false
}

func niriName(ws niriWorkspace) string {
	if ws.Name != nil && *ws.Name != "" {
		return *ws.Name
	}
	return strconv.Itoa(ws.Idx)
}

func normalizeOneNiri(ws niriWorkspace) shell.Workspace {
	output := ""
	if ws.Output != nil {
		output = *ws.Output
	}
	visibility := shell.Hidden()
	if ws.IsActive {
		visibility = shell.Visible(ws.IsFocused)
	}
	return shell.Workspace{
		ID:         ws.ID,
		Index:      ws.Idx,
		Name:       niriName(ws),
		Monitor:    output,
		Visibility: visibility,
	}
}

func normalizeNiri(workspaces []niriWorkspace) []shell.Workspace {
	result := make([]shell.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		result = append(result, normalizeOneNiri(ws))
	}
	return result
}
