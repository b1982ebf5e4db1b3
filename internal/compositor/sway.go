package compositor

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/shell"
)

// i3 IPC message types. Event replies set the high bit of the type.
const (
	swayRunCommand    = 0
	swayGetWorkspaces = 1
	swaySubscribe     = 2

	swayEventBit       = 0x80000000
	swayEventWorkspace = swayEventBit | 0
)

var swayMagic = []byte("i3-ipc")

// Sway speaks the i3 binary IPC over the socket in $SWAYSOCK.
type Sway struct {
	socket string
}

// NewSway creates a sway backend for the given socket path.
func NewSway(socket string) *Sway {
	return &Sway{socket: socket}
}

// Name implements Backend.
func (s *Sway) Name() string {
	return "sway"
}

type swayWorkspace struct {
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Focused bool   `json:"focused"`
	Urgent  bool   `json:"urgent"`
	Output  string `json:"output"`
}

type swayWorkspaceEvent struct {
	Change  string         `json:"change"`
	Current *swayWorkspace `json:"current"`
	Old     *swayWorkspace `json:"old"`
}

func swayWrite(conn net.Conn, msgType uint32, payload []byte) error {
	header := make([]byte, 14)
	copy(header, swayMagic)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[10:14], msgType)
	if _, err := conn.Write(header); err != nil {
		return err
	}
	_, err := conn.Write(payload)
	return err
}

func swayRead(conn net.Conn) (uint32, []byte, error) {
	header := make([]byte, 14)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, err
	}
	if string(header[:6]) != string(swayMagic) {
		return 0, nil, fmt.Errorf("bad sway IPC magic %q", header[:6])
	}
	length := binary.LittleEndian.Uint32(header[6:10])
	msgType := binary.LittleEndian.Uint32(header[10:14])
	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, nil, err
	}
	return msgType, payload, nil
}

func (s *Sway) roundTrip(msgType uint32, payload []byte, reply any) error {
	conn, err := net.Dial("unix", s.socket)
	if err != nil {
		return fmt.Errorf("dialing sway socket: %w", err)
	}
	defer conn.Close()

	if err := swayWrite(conn, msgType, payload); err != nil {
		return fmt.Errorf("sending sway request: %w", err)
	}
	_, data, err := swayRead(conn)
	if err != nil {
		return fmt.Errorf("reading sway reply: %w", err)
	}
	if reply != nil {
		if err := json.Unmarshal(data, reply); err != nil {
			return fmt.Errorf("decoding sway reply: %w", err)
		}
	}
	return nil
}

// Workspaces implements Backend.
func (s *Sway) Workspaces() ([]shell.Workspace, error) {
	var workspaces []swayWorkspace
	if err := s.roundTrip(swayGetWorkspaces, nil, &workspaces); err != nil {
		return nil, err
	}
	return normalizeSway(workspaces), nil
}

// Focus implements Backend.
func (s *Sway) Focus(ref Ref) error {
	var cmd string
	if ref.Name != "" {
		cmd = fmt.Sprintf("workspace %q", ref.Name)
	} else {
		cmd = fmt.Sprintf("workspace number %d", ref.Index)
	}
	var results []struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := s.roundTrip(swayRunCommand, []byte(cmd), &results); err != nil {
		return err
	}
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("sway command failed: %s", r.Error)
		}
	}
	return nil
}

// Subscribe implements Backend.
func (s *Sway) Subscribe(ctx context.Context, ch chan<- shell.WorkspaceUpdate) error {
	conn, err := net.Dial("unix", s.socket)
	if err != nil {
		return fmt.Errorf("dialing sway event socket: %w", err)
	}

	if err := swayWrite(conn, swaySubscribe, []byte(`["workspace"]`)); err != nil {
		conn.Close()
		return fmt.Errorf("subscribing to sway events: %w", err)
	}
	var ack struct {
		Success bool `json:"success"`
	}
	_, data, err := swayRead(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("reading sway subscribe ack: %w", err)
	}
	if err := json.Unmarshal(data, &ack); err != nil || !ack.Success {
		conn.Close()
		return fmt.Errorf("sway subscribe rejected")
	}

	// An Init with the full list primes subscribers before the diffs.
	if initial, err := s.Workspaces(); err == nil {
		select {
		case ch <- shell.WorkspaceUpdate{Kind: shell.WorkspaceInit, All: initial}:
		case <-ctx.Done():
			conn.Close()
			return ctx.Err()
		}
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer conn.Close()
		for {
			msgType, data, err := swayRead(conn)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("sway event stream closed", "err", err)
				}
				return
			}
			if msgType != swayEventWorkspace {
				continue
			}
			var ev swayWorkspaceEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				logger.Debug("skipping undecodable sway event", "err", err)
				continue
			}
			update := translateSway(ev)
			select {
			case ch <- update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// translateSway maps one workspace event onto the normalized update set.
func translateSway(ev swayWorkspaceEvent) shell.WorkspaceUpdate {
	var current shell.Workspace
	if ev.Current != nil {
		current = normalizeOneSway(*ev.Current)
	}
	switch ev.Change {
	case "init":
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceAdd, Workspace: current}
	case "empty":
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceRemove, Workspace: current}
	case "focus":
		old := ""
		if ev.Old != nil {
			old = ev.Old.Name
		}
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceFocus, Workspace: current, Old: old, New: current.Name}
	case "move":
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceMove, Workspace: current}
	case "rename":
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceRename, Workspace: current}
	case "urgent":
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceUrgent, Workspace: current}
	default:
		return shell.WorkspaceUpdate{Kind: shell.WorkspaceUnknown, Workspace: current}
	}
}

func normalizeOneSway(ws swayWorkspace) shell.Workspace {
	visibility := shell.Hidden()
	if ws.Visible {
		visibility = shell.Visible(ws.Focused)
	}
	return shell.Workspace{
		ID:         int64(ws.Num),
		Index:      ws.Num,
		Name:       ws.Name,
		Monitor:    ws.Output,
		Visibility: visibility,
	}
}

func normalizeSway(workspaces []swayWorkspace) []shell.Workspace {
	result := make([]shell.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		result = append(result, normalizeOneSway(ws))
	}
	return result
}
