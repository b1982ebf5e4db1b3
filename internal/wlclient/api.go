package wlclient

import (
	"context"
	"fmt"

	"github.com/panelkit/panelkit/internal/capture"
	"github.com/panelkit/panelkit/internal/shell"
)

// Outputs returns a snapshot of all known outputs.
func (c *Client) Outputs(ctx context.Context) ([]shell.Output, error) {
	var result []shell.Output
	err := c.roundTrip(ctx, func() {
		result = c.outputs.all()
	})
	return result, err
}

// Toplevels returns a snapshot of all committed toplevels.
func (c *Client) Toplevels(ctx context.Context) ([]shell.Toplevel, error) {
	if c.toplevelManager == nil {
		return nil, ErrUnsupported
	}
	var result []shell.Toplevel
	err := c.roundTrip(ctx, func() {
		result = c.toplevels.all()
	})
	return result, err
}

// Workspaces returns a snapshot of the generic-protocol workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]shell.Workspace, error) {
	if c.workspaceManager == nil {
		return nil, ErrUnsupported
	}
	var result []shell.Workspace
	err := c.roundTrip(ctx, func() {
		result = c.workspaces.all()
	})
	return result, err
}

// FocusToplevel asks the compositor to activate the toplevel on our seat.
func (c *Client) FocusToplevel(ctx context.Context, id uint64) error {
	if c.toplevelManager == nil {
		return ErrUnsupported
	}
	var reqErr error
	err := c.roundTrip(ctx, func() {
		h, ok := c.toplevels.get(id)
		if !ok || h.proxy == nil {
			reqErr = ErrNotFound
			return
		}
		reqErr = h.proxy.Activate(c.seat)
	})
	if err != nil {
		return err
	}
	return reqErr
}

// CloseToplevel asks the toplevel to close itself.
func (c *Client) CloseToplevel(ctx context.Context, id uint64) error {
	if c.toplevelManager == nil {
		return ErrUnsupported
	}
	var reqErr error
	err := c.roundTrip(ctx, func() {
		h, ok := c.toplevels.get(id)
		if !ok || h.proxy == nil {
			reqErr = ErrNotFound
			return
		}
		reqErr = h.proxy.Close()
	})
	if err != nil {
		return err
	}
	return reqErr
}

// FocusWorkspace activates the named generic-protocol workspace.
func (c *Client) FocusWorkspace(ctx context.Context, name string) error {
	if c.workspaceManager == nil {
		return ErrUnsupported
	}
	var reqErr error
	err := c.roundTrip(ctx, func() {
		h, ok := c.workspaces.byName(name)
		if !ok || h.proxy == nil {
			reqErr = ErrNotFound
			return
		}
		if reqErr = h.proxy.Activate(); reqErr != nil {
			return
		}
		reqErr = c.workspaceManager.Commit()
	})
	if err != nil {
		return err
	}
	return reqErr
}

// CaptureBuffer returns the cached capture buffer for the toplevel, in
// whatever shape it was last captured.
func (c *Client) CaptureBuffer(id uint64) (*capture.Buffer, error) {
	if c.exportManager == nil {
		return nil, ErrUnsupported
	}
	buf, ok := c.captures.cache.Lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	return buf, nil
}

// RequestBufferUpdate captures a fresh frame of the toplevel into its
// cached buffer, allocating or replacing the buffer as needed. The caller
// blocks until the compositor resolves the copy; the event loop does not.
func (c *Client) RequestBufferUpdate(ctx context.Context, id uint64) error {
	result := make(chan error, 1)
	if err := c.roundTrip(ctx, func() {
		c.startCapture(id, result)
	}); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CopyToClipboard publishes the item as the current selection.
func (c *Client) CopyToClipboard(ctx context.Context, item shell.ClipboardItem) error {
	if c.clipboardDriver == nil {
		return ErrUnsupported
	}
	var reqErr error
	err := c.roundTrip(ctx, func() {
		reqErr = c.clipboardDriver.Copy(item)
	})
	if err != nil {
		return err
	}
	return reqErr
}

// RemoveClipboardItem deletes a cache entry unconditionally.
func (c *Client) RemoveClipboardItem(id uint64) error {
	item, ok := c.clipboardCache.Get(id)
	if !ok {
		return ErrNotFound
	}
	if c.clipboardCache.Remove(id) {
		c.clipboardEvents.Publish(shell.ClipboardEvent{Kind: shell.ClipboardRemove, Item: item})
	}
	return nil
}

// DismissClipboardItem releases one subscriber's reference; the entry is
// removed once every subscriber has dismissed it.
func (c *Client) DismissClipboardItem(id uint64) {
	item, ok := c.clipboardCache.Get(id)
	if !ok {
		return
	}
	if c.clipboardCache.Unref(id) {
		c.clipboardEvents.Publish(shell.ClipboardEvent{Kind: shell.ClipboardRemove, Item: item})
	}
}

// SubscribeOutputs returns an independent output event stream.
func (c *Client) SubscribeOutputs() (<-chan shell.OutputEvent, func()) {
	return c.outputEvents.Subscribe()
}

// SubscribeToplevels returns an independent toplevel event stream.
func (c *Client) SubscribeToplevels() (<-chan shell.ToplevelEvent, func()) {
	return c.toplevelEvents.Subscribe()
}

// SubscribeWorkspaces returns an independent workspace update stream.
func (c *Client) SubscribeWorkspaces() (<-chan shell.WorkspaceUpdate, func()) {
	return c.workspaceEvents.Subscribe()
}

// SubscribeClipboard returns an independent clipboard event stream plus
// the current cache contents, oldest first. The subscriber counts toward
// new entries' reference counts until cancel is called.
func (c *Client) SubscribeClipboard() (<-chan shell.ClipboardEvent, func(), []shell.ClipboardItem) {
	ch, cancel := c.clipboardEvents.Subscribe()
	c.clipboardCache.AddSubscriber()
	wrapped := func() {
		c.clipboardCache.RemoveSubscriber()
		cancel()
	}
	return ch, wrapped, c.clipboardCache.Items()
}

// WatchClipboard returns a clipboard event stream that does not count
// toward cache reference counts. Passive observers (the history store)
// use it so their presence never keeps dismissed entries alive.
func (c *Client) WatchClipboard() (<-chan shell.ClipboardEvent, func()) {
	return c.clipboardEvents.Subscribe()
}

// PublishWorkspaceUpdate feeds an update from a compositor IPC backend
// into the shared workspace stream so consumers stay protocol-agnostic.
func (c *Client) PublishWorkspaceUpdate(update shell.WorkspaceUpdate) {
	c.workspaceEvents.Publish(update)
}

// String describes the bound feature set.
func (c *Client) String() string {
	return fmt.Sprintf("wlclient(toplevels=%v workspaces=%v clipboard=%v capture=%v)",
		c.toplevelManager != nil,
		c.workspaceManager != nil,
		c.clipboardDriver != nil,
		c.exportManager != nil && c.dmabuf != nil)
}
