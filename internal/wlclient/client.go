// Package wlclient owns the Wayland connection: it binds the extension
// globals, drives every protocol object state machine from the single
// dispatch goroutine, and exposes the normalized model to other goroutines
// through a request/response bridge and per-type event fan-outs.
package wlclient

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bnema/wlturbo/wl"

	"github.com/panelkit/panelkit/internal/clipboard"
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/protocols"
	"github.com/panelkit/panelkit/internal/shell"
)

// requestQueueDepth bounds the bridge queue; submitters block (with their
// context) once it fills, the loop never does.
const requestQueueDepth = 128

// Client is the event-loop owner. All protocol object state is mutated
// exclusively by the goroutine running Run; other goroutines interact
// through the public query API, which routes through the bridge.
type Client struct {
	display *wl.Display

	requests chan func()
	closed   atomic.Bool

	outputs    *outputTracker
	toplevels  *toplevelTracker
	workspaces *workspaceTracker

	seat *protocols.Seat

	toplevelManager    *protocols.ForeignToplevelManager
	workspaceManager   *protocols.WorkspaceManager
	dataControlManager *protocols.DataControlManager
	dmabuf             *protocols.LinuxDmabuf
	exportManager      *protocols.ToplevelExportManager

	outputEvents    *Broadcaster[shell.OutputEvent]
	toplevelEvents  *Broadcaster[shell.ToplevelEvent]
	workspaceEvents *Broadcaster[shell.WorkspaceUpdate]
	clipboardEvents *Broadcaster[shell.ClipboardEvent]

	clipboardCache  *clipboard.Cache
	clipboardDriver *clipboard.Driver

	captures *captureState
}

// New creates an unconnected client.
func New() *Client {
	c := &Client{
		requests:        make(chan func(), requestQueueDepth),
		outputEvents:    NewBroadcaster[shell.OutputEvent](),
		toplevelEvents:  NewBroadcaster[shell.ToplevelEvent](),
		workspaceEvents: NewBroadcaster[shell.WorkspaceUpdate](),
		clipboardEvents: NewBroadcaster[shell.ClipboardEvent](),
		clipboardCache:  clipboard.NewCache(),
	}
	c.outputs = newOutputTracker(c.outputEvents.Publish)
	c.toplevels = newToplevelTracker(c.outputs.name, c.toplevelEvents.Publish)
	c.workspaces = newWorkspaceTracker(c.outputs.name, c.workspaceEvents.Publish)
	c.captures = newCaptureState()
	return c
}

// ClipboardCache exposes the shared clipboard cache.
func (c *Client) ClipboardCache() *clipboard.Cache {
	return c.clipboardCache
}

// Connect dials the Wayland socket and binds all supported globals.
// Missing required globals (wl_seat) fail the connect; missing optional
// extension managers only disable their feature.
func (c *Client) Connect() error {
	display, err := wl.Connect("")
	if err != nil {
		return fmt.Errorf("connecting to Wayland display: %w", err)
	}
	c.display = display

	registry := display.Registry()
	ctx := display.Context()

	registry.AddHandler(protocols.OutputInterface, func(r *wl.Registry, name, version uint32) {
		output := protocols.NewOutput(ctx)
		if err := r.Bind(name, protocols.OutputInterface, minVersion(version, protocols.OutputVersion), output); err != nil {
			logger.Error("binding wl_output", "err", err)
			return
		}
		c.outputs.wire(name, output)
	})

	registry.AddHandler(protocols.SeatInterface, func(r *wl.Registry, name, version uint32) {
		if c.seat != nil {
			return
		}
		seat := protocols.NewSeat(ctx)
		if err := r.Bind(name, protocols.SeatInterface, minVersion(version, protocols.SeatVersion), seat); err != nil {
			logger.Error("binding wl_seat", "err", err)
			return
		}
		seat.SetCapabilitiesHandler(func(caps uint32) {
			logger.Debug("seat capabilities",
				"pointer", caps&protocols.SeatCapabilityPointer != 0,
				"keyboard", caps&protocols.SeatCapabilityKeyboard != 0)
		})
		c.seat = seat
	})

	registry.AddHandler(protocols.ForeignToplevelManagerInterface, func(r *wl.Registry, name, version uint32) {
		manager := protocols.NewForeignToplevelManager(ctx)
		if err := r.Bind(name, protocols.ForeignToplevelManagerInterface, minVersion(version, protocols.ForeignToplevelManagerVersion), manager); err != nil {
			logger.Error("binding foreign toplevel manager", "err", err)
			return
		}
		manager.SetToplevelHandler(c.toplevels.wire)
		c.toplevelManager = manager
	})

	registry.AddHandler(protocols.WorkspaceManagerInterface, func(r *wl.Registry, name, version uint32) {
		manager := protocols.NewWorkspaceManager(ctx)
		if err := r.Bind(name, protocols.WorkspaceManagerInterface, minVersion(version, protocols.WorkspaceManagerVersion), manager); err != nil {
			logger.Error("binding workspace manager", "err", err)
			return
		}
		manager.SetGroupHandler(c.workspaces.wireGroup)
		manager.SetWorkspaceHandler(c.workspaces.wire)
		manager.SetDoneHandler(c.workspaces.commitAll)
		c.workspaceManager = manager
	})

	registry.AddHandler(protocols.DataControlManagerInterface, func(r *wl.Registry, name, version uint32) {
		manager := protocols.NewDataControlManager(ctx)
		if err := r.Bind(name, protocols.DataControlManagerInterface, minVersion(version, protocols.DataControlManagerVersion), manager); err != nil {
			logger.Error("binding data control manager", "err", err)
			return
		}
		c.dataControlManager = manager
	})

	registry.AddHandler(protocols.LinuxDmabufInterface, func(r *wl.Registry, name, version uint32) {
		if version < protocols.LinuxDmabufVersion {
			logger.Warn("linux-dmabuf too old for feedback, capture disabled", "version", version)
			return
		}
		dmabuf := protocols.NewLinuxDmabuf(ctx)
		if err := r.Bind(name, protocols.LinuxDmabufInterface, protocols.LinuxDmabufVersion, dmabuf); err != nil {
			logger.Error("binding linux-dmabuf", "err", err)
			return
		}
		c.dmabuf = dmabuf
	})

	registry.AddHandler(protocols.ToplevelExportManagerInterface, func(r *wl.Registry, name, version uint32) {
		manager := protocols.NewToplevelExportManager(ctx)
		if err := r.Bind(name, protocols.ToplevelExportManagerInterface, minVersion(version, protocols.ToplevelExportManagerVersion), manager); err != nil {
			logger.Error("binding toplevel export manager", "err", err)
			return
		}
		c.exportManager = manager
	})

	// First pass announces globals and triggers the binds, second collects
	// the bound objects' initial bursts (output geometry, seat caps).
	if err := display.Roundtrip(); err != nil {
		return fmt.Errorf("initial roundtrip: %w", err)
	}
	if err := display.Roundtrip(); err != nil {
		return fmt.Errorf("second roundtrip: %w", err)
	}

	if c.seat == nil {
		return fmt.Errorf("required global %s not advertised", protocols.SeatInterface)
	}

	if c.dataControlManager != nil {
		driver, err := clipboard.NewDriver(c.dataControlManager, c.seat, c.clipboardCache, c.clipboardEvents.Publish)
		if err != nil {
			return fmt.Errorf("starting clipboard driver: %w", err)
		}
		c.clipboardDriver = driver
	} else {
		logger.Info("data control not advertised, clipboard disabled")
	}

	if c.dmabuf != nil {
		if err := c.startDmabufFeedback(); err != nil {
			return fmt.Errorf("starting dmabuf feedback: %w", err)
		}
	} else {
		logger.Info("linux-dmabuf not advertised, capture disabled")
	}
	if c.toplevelManager == nil {
		logger.Info("foreign toplevel management not advertised")
	}
	if c.workspaceManager == nil {
		logger.Info("workspace management not advertised, IPC fallback required")
	}
	if c.exportManager == nil {
		logger.Info("toplevel export not advertised, capture disabled")
	}

	return nil
}

// Run drives the dispatch loop until ctx is cancelled or the connection
// fails. It must be the only goroutine dispatching.
func (c *Client) Run(ctx context.Context) error {
	defer c.closed.Store(true)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// Closing the socket unblocks the dispatcher.
			_ = c.display.Close()
		case <-stop:
		}
	}()

	registry := c.display.Registry()
	for {
		c.drainRequests()
		if err := c.display.Dispatch(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("dispatch: %w", err)
		}
		c.outputs.reconcile(registry.GetGlobals())
	}
}

// drainRequests runs every queued bridge request against live state.
func (c *Client) drainRequests() {
	for {
		select {
		case fn := <-c.requests:
			fn()
		default:
			return
		}
	}
}

func minVersion(advertised, supported uint32) uint32 {
	if advertised < supported {
		return advertised
	}
	return supported
}
