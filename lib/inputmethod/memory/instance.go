// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/imrouter/lib/clock"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
	"github.com/bureau-foundation/imrouter/lib/inputmethod/catalog"
)

var (
	_ inputmethod.LegacyInstance = (*Instance)(nil)
	_ inputmethod.Local          = (*localHandle)(nil)
)

// defaultWindowHeight is the IME window height reported while the soft
// input is shown, in pixels.
const defaultWindowHeight = 720

// Options configures an Instance. Zero values select defaults.
type Options struct {
	Logger       *slog.Logger
	Clock        clock.Clock
	WindowHeight int32
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.WindowHeight == 0 {
		o.WindowHeight = defaultWindowHeight
	}
	return o
}

type clientState struct {
	uid           uint32
	pid           int32
	display       inputmethod.DisplayID
	virtualStylus bool
	idleTimeout   time.Duration
}

// Instance is an in-memory input method service. It implements
// inputmethod.LegacyInstance; the Lifecycle methods are only meaningful
// for instances built with NewLegacy.
type Instance struct {
	catalog      *catalog.Catalog
	logger       *slog.Logger
	clock        clock.Clock
	windowHeight int32
	legacy       bool
	local        *localHandle

	mu sync.Mutex

	// user is the owning user for per-user instances and the current
	// foreground user for the legacy instance.
	user      inputmethod.UserID
	started   bool
	startedAt time.Time
	bootPhase inputmethod.BootPhase
	unlocked  map[inputmethod.UserID]bool
	running   map[inputmethod.UserID]bool

	clients       map[inputmethod.ClientID]*clientState
	focusedClient inputmethod.ClientID
	focusedWindow inputmethod.WindowToken
	sessionID     string
	sequence      int64

	enabled        map[inputmethod.MethodID]bool
	currentMethod  inputmethod.MethodID
	currentSubtype *inputmethod.Subtype
	lastSubtype    *inputmethod.Subtype
	additional     map[inputmethod.MethodID][]inputmethod.Subtype

	softInputShown   bool
	imeWindowVisible bool
	imeControl       inputmethod.WindowToken
	perceptible      map[inputmethod.WindowToken]bool
	pickerShown      bool
	iconDisabled     bool
	interactive      bool

	tracing        bool
	protoDumpBytes int

	handwriting bool
}

// New builds a per-user instance for user. The instance is not started.
func New(user inputmethod.UserID, methods *catalog.Catalog, options Options) *Instance {
	options = options.withDefaults()
	instance := &Instance{
		catalog:      methods,
		logger:       options.Logger.With("user", user),
		clock:        options.Clock,
		windowHeight: options.WindowHeight,
		user:         user,
		unlocked:     make(map[inputmethod.UserID]bool),
		running:      make(map[inputmethod.UserID]bool),
		clients:      make(map[inputmethod.ClientID]*clientState),
		enabled:      make(map[inputmethod.MethodID]bool),
		additional:   make(map[inputmethod.MethodID][]inputmethod.Subtype),
		perceptible:  make(map[inputmethod.WindowToken]bool),
		interactive:  true,
	}
	instance.local = &localHandle{instance: instance}

	for _, id := range methods.SystemMethods() {
		instance.enabled[id] = true
	}
	if system := methods.SystemMethods(); len(system) > 0 {
		instance.selectMethodLocked(system[0])
	}
	return instance
}

// NewLegacy builds the single unmultiplexed instance used in legacy
// fallback mode. It starts out serving the system user.
func NewLegacy(methods *catalog.Catalog, options Options) *Instance {
	instance := New(inputmethod.UserSystem, methods, options)
	instance.legacy = true
	instance.logger = options.withDefaults().Logger.With("mode", "legacy")
	return instance
}

// Factory returns an inputmethod.Factory producing per-user instances
// that share methods. The host context's logger and clock override
// those in options.
func Factory(methods *catalog.Catalog, options Options) inputmethod.Factory {
	return inputmethod.FactoryFunc(func(_ context.Context, host inputmethod.HostContext, user inputmethod.UserID) (inputmethod.Instance, error) {
		if !user.Valid() {
			return nil, fmt.Errorf("constructing instance: invalid user %d", user)
		}
		perUser := options
		if host.Logger != nil {
			perUser.Logger = host.Logger
		}
		if host.Clock != nil {
			perUser.Clock = host.Clock
		}
		return New(user, methods, perUser), nil
	})
}

// Start marks the instance running.
func (i *Instance) Start(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started {
		return ErrAlreadyStarted
	}
	i.started = true
	i.startedAt = i.clock.Now()
	i.running[i.user] = true
	i.logger.Info("input method instance started", "current_method", i.currentMethod)
	return nil
}

// ScheduleUserSwitch resets focus state and makes user the served user.
func (i *Instance) ScheduleUserSwitch(_ context.Context, user inputmethod.UserID, prior *inputmethod.ClientID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.started {
		return ErrNotStarted
	}
	if prior != nil {
		if _, ok := i.clients[*prior]; ok {
			i.logger.Debug("dropping focus of prior client", "client", *prior)
		}
	}
	i.user = user
	i.running[user] = true
	i.focusedClient = ""
	i.focusedWindow = ""
	i.sessionID = ""
	i.softInputShown = false
	i.imeWindowVisible = false
	i.handwriting = false
	i.sequence++
	i.logger.Info("user switch scheduled", "target_user", user, "sequence", i.sequence)
	return nil
}

// NotifySystemUnlocked records that user's storage is unlocked.
func (i *Instance) NotifySystemUnlocked(_ context.Context, user inputmethod.UserID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.unlocked[user] = true
	i.logger.Debug("system unlocked", "target_user", user)
	return nil
}

// Local returns the paired control-plane handle.
func (i *Instance) Local() inputmethod.Local { return i.local }

// Snapshot reports current state.
func (i *Instance) Snapshot() inputmethod.Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return inputmethod.Snapshot{
		User:           i.user,
		StartedAt:      i.startedAt,
		Clients:        len(i.clients),
		CurrentMethod:  i.currentMethod,
		SoftInputShown: i.softInputShown,
		Interactive:    i.interactive,
		Tracing:        i.tracing,
		Unlocked:       i.unlocked[i.user],
	}
}

// selectMethodLocked makes id current with its default subtype. The
// previous subtype becomes the "last" subtype.
func (i *Instance) selectMethodLocked(id inputmethod.MethodID) {
	method, ok := i.catalog.Lookup(id)
	if !ok {
		return
	}
	if i.currentSubtype != nil {
		previous := *i.currentSubtype
		i.lastSubtype = &previous
	}
	i.currentMethod = id
	i.currentSubtype = nil
	for _, subtype := range i.subtypesLocked(method) {
		if subtype.ID == method.DefaultSubtypeID {
			selected := subtype
			i.currentSubtype = &selected
			break
		}
	}
}

// subtypesLocked returns the catalog subtypes of method followed by any
// additional subtypes registered at runtime.
func (i *Instance) subtypesLocked(method inputmethod.InputMethodInfo) []inputmethod.Subtype {
	subtypes := append([]inputmethod.Subtype(nil), method.Subtypes...)
	return append(subtypes, i.additional[method.ID]...)
}

func (i *Instance) enabledMethodsLocked() []inputmethod.InputMethodInfo {
	var result []inputmethod.InputMethodInfo
	for _, method := range i.catalog.Methods() {
		if i.enabled[method.ID] {
			method.Subtypes = i.subtypesLocked(method)
			result = append(result, method)
		}
	}
	return result
}

func (i *Instance) clientLocked(client inputmethod.ClientID) (*clientState, error) {
	state, ok := i.clients[client]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClient, client)
	}
	return state, nil
}

func (i *Instance) hideLocked() bool {
	wasShown := i.softInputShown
	i.softInputShown = false
	i.imeWindowVisible = false
	return wasShown
}

func newSessionID() string {
	return uuid.NewString()
}
