package hotkeys

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/winsnap/internal/layout"
)

// CommandHandler receives the command bound to a key press.
type CommandHandler interface {
	HandleCommand(command string)
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu    sync.Mutex
	bound map[layout.ID]string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on the backend's X connection.
func NewHandler(backend x11Accessor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu := backend.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   backend.RootWindow(),
		logger: logger.With("component", "hotkeys"),
	}
}

// RegisterLayouts grabs one key sequence per layout. Each press calls
// placer.HandleCommand on its own goroutine so the event loop keeps running.
// A sequence that cannot be grabbed is logged and skipped. It returns how
// many bindings are active.
func (h *Handler) RegisterLayouts(bindings map[layout.ID]string, placer CommandHandler) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.bound == nil {
		h.bound = make(map[layout.ID]string)
	}
	for _, b := range sortedBindings(bindings) {
		id := b.id
		err := h.registerFunc(b.keys, func() {
			go placer.HandleCommand(string(id))
		})
		if err != nil {
			h.logger.Warn("failed to grab hotkey", "layout", id, "keys", b.keys, "error", err)
			continue
		}
		h.bound[id] = b.keys
		h.logger.Debug("hotkey registered", "layout", id, "keys", b.keys)
	}
	return len(h.bound)
}

// Reset releases every key grab on the root window.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

// Bound returns a copy of the active bindings.
func (h *Handler) Bound() map[layout.ID]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[layout.ID]string, len(h.bound))
	for id, keys := range h.bound {
		out[id] = keys
	}
	return out
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

type binding struct {
	id   layout.ID
	keys string
}

// sortedBindings orders bindings by catalog position and drops empty ones.
func sortedBindings(bindings map[layout.ID]string) []binding {
	order := make(map[layout.ID]int)
	for i, id := range layout.IDs() {
		order[id] = i
	}

	out := make([]binding, 0, len(bindings))
	for id, keys := range bindings {
		if keys == "" {
			continue
		}
		if _, ok := order[id]; !ok {
			continue
		}
		out = append(out, binding{id: id, keys: keys})
	}
	sort.Slice(out, func(i, j int) bool {
		return order[out[i].id] < order[out[j].id]
	})
	return out
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock masks, including 0.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
