// Package bindings declares the player's keyboard shortcuts per router tier
// and adapts them into input handlers.
package bindings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jask/stepthrough/internal/input"
)

type Action string

const (
	// prediction tier
	ActionChoicePrev Action = "choice_prev"
	ActionChoiceNext Action = "choice_next"
	ActionPickChoice Action = "pick_choice"
	ActionSubmit     Action = "submit"
	ActionSkip       Action = "skip"

	// modal tier
	ActionClose Action = "close"

	// playback tier
	ActionNext             Action = "next"
	ActionPrev             Action = "prev"
	ActionReset            Action = "reset"
	ActionJumpEnd          Action = "jump_end"
	ActionHelp             Action = "help"
	ActionTogglePrediction Action = "toggle_prediction"
	ActionOpen             Action = "open"
	ActionRetry            Action = "retry"
	ActionQuit             Action = "quit"
)

// Binding maps keys to an action within one router tier. Display, when set,
// replaces the first key in help (for example "1-9"); it is never looked up.
type Binding struct {
	Action  Action
	Keys    []string
	Display string
	Help    string
	Tier    int
}

// HelpKey is the key text shown for b in help.
func (b Binding) HelpKey() string {
	if b.Display != "" {
		return b.Display
	}
	return b.Keys[0]
}

// Keymap holds bindings per tier. A key is bound at most once per tier.
type Keymap struct {
	byTier    map[int][]*Binding
	indexTier map[int]map[string]*Binding
}

func NewKeymap() *Keymap {
	return &Keymap{
		byTier:    make(map[int][]*Binding),
		indexTier: make(map[int]map[string]*Binding),
	}
}

// Default returns the stock bindings for all three tiers.
func Default() *Keymap {
	k := NewKeymap()
	reg := func(tier int, action Action, display string, keys []string, help string) {
		k.Register(Binding{Action: action, Keys: keys, Display: display, Help: help, Tier: tier})
	}

	// Open prediction question. Arrow keys pick a choice here instead of
	// moving through the trace.
	reg(input.TierPrediction, ActionChoicePrev, "←/→", []string{"left", "h"}, "choose")
	reg(input.TierPrediction, ActionChoiceNext, "", []string{"right", "l"}, "")
	reg(input.TierPrediction, ActionPickChoice, "1-9", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, "answer")
	reg(input.TierPrediction, ActionSubmit, "", []string{"enter", " "}, "submit")
	reg(input.TierPrediction, ActionSkip, "", []string{"s"}, "skip")

	// Informational modal.
	reg(input.TierModal, ActionClose, "", []string{"esc", "q", "?"}, "close")

	// Global playback.
	reg(input.TierPlayback, ActionNext, "→", []string{"right", "l", "n", " "}, "next")
	reg(input.TierPlayback, ActionPrev, "←", []string{"left", "h", "p"}, "prev")
	reg(input.TierPlayback, ActionReset, "", []string{"r", "home", "g"}, "reset")
	reg(input.TierPlayback, ActionJumpEnd, "", []string{"end", "G"}, "end")
	reg(input.TierPlayback, ActionTogglePrediction, "", []string{"t"}, "predict on/off")
	reg(input.TierPlayback, ActionOpen, "", []string{"o"}, "open")
	reg(input.TierPlayback, ActionRetry, "", []string{"ctrl+r"}, "retry")
	reg(input.TierPlayback, ActionHelp, "", []string{"?"}, "help")
	reg(input.TierPlayback, ActionQuit, "", []string{"q"}, "quit")
	return k
}

// Register adds b unless one of its keys is already bound in its tier.
func (k *Keymap) Register(b Binding) {
	keys := normalizeKeyList(b.Keys)
	if len(keys) == 0 {
		return
	}
	if k.indexTier[b.Tier] == nil {
		k.indexTier[b.Tier] = make(map[string]*Binding)
	}
	index := k.indexTier[b.Tier]
	for _, name := range keys {
		if _, exists := index[name]; exists {
			return
		}
	}
	copyBinding := b
	copyBinding.Keys = keys
	k.byTier[b.Tier] = append(k.byTier[b.Tier], &copyBinding)
	for _, name := range keys {
		index[name] = &copyBinding
	}
}

// Lookup finds the binding for a key name within tier.
func (k *Keymap) Lookup(tier int, keyName string) *Binding {
	keyName = normalizeKeyName(keyName)
	if keyName == "" {
		return nil
	}
	return k.indexTier[tier][keyName]
}

// BindingsForTier returns copies in registration order.
func (k *Keymap) BindingsForTier(tier int) []Binding {
	items := k.byTier[tier]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Help returns footer bindings for tier, skipping bindings with no help text.
func (k *Keymap) Help(tier int) []key.Binding {
	items := k.BindingsForTier(tier)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		if b.Help == "" {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.HelpKey(), b.Help)))
	}
	return out
}

// Handler adapts tier into a router handler. perform is only called for keys
// bound in the tier; it decides whether the event is consumed.
func (k *Keymap) Handler(tier int, perform func(Binding, input.Event) bool) input.Handler {
	return func(ev input.Event) bool {
		b := k.Lookup(tier, ev.KeyName())
		if b == nil {
			return false
		}
		return perform(*b, ev)
	}
}

// Apply replaces the keys of every binding for each action in overrides,
// then checks that no tier ends up with a key bound twice.
func (k *Keymap) Apply(overrides map[string][]string) error {
	if len(overrides) == 0 {
		return nil
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		action := Action(strings.TrimSpace(name))
		keys := normalizeKeyList(overrides[name])
		if len(keys) == 0 {
			return fmt.Errorf("key override %q: keys are required", action)
		}
		found := false
		for _, bindings := range k.byTier {
			for _, b := range bindings {
				if b.Action == action {
					b.Keys = keys
					b.Display = ""
					found = true
				}
			}
		}
		if !found {
			return fmt.Errorf("key override %q: unknown action", action)
		}
	}
	k.rebuildIndex()
	for tier, bindings := range k.byTier {
		seen := make(map[string]Action)
		for _, b := range bindings {
			for _, name := range b.Keys {
				if prev, ok := seen[name]; ok {
					return fmt.Errorf("key override conflict in tier %d: key %q used by both %q and %q", tier, name, prev, b.Action)
				}
				seen[name] = b.Action
			}
		}
	}
	return nil
}

func (k *Keymap) rebuildIndex() {
	k.indexTier = make(map[int]map[string]*Binding, len(k.byTier))
	for tier, bindings := range k.byTier {
		k.indexTier[tier] = make(map[string]*Binding)
		for _, b := range bindings {
			for _, name := range b.Keys {
				k.indexTier[tier][name] = b
			}
		}
	}
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// normalizeKeyName maps user-written key names onto bubbletea's KeyMsg
// strings. Single uppercase letters stay distinct from lowercase.
func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "spacebar", "space")
	return s
}

// KeyFor returns the help key of the binding for action, searching tiers
// from playback up.
func (k *Keymap) KeyFor(action Action) string {
	tiers := make([]int, 0, len(k.byTier))
	for tier := range k.byTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	for _, tier := range tiers {
		for _, b := range k.byTier[tier] {
			if b.Action == action {
				return b.HelpKey()
			}
		}
	}
	return ""
}
