package tui

import (
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	nextView      key.Binding
	listView      key.Binding
	kanbanView    key.Binding
	focusView     key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	setStatus     key.Binding
	toggleSelect  key.Binding
	selectAll     key.Binding
	clear         key.Binding
	search        key.Binding
	filter        key.Binding
	sortColumn    key.Binding
	sortDirection key.Binding
	create        key.Binding
	export        key.Binding
	share         key.Binding
	notifications key.Binding
	bulkAction    key.Binding
	grab          key.Binding
	drop          key.Binding
}

// KeyConfig carries user overrides for the configurable bindings. Blank fields keep the defaults.
type KeyConfig struct {
	Search        string
	Filter        string
	Create        string
	Export        string
	Share         string
	Notifications string
	BulkAction    string
	Grab          string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		nextView:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		listView:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "list")),
		kanbanView:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "kanban")),
		focusView:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "focus")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		setStatus:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set status")),
		toggleSelect:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle select")),
		selectAll:     key.NewBinding(key.WithKeys("A", "shift+a"), key.WithHelp("A", "select all")),
		clear:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/cancel")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		sortColumn:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort column")),
		sortDirection: key.NewBinding(key.WithKeys("O", "shift+o"), key.WithHelp("O", "sort direction")),
		create:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		export:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		share:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
		notifications: key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "notifications")),
		bulkAction:    key.NewBinding(key.WithKeys("B", "shift+b"), key.WithHelp("B", "bulk action")),
		grab:          key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab card")),
		drop:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop card")),
	}
}

// applyConfig applies configured overrides to the key map.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.search, cfg.Search, "/", "search")
	configureBinding(&k.filter, cfg.Filter, "f", "filters")
	configureBinding(&k.create, cfg.Create, "n", "new task")
	configureBinding(&k.export, cfg.Export, "x", "export")
	configureBinding(&k.share, cfg.Share, "y", "copy summary")
	configureBinding(&k.notifications, cfg.Notifications, "!", "notifications")
	configureBinding(&k.bulkAction, cfg.BulkAction, "B", "bulk action")
	configureBinding(&k.grab, cfg.Grab, "g", "grab card")
}

// configureBinding replaces the keys and help text of one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns one configured key into matcher keys plus its help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	switch {
	case strings.EqualFold(raw, "space"):
		return []string{" ", "space"}, "space"
	case utf8.RuneCountInString(raw) == 1:
		lower := strings.ToLower(raw)
		if raw != lower {
			return []string{raw, "shift+" + lower}, raw
		}
		return []string{raw}, raw
	default:
		return []string{strings.ToLower(raw)}, raw
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextView, k.setStatus, k.search, k.filter, k.create, k.grab, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextView, k.listView, k.kanbanView, k.focusView, k.reload, k.toggleHelp, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.setStatus, k.grab, k.drop},
		{k.toggleSelect, k.selectAll, k.clear, k.bulkAction},
		{k.search, k.filter, k.sortColumn, k.sortDirection, k.create, k.export, k.share, k.notifications},
	}
}
