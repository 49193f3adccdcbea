package resync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/subhaanfazeel/solo/internal/notify"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

// Action enumerates the user commands the UI can dispatch.
type Action int

const (
	ActionRefresh Action = iota
	ActionAddTask
	ActionToggleTask
	ActionEditTask
	ActionDeleteTask
	ActionAddRule
	ActionEditRule
	ActionDeleteRule
	ActionAddShopItem
	ActionBuyItem
	ActionDeleteShopItem
	ActionAddDiary
	ActionSaveSettings
	ActionAddPunishment
	ActionDeletePunishment
	ActionSetName
	ActionResetAll
)

var actionNames = map[Action]string{
	ActionRefresh:          "refresh",
	ActionAddTask:          "add-task",
	ActionToggleTask:       "toggle-task",
	ActionEditTask:         "edit-task",
	ActionDeleteTask:       "delete-task",
	ActionAddRule:          "add-rule",
	ActionEditRule:         "edit-rule",
	ActionDeleteRule:       "delete-rule",
	ActionAddShopItem:      "add-shop-item",
	ActionBuyItem:          "buy-item",
	ActionDeleteShopItem:   "delete-shop-item",
	ActionAddDiary:         "add-diary",
	ActionSaveSettings:     "save-settings",
	ActionAddPunishment:    "add-punishment",
	ActionDeletePunishment: "delete-punishment",
	ActionSetName:          "set-name",
	ActionResetAll:         "reset-all",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Command is one dispatched user action. Only the fields relevant to the
// action are read.
type Command struct {
	Action   Action
	Index    int
	ID       int
	Text     string
	Deadline string
	Coins    int
	XP       int
	Stat     string
	Price    int
	Effect   string
	Value    int
	Sounds   bool
}

// ErrEmptyInput is returned when a command that requires text has none. No
// request is sent.
var ErrEmptyInput = errors.New("empty input")

const defaultTaskCoins = 5

// Dispatch maps cmd to its endpoint and payload, then mutates and resyncs.
// Refresh only resyncs.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) (solo.MutationResult, error) {
	if cmd.Action == ActionRefresh {
		return solo.MutationResult{}, e.Resync(ctx)
	}

	endpoint, payload, err := route(cmd)
	if err != nil {
		return solo.MutationResult{}, err
	}
	if cmd.Action == ActionResetAll {
		e.store.SetView(state.ViewMain)
	}

	res, err := e.Mutate(ctx, endpoint, payload)
	if err == nil && !res.Failed() {
		switch cmd.Action {
		case ActionSaveSettings:
			e.show(notify.Event{Title: "Settings", Body: "Saved"})
		case ActionResetAll:
			e.show(notify.Event{Title: "Reset", Body: "All data has been reset!"})
		}
	}
	return res, err
}

func route(cmd Command) (string, any, error) {
	text := strings.TrimSpace(cmd.Text)
	switch cmd.Action {
	case ActionAddTask:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		coins := cmd.Coins
		if coins == 0 {
			coins = defaultTaskCoins
		}
		return solo.EndpointTasksAdd, taskPayload(text, cmd.Deadline, coins, cmd.XP, cmd.Stat), nil
	case ActionToggleTask:
		return solo.TaskToggle(cmd.Index), nil, nil
	case ActionEditTask:
		return solo.TaskEdit(cmd.Index), taskPayload(text, cmd.Deadline, cmd.Coins, cmd.XP, cmd.Stat), nil
	case ActionDeleteTask:
		return solo.TaskDelete(cmd.Index), nil, nil
	case ActionAddRule:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		return solo.EndpointNonNegAdd, map[string]any{"rule": text}, nil
	case ActionEditRule:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		return solo.NonNegEdit(cmd.Index), map[string]any{"rule": text}, nil
	case ActionDeleteRule:
		return solo.NonNegDelete(cmd.Index), nil, nil
	case ActionAddShopItem:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		return solo.EndpointShopAdd, map[string]any{
			"name":   text,
			"price":  cmd.Price,
			"effect": strings.TrimSpace(cmd.Effect),
			"value":  cmd.Value,
		}, nil
	case ActionBuyItem:
		return solo.ShopBuy(cmd.ID), nil, nil
	case ActionDeleteShopItem:
		return solo.ShopDelete(cmd.ID), nil, nil
	case ActionAddDiary:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		return solo.EndpointDiaryAdd, map[string]any{"entry": text}, nil
	case ActionSaveSettings:
		return solo.EndpointSettings, map[string]any{"settings": map[string]any{"sounds": cmd.Sounds}}, nil
	case ActionAddPunishment:
		if text == "" {
			return "", nil, fmt.Errorf("%s: %w", cmd.Action, ErrEmptyInput)
		}
		return solo.EndpointPunishmentsAdd, map[string]any{"punishment": text}, nil
	case ActionDeletePunishment:
		return solo.PunishmentDelete(cmd.Index), nil, nil
	case ActionSetName:
		return solo.EndpointName, map[string]any{"name": text}, nil
	case ActionResetAll:
		return solo.EndpointReset, nil, nil
	default:
		return "", nil, fmt.Errorf("unknown action %s", cmd.Action)
	}
}

// NormalizeDeadline turns "2006-01-02 15:04" into the ISO separator form the
// server stores.
func NormalizeDeadline(raw string) string {
	dl := strings.TrimSpace(raw)
	if dl != "" && !strings.Contains(dl, "T") && strings.Contains(dl, " ") {
		dl = strings.Replace(dl, " ", "T", 1)
	}
	return dl
}

func taskPayload(text, deadline string, coins, xp int, stat string) map[string]any {
	return map[string]any{
		"task":     text,
		"deadline": NormalizeDeadline(deadline),
		"coins":    coins,
		"xp":       xp,
		"stat":     string(solo.ParseStat(stat)),
	}
}
