package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/subhaanfazeel/solo/internal/resync"
	"github.com/subhaanfazeel/solo/internal/solo"
)

// field is one labelled input in a form.
type field struct {
	label   string
	input   textinput.Model
	numeric bool
}

func newField(label, placeholder, value string, numeric bool) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 280
	ti.SetValue(value)
	return field{label: label, input: ti, numeric: numeric}
}

// form collects the inputs for one command.
type form struct {
	title  string
	action resync.Action
	index  int
	id     int
	fields []field
	focus  int
	err    string
}

func newForm(title string, action resync.Action, fields ...field) *form {
	f := &form{title: title, action: action, fields: fields}
	f.focusField(0)
	return f
}

func (f *form) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i + len(f.fields)) % len(f.fields)
	for idx := range f.fields {
		if idx == i {
			f.fields[idx].input.Focus()
		} else {
			f.fields[idx].input.Blur()
		}
	}
	f.focus = i
}

func (f *form) next() { f.focusField(f.focus + 1) }
func (f *form) prev() { f.focusField(f.focus - 1) }

func (f *form) value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) number(i int) (int, error) {
	raw := f.value(i)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", f.fields[i].label)
	}
	return n, nil
}

// command converts the form into a dispatchable command. Field order is
// fixed per action by the constructors below.
func (f *form) command() (resync.Command, error) {
	cmd := resync.Command{Action: f.action, Index: f.index, ID: f.id}
	switch f.action {
	case resync.ActionAddTask, resync.ActionEditTask:
		cmd.Text = f.value(0)
		cmd.Deadline = f.value(1)
		coins, err := f.number(2)
		if err != nil {
			return cmd, err
		}
		xp, err := f.number(3)
		if err != nil {
			return cmd, err
		}
		cmd.Coins, cmd.XP = coins, xp
		cmd.Stat = f.value(4)
	case resync.ActionAddShopItem:
		cmd.Text = f.value(0)
		price, err := f.number(1)
		if err != nil {
			return cmd, err
		}
		value, err := f.number(3)
		if err != nil {
			return cmd, err
		}
		cmd.Price, cmd.Value = price, value
		cmd.Effect = f.value(2)
	default:
		cmd.Text = f.value(0)
	}
	return cmd, nil
}

func taskForm() *form {
	return newForm("New task", resync.ActionAddTask,
		newField("Task", "What needs doing?", "", false),
		newField("Deadline", "YYYY-MM-DD HH:MM (optional)", "", false),
		newField("Coins", "5", "", true),
		newField("XP", "0", "", true),
		newField("Stat", statPlaceholder(), "", false),
	)
}

func editTaskForm(index int, t solo.Task) *form {
	f := newForm("Edit task", resync.ActionEditTask,
		newField("Task", "", t.Text, false),
		newField("Deadline", "YYYY-MM-DD HH:MM (optional)", strings.Replace(t.Deadline, "T", " ", 1), false),
		newField("Coins", "", strconv.Itoa(t.Coins), true),
		newField("XP", "", strconv.Itoa(t.XP), true),
		newField("Stat", statPlaceholder(), t.Stat, false),
	)
	f.index = index
	return f
}

func ruleForm() *form {
	return newForm("New non-negotiable", resync.ActionAddRule,
		newField("Rule", "Something you never skip", "", false))
}

func editRuleForm(index int, rule solo.NonNegotiable) *form {
	f := newForm("Edit non-negotiable", resync.ActionEditRule,
		newField("Rule", "", rule.Text, false))
	f.index = index
	return f
}

func punishmentForm() *form {
	return newForm("New punishment", resync.ActionAddPunishment,
		newField("Punishment", "e.g. 10 push-ups", "", false))
}

func shopItemForm() *form {
	return newForm("New shop item", resync.ActionAddShopItem,
		newField("Name", "Reward name", "", false),
		newField("Price", "coins", "", true),
		newField("Effect", "e.g. skip_token, xp_boost (optional)", "", false),
		newField("Value", "0", "", true),
	)
}

func diaryForm() *form {
	return newForm("Diary entry", resync.ActionAddDiary,
		newField("Entry", "How did today go?", "", false))
}

func nameForm(current string) *form {
	return newForm(resync.NamePrompt, resync.ActionSetName,
		newField("Name", "Hunter", current, false))
}

func statPlaceholder() string {
	names := make([]string, 0, len(solo.Stats))
	for _, s := range solo.Stats {
		names = append(names, string(s))
	}
	return strings.Join(names, " / ")
}
