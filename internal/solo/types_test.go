package solo

import (
	"encoding/json"
	"testing"
)

func TestTaskID_DecodesStringNumberAndNull(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want TaskID
	}{
		{"string", `{"id":"abc"}`, "abc"},
		{"number", `{"id":42}`, "42"},
		{"null", `{"id":null}`, ""},
		{"missing", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			if err := json.Unmarshal([]byte(tt.raw), &task); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if task.ID != tt.want {
				t.Fatalf("ID = %q, want %q", task.ID, tt.want)
			}
		})
	}
}

func TestTask_KeyPrefersServerID(t *testing.T) {
	withID := Task{ID: "5", Text: "Read"}
	if got := withID.Key(); got != "id:5" {
		t.Fatalf("Key() = %q, want id:5", got)
	}
	a := Task{Text: "Read", Deadline: "2020-01-01 00:00", Created: "t1"}
	b := Task{Text: "Read", Deadline: "2020-01-01 00:00", Created: "t2"}
	if a.Key() == b.Key() {
		t.Fatalf("tasks created at different times share key %q", a.Key())
	}
}

func TestParseStat(t *testing.T) {
	tests := map[string]Stat{
		"Strength":      StatStrength,
		" intelligence": StatIntelligence,
		"SPIRITUALITY":  StatSpirituality,
		"":              StatDiscipline,
		"charisma":      StatDiscipline,
	}
	for in, want := range tests {
		if got := ParseStat(in); got != want {
			t.Errorf("ParseStat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatLevel_Percent(t *testing.T) {
	tests := []struct {
		level StatLevel
		want  int
	}{
		{StatLevel{Level: 1, XP: 50}, 50},
		{StatLevel{Level: 2, XP: 50}, 25},
		{StatLevel{Level: 0, XP: 10}, 10},
		{StatLevel{Level: 1, XP: 500}, 100},
		{StatLevel{Level: 1, XP: -5}, 0},
	}
	for _, tt := range tests {
		if got := tt.level.Percent(); got != tt.want {
			t.Errorf("%+v.Percent() = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	orig := Snapshot{
		Tasks:        []Task{{Text: "a"}},
		Punishments:  []string{"p"},
		StatProgress: map[string]StatLevel{"strength": {Level: 2}},
	}
	dup := orig.Clone()
	dup.Tasks[0].Text = "changed"
	dup.Punishments[0] = "changed"
	dup.StatProgress["strength"] = StatLevel{Level: 9}

	if orig.Tasks[0].Text != "a" || orig.Punishments[0] != "p" || orig.StatProgress["strength"].Level != 2 {
		t.Fatalf("Clone shares state with original: %#v", orig)
	}
}

func TestEndpointBuilders(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TaskToggle(3), "/tasks/toggle/3"},
		{TaskEdit(1), "/tasks/edit/1"},
		{TaskDelete(2), "/tasks/delete/2"},
		{TaskMarkOverdue("abc"), "/tasks/mark_overdue/abc"},
		{NonNegEdit(4), "/nonneg/edit/4"},
		{NonNegDelete(5), "/nonneg/delete/5"},
		{ShopBuy(7), "/shop/buy/7"},
		{ShopDelete(8), "/shop/delete/8"},
		{PunishmentDelete(0), "/punishments/delete/0"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("route = %q, want %q", tt.got, tt.want)
		}
	}
}
