package solo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Stat names the attribute a task rewards.
type Stat string

const (
	StatDiscipline   Stat = "discipline"
	StatStrength     Stat = "strength"
	StatIntelligence Stat = "intelligence"
	StatSpirituality Stat = "spirituality"
)

// Stats lists every stat in display order.
var Stats = []Stat{StatDiscipline, StatStrength, StatIntelligence, StatSpirituality}

// ParseStat normalizes s, falling back to discipline for unknown names.
func ParseStat(s string) Stat {
	switch Stat(strings.ToLower(strings.TrimSpace(s))) {
	case StatStrength:
		return StatStrength
	case StatIntelligence:
		return StatIntelligence
	case StatSpirituality:
		return StatSpirituality
	default:
		return StatDiscipline
	}
}

// DataResponse mirrors /api/data.
type DataResponse struct {
	Data Snapshot `json:"data"`
}

// Snapshot is the full server-held application state. It is always replaced
// wholesale, never patched.
type Snapshot struct {
	Name               string               `json:"name"`
	Tasks              []Task               `json:"tasks"`
	NonNegotiables     []NonNegotiable      `json:"non_negotiables"`
	Diary              []DiaryEntry         `json:"diary"`
	Shop               Shop                 `json:"shop"`
	StatProgress       map[string]StatLevel `json:"stat_progress"`
	Attributes         map[string]int       `json:"attributes,omitempty"`
	Settings           Settings             `json:"settings"`
	Punishments        []string             `json:"punishments"`
	OngoingPunishments []OngoingPunishment  `json:"ongoing_punishments,omitempty"`
	Streak             int                  `json:"streak"`
	BestStreak         int                  `json:"best_streak"`
	LastLogin          string               `json:"last_login,omitempty"`
	Stats              Counters             `json:"stats"`
}

// Clone returns a copy that shares no slices or maps with s.
func (s Snapshot) Clone() Snapshot {
	dup := s
	dup.Tasks = append([]Task(nil), s.Tasks...)
	dup.NonNegotiables = append([]NonNegotiable(nil), s.NonNegotiables...)
	dup.Diary = append([]DiaryEntry(nil), s.Diary...)
	dup.Punishments = append([]string(nil), s.Punishments...)
	dup.OngoingPunishments = append([]OngoingPunishment(nil), s.OngoingPunishments...)
	dup.Shop.Items = append([]string(nil), s.Shop.Items...)
	dup.Shop.Catalog = append([]ShopItem(nil), s.Shop.Catalog...)
	if s.StatProgress != nil {
		dup.StatProgress = make(map[string]StatLevel, len(s.StatProgress))
		for k, v := range s.StatProgress {
			dup.StatProgress[k] = v
		}
	}
	if s.Attributes != nil {
		dup.Attributes = make(map[string]int, len(s.Attributes))
		for k, v := range s.Attributes {
			dup.Attributes[k] = v
		}
	}
	return dup
}

// Progress returns the level record for stat, defaulting to level 1.
func (s Snapshot) Progress(stat Stat) StatLevel {
	if lvl, ok := s.StatProgress[string(stat)]; ok {
		if lvl.Level <= 0 {
			lvl.Level = 1
		}
		return lvl
	}
	return StatLevel{Level: 1}
}

// TaskID accepts both string and numeric ids from the server.
type TaskID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = TaskID(n.String())
	return nil
}

// Task is a single tracked task.
type Task struct {
	ID       TaskID `json:"id,omitempty"`
	Text     string `json:"task"`
	Deadline string `json:"deadline"`
	Done     bool   `json:"done"`
	Created  string `json:"created,omitempty"`
	Coins    int    `json:"coins"`
	XP       int    `json:"xp"`
	Stat     string `json:"stat"`
	Failed   bool   `json:"failed,omitempty"`
}

// Key identifies the task for client-local bookkeeping. Server ids win;
// otherwise the text, deadline and creation stamp are combined.
func (t Task) Key() string {
	if t.ID != "" {
		return "id:" + string(t.ID)
	}
	return "task:" + t.Text + "|" + t.Deadline + "|" + t.Created
}

// HasDeadline reports whether a deadline string is set.
func (t Task) HasDeadline() bool {
	return strings.TrimSpace(t.Deadline) != ""
}

// NonNegotiable is a standing rule.
type NonNegotiable struct {
	Text     string `json:"text"`
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// DiaryEntry is one diary line.
type DiaryEntry struct {
	Text      string `json:"text"`
	Timestamp string `json:"ts"`
}

// Shop carries the coin balance and item catalog.
type Shop struct {
	Coins         int        `json:"coins"`
	Items         []string   `json:"items"`
	Catalog       []ShopItem `json:"catalog"`
	SkipTokens    int        `json:"skip_tokens,omitempty"`
	XPBoostActive bool       `json:"xp_boost_active,omitempty"`
}

// ShopItem is a purchasable reward.
type ShopItem struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Price  int    `json:"price"`
	Effect string `json:"effect"`
	Value  int    `json:"value"`
}

// ShopResponse mirrors /api/shop.
type ShopResponse struct {
	Shop    Shop       `json:"shop"`
	Catalog []ShopItem `json:"catalog"`
}

// StatLevel tracks level and in-level XP for one stat.
type StatLevel struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// Threshold returns the XP needed to finish the current level.
func (l StatLevel) Threshold() int {
	level := l.Level
	if level <= 0 {
		level = 1
	}
	return 100 * level
}

// Percent returns the level completion clamped to [0, 100].
func (l StatLevel) Percent() int {
	pct := l.XP * 100 / l.Threshold()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Settings mirrors the user settings object.
type Settings struct {
	Sounds           bool `json:"sounds"`
	MobileFullscreen bool `json:"mobile_fullscreen,omitempty"`
}

// OngoingPunishment is a consequence the server has assigned.
type OngoingPunishment struct {
	Text      string `json:"text"`
	Timestamp string `json:"ts"`
}

// Counters aggregates lifetime counters.
type Counters struct {
	TasksCompleted int `json:"tasks_completed"`
}

// MutationResult is what the client keeps from a mutation response. Most
// endpoints return nothing useful; some carry a structured error.
type MutationResult struct {
	Status int    `json:"-"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the server signalled a structured error.
func (r MutationResult) Failed() bool {
	return strings.TrimSpace(r.Error) != ""
}

// Endpoint paths relative to /api.
const (
	EndpointTasksAdd         = "/tasks/add"
	EndpointNonNegAdd        = "/nonneg/add"
	EndpointShopAdd          = "/shop/add"
	EndpointDiaryAdd         = "/diary/add"
	EndpointSettings         = "/settings"
	EndpointPunishmentsAdd   = "/punishments/add"
	EndpointName             = "/name"
	EndpointReset            = "/reset"
	endpointTasksToggle      = "/tasks/toggle/"
	endpointTasksEdit        = "/tasks/edit/"
	endpointTasksDelete      = "/tasks/delete/"
	endpointTasksMarkOverdue = "/tasks/mark_overdue/"
	endpointNonNegEdit       = "/nonneg/edit/"
	endpointNonNegDelete     = "/nonneg/delete/"
	endpointShopBuy          = "/shop/buy/"
	endpointShopDelete       = "/shop/delete/"
	endpointPunishmentsDel   = "/punishments/delete/"
)

// TaskToggle is the route that flips a task's done flag.
func TaskToggle(index int) string { return endpointTasksToggle + strconv.Itoa(index) }

// TaskEdit is the route that rewrites a task.
func TaskEdit(index int) string { return endpointTasksEdit + strconv.Itoa(index) }

// TaskDelete is the route that removes a task.
func TaskDelete(index int) string { return endpointTasksDelete + strconv.Itoa(index) }

// TaskMarkOverdue reports a missed deadline for the task with id.
func TaskMarkOverdue(id TaskID) string { return endpointTasksMarkOverdue + string(id) }

// NonNegEdit is the route that rewrites a non-negotiable rule.
func NonNegEdit(index int) string { return endpointNonNegEdit + strconv.Itoa(index) }

// NonNegDelete is the route that removes a non-negotiable rule.
func NonNegDelete(index int) string { return endpointNonNegDelete + strconv.Itoa(index) }

// ShopBuy is the route that buys the shop item with id.
func ShopBuy(id int) string { return endpointShopBuy + strconv.Itoa(id) }

// ShopDelete is the route that removes the shop item with id.
func ShopDelete(id int) string { return endpointShopDelete + strconv.Itoa(id) }

// PunishmentDelete is the route that removes a punishment.
func PunishmentDelete(index int) string { return endpointPunishmentsDel + strconv.Itoa(index) }
