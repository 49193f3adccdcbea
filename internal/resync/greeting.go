package resync

import (
	"strings"

	"github.com/subhaanfazeel/solo/internal/solo"
)

// Greeting is the header line, or the name-entry affordance when the server
// has no name.
type Greeting struct {
	Text      string
	NeedsName bool
}

// NamePrompt is shown in place of the greeting when no name is set.
const NamePrompt = "Enter your name (optional)"

// GreetingFor derives the greeting from a snapshot.
func GreetingFor(snap solo.Snapshot) Greeting {
	name := strings.TrimSpace(snap.Name)
	if name == "" {
		return Greeting{Text: NamePrompt, NeedsName: true}
	}
	return Greeting{Text: "Hey " + name}
}
