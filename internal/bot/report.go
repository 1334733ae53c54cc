package bot

import (
	"fmt"
	"strings"
	"time"
)

// Report formats the interaction ledger, most recently seen first, with the
// number of exchanges remembered per user.
func (b *Bot) Report() string {
	entries := b.ledger.Snapshot()
	if len(entries) == 0 {
		return "📊 Activity report\n\nNo one has talked to me yet."
	}
	counts := b.store.Counts()

	var s strings.Builder
	fmt.Fprintf(&s, "📊 Activity report (%d users)\n", len(entries))
	for i, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = "friend"
		}
		handle := ""
		if e.Handle != "" {
			handle = " (@" + strings.TrimPrefix(e.Handle, "@") + ")"
		}
		fmt.Fprintf(&s, "\n%d. %s%s · id %d\n", i+1, name, handle, e.UserID)
		fmt.Fprintf(&s, "   Last seen: %s · Exchanges: %d\n",
			e.LastSeen.UTC().Format(time.DateTime+" MST"), counts[e.UserID])
	}
	return s.String()
}
