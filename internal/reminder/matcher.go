package reminder

import "github.com/guilherme-santos/calremind"

// Match maps fetched events to configured reminder messages by exact,
// case-sensitive name. For each rule the first matching event (in fetch
// order) fires it, and a rule fires at most once per tick. Rules without
// a matching event are skipped. The output follows event order, so the
// result does not depend on rule iteration order.
func Match(events []*calremind.Event, rules calremind.Rules) []string {
	if len(rules) == 0 {
		return nil
	}

	fired := make(map[string]bool, len(rules))
	var messages []string
	for _, e := range events {
		message, ok := rules[e.Name]
		if !ok || fired[e.Name] {
			continue
		}
		fired[e.Name] = true
		messages = append(messages, message)
	}
	return messages
}
