package pipeline

import "strings"

// DefaultDomain is returned when no trigger phrase matches the topic.
const DefaultDomain = "general"

// DetectDomain infers a coarse subject-area tag from the topic text by
// counting trigger phrase occurrences per domain. The domain with the
// strictly greatest count wins; ties keep the earlier domain in table
// order. Pure and deterministic.
func DetectDomain(topic string) string {
	lower := strings.ToLower(topic)

	best := DefaultDomain
	bestCount := 0
	for _, d := range domainTriggers {
		count := 0
		for _, trigger := range d.Triggers {
			count += strings.Count(lower, trigger)
		}
		if count > bestCount {
			best = d.Name
			bestCount = count
		}
	}
	return best
}
