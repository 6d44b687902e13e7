package assistant

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/juliejulie/juliejulie/internal/weather"
)

var wikiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^who\s+(?:is|was)\s+(.+)$`),
	regexp.MustCompile(`^what\s+(?:is|are)\s+(?:a\s+|an\s+|the\s+)?(.+)$`),
	regexp.MustCompile(`^tell\s+me\s+about\s+(.+)$`),
}

// wikiRule answers "who is" / "what is" questions with a short article
// summary. It sits after the calculation rule, so "what's 20% of 150" never
// lands here.
func wikiRule(wiki *WikiClient) Rule {
	return Rule{
		Name:     "wikipedia",
		Examples: []string{"who is ada lovelace", "tell me about saturn"},
		Match: func(c string) bool {
			return extractWikiTopic(c) != ""
		},
		Handle: func(ctx context.Context, c string) Response {
			topic := extractWikiTopic(c)
			summary, pageURL, err := wiki.Summarize(ctx, topic)
			if err != nil {
				log.Printf("assistant: wikipedia lookup %q failed: %v", topic, err)
				return Response{
					Spoken:    fmt.Sprintf("I had trouble getting information about %s, but I've opened the Wikipedia page.", topic),
					OpenedURL: wiki.PageURL(topic),
				}
			}
			return Response{
				Spoken:            summary,
				OpenedURL:         pageURL,
				AdditionalContext: "I've also opened the full Wikipedia page for more details.",
			}
		},
	}
}

func extractWikiTopic(c string) string {
	// Weather questions share the "what is" shape; they belong to the
	// weather rule further down the chain.
	if strings.Contains(c, "weather") {
		return ""
	}
	for _, re := range wikiPatterns {
		if m := re.FindStringSubmatch(c); m != nil {
			topic := strings.TrimSuffix(strings.TrimSpace(m[1]), "?")
			return strings.TrimSpace(topic)
		}
	}
	return ""
}

var weatherLocationPattern = regexp.MustCompile(`weather\s+(?:like\s+)?(?:in|for|at)\s+(.+)$`)

// weatherRule speaks a one-line forecast. When the forecast chain fails the
// answer degrades to opening a forecast page for the same location.
func weatherRule(svc WeatherService, defaultLocation string) Rule {
	return Rule{
		Name:     "weather",
		Examples: []string{"what's the weather in portland"},
		Match: func(c string) bool {
			return strings.Contains(c, "weather")
		},
		Handle: func(ctx context.Context, c string) Response {
			location := extractWeatherLocation(c, defaultLocation)
			if location == "" {
				return spoken("Which city would you like the weather for?")
			}
			summary, err := svc.Summary(ctx, location)
			if err != nil {
				log.Printf("assistant: weather for %q failed: %v", location, err)
				return Response{
					Spoken:    fmt.Sprintf("I couldn't get the weather for %s right now, so I opened a forecast page.", location),
					OpenedURL: weather.FallbackURL(location),
				}
			}
			return spoken(summary)
		},
	}
}

// extractWeatherLocation tries the precise phrasing first, then falls back
// to splitting on the last " in ".
func extractWeatherLocation(c, fallback string) string {
	if m := weatherLocationPattern.FindStringSubmatch(c); m != nil {
		return trimLocation(m[1])
	}
	if idx := strings.LastIndex(c, " in "); idx >= 0 {
		return trimLocation(c[idx+len(" in "):])
	}
	return fallback
}

func trimLocation(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "?")
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSuffix(s, " today")
	s = strings.TrimSuffix(s, " right now")
	return strings.TrimSpace(s)
}

// helpRule enumerates what the registry can do, straight from the rules'
// own example phrases so it never goes stale.
func helpRule(registry *Registry) Rule {
	return Rule{
		Name:     "help",
		Examples: []string{"what can you do"},
		Match: func(c string) bool {
			return c == "help" || containsAny(c, "what can you do", "what can you say", "list commands")
		},
		Handle: func(ctx context.Context, c string) Response {
			var examples []string
			for _, rule := range registry.Rules() {
				examples = append(examples, rule.Examples...)
			}
			return Response{
				Spoken: "Here are some things you can say: " + strings.Join(examples, "; ") +
					". Anything else, I'll ask the AI about.",
				AdditionalContext: "Registered intents: " + fmt.Sprint(len(registry.Rules())),
			}
		},
	}
}
