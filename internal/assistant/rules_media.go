package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/juliejulie/juliejulie/internal/favorites"
	"github.com/juliejulie/juliejulie/internal/media"
)

// visualizerRule starts and stops the desktop audio visualizer. The off
// phrasings are checked first because they all contain "visualizer".
func visualizerRule(visualizer VisualizerController) Rule {
	return Rule{
		Name:     "visualizer",
		Examples: []string{"start visualizer", "visualizer off"},
		Match: func(c string) bool {
			return strings.Contains(c, "visualizer")
		},
		Handle: func(ctx context.Context, c string) Response {
			if containsAny(c, "visualizer off", "stop visualizer", "hide visualizer", "disable visualizer", "close visualizer") {
				if err := visualizer.Stop(); err != nil {
					return spoken("I had trouble stopping the visualizer.")
				}
				return spoken("Visualizer stopped.")
			}
			if err := visualizer.Start(); err != nil {
				return spoken("I couldn't start the visualizer. Make sure IINA is installed.")
			}
			return Response{
				Spoken:            "Visualizer is now running! It should respond to any audio playing on your system.",
				AdditionalContext: "IINA visualizer started",
			}
		},
	}
}

// radioRule opens a curated station's web player; with no genre it lists
// what the catalog offers.
func radioRule(catalog *media.Catalog) Rule {
	return Rule{
		Name:     "radio",
		Examples: []string{"play jazz radio", "turn on npr"},
		Match:    catalog.IsRadioRequest,
		Handle: func(ctx context.Context, c string) Response {
			station, ok := catalog.Match(c)
			if !ok {
				names := strings.Join(catalog.Names(), ", ")
				return Response{
					Spoken: fmt.Sprintf("I can play these radio stations: %s. "+
						"Just say 'play classical radio', 'play jazz radio', or 'play rock radio'.", names),
					AdditionalContext: "Available stations: " + names,
				}
			}
			return Response{
				Spoken:            fmt.Sprintf("Playing %s. Enjoy the music!", station.Name),
				OpenedURL:         station.URL,
				AdditionalContext: "Radio: " + station.Name,
			}
		},
	}
}

var rememberServices = []string{"music", "spotify"}

// rememberRule saves whatever was played most recently. The original app
// kept separate favorites per music handler; one rule ahead of both covers
// the same phrasings.
func rememberRule(store FavoritesStore) Rule {
	return Rule{
		Name:     "music.remember",
		Examples: []string{"remember this"},
		Match: func(c string) bool {
			return containsAny(c, "remember this", "save this", "add to favorites",
				"favorite this", "remember that", "save that", "i like this", "add this to my list")
		},
		Handle: func(ctx context.Context, c string) Response {
			for _, service := range rememberServices {
				track, err := store.Remember(ctx, service)
				if errors.Is(err, favorites.ErrNothingPlayed) {
					continue
				}
				if err != nil {
					log.Printf("assistant: remember failed: %v", err)
					return spoken("I couldn't save that to your favorites.")
				}
				return spoken(fmt.Sprintf("Saved %s to your favorites.", track.Query))
			}
			return spoken("I haven't played anything to remember yet.")
		},
	}
}

// favoritesRule reads saved tracks back.
func favoritesRule(store FavoritesStore) Rule {
	return Rule{
		Name:     "music.favorites",
		Examples: []string{"list my favorites"},
		Match: func(c string) bool {
			return containsAny(c, "my favorites", "list favorites", "show favorites")
		},
		Handle: func(ctx context.Context, c string) Response {
			var names []string
			for _, service := range rememberServices {
				tracks, err := store.List(ctx, service)
				if err != nil {
					log.Printf("assistant: list favorites failed: %v", err)
					continue
				}
				for _, t := range tracks {
					names = append(names, t.Query)
				}
			}
			if len(names) == 0 {
				return spoken("You haven't saved any favorites yet.")
			}
			return spoken("Your favorites: " + strings.Join(names, ", ") + ".")
		},
	}
}

var (
	appleMusicPattern = regexp.MustCompile(`^apple\s+`)
	appleMusicStrip   = []*regexp.Regexp{
		regexp.MustCompile(`^play\s+`),
		regexp.MustCompile(`^apple\s+music\s+`),
		regexp.MustCompile(`^music\s+app\s+`),
		regexp.MustCompile(`^apple\s+`),
		regexp.MustCompile(`\s+on\s+apple\s+music$`),
		regexp.MustCompile(`\s+in\s+the\s+music\s+app$`),
	}
)

// appleMusicRule opens a search in the Apple Music web player.
func appleMusicRule(store FavoritesStore) Rule {
	return Rule{
		Name:     "music.apple",
		Examples: []string{"apple music miles davis"},
		Match: func(c string) bool {
			return appleMusicPattern.MatchString(c) || containsAny(c, "apple music", "music app")
		},
		Handle: func(ctx context.Context, c string) Response {
			query := c
			for _, re := range appleMusicStrip {
				query = re.ReplaceAllString(query, "")
			}
			query = strings.TrimSpace(query)
			if query == "" {
				return spoken("What would you like me to play?")
			}
			searchURL := "https://music.apple.com/us/search?term=" + url.QueryEscape(query)
			if err := store.RecordPlay(ctx, "music", query, searchURL); err != nil {
				log.Printf("assistant: record play failed: %v", err)
			}
			return Response{
				Spoken:            fmt.Sprintf("Searching for %s in Apple Music.", query),
				OpenedURL:         searchURL,
				AdditionalContext: "Apple Music: " + query,
			}
		},
	}
}

var spotifyPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`^play\s+on\s+spotify\s+`),
	regexp.MustCompile(`^spotify\s+play\s+`),
	regexp.MustCompile(`^spotify\s+`),
}

// spotifyRule opens the Spotify web player search, which works without the
// desktop app or an account.
func spotifyRule(store FavoritesStore) Rule {
	return Rule{
		Name:     "music.spotify",
		Examples: []string{"spotify john coltrane"},
		Match: func(c string) bool {
			return strings.HasPrefix(c, "spotify ") || containsAny(c, "play on spotify", "spotify play")
		},
		Handle: func(ctx context.Context, c string) Response {
			query := c
			for _, re := range spotifyPrefixes {
				query = re.ReplaceAllString(query, "")
			}
			query = strings.TrimSpace(query)
			if query == "" {
				return spoken("What would you like me to play on Spotify?")
			}
			searchURL := "https://open.spotify.com/search/" + strings.ReplaceAll(query, " ", "%20")
			if err := store.RecordPlay(ctx, "spotify", query, searchURL); err != nil {
				log.Printf("assistant: record play failed: %v", err)
			}
			return Response{
				Spoken:            fmt.Sprintf("Searching for %s on Spotify. You can browse for free or sign up to start playing!", query),
				OpenedURL:         searchURL,
				AdditionalContext: "Spotify web: " + query,
			}
		},
	}
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:search\s+)?youtube\s+(?:for\s+)?(.+)$`),
	regexp.MustCompile(`^play\s+(.+?)\s+on\s+youtube$`),
}

// youtubeRule opens a YouTube search for the requested video.
func youtubeRule() Rule {
	return Rule{
		Name:     "youtube",
		Examples: []string{"youtube lofi beats"},
		Match: func(c string) bool {
			return strings.Contains(c, "youtube")
		},
		Handle: func(ctx context.Context, c string) Response {
			var query string
			for _, re := range youtubePatterns {
				if m := re.FindStringSubmatch(c); m != nil {
					query = strings.TrimSpace(m[1])
					break
				}
			}
			if query == "" {
				return spoken("What would you like me to find on YouTube?")
			}
			searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
			return Response{
				Spoken:    fmt.Sprintf("Searching YouTube for %s.", query),
				OpenedURL: searchURL,
			}
		},
	}
}
