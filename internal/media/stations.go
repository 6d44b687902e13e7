// Package media holds the radio station catalog and desktop media
// collaborators used by the music intents.
package media

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Station is one curated radio stream with a reliable web player.
type Station struct {
	Key       string   `yaml:"key"`
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url"`
	BackupURL string   `yaml:"backup_url"`
	Keywords  []string `yaml:"keywords"`
}

// Catalog matches spoken commands to stations. Order matters: earlier
// stations win when keywords overlap ("progressive rock" before "rock").
type Catalog struct {
	stations []Station
}

// DefaultCatalog returns the compiled-in station list.
func DefaultCatalog() *Catalog {
	return &Catalog{stations: []Station{
		{
			Key:       "npr",
			Name:      "NPR Live Radio",
			URL:       "https://www.npr.org/player/live",
			BackupURL: "https://www.npr.org/",
			Keywords:  []string{"npr", "news", "public radio", "national public radio"},
		},
		{
			Key:       "classical",
			Name:      "Radio Paradise Main Mix",
			URL:       "https://radioparadise.com/player",
			BackupURL: "https://radioparadise.com/player",
			Keywords:  []string{"classical", "orchestra", "symphony", "baroque", "mozart"},
		},
		{
			Key:       "jazz",
			Name:      "SomaFM Groove Salad",
			URL:       "https://somafm.com/player/#/now-playing/groovesalad",
			BackupURL: "https://somafm.com/groovesalad/",
			Keywords:  []string{"jazz", "smooth", "groove", "bebop", "swing"},
		},
		{
			Key:       "progressive",
			Name:      "SomaFM BAGeL Radio",
			URL:       "https://somafm.com/player/#/now-playing/bagel",
			BackupURL: "https://somafm.com/bagel/",
			Keywords:  []string{"progressive rock", "prog rock", "progressive", "prog"},
		},
		{
			Key:       "rock",
			Name:      "Radio Paradise Rock Mix",
			URL:       "https://radioparadise.com/player",
			BackupURL: "https://radioparadise.com/listen/rock-mix",
			Keywords:  []string{"rock", "classic rock", "guitar", "70s", "80s"},
		},
	}}
}

type catalogFile struct {
	Stations []Station `yaml:"stations"`
}

// LoadCatalog reads a station catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read station catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse station catalog: %w", err)
	}
	if len(file.Stations) == 0 {
		return nil, fmt.Errorf("station catalog %s lists no stations", path)
	}
	for i, s := range file.Stations {
		if s.Key == "" || s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("station %d in %s missing key, name, or url", i, path)
		}
	}
	return &Catalog{stations: file.Stations}, nil
}

var radioTriggers = []string{
	"radio", "classical music", "jazz music", "rock music", "news", "npr",
	"progressive rock", "classic rock", "public radio", "national public radio",
}

// IsRadioRequest reports whether the normalized command is asking for radio.
func (c *Catalog) IsRadioRequest(command string) bool {
	for _, trigger := range radioTriggers {
		if strings.Contains(command, trigger) {
			return true
		}
	}
	return false
}

// Match picks the station for a normalized command, first keyword hit wins.
func (c *Catalog) Match(command string) (Station, bool) {
	for _, station := range c.stations {
		for _, kw := range station.Keywords {
			if strings.Contains(command, kw) {
				return station, true
			}
		}
	}
	return Station{}, false
}

// Stations returns the catalog in priority order.
func (c *Catalog) Stations() []Station {
	return append([]Station(nil), c.stations...)
}

// Names lists station display names for the "what can you play" answer.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.stations))
	seen := map[string]bool{}
	for _, s := range c.stations {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		names = append(names, s.Name)
	}
	return names
}
