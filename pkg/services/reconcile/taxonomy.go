package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// UnmappedChannel collects source labels the taxonomy does not cover
const UnmappedChannel = "Unmapped"

// Taxonomy maps source-specific labels (media sources, channel names) onto the
// shared channel names used for reconciliation
type Taxonomy struct {
	channels map[string]string
}

// NewTaxonomy builds a taxonomy from channel -> source labels
func NewTaxonomy(channels map[string][]string) (*Taxonomy, error) {
	t := &Taxonomy{channels: make(map[string]string)}
	for channel, labels := range channels {
		if strings.TrimSpace(channel) == "" {
			return nil, fmt.Errorf("channel name cannot be empty")
		}
		// a channel always maps to itself so sources already using the shared names fold cleanly
		if err := t.add(channel, channel); err != nil {
			return nil, err
		}
		for _, label := range labels {
			if err := t.add(label, channel); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *Taxonomy) add(label, channel string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	if existing, ok := t.channels[label]; ok && existing != channel {
		return fmt.Errorf("label %q mapped to both %q and %q", label, existing, channel)
	}
	t.channels[label] = channel
	return nil
}

// LoadTaxonomy reads an INI file with one section per channel:
//
//	[Paid Search]
//	sources = googleadwords_int, google_ads
func LoadTaxonomy(path string) (*Taxonomy, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel taxonomy: %w", err)
	}
	return taxonomyFromINI(cfg)
}

// ParseTaxonomy reads the INI form from memory
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel taxonomy: %w", err)
	}
	return taxonomyFromINI(cfg)
}

func taxonomyFromINI(cfg *ini.File) (*Taxonomy, error) {
	channels := make(map[string][]string)
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		channels[section.Name()] = section.Key("sources").Strings(",")
	}
	return NewTaxonomy(channels)
}

// Channel resolves a label to its shared channel
func (t *Taxonomy) Channel(label string) (string, bool) {
	c, ok := t.channels[strings.TrimSpace(label)]
	return c, ok
}

// Channels lists the shared channel names
func (t *Taxonomy) Channels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range t.channels {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Fold sums rows per shared channel. Unknown labels are summed under
// UnmappedChannel and listed individually.
func (t *Taxonomy) Fold(rows []domain.RawMetricRow) (map[string]float64, []domain.UnmappedSource) {
	out := make(map[string]float64)
	unmapped := make(map[string]float64)

	for _, row := range rows {
		channel, ok := t.Channel(row.Segment)
		if !ok {
			channel = UnmappedChannel
			unmapped[strings.TrimSpace(row.Segment)] += row.Value
		}
		out[channel] += row.Value
	}

	list := make([]domain.UnmappedSource, 0, len(unmapped))
	for label, v := range unmapped {
		list = append(list, domain.UnmappedSource{Label: label, Value: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Value != list[j].Value {
			return list[i].Value > list[j].Value
		}
		return list[i].Label < list[j].Label
	})
	return out, list
}
