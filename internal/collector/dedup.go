package collector

import "github.com/paulbousquet/fomcscrape/internal/domain"

// Deduplicate keeps the first occurrence of each source URL, in encounter
// order. URLs are compared as exact strings.
func Deduplicate(links []domain.DiscoveredLink) []domain.DiscoveredLink {
	seen := make(map[string]struct{}, len(links))
	unique := make([]domain.DiscoveredLink, 0, len(links))
	for i := range links {
		if _, ok := seen[links[i].SourceURL]; ok {
			continue
		}
		seen[links[i].SourceURL] = struct{}{}
		unique = append(unique, links[i])
	}
	return unique
}
