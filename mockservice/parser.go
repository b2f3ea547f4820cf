package mockservice

import (
	"regexp"
	"strings"

	"github.com/autolearn-jp/api-contract-tests/servicedef"
)

var (
	titlePattern        = regexp.MustCompile(`##\s*🈶\s*Kanji\s*[:：]\s*([^-\n]+?)\s*-\s*(.+)`)
	onyomiPattern       = regexp.MustCompile(`Lecture\s+\*onyomi\*\s*[:：]\s*(.+)`)
	kunyomiPattern      = regexp.MustCompile(`Lecture\s+\*kunyomi\*\s*[:：]\s*(.+)`)
	traductionEnPattern = regexp.MustCompile(`Traduction\s+EN\s*[:：]\s*(.+)`)
	typePattern         = regexp.MustCompile(`Type\s*[:：]\s*#?(\w+)`)
	themePattern        = regexp.MustCompile(`Thème\s*[:：]\s*#?(\w+)`)
	tagsPattern         = regexp.MustCompile(`Tags\s*[:：]\s*(.+)`)
)

// parseWord extracts a word record from one markdown document. The returned record has an
// empty Kanji if the document has no recognizable title line.
func parseWord(content string) servicedef.WordRecord {
	var w servicedef.WordRecord
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		w.Kanji = strings.TrimSpace(m[1])
		w.TraductionFr = strings.TrimSpace(m[2])
	}
	w.Onyomi = extract(onyomiPattern, content)
	w.Kunyomi = extract(kunyomiPattern, content)
	w.TraductionEn = extract(traductionEnPattern, content)
	w.Type = extract(typePattern, content)
	w.Theme = extract(themePattern, content)
	if tags := extract(tagsPattern, content); tags != "" {
		for _, tag := range strings.Split(tags, "#") {
			if tag = strings.TrimSpace(tag); tag != "" {
				w.Tags = append(w.Tags, tag)
			}
		}
	}
	return w
}

func extract(pattern *regexp.Regexp, content string) string {
	if m := pattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
