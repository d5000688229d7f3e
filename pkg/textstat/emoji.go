package textstat

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

const variationSelector = "\ufe0f"

// Emojis returns, in order, every extended grapheme cluster of text that
// holds an emoji. Multi-code-point sequences (ZWJ families, flags, skin
// tones) stay whole.
func Emojis(text string) (found []string) {
	defer func() {
		if recover() != nil {
			found = []string{}
		}
	}()

	found = []string{}
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		if cluster := graphemes.Str(); IsEmoji(cluster) {
			found = append(found, cluster)
		}
	}
	return found
}

// IsEmoji reports whether cluster is an emoji in the Unicode emoji data, or
// contains one. Clusters that differ from a listed emoji only by a missing
// or extra variation selector count as well.
func IsEmoji(cluster string) bool {
	if isASCII(cluster) {
		return false
	}
	if listed(cluster) {
		return true
	}
	for _, r := range cluster {
		if listed(string(r)) {
			return true
		}
	}
	return false
}

func listed(s string) bool {
	if inTable(s) {
		return true
	}
	if bare := strings.ReplaceAll(s, variationSelector, ""); bare != s && bare != "" {
		return inTable(bare)
	}
	return inTable(s + variationSelector)
}

func inTable(s string) bool {
	_, err := gomoji.GetInfo(s)
	return err == nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
