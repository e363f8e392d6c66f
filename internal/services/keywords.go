package services

import "math/rand"

// KeywordGenerator produces the one-time word admins reply with
type KeywordGenerator interface {
	RandomWord(maxLength int) string
}

var keywordList = []string{
	"able", "acorn", "amber", "anvil", "apple", "arch", "aspen", "badge", "bagel", "bay",
	"beach", "bell", "birch", "boat", "bread", "brick", "brook", "cabin", "cake", "canoe",
	"cedar", "chalk", "cliff", "cloud", "coast", "comet", "coral", "cove", "crab", "crane",
	"creek", "daisy", "delta", "dune", "eagle", "elm", "ember", "fern", "fig", "flint",
	"foam", "fox", "frost", "gull", "harbor", "hazel", "heron", "hill", "ivy", "jade",
	"kayak", "kelp", "kite", "lake", "lemon", "lily", "maple", "marsh", "mesa", "mint",
	"moon", "moss", "oak", "ocean", "olive", "orca", "otter", "owl", "pearl", "pebble",
	"pine", "plum", "pond", "quail", "reef", "ridge", "river", "robin", "sage", "sail",
	"sand", "seal", "shell", "shore", "sky", "slate", "spray", "star", "stone", "surf",
	"swan", "tide", "trail", "tulip", "wave", "wharf", "willow", "wind", "wren", "yarrow",
}

// WordListGenerator picks from a fixed list of short, unambiguous words
type WordListGenerator struct{}

// RandomWord returns a lower-case word no longer than maxLength
func (WordListGenerator) RandomWord(maxLength int) string {
	candidates := make([]string, 0, len(keywordList))
	for _, w := range keywordList {
		if maxLength <= 0 || len(w) <= maxLength {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return keywordList[rand.Intn(len(keywordList))][:maxLength]
	}
	return candidates[rand.Intn(len(candidates))]
}
