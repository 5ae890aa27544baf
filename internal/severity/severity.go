package severity

import "fmt"

var order = map[string]int{
	"info":     1,
	"low":      2,
	"medium":   3,
	"high":     4,
	"critical": 5,
}

func Normalize(level string) (string, error) {
	if _, ok := order[level]; !ok {
		return "", fmt.Errorf("invalid severity level: %s", level)
	}
	return level, nil
}

func MeetsOrAbove(level string, threshold string) bool {
	l, okL := order[level]
	t, okT := order[threshold]
	if !okL || !okT {
		return false
	}
	return l >= t
}

func Max(levels ...string) string {
	maxRank := 0
	maxLevel := ""
	for _, l := range levels {
		r := order[l]
		if r > maxRank {
			maxRank = r
			maxLevel = l
		}
	}
	return maxLevel
}
