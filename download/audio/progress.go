package audio

import (
	"regexp"
	"strconv"
)

// Progress is one parsed status line from the fetch tool. The fields are
// best-effort display data; nothing downstream makes control decisions on
// them.
type Progress struct {
	Percent   float64
	TotalSize string
	Rate      string
	ETA       string
}

// progressPattern matches the tool's incremental status line, e.g.
//
//	[download]  42.3% of 3.45MiB at 512.00KiB/s ETA 00:05
//
// Size, rate, and ETA are optional because the tool omits them while it is
// still estimating.
var progressPattern = regexp.MustCompile(
	`(\d+(?:\.\d+)?)%(?:\s+of\s+~?\s*(\S+))?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

// ParseProgressLine parses one output line from the fetch tool. The second
// return value is false for lines that carry no progress information.
func ParseProgressLine(line string) (Progress, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return Progress{}, false
	}

	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return Progress{}, false
	}

	return Progress{
		Percent:   percent,
		TotalSize: match[2],
		Rate:      match[3],
		ETA:       match[4],
	}, true
}
