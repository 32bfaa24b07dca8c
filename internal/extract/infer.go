// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

var (
	explicitTierRe = regexp.MustCompile(`(?i)tier:\s*\[?\s*((?:XS|S|M|L)(?:\s*,\s*(?:XS|S|M|L))*)\s*\]?`)
	tierRowRe      = regexp.MustCompile(`\|\s*\*\*(XS|S|M|L)\*\*\s*\|`)

	keywordXS = regexp.MustCompile(`(?i)\b(simple|straightforward|trivial|minimal)\b`)
	keywordM  = regexp.MustCompile(`(?i)\b(medium|moderate|standard)\b`)
	keywordL  = regexp.MustCompile(`(?i)\b(large|complex|substantial|significant)\b`)
)

// InferTiers derives effort tiers from the document body. Explicit
// "Tier:" markers and tier table rows take priority; complexity
// keywords contribute as a fallback signal. The result is sorted
// smallest first; nil when no evidence exists.
func InferTiers(content string) []types.Tier {
	found := make(map[types.Tier]bool)

	for _, m := range explicitTierRe.FindAllStringSubmatch(content, -1) {
		for _, part := range strings.Split(m[1], ",") {
			tier := types.Tier(strings.ToUpper(strings.TrimSpace(part)))
			found[tier] = true
		}
	}

	for _, m := range tierRowRe.FindAllStringSubmatch(content, -1) {
		found[types.Tier(m[1])] = true
	}

	if keywordXS.MatchString(content) {
		found[types.TierXS] = true
	}
	if keywordM.MatchString(content) {
		found[types.TierM] = true
	}
	if keywordL.MatchString(content) {
		found[types.TierL] = true
	}

	if len(found) == 0 {
		return nil
	}
	tiers := make([]types.Tier, 0, len(found))
	for t := range found {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Less(tiers[j]) })
	return tiers
}

// frequencyPatterns is checked in order; the first match wins.
var frequencyPatterns = []struct {
	freq types.Frequency
	re   *regexp.Regexp
}{
	{types.FreqDaily, regexp.MustCompile(`\bdaily\b|\beveryday\b`)},
	{types.FreqWeekly, regexp.MustCompile(`\bweekly\b|\bweek\b`)},
	{types.FreqStartOfFeature, regexp.MustCompile(`\bstart of feature\b|\bstart of\b.*\bfeature\b|\bbeginning of feature\b`)},
	{types.FreqPerIteration, regexp.MustCompile(`\bper iteration\b|\beach iteration\b|\bevery iteration\b`)},
	{types.FreqPerPR, regexp.MustCompile(`\bper pr\b|\bbefore.*\bpr\b|\beach.*\bpr\b`)},
	{types.FreqPreRelease, regexp.MustCompile(`\brelease\b|\bpre-release\b|\bdeployment\b`)},
	{types.FreqOnIncident, regexp.MustCompile(`\bincident\b|\bhotfix\b|\bemergency\b`)},
	{types.FreqOneTime, regexp.MustCompile(`\bone-time\b|\binitial setup\b|\bfirst time\b`)},
}

// InferFrequency derives the usage cadence from the lowercased "When
// to Use" section text. Documents without a recognizable cadence get
// as-needed.
func InferFrequency(whenToUse string) types.Frequency {
	text := strings.ToLower(whenToUse)
	if text == "" {
		return types.FreqAsNeeded
	}
	for _, p := range frequencyPatterns {
		if p.re.MatchString(text) {
			return p.freq
		}
	}
	return types.FreqAsNeeded
}

var (
	arrowRe   = regexp.MustCompile(`(?i)([^→\n]+?)\s*→\s*(?:use\s+)?(/pb-[\w-]+)`)
	useWhenRe = regexp.MustCompile(`(?i)use\s+(?:when|if):\s*([^\n]+)`)
)

// InferDecisionContext extracts routing rules: "condition → /pb-x"
// arrows from the whole body and "Use when:" lines from the When to
// Use section. Returns nil when no rules are found.
func InferDecisionContext(content, whenToUse string) map[string]string {
	ctx := make(map[string]string)

	for _, m := range arrowRe.FindAllStringSubmatch(content, -1) {
		ctx[strings.TrimSpace(m[1])] = m[2]
	}

	for _, m := range useWhenRe.FindAllStringSubmatch(whenToUse, -1) {
		key := "use_when_" + strconv.Itoa(len(ctx))
		ctx[key] = strings.TrimSpace(m[1])
	}

	if len(ctx) == 0 {
		return nil
	}
	return ctx
}
