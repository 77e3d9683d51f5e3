package datautil

import (
	"regexp"
	"strings"

	"github.com/dataloop-ml/datakit/errors"
)

var placeholderRe = regexp.MustCompile(`\{(.+?)\}`)

// StringToDict extracts named fields from s according to a pattern with
// {name} placeholders, for example "{split}-{shard}.parquet". Literal
// text must match exactly; each placeholder captures at least one
// character greedily. Returns nil with no error when s does not match.
func StringToDict(s, pattern string) (map[string]string, error) {
	names := []string{}
	var sb strings.Builder

	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(pattern, -1) {
		sb.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		sb.WriteString(`(.+)`)
		names = append(names, pattern[loc[2]:loc[3]])
		last = loc[1]
	}
	sb.WriteString(regexp.QuoteMeta(pattern[last:]))

	if len(names) == 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidPattern).
			Value(pattern).
			Detail("pattern has no {name} placeholders").
			Build()
	}
	for i, name := range names {
		for _, other := range names[i+1:] {
			if name == other {
				return nil, errors.New(errors.PhaseParse, errors.KindInvalidPattern).
					Value(pattern).
					Detail("placeholder %q appears more than once", name).
					Build()
			}
		}
	}

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidPattern).
			Value(pattern).
			Cause(err).
			Build()
	}

	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	fields := make(map[string]string, len(names))
	for i, name := range names {
		fields[name] = m[i+1]
	}
	return fields, nil
}
